package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/boutique/internal/record"
)

const productColumns = `id, name, sku, category, price, wholesale_price, profit, quantity, description, image, created_at`

// AddProduct validates and inserts a product, stamping its creation time.
// A duplicate id or sku returns a *ConstraintError and leaves the existing
// record untouched.
func (s *Store) AddProduct(ctx context.Context, p record.Product) error {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return fmt.Errorf("add product: %w", err)
	}

	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	p.CreatedAt = s.stamp()
	_, err = db.ExecContext(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.ID,
		p.Name,
		p.SKU,
		p.Category,
		p.Price.String(),
		p.WholesalePrice.String(),
		p.Profit.String(),
		p.Quantity,
		p.Description,
		p.Image,
		toMillis(p.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("add product: %w", translate(err, productValue(p)))
	}

	slog.Debug("product added", "id", p.ID, "sku", p.SKU, "quantity", p.Quantity)
	return nil
}

// UpdateProduct replaces every field of an existing product except its
// creation time. Returns ErrNotFound if the id is absent.
func (s *Store) UpdateProduct(ctx context.Context, p record.Product) error {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	result, err := db.ExecContext(ctx, `
		UPDATE products
		SET name = ?, sku = ?, category = ?, price = ?, wholesale_price = ?,
		    profit = ?, quantity = ?, description = ?, image = ?
		WHERE id = ?
	`,
		p.Name,
		p.SKU,
		p.Category,
		p.Price.String(),
		p.WholesalePrice.String(),
		p.Profit.String(),
		p.Quantity,
		p.Description,
		p.Image,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", translate(err, productValue(p)))
	}
	if err := requireRow(result, "product", p.ID); err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	slog.Debug("product updated", "id", p.ID, "quantity", p.Quantity)
	return nil
}

// GetProducts returns every product ordered by creation time.
// Returns an empty slice (not nil) when there are none.
func (s *Store) GetProducts(ctx context.Context) ([]record.Product, error) {
	return s.queryProducts(ctx, `
		SELECT `+productColumns+`
		FROM products
		ORDER BY created_at ASC, id ASC
	`)
}

// GetProductsByCategory returns the products in one category.
func (s *Store) GetProductsByCategory(ctx context.Context, category string) ([]record.Product, error) {
	return s.queryProducts(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE category = ?
		ORDER BY created_at ASC, id ASC
	`, category)
}

// GetProduct looks a product up by id. found is false if it does not exist.
func (s *Store) GetProduct(ctx context.Context, id string) (p record.Product, found bool, err error) {
	return s.queryProduct(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
}

// GetProductBySKU looks a product up through the unique sku index.
func (s *Store) GetProductBySKU(ctx context.Context, sku string) (p record.Product, found bool, err error) {
	return s.queryProduct(ctx, `SELECT `+productColumns+` FROM products WHERE sku = ?`, sku)
}

// DeleteProduct removes a product. Deleting a missing id is not an error.
// Past sales keep their item snapshots.
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// ClearAllProducts removes every product and returns how many were removed.
// Administrative reset; sales are untouched.
func (s *Store) ClearAllProducts(ctx context.Context) (int64, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return 0, err
	}
	result, err := db.ExecContext(ctx, `DELETE FROM products`)
	if err != nil {
		return 0, fmt.Errorf("clear products: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear products: rows affected: %w", err)
	}
	slog.Info("products cleared", "count", n)
	return n, nil
}

func (s *Store) queryProduct(ctx context.Context, query string, args ...any) (record.Product, bool, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return record.Product{}, false, err
	}
	p, err := scanProduct(db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return record.Product{}, false, nil
	}
	if err != nil {
		return record.Product{}, false, fmt.Errorf("get product: %w", err)
	}
	return p, true, nil
}

func (s *Store) queryProducts(ctx context.Context, query string, args ...any) ([]record.Product, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := []record.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

func scanProduct(row scanner) (record.Product, error) {
	var p record.Product
	var price, wholesale, profit string
	var createdAt int64

	if err := row.Scan(
		&p.ID, &p.Name, &p.SKU, &p.Category, &price, &wholesale, &profit,
		&p.Quantity, &p.Description, &p.Image, &createdAt,
	); err != nil {
		return record.Product{}, err
	}

	var d decimals
	p.Price = d.parse("price", price)
	p.WholesalePrice = d.parse("wholesale_price", wholesale)
	p.Profit = d.parse("profit", profit)
	if d.err != nil {
		return record.Product{}, d.err
	}
	p.CreatedAt = fromMillis(createdAt)
	return p, nil
}

func productValue(p record.Product) func(string) string {
	return func(field string) string {
		if field == "sku" {
			return p.SKU
		}
		return p.ID
	}
}

// requireRow turns an UPDATE that touched nothing into ErrNotFound.
func requireRow(result sql.Result, kind, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
	}
	return nil
}
