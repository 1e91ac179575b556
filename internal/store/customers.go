package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/boutique/internal/record"
)

const customerColumns = `id, name, phone, email, address, total_spent, created_at`

// AddCustomer validates and inserts a customer, stamping its creation time.
// A duplicate id or phone returns a *ConstraintError.
func (s *Store) AddCustomer(ctx context.Context, c record.Customer) error {
	c.Normalize()
	if err := c.Validate(); err != nil {
		return fmt.Errorf("add customer: %w", err)
	}

	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	c.CreatedAt = s.stamp()
	_, err = db.ExecContext(ctx, `
		INSERT INTO customers (`+customerColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		c.ID,
		c.Name,
		c.Phone,
		c.Email,
		c.Address,
		c.TotalSpent.String(),
		toMillis(c.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("add customer: %w", translate(err, customerValue(c)))
	}

	slog.Debug("customer added", "id", c.ID, "phone", c.Phone)
	return nil
}

// UpdateCustomer replaces a customer's contact details. TotalSpent and the
// creation time are kept from the stored record: spend only moves through
// recorded sales. Returns ErrNotFound if the id is absent.
func (s *Store) UpdateCustomer(ctx context.Context, c record.Customer) error {
	c.Normalize()
	if err := c.Validate(); err != nil {
		return fmt.Errorf("update customer: %w", err)
	}

	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	result, err := db.ExecContext(ctx, `
		UPDATE customers
		SET name = ?, phone = ?, email = ?, address = ?
		WHERE id = ?
	`, c.Name, c.Phone, c.Email, c.Address, c.ID)
	if err != nil {
		return fmt.Errorf("update customer: %w", translate(err, customerValue(c)))
	}
	if err := requireRow(result, "customer", c.ID); err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	return nil
}

// GetCustomers returns every customer ordered by creation time.
func (s *Store) GetCustomers(ctx context.Context) ([]record.Customer, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query customers: %w", err)
	}
	defer rows.Close()

	customers := []record.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customers: %w", err)
	}
	return customers, nil
}

// GetCustomer looks a customer up by id. found is false if it does not exist.
func (s *Store) GetCustomer(ctx context.Context, id string) (c record.Customer, found bool, err error) {
	return s.queryCustomer(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = ?`, id)
}

// GetCustomerByPhone looks a customer up through the unique phone index.
func (s *Store) GetCustomerByPhone(ctx context.Context, phone string) (c record.Customer, found bool, err error) {
	return s.queryCustomer(ctx, `SELECT `+customerColumns+` FROM customers WHERE phone = ?`, phone)
}

func (s *Store) queryCustomer(ctx context.Context, query string, args ...any) (record.Customer, bool, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return record.Customer{}, false, err
	}
	c, err := scanCustomer(db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return record.Customer{}, false, nil
	}
	if err != nil {
		return record.Customer{}, false, fmt.Errorf("get customer: %w", err)
	}
	return c, true, nil
}

func scanCustomer(row scanner) (record.Customer, error) {
	var c record.Customer
	var totalSpent string
	var createdAt int64

	if err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &totalSpent, &createdAt); err != nil {
		return record.Customer{}, err
	}

	spent, err := parseDecimal("total_spent", totalSpent)
	if err != nil {
		return record.Customer{}, err
	}
	c.TotalSpent = spent
	c.CreatedAt = fromMillis(createdAt)
	return c, nil
}

func customerValue(c record.Customer) func(string) string {
	return func(field string) string {
		if field == "phone" {
			return c.Phone
		}
		return c.ID
	}
}
