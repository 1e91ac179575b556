package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/boutique/internal/record"
)

const saleColumns = `id, customer_id, items, subtotal, tax, discount, total, payment_method, payment_reference, amount_received, change_due, cashier_name, notes, created_at`

// AddSale records a sale and its side effects atomically:
//  1. the sale row, with a generated id and creation time
//  2. one stock decrement per line item
//  3. the sale total added to the customer's spend, if a customer is set
//
// If any step fails nothing is persisted and the returned error matches
// ErrTransactionFailed (and wraps the cause, e.g. ErrNotFound for a missing
// product). The id is returned only after commit.
func (s *Store) AddSale(ctx context.Context, in record.SaleInput) (string, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return "", fmt.Errorf("add sale: %w", err)
	}

	sale := record.Sale{
		ID:        PrefixSale + "-" + s.ids.Generate(),
		SaleInput: in,
		CreatedAt: s.stamp(),
	}

	if err := s.applyUnit(ctx, "add sale", planSale(sale)); err != nil {
		return "", err
	}

	slog.Info("sale recorded",
		"id", sale.ID,
		"total", sale.Total.StringFixed(2),
		"items", len(sale.Items),
		"customer_id", sale.CustomerID,
	)
	return sale.ID, nil
}

// RecordSale is AddSale.
func (s *Store) RecordSale(ctx context.Context, in record.SaleInput) (string, error) {
	return s.AddSale(ctx, in)
}

// planSale lists the mutations a sale causes, in the order they are applied.
func planSale(sale record.Sale) []mutation {
	plan := make([]mutation, 0, len(sale.Items)+2)
	plan = append(plan, insertSale{sale: sale})
	for _, it := range sale.Items {
		plan = append(plan, adjustStock{productID: it.ProductID, delta: -it.Quantity})
	}
	if sale.CustomerID != "" {
		plan = append(plan, accrueSpend{customerID: sale.CustomerID, amount: sale.Total})
	}
	return plan
}

// GetSales returns every sale ordered by creation time.
func (s *Store) GetSales(ctx context.Context) ([]record.Sale, error) {
	return s.querySales(ctx, `
		SELECT `+saleColumns+`
		FROM sales
		ORDER BY created_at ASC, id ASC
	`)
}

// GetSalesByDateRange returns the sales created within [start, end], both
// ends inclusive, using the created_at index.
func (s *Store) GetSalesByDateRange(ctx context.Context, start, end time.Time) ([]record.Sale, error) {
	return s.querySales(ctx, `
		SELECT `+saleColumns+`
		FROM sales
		WHERE created_at BETWEEN ? AND ?
		ORDER BY created_at ASC, id ASC
	`, toMillis(start), toMillis(end))
}

// GetSalesByCustomer returns a customer's purchase history.
func (s *Store) GetSalesByCustomer(ctx context.Context, customerID string) ([]record.Sale, error) {
	return s.querySales(ctx, `
		SELECT `+saleColumns+`
		FROM sales
		WHERE customer_id = ?
		ORDER BY created_at ASC, id ASC
	`, customerID)
}

// GetSale looks a sale up by id. found is false if it does not exist.
func (s *Store) GetSale(ctx context.Context, id string) (sale record.Sale, found bool, err error) {
	db, err := s.conn(ctx)
	if err != nil {
		return record.Sale{}, false, err
	}
	sale, err = scanSale(db.QueryRowContext(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return record.Sale{}, false, nil
	}
	if err != nil {
		return record.Sale{}, false, fmt.Errorf("get sale: %w", err)
	}
	return sale, true, nil
}

func (s *Store) querySales(ctx context.Context, query string, args ...any) ([]record.Sale, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sales: %w", err)
	}
	defer rows.Close()

	sales := []record.Sale{}
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales: %w", err)
	}
	return sales, nil
}

func scanSale(row scanner) (record.Sale, error) {
	var sale record.Sale
	var customerID sql.NullString
	var itemsJSON, method string
	var subtotal, tax, discount, total, received, change string
	var createdAt int64

	if err := row.Scan(
		&sale.ID, &customerID, &itemsJSON, &subtotal, &tax, &discount, &total,
		&method, &sale.PaymentReference, &received, &change,
		&sale.CashierName, &sale.Notes, &createdAt,
	); err != nil {
		return record.Sale{}, err
	}

	items, err := unmarshalItems(itemsJSON)
	if err != nil {
		return record.Sale{}, err
	}
	sale.Items = items
	sale.CustomerID = customerID.String
	sale.PaymentMethod = record.PaymentMethod(method)

	var d decimals
	sale.Subtotal = d.parse("subtotal", subtotal)
	sale.Tax = d.parse("tax", tax)
	sale.Discount = d.parse("discount", discount)
	sale.Total = d.parse("total", total)
	sale.AmountReceived = d.parse("amount_received", received)
	sale.Change = d.parse("change_due", change)
	if d.err != nil {
		return record.Sale{}, d.err
	}
	sale.CreatedAt = fromMillis(createdAt)
	return sale, nil
}
