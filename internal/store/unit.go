package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/roach88/boutique/internal/record"
)

// mutation is one planned write inside a unit of work. Mutations only touch
// the transaction they are given.
type mutation interface {
	apply(ctx context.Context, tx *sql.Tx) error
	String() string
}

// applyUnit runs every mutation in plan inside one transaction. The first
// failure rolls everything back and is returned as a *TxError.
func (s *Store) applyUnit(ctx context.Context, op string, plan []mutation) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return &TxError{Op: op, Err: fmt.Errorf("begin tx: %w", err)}
	}
	defer tx.Rollback() // No-op if committed

	for _, m := range plan {
		if err := m.apply(ctx, tx); err != nil {
			slog.Warn("unit of work rolled back", "op", op, "step", m.String(), "error", err)
			return &TxError{Op: op, Step: m.String(), Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &TxError{Op: op, Err: fmt.Errorf("commit: %w", err)}
	}
	return nil
}

// insertSale writes the ledger entry.
type insertSale struct {
	sale record.Sale
}

func (m insertSale) String() string {
	return fmt.Sprintf("insert sale %s", m.sale.ID)
}

func (m insertSale) apply(ctx context.Context, tx *sql.Tx) error {
	sale := m.sale
	items, err := marshalItems(sale.Items)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sales (`+saleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		sale.ID,
		nullString(sale.CustomerID),
		items,
		sale.Subtotal.String(),
		sale.Tax.String(),
		sale.Discount.String(),
		sale.Total.String(),
		string(sale.PaymentMethod),
		sale.PaymentReference,
		sale.AmountReceived.String(),
		sale.Change.String(),
		sale.CashierName,
		sale.Notes,
		toMillis(sale.CreatedAt),
	)
	if err != nil {
		return translate(err, func(string) string { return sale.ID })
	}
	return nil
}

// adjustStock reads a product's quantity, adds delta and writes it back.
// Stock may go negative; that is logged, not refused.
type adjustStock struct {
	productID string
	delta     int64
}

func (m adjustStock) String() string {
	return fmt.Sprintf("adjust stock %s by %d", m.productID, m.delta)
}

func (m adjustStock) apply(ctx context.Context, tx *sql.Tx) error {
	var quantity int64
	err := tx.QueryRowContext(ctx, `SELECT quantity FROM products WHERE id = ?`, m.productID).Scan(&quantity)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("product %q: %w", m.productID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("read product: %w", err)
	}

	quantity += m.delta
	if quantity < 0 {
		slog.Warn("stock driven negative", "product_id", m.productID, "quantity", quantity)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE products SET quantity = ? WHERE id = ?`, quantity, m.productID); err != nil {
		return fmt.Errorf("write product: %w", err)
	}
	return nil
}

// accrueSpend reads a customer's running total, adds amount and writes it back.
type accrueSpend struct {
	customerID string
	amount     decimal.Decimal
}

func (m accrueSpend) String() string {
	return fmt.Sprintf("accrue %s to customer %s", m.amount, m.customerID)
}

func (m accrueSpend) apply(ctx context.Context, tx *sql.Tx) error {
	var stored string
	err := tx.QueryRowContext(ctx, `SELECT total_spent FROM customers WHERE id = ?`, m.customerID).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("customer %q: %w", m.customerID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("read customer: %w", err)
	}

	spent, err := parseDecimal("total_spent", stored)
	if err != nil {
		return err
	}
	spent = spent.Add(m.amount)

	if _, err := tx.ExecContext(ctx, `UPDATE customers SET total_spent = ? WHERE id = ?`, spent.String(), m.customerID); err != nil {
		return fmt.Errorf("write customer: %w", err)
	}
	return nil
}
