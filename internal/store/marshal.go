package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/roach88/boutique/internal/record"
)

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// marshalItems converts sale items to JSON TEXT for storage.
func marshalItems(items []record.SaleItem) (string, error) {
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("marshal items: %w", err)
	}
	return string(data), nil
}

// unmarshalItems parses stored JSON TEXT back into sale items.
func unmarshalItems(data string) ([]record.SaleItem, error) {
	if data == "" || data == "[]" {
		return []record.SaleItem{}, nil
	}
	var items []record.SaleItem
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	return items, nil
}

// parseDecimal reads a money column. Columns are written with
// decimal.Decimal.String so a parse failure means the file was edited by hand.
func parseDecimal(column, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse %s %q: %w", column, s, err)
	}
	return d, nil
}

// decimals parses several money columns at once, stopping at the first bad one.
type decimals struct {
	err error
}

func (d *decimals) parse(column, s string) decimal.Decimal {
	if d.err != nil {
		return decimal.Decimal{}
	}
	v, err := parseDecimal(column, s)
	if err != nil {
		d.err = err
	}
	return v
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
