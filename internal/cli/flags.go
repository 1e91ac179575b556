package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// errBadInput marks an unparseable flag or argument.
var errBadInput = errors.New("bad input")

// parseMoney parses a decimal amount flag. An empty value is zero.
func parseMoney(flag, value string) (decimal.Decimal, error) {
	if strings.TrimSpace(value) == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: --%s: %q is not an amount", errBadInput, flag, value)
	}
	return d, nil
}

// parseLine parses a sale line of the form PRODUCT_ID[:QTY]. Quantity
// defaults to 1.
func parseLine(value string) (productID string, quantity int64, err error) {
	productID, qty, hasQty := strings.Cut(strings.TrimSpace(value), ":")
	if productID == "" {
		return "", 0, fmt.Errorf("%w: --item %q: missing product id", errBadInput, value)
	}
	if !hasQty {
		return productID, 1, nil
	}
	quantity, err = strconv.ParseInt(qty, 10, 64)
	if err != nil || quantity <= 0 {
		return "", 0, fmt.Errorf("%w: --item %q: quantity must be a positive integer", errBadInput, value)
	}
	return productID, quantity, nil
}

// timeLayout is how creation stamps are shown in text output.
const timeLayout = "2006-01-02 15:04:05 MST"

// truncate shortens s to at most n runes for table columns.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
