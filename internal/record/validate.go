package record

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// ErrInvalid is matched by every validation failure.
var ErrInvalid = errors.New("invalid record")

// ValidationError names the record and field that failed validation.
type ValidationError struct {
	Record  string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid %s: %s", e.Record, e.Message)
	}
	return fmt.Sprintf("invalid %s: %s %s", e.Record, e.Field, e.Message)
}

// Is reports ErrInvalid so callers can use errors.Is.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func invalid(rec, field, format string, args ...any) *ValidationError {
	return &ValidationError{Record: rec, Field: field, Message: fmt.Sprintf(format, args...)}
}

// checkStruct runs the struct tags and converts the first failure into a
// ValidationError.
func checkStruct(rec string, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := fe.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		switch fe.Tag() {
		case "required":
			return invalid(rec, field, "is required")
		case "oneof":
			return invalid(rec, field, "must be one of [%s], got %q", fe.Param(), fe.Value())
		case "min":
			return invalid(rec, field, "needs at least %s entries", fe.Param())
		case "gt":
			return invalid(rec, field, "must be greater than %s", fe.Param())
		case "gte":
			return invalid(rec, field, "must be at least %s, got %v", fe.Param(), fe.Value())
		default:
			return invalid(rec, field, "failed %q check", fe.Tag())
		}
	}
	return fmt.Errorf("%w: %s: %v", ErrInvalid, rec, err)
}

// clean trims surrounding space and NFC-normalises user-entered text so that
// visually identical SKUs, phones and names compare equal.
func clean(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func nonNegative(rec, field string, d decimal.Decimal) error {
	if d.IsNegative() {
		return invalid(rec, field, "must not be negative, got %s", d)
	}
	return nil
}

// NewProduct builds a product and caches its profit.
func NewProduct(id, name, sku, category string, price, wholesale decimal.Decimal, quantity int64) (Product, error) {
	p := Product{
		ID:             id,
		Name:           name,
		SKU:            sku,
		Category:       category,
		Price:          price,
		WholesalePrice: wholesale,
		Quantity:       quantity,
	}
	p.Normalize()
	return p, p.Validate()
}

// Normalize cleans text fields and fills Profit when it was left zero.
func (p *Product) Normalize() {
	p.ID = clean(p.ID)
	p.Name = clean(p.Name)
	p.SKU = clean(p.SKU)
	p.Category = clean(p.Category)
	p.Description = strings.TrimSpace(p.Description)
	p.Image = strings.TrimSpace(p.Image)
	if p.Profit.IsZero() {
		p.Profit = p.Price.Sub(p.WholesalePrice)
	}
}

// Validate checks required fields and the cached profit.
func (p Product) Validate() error {
	if err := checkStruct("product", p); err != nil {
		return err
	}
	if err := nonNegative("product", "Price", p.Price); err != nil {
		return err
	}
	if err := nonNegative("product", "WholesalePrice", p.WholesalePrice); err != nil {
		return err
	}
	if want := p.Price.Sub(p.WholesalePrice); !p.Profit.Equal(want) {
		return invalid("product", "Profit", "must equal price - wholesale price (%s), got %s", want, p.Profit)
	}
	return nil
}

// Normalize cleans text fields.
func (c *Customer) Normalize() {
	c.ID = clean(c.ID)
	c.Name = clean(c.Name)
	c.Phone = clean(c.Phone)
	c.Email = strings.TrimSpace(c.Email)
	c.Address = strings.TrimSpace(c.Address)
}

func (c Customer) Validate() error {
	if err := checkStruct("customer", c); err != nil {
		return err
	}
	return nonNegative("customer", "TotalSpent", c.TotalSpent)
}

// NewSaleItem snapshots a product into a cart line. Line profit is derived
// from the product's cached unit profit.
func NewSaleItem(p Product, quantity int64) (SaleItem, error) {
	qty := decimal.NewFromInt(quantity)
	it := SaleItem{
		ProductID:   p.ID,
		ProductName: p.Name,
		Quantity:    quantity,
		Price:       p.Price,
		Total:       p.Price.Mul(qty),
		Profit:      p.Profit.Mul(qty),
	}
	return it, it.Validate()
}

func (it SaleItem) Validate() error {
	if err := checkStruct("sale item", it); err != nil {
		return err
	}
	if err := nonNegative("sale item", "Price", it.Price); err != nil {
		return err
	}
	if want := it.Price.Mul(decimal.NewFromInt(it.Quantity)); !it.Total.Equal(want) {
		return invalid("sale item", "Total", "must equal price * quantity (%s), got %s", want, it.Total)
	}
	return nil
}

// NewSaleInput assembles a sale from cart lines. Subtotal is the sum of the
// line totals, Total is Subtotal + tax - discount and Change is what is owed
// back from amountReceived.
func NewSaleInput(items []SaleItem, tax, discount decimal.Decimal, method PaymentMethod, amountReceived decimal.Decimal) (SaleInput, error) {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Total)
	}
	total := subtotal.Add(tax).Sub(discount)
	in := SaleInput{
		Items:          items,
		Subtotal:       subtotal,
		Tax:            tax,
		Discount:       discount,
		Total:          total,
		PaymentMethod:  method,
		AmountReceived: amountReceived,
		Change:         amountReceived.Sub(total),
	}
	return in, in.Validate()
}

// Normalize cleans text fields.
func (in *SaleInput) Normalize() {
	in.CustomerID = clean(in.CustomerID)
	in.PaymentReference = strings.TrimSpace(in.PaymentReference)
	in.CashierName = strings.TrimSpace(in.CashierName)
	in.Notes = strings.TrimSpace(in.Notes)
}

// Validate enforces the ledger invariants:
//   - total = subtotal + tax - discount, and not negative
//   - change = amount received - total
//   - every line total = unit price * quantity
//   - mobile money needs a reference, cash must cover the total
func (in SaleInput) Validate() error {
	if err := checkStruct("sale", in); err != nil {
		return err
	}
	for i, it := range in.Items {
		if err := it.Validate(); err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				return invalid("sale", fmt.Sprintf("Items[%d].%s", i, ve.Field), "%s", ve.Message)
			}
			return err
		}
	}
	amounts := []struct {
		field string
		d     decimal.Decimal
	}{
		{"Subtotal", in.Subtotal},
		{"Tax", in.Tax},
		{"Discount", in.Discount},
		{"AmountReceived", in.AmountReceived},
	}
	for _, a := range amounts {
		if err := nonNegative("sale", a.field, a.d); err != nil {
			return err
		}
	}
	if want := in.Subtotal.Add(in.Tax).Sub(in.Discount); !in.Total.Equal(want) {
		return invalid("sale", "Total", "must equal subtotal + tax - discount (%s), got %s", want, in.Total)
	}
	if in.Total.IsNegative() {
		return invalid("sale", "Discount", "exceeds subtotal + tax (total %s)", in.Total)
	}
	if want := in.AmountReceived.Sub(in.Total); !in.Change.Equal(want) {
		return invalid("sale", "Change", "must equal amount received - total (%s), got %s", want, in.Change)
	}
	switch in.PaymentMethod {
	case PaymentMobileMoney:
		if in.PaymentReference == "" {
			return invalid("sale", "PaymentReference", "is required for mobile money")
		}
	case PaymentCash:
		if in.AmountReceived.LessThan(in.Total) {
			return invalid("sale", "AmountReceived", "does not cover total %s", in.Total)
		}
	}
	return nil
}

// Normalize cleans text fields.
func (u *User) Normalize() {
	u.ID = clean(u.ID)
	u.Username = clean(u.Username)
}

func (u User) Validate() error {
	return checkStruct("user", u)
}
