package record

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how a sale was settled.
type PaymentMethod string

const (
	PaymentCash        PaymentMethod = "cash"
	PaymentMobileMoney PaymentMethod = "mobileMoney"
)

// Role is a user's permission level.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleCashier Role = "cashier"
)

// Product is a stock-keeping unit on the shop floor.
type Product struct {
	ID             string          `json:"id" validate:"required"`
	Name           string          `json:"name" validate:"required"`
	SKU            string          `json:"sku" validate:"required"`
	Category       string          `json:"category" validate:"required"`
	Price          decimal.Decimal `json:"price"`           // retail
	WholesalePrice decimal.Decimal `json:"wholesale_price"`
	Profit         decimal.Decimal `json:"profit"`          // cached Price - WholesalePrice
	Quantity       int64           `json:"quantity" validate:"gte=0"`
	Description    string          `json:"description,omitempty"`
	Image          string          `json:"image,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Customer is a registered shopper. TotalSpent only grows, and only when a
// sale referencing the customer is recorded.
type Customer struct {
	ID         string          `json:"id" validate:"required"`
	Name       string          `json:"name" validate:"required"`
	Phone      string          `json:"phone" validate:"required"`
	Email      string          `json:"email,omitempty" validate:"omitempty,email"`
	Address    string          `json:"address,omitempty"`
	TotalSpent decimal.Decimal `json:"total_spent"`
	CreatedAt  time.Time       `json:"created_at"`
}

// SaleItem is a copy of one cart line taken at the moment of sale.
type SaleItem struct {
	ProductID   string          `json:"product_id" validate:"required"`
	ProductName string          `json:"product_name" validate:"required"`
	Quantity    int64           `json:"quantity" validate:"gt=0"`
	Price       decimal.Decimal `json:"price"` // unit price
	Total       decimal.Decimal `json:"total"` // Price * Quantity
	Profit      decimal.Decimal `json:"profit"`
}

// SaleInput is everything a caller supplies when recording a sale. The store
// assigns the ID and CreatedAt.
type SaleInput struct {
	CustomerID       string          `json:"customer_id,omitempty"`
	Items            []SaleItem      `json:"items" validate:"required,min=1,dive"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	Tax              decimal.Decimal `json:"tax"`
	Discount         decimal.Decimal `json:"discount"`
	Total            decimal.Decimal `json:"total"`
	PaymentMethod    PaymentMethod   `json:"payment_method" validate:"required,oneof=cash mobileMoney"`
	PaymentReference string          `json:"payment_reference,omitempty"`
	AmountReceived   decimal.Decimal `json:"amount_received"`
	Change           decimal.Decimal `json:"change"`
	CashierName      string          `json:"cashier_name,omitempty"`
	Notes            string          `json:"notes,omitempty"`
}

// Sale is an immutable ledger entry.
type Sale struct {
	ID string `json:"id"`
	SaleInput
	CreatedAt time.Time `json:"created_at"`
}

// User is a till operator. Password holds a bcrypt hash once stored.
type User struct {
	ID        string    `json:"id" validate:"required"`
	Username  string    `json:"username" validate:"required"`
	Password  string    `json:"-" validate:"required"`
	Role      Role      `json:"role" validate:"required,oneof=admin cashier"`
	CreatedAt time.Time `json:"created_at"`
}

// UnitsOf returns how many units of productID the sale moved.
func (s Sale) UnitsOf(productID string) int64 {
	var n int64
	for _, it := range s.Items {
		if it.ProductID == productID {
			n += it.Quantity
		}
	}
	return n
}

// ItemProfit sums the per-line profit snapshots.
func (s Sale) ItemProfit() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range s.Items {
		sum = sum.Add(it.Profit)
	}
	return sum
}
