package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/roach88/boutique/internal/record"
	"github.com/roach88/boutique/internal/testutil"
)

// createTestStore opens a fresh store in a temp dir with a stepping clock and
// sequential sale ids.
func createTestStore(t *testing.T) (*Store, *testutil.DeterministicClock) {
	t.Helper()
	clock := testutil.NewDeterministicClock()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(context.Background(), path,
		WithClock(clock.Now),
		WithIDGenerator(testutil.NewSequentialIDs("")),
		WithPasswordCost(bcrypt.MinCost),
	)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, clock
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, dec(want).Equal(got), "got %s, want %s", got, want)
}

// createTestProduct creates a product with profit derived from the prices.
func createTestProduct(id, sku string, price string, quantity int64) record.Product {
	return record.Product{
		ID:             id,
		Name:           "Product " + sku,
		SKU:            sku,
		Category:       "Baby Clothing",
		Price:          dec(price),
		WholesalePrice: dec(price).Div(decimal.NewFromInt(2)),
		Quantity:       quantity,
	}
}

// createTestCustomer creates a customer with no spend.
func createTestCustomer(id, phone string) record.Customer {
	return record.Customer{ID: id, Name: "Customer " + phone, Phone: phone}
}

// line builds a valid sale item for a product id.
func line(productID string, quantity int64, unit string) record.SaleItem {
	return record.SaleItem{
		ProductID:   productID,
		ProductName: "Product " + productID,
		Quantity:    quantity,
		Price:       dec(unit),
		Total:       dec(unit).Mul(decimal.NewFromInt(quantity)),
	}
}

// cashSale builds an exact-change cash sale with no tax or discount.
func cashSale(customerID string, items ...record.SaleItem) record.SaleInput {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Total)
	}
	return record.SaleInput{
		CustomerID:     customerID,
		Items:          items,
		Subtotal:       subtotal,
		Total:          subtotal,
		PaymentMethod:  record.PaymentCash,
		AmountReceived: subtotal,
	}
}

// snapshot captures every collection so a failed unit of work can be checked
// against the state before it ran.
type snapshot struct {
	Products  []record.Product
	Customers []record.Customer
	Sales     []record.Sale
}

func takeSnapshot(t *testing.T, s *Store) snapshot {
	t.Helper()
	ctx := context.Background()
	products, err := s.GetProducts(ctx)
	require.NoError(t, err)
	customers, err := s.GetCustomers(ctx)
	require.NoError(t, err)
	sales, err := s.GetSales(ctx)
	require.NoError(t, err)
	return snapshot{Products: products, Customers: customers, Sales: sales}
}
