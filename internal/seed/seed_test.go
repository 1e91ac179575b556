package seed

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/roach88/boutique/internal/record"
	"github.com/roach88/boutique/internal/store"
	"github.com/roach88/boutique/internal/testutil"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "seed.db"),
		store.WithClock(testutil.NewDeterministicClock().Now),
		store.WithPasswordCost(bcrypt.MinCost),
	)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestParse_DemoData(t *testing.T) {
	f, err := Parse(DemoData)
	require.NoError(t, err)

	assert.Len(t, f.Users, 2)
	assert.Len(t, f.Products, 8)
	assert.Len(t, f.Customers, 3)
	assert.Equal(t, record.RoleAdmin, f.Users[0].Role)
	assert.True(t, decimal.RequireFromString("45.99").Equal(f.Products[0].Price))
	assert.Equal(t, int64(150), f.Products[0].Quantity)
	assert.Equal(t, "+254712345678", f.Customers[0].Phone)
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		file string
	}{
		{"bad_role.yaml"},
		{"unknown_field.yaml"},
		{"fractional_stock.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			_, err := Load(filepath.Join("testdata", tt.file))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSchema)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "nope.yaml"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSchema)
}

func TestParse_Empty(t *testing.T) {
	f, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, f.Users)
	assert.Empty(t, f.Products)
}

func TestParse_WholesaleAbovePrice(t *testing.T) {
	_, err := Parse([]byte(`
products:
  - name: Tub
    sku: TUB
    category: Bath
    price: 10
    wholesale_price: 12
    quantity: 1
`))
	assert.ErrorIs(t, err, ErrSchema)
}

func TestApply_DemoData(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	f, err := Parse(DemoData)
	require.NoError(t, err)

	res, err := Apply(ctx, s, f)
	require.NoError(t, err)
	assert.Equal(t, Count{Added: 2}, res.Users)
	assert.Equal(t, Count{Added: 8}, res.Products)
	assert.Equal(t, Count{Added: 3}, res.Customers)

	p, found, err := s.GetProductBySKU(ctx, "DIAPER-M-001")
	require.NoError(t, err)
	require.True(t, found)
	assert.Regexp(t, `^PROD-[0-9a-f-]{36}$`, p.ID)
	assert.True(t, decimal.RequireFromString("15.99").Equal(p.Profit), "profit %s", p.Profit)

	u, err := s.Authenticate(ctx, "cashier", "cashier123")
	require.NoError(t, err)
	assert.Equal(t, record.RoleCashier, u.Role)
	assert.Regexp(t, `^USER-`, u.ID)

	c, found, err := s.GetCustomerByPhone(ctx, "+254722345678")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Mary Johnson", c.Name)
	assert.True(t, c.TotalSpent.IsZero())
}

func TestApply_TwiceSkipsExisting(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	f, err := Load(filepath.Join("testdata", "small.yaml"))
	require.NoError(t, err)

	_, err = Apply(ctx, s, f)
	require.NoError(t, err)

	res, err := Apply(ctx, s, f)
	require.NoError(t, err)
	assert.Equal(t, Result{
		Users:     Count{Skipped: 1},
		Products:  Count{Skipped: 1},
		Customers: Count{Skipped: 1},
	}, res)

	products, err := s.GetProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "PROD-fixed-1", products[0].ID)
}

func TestApply_StopsOnInvalidRecord(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	// Passes the schema, fails the record validator: profit disagrees with
	// the prices.
	f := &File{Products: []Product{{
		Name:           "Tub",
		SKU:            "TUB",
		Category:       "Bath",
		Price:          decimal.NewFromInt(10),
		WholesalePrice: decimal.NewFromInt(6),
		Profit:         decimal.NewFromInt(5),
		Quantity:       1,
	}}}
	_, err := Apply(ctx, s, f)
	require.Error(t, err)
	assert.ErrorIs(t, err, record.ErrInvalid)
	assert.Contains(t, err.Error(), `seed product "TUB"`)
}

type failingTarget struct{ err error }

func (f failingTarget) AddUser(context.Context, record.User) error       { return f.err }
func (f failingTarget) AddProduct(context.Context, record.Product) error { return f.err }
func (f failingTarget) AddCustomer(context.Context, record.Customer) error {
	return f.err
}

func TestApply_PropagatesStoreErrors(t *testing.T) {
	f, err := Parse(DemoData)
	require.NoError(t, err)

	_, err = Apply(context.Background(), failingTarget{err: store.ErrConnectionUnavailable}, f)
	assert.True(t, errors.Is(err, store.ErrConnectionUnavailable))
}
