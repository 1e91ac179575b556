package report

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/boutique/internal/record"
	"github.com/roach88/boutique/internal/store"
	"github.com/roach88/boutique/internal/testutil"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// memSource is an in-memory Source.
type memSource struct {
	sales     []record.Sale
	products  []record.Product
	customers []record.Customer
	err       error
}

func (m *memSource) GetSalesByDateRange(_ context.Context, start, end time.Time) ([]record.Sale, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []record.Sale
	for _, s := range m.sales {
		if !s.CreatedAt.Before(start) && !s.CreatedAt.After(end) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memSource) GetProducts(context.Context) ([]record.Product, error) {
	return m.products, nil
}

func (m *memSource) GetCustomers(context.Context) ([]record.Customer, error) {
	return m.customers, nil
}

func item(id, name string, qty int64, unit, profit string) record.SaleItem {
	return record.SaleItem{
		ProductID:   id,
		ProductName: name,
		Quantity:    qty,
		Price:       dec(unit),
		Total:       dec(unit).Mul(decimal.NewFromInt(qty)),
		Profit:      dec(profit),
	}
}

func at(day, hour, min int) time.Time {
	return time.Date(2025, time.March, day, hour, min, 0, 0, time.UTC)
}

func shopSource() *memSource {
	return &memSource{
		products: []record.Product{
			{ID: "P1", Name: "Baby Onesie", SKU: "ONE-01", Category: "Baby Clothing", Quantity: 35},
			{ID: "P2", Name: "Feeding Bottle", SKU: "BOT-02", Category: "Feeding", Quantity: 12},
			{ID: "P3", Name: "Stroller", SKU: "STR-03", Category: "Gear", Quantity: 3},
			{ID: "P4", Name: "Baby Socks", SKU: "SOC-04", Category: "Baby Clothing", Quantity: 20},
		},
		customers: []record.Customer{
			{ID: "C3", Name: "Esi Owusu", Phone: "0243333333", TotalSpent: dec("0")},
			{ID: "C1", Name: "Ama Mensah", Phone: "0241111111", TotalSpent: dec("1250.00")},
			{ID: "C2", Name: "Kofi Boateng", Phone: "0242222222", TotalSpent: dec("80.5")},
		},
		sales: []record.Sale{
			{
				ID: "SALE-0", CreatedAt: at(2, 23, 59).Add(24 * time.Hour),
				SaleInput: record.SaleInput{Total: dec("999"), PaymentMethod: record.PaymentCash},
			},
			{
				ID: "SALE-1", CreatedAt: at(1, 10, 0),
				SaleInput: record.SaleInput{
					Items: []record.SaleItem{
						item("P1", "Baby Onesie", 2, "45", "40"),
						item("P2", "Feeding Bottle", 1, "25", "10"),
					},
					Subtotal: dec("115"), Tax: dec("5.75"), Discount: dec("0"), Total: dec("120.75"),
					PaymentMethod: record.PaymentCash,
				},
			},
			{
				ID: "SALE-2", CreatedAt: at(1, 15, 30),
				SaleInput: record.SaleInput{
					Items:    []record.SaleItem{item("P2", "Feeding Bottle", 4, "25", "40")},
					Subtotal: dec("100"), Tax: dec("5"), Discount: dec("10"), Total: dec("95"),
					PaymentMethod: record.PaymentMobileMoney, PaymentReference: "MM-1",
				},
			},
			{
				ID: "SALE-3", CreatedAt: at(2, 11, 0),
				SaleInput: record.SaleInput{
					Items: []record.SaleItem{
						item("P1", "Baby Onesie", 1, "45", "20"),
						item("P9", "Sun Hat", 3, "350", "450"),
					},
					Subtotal: dec("1095"), Tax: dec("54.75"), Discount: dec("0"), Total: dec("1149.75"),
					PaymentMethod: record.PaymentCash,
				},
			},
		},
	}
}

func TestBuild(t *testing.T) {
	start, end, err := DayRange("2025-03-01", "2025-03-02", nil)
	require.NoError(t, err)

	sum, err := Build(context.Background(), shopSource(), start, end, Options{})
	require.NoError(t, err)

	assert.Equal(t, 3, sum.Transactions)
	assert.True(t, dec("1365.50").Equal(sum.Revenue), "revenue %s", sum.Revenue)
	assert.True(t, dec("455.17").Equal(sum.Average), "average %s", sum.Average)
	assert.True(t, dec("65.50").Equal(sum.Tax), "tax %s", sum.Tax)
	assert.True(t, dec("10").Equal(sum.Discount), "discount %s", sum.Discount)
	assert.True(t, dec("560").Equal(sum.Profit), "profit %s", sum.Profit)
	assert.Equal(t, 2, sum.CashSales)
	assert.Equal(t, 1, sum.MobileSales)

	require.Len(t, sum.Daily, 2)
	assert.Equal(t, "2025-03-01", sum.Daily[0].Date)
	assert.Equal(t, 2, sum.Daily[0].Transactions)
	assert.True(t, dec("215.75").Equal(sum.Daily[0].Revenue))
	assert.Equal(t, "2025-03-02", sum.Daily[1].Date)

	require.Len(t, sum.TopProducts, 3)
	assert.Equal(t, "P2", sum.TopProducts[0].ProductID)
	assert.Equal(t, int64(5), sum.TopProducts[0].Units)
	assert.Equal(t, "Baby Onesie", sum.TopProducts[1].Name)
	assert.Equal(t, "Sun Hat", sum.TopProducts[2].Name)
	assert.Empty(t, sum.TopProducts[2].SKU, "deleted product has no catalog entry")

	require.Len(t, sum.TopCustomers, 3)
	assert.Equal(t, "C1", sum.TopCustomers[0].CustomerID)
	assert.Equal(t, "C3", sum.TopCustomers[2].CustomerID)
}

func TestBuild_LowStock(t *testing.T) {
	start, end, err := DayRange("2025-03-01", "2025-03-02", nil)
	require.NoError(t, err)

	sum, err := Build(context.Background(), shopSource(), start, end, Options{})
	require.NoError(t, err)
	assert.Equal(t, int64(DefaultLowStock), sum.LowStockThreshold)
	require.Len(t, sum.LowStock, 2, "a product at exactly the threshold is not low")
	assert.Equal(t, "P3", sum.LowStock[0].ProductID)
	assert.Equal(t, int64(3), sum.LowStock[0].Quantity)
	assert.Equal(t, "P2", sum.LowStock[1].ProductID)

	sum, err = Build(context.Background(), shopSource(), start, end, Options{LowStock: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(5), sum.LowStockThreshold)
	require.Len(t, sum.LowStock, 1)
	assert.Equal(t, "STR-03", sum.LowStock[0].SKU)

	sum, err = Build(context.Background(), &memSource{}, start, end, Options{})
	require.NoError(t, err)
	assert.NotNil(t, sum.LowStock)
	assert.Empty(t, sum.LowStock)
}

func TestBuild_Categories(t *testing.T) {
	start, end, err := DayRange("2025-03-01", "2025-03-02", nil)
	require.NoError(t, err)

	sum, err := Build(context.Background(), shopSource(), start, end, Options{})
	require.NoError(t, err)
	assert.Equal(t, []CategoryLine{
		{Category: "Baby Clothing", Products: 2, Units: 55},
		{Category: "Feeding", Products: 1, Units: 12},
		{Category: "Gear", Products: 1, Units: 3},
	}, sum.Categories)
}

func TestFormatAmount(t *testing.T) {
	p := message.NewPrinter(language.English)
	tests := []struct {
		in, want string
	}{
		{"0", "0.00"},
		{"7.5", "7.50"},
		{"1365.5", "1,365.50"},
		{"-1250.004", "-1,250.00"},
		{"-0.001", "0.00"},
		{"12.345", "12.35"},
		// Exact beyond float64 precision.
		{"98765432109876543.21", "98,765,432,109,876,543.21"},
		// Beyond int64 the grouping is dropped, not the digits.
		{"123456789012345678901.99", "123456789012345678901.99"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, formatAmount(p, dec(tt.in)))
		})
	}
}

func TestBuild_Limits(t *testing.T) {
	start, end, err := DayRange("2025-03-01", "2025-03-31", nil)
	require.NoError(t, err)

	sum, err := Build(context.Background(), shopSource(), start, end, Options{TopProducts: 1, TopCustomers: 2})
	require.NoError(t, err)
	assert.Len(t, sum.TopProducts, 1)
	assert.Len(t, sum.TopCustomers, 2)
	assert.Equal(t, 4, sum.Transactions)
}

func TestBuild_DayBoundariesFollowLocation(t *testing.T) {
	// UTC+1: the 23:59 UTC sale on the 3rd lands on the 4th locally.
	loc := time.FixedZone("WAT", 60*60)
	start, end, err := DayRange("2025-03-04", "2025-03-04", loc)
	require.NoError(t, err)

	sum, err := Build(context.Background(), shopSource(), start, end, Options{Location: loc})
	require.NoError(t, err)
	require.Len(t, sum.Daily, 1)
	assert.Equal(t, "2025-03-04", sum.Daily[0].Date)
}

func TestBuild_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := Build(ctx, shopSource(), at(2, 0, 0), at(1, 0, 0), Options{})
	assert.Error(t, err)

	boom := errors.New("boom")
	_, err = Build(ctx, &memSource{err: boom}, at(1, 0, 0), at(2, 0, 0), Options{})
	assert.ErrorIs(t, err, boom)
}

func TestDayRange(t *testing.T) {
	start, end, err := DayRange("2025-03-01", "2025-03-01", nil)
	require.NoError(t, err)
	assert.Equal(t, at(1, 0, 0), start)
	assert.Equal(t, at(2, 0, 0).Add(-time.Millisecond), end)

	_, _, err = DayRange("2025-03-02", "2025-03-01", nil)
	assert.Error(t, err)

	_, _, err = DayRange("March 1", "2025-03-01", nil)
	assert.Error(t, err)
}

func TestWriteText_Golden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	start, end, err := DayRange("2025-03-01", "2025-03-02", nil)
	require.NoError(t, err)
	sum, err := Build(context.Background(), shopSource(), start, end, Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, sum.WriteText(&buf, "ghs"))
	g.Assert(t, "sales_report", buf.Bytes())

	start, end, err = DayRange("2025-04-01", "2025-04-01", nil)
	require.NoError(t, err)
	empty, err := Build(context.Background(), &memSource{}, start, end, Options{})
	require.NoError(t, err)

	buf.Reset()
	require.NoError(t, empty.WriteText(&buf, ""))
	g.Assert(t, "empty_report", buf.Bytes())
}

func TestWriteText_RejectsUnknownCurrency(t *testing.T) {
	sum := &Summary{}
	err := sum.WriteText(&bytes.Buffer{}, "XYZQ")
	assert.Error(t, err)
}

func TestBuild_FromStore(t *testing.T) {
	ctx := context.Background()
	clock := testutil.NewDeterministicClockAt(at(1, 9, 0), time.Hour)
	s, err := store.Open(ctx, filepath.Join(t.TempDir(), "report.db"), store.WithClock(clock.Now))
	require.NoError(t, err)
	defer s.Close()

	p, err := record.NewProduct("PROD-1", "Baby Onesie", "ONE-01", "Baby Clothing", dec("45"), dec("25"), 10)
	require.NoError(t, err)
	require.NoError(t, s.AddProduct(ctx, p))
	require.NoError(t, s.AddCustomer(ctx, record.Customer{ID: "CUST-1", Name: "Ama Mensah", Phone: "0241111111"}))

	line, err := record.NewSaleItem(p, 2)
	require.NoError(t, err)
	in, err := record.NewSaleInput([]record.SaleItem{line}, dec("0"), dec("0"), record.PaymentCash, dec("100"))
	require.NoError(t, err)
	in.CustomerID = "CUST-1"
	_, err = s.RecordSale(ctx, in)
	require.NoError(t, err)

	start, end, err := DayRange("2025-03-01", "2025-03-01", nil)
	require.NoError(t, err)
	sum, err := Build(ctx, s, start, end, Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Transactions)
	assert.True(t, dec("90").Equal(sum.Revenue), "revenue %s", sum.Revenue)
	assert.True(t, dec("40").Equal(sum.Profit), "profit %s", sum.Profit)
	require.Len(t, sum.TopProducts, 1)
	assert.Equal(t, "ONE-01", sum.TopProducts[0].SKU)
	require.Len(t, sum.TopCustomers, 1)
	assert.True(t, dec("90").Equal(sum.TopCustomers[0].TotalSpent))
}
