package report

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/roach88/boutique/internal/record"
)

// Default list lengths and the stock level below which a product is low.
const (
	DefaultTopProducts  = 10
	DefaultTopCustomers = 10
	DefaultLowStock     = 20
)

// Source is the read side of the store a report needs.
type Source interface {
	GetSalesByDateRange(ctx context.Context, start, end time.Time) ([]record.Sale, error)
	GetProducts(ctx context.Context) ([]record.Product, error)
	GetCustomers(ctx context.Context) ([]record.Customer, error)
}

// Options tunes Build. The zero value is usable.
type Options struct {
	TopProducts  int            // default DefaultTopProducts
	TopCustomers int            // default DefaultTopCustomers
	Location     *time.Location // day boundaries, default UTC
	LowStock     int64          // default DefaultLowStock
}

// Summary is a sales report for [Start, End].
type Summary struct {
	Start        time.Time       `json:"start"`
	End          time.Time       `json:"end"`
	Revenue      decimal.Decimal `json:"revenue"`
	Transactions int             `json:"transactions"`
	Average      decimal.Decimal `json:"average"`
	Tax          decimal.Decimal `json:"tax"`
	Discount     decimal.Decimal `json:"discount"`
	Profit       decimal.Decimal `json:"profit"`
	CashSales    int             `json:"cash_sales"`
	MobileSales  int             `json:"mobile_money_sales"`
	Daily        []Day           `json:"daily"`
	TopProducts  []ProductLine   `json:"top_products"`
	TopCustomers []CustomerLine  `json:"top_customers"`

	// Stock as it is now, not as of End.
	LowStockThreshold int64          `json:"low_stock_threshold"`
	LowStock          []StockLine    `json:"low_stock"`
	Categories        []CategoryLine `json:"categories"`
}

// Day is one calendar day with at least one sale.
type Day struct {
	Date         string          `json:"date"` // YYYY-MM-DD
	Revenue      decimal.Decimal `json:"revenue"`
	Transactions int             `json:"transactions"`
}

// ProductLine is a product ranked by units sold. SKU and Category are empty
// when the product has since been deleted; Name then comes from the sale
// snapshot.
type ProductLine struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku,omitempty"`
	Category  string          `json:"category,omitempty"`
	Units     int64           `json:"units"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// StockLine is a product whose stock is below the low-stock threshold.
type StockLine struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	SKU       string `json:"sku"`
	Quantity  int64  `json:"quantity"`
}

// CategoryLine totals the catalog's stock in one category.
type CategoryLine struct {
	Category string `json:"category"`
	Products int    `json:"products"`
	Units    int64  `json:"units"`
}

// CustomerLine is a customer ranked by lifetime spend.
type CustomerLine struct {
	CustomerID string          `json:"customer_id"`
	Name       string          `json:"name"`
	Phone      string          `json:"phone"`
	TotalSpent decimal.Decimal `json:"total_spent"`
}

// Build reads the sales created within [start, end] and summarises them.
func Build(ctx context.Context, src Source, start, end time.Time, opts Options) (*Summary, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("build report: end %s is before start %s", end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	opts = opts.withDefaults()

	sales, err := src.GetSalesByDateRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("build report: %w", err)
	}
	products, err := src.GetProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("build report: %w", err)
	}
	customers, err := src.GetCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("build report: %w", err)
	}

	sum := &Summary{
		Start:        start.In(opts.Location),
		End:          end.In(opts.Location),
		Revenue:      decimal.Zero,
		Average:      decimal.Zero,
		Tax:          decimal.Zero,
		Discount:     decimal.Zero,
		Profit:       decimal.Zero,
		Transactions: len(sales),
	}
	for _, sale := range sales {
		sum.Revenue = sum.Revenue.Add(sale.Total)
		sum.Tax = sum.Tax.Add(sale.Tax)
		sum.Discount = sum.Discount.Add(sale.Discount)
		sum.Profit = sum.Profit.Add(sale.ItemProfit())
		switch sale.PaymentMethod {
		case record.PaymentCash:
			sum.CashSales++
		case record.PaymentMobileMoney:
			sum.MobileSales++
		}
	}
	if len(sales) > 0 {
		sum.Average = sum.Revenue.Div(decimal.NewFromInt(int64(len(sales)))).Round(2)
	}

	sum.Daily = daily(sales, opts.Location)
	sum.TopProducts = topProducts(sales, products, opts.TopProducts)
	sum.TopCustomers = topCustomers(customers, opts.TopCustomers)
	sum.LowStockThreshold = opts.LowStock
	sum.LowStock = lowStock(products, opts.LowStock)
	sum.Categories = categories(products)

	slog.Debug("report built",
		"start", sum.Start,
		"end", sum.End,
		"transactions", sum.Transactions,
		"revenue", sum.Revenue.StringFixed(2),
	)
	return sum, nil
}

func (o Options) withDefaults() Options {
	if o.TopProducts <= 0 {
		o.TopProducts = DefaultTopProducts
	}
	if o.TopCustomers <= 0 {
		o.TopCustomers = DefaultTopCustomers
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.LowStock <= 0 {
		o.LowStock = DefaultLowStock
	}
	return o
}

func daily(sales []record.Sale, loc *time.Location) []Day {
	byDate := make(map[string]*Day)
	for _, sale := range sales {
		date := sale.CreatedAt.In(loc).Format(time.DateOnly)
		d, ok := byDate[date]
		if !ok {
			d = &Day{Date: date, Revenue: decimal.Zero}
			byDate[date] = d
		}
		d.Revenue = d.Revenue.Add(sale.Total)
		d.Transactions++
	}

	days := make([]Day, 0, len(byDate))
	for _, d := range byDate {
		days = append(days, *d)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date < days[j].Date
	})
	return days
}

func topProducts(sales []record.Sale, products []record.Product, limit int) []ProductLine {
	catalog := make(map[string]record.Product, len(products))
	for _, p := range products {
		catalog[p.ID] = p
	}

	lines := make(map[string]*ProductLine)
	for _, sale := range sales {
		for _, it := range sale.Items {
			l, ok := lines[it.ProductID]
			if !ok {
				l = &ProductLine{ProductID: it.ProductID, Name: it.ProductName, Revenue: decimal.Zero}
				if p, ok := catalog[it.ProductID]; ok {
					l.Name, l.SKU, l.Category = p.Name, p.SKU, p.Category
				}
				lines[it.ProductID] = l
			}
			l.Units += it.Quantity
			l.Revenue = l.Revenue.Add(it.Total)
		}
	}

	ranked := make([]ProductLine, 0, len(lines))
	for _, l := range lines {
		if l.Units > 0 {
			ranked = append(ranked, *l)
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Units != b.Units {
			return a.Units > b.Units
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ProductID < b.ProductID
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func topCustomers(customers []record.Customer, limit int) []CustomerLine {
	ranked := make([]CustomerLine, 0, len(customers))
	for _, c := range customers {
		ranked = append(ranked, CustomerLine{
			CustomerID: c.ID,
			Name:       c.Name,
			Phone:      c.Phone,
			TotalSpent: c.TotalSpent,
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if c := a.TotalSpent.Cmp(b.TotalSpent); c != 0 {
			return c > 0
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.CustomerID < b.CustomerID
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func lowStock(products []record.Product, threshold int64) []StockLine {
	lines := make([]StockLine, 0)
	for _, p := range products {
		if p.Quantity < threshold {
			lines = append(lines, StockLine{ProductID: p.ID, Name: p.Name, SKU: p.SKU, Quantity: p.Quantity})
		}
	}
	sort.Slice(lines, func(i, j int) bool {
		a, b := lines[i], lines[j]
		if a.Quantity != b.Quantity {
			return a.Quantity < b.Quantity
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ProductID < b.ProductID
	})
	return lines
}

func categories(products []record.Product) []CategoryLine {
	byName := make(map[string]*CategoryLine)
	for _, p := range products {
		c, ok := byName[p.Category]
		if !ok {
			c = &CategoryLine{Category: p.Category}
			byName[p.Category] = c
		}
		c.Products++
		c.Units += p.Quantity
	}

	lines := make([]CategoryLine, 0, len(byName))
	for _, c := range byName {
		lines = append(lines, *c)
	}
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].Category < lines[j].Category
	})
	return lines
}

// DayRange turns two YYYY-MM-DD dates into an inclusive range covering
// both whole days in loc.
func DayRange(from, to string, loc *time.Location) (start, end time.Time, err error) {
	if loc == nil {
		loc = time.UTC
	}
	start, err = time.ParseInLocation(time.DateOnly, from, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse start date: %w", err)
	}
	last, err := time.ParseInLocation(time.DateOnly, to, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse end date: %w", err)
	}
	end = last.AddDate(0, 0, 1).Add(-time.Millisecond)
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date %s is before start date %s", to, from)
	}
	return start, end, nil
}
