package report

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultCurrency is the ISO 4217 code amounts are labelled with.
const DefaultCurrency = "GHS"

// WriteText renders the summary as a fixed-layout plain text report.
// currencyCode must be a valid ISO 4217 code; amounts are shown with two
// decimals and English digit grouping.
func (s *Summary) WriteText(w io.Writer, currencyCode string) error {
	if currencyCode == "" {
		currencyCode = DefaultCurrency
	}
	unit, err := currency.ParseISO(strings.ToUpper(currencyCode))
	if err != nil {
		return fmt.Errorf("write report: currency %q: %w", currencyCode, err)
	}

	p := message.NewPrinter(language.English)
	money := func(d decimal.Decimal) string {
		return unit.String() + " " + formatAmount(p, d)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Sales report %s to %s\n\n",
		s.Start.Format("2006-01-02"), s.End.Format("2006-01-02"))

	field := func(label, value string) {
		fmt.Fprintf(bw, "%-16s %s\n", label, value)
	}
	field("Revenue", money(s.Revenue))
	field("Transactions", fmt.Sprint(s.Transactions))
	field("Average sale", money(s.Average))
	field("Tax collected", money(s.Tax))
	field("Discounts", money(s.Discount))
	field("Profit", money(s.Profit))
	field("Cash sales", fmt.Sprint(s.CashSales))
	field("Mobile money", fmt.Sprint(s.MobileSales))

	fmt.Fprintf(bw, "\nDaily sales\n")
	if len(s.Daily) == 0 {
		fmt.Fprintf(bw, "  (none)\n")
	}
	for _, d := range s.Daily {
		fmt.Fprintf(bw, "  %s  %s  %d\n", d.Date, money(d.Revenue), d.Transactions)
	}

	fmt.Fprintf(bw, "\nTop products\n")
	if len(s.TopProducts) == 0 {
		fmt.Fprintf(bw, "  (none)\n")
	}
	for i, l := range s.TopProducts {
		sku := l.SKU
		if sku == "" {
			sku = "-"
		}
		fmt.Fprintf(bw, "  %2d. %s [%s]  %d units  %s\n", i+1, l.Name, sku, l.Units, money(l.Revenue))
	}

	fmt.Fprintf(bw, "\nTop customers\n")
	if len(s.TopCustomers) == 0 {
		fmt.Fprintf(bw, "  (none)\n")
	}
	for i, c := range s.TopCustomers {
		fmt.Fprintf(bw, "  %2d. %s (%s)  %s\n", i+1, c.Name, c.Phone, money(c.TotalSpent))
	}

	fmt.Fprintf(bw, "\nLow stock (under %d)\n", s.LowStockThreshold)
	if len(s.LowStock) == 0 {
		fmt.Fprintf(bw, "  (none)\n")
	}
	for _, l := range s.LowStock {
		fmt.Fprintf(bw, "  %s [%s]  %d left\n", l.Name, l.SKU, l.Quantity)
	}

	fmt.Fprintf(bw, "\nStock by category\n")
	if len(s.Categories) == 0 {
		fmt.Fprintf(bw, "  (none)\n")
	}
	for _, c := range s.Categories {
		fmt.Fprintf(bw, "  %s  %d products  %d units\n", c.Category, c.Products, c.Units)
	}

	return bw.Flush()
}

// formatAmount renders d rounded to cents with English digit grouping. Only
// the whole part goes through the printer, as an integer, so the amount is
// never converted to a float.
func formatAmount(p *message.Printer, d decimal.Decimal) string {
	fixed := d.Abs().StringFixed(2)
	whole, cents, _ := strings.Cut(fixed, ".")
	sign := ""
	if d.Round(2).IsNegative() {
		sign = "-"
	}
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return sign + fixed
	}
	return sign + p.Sprint(number.Decimal(n)) + "." + cents
}
