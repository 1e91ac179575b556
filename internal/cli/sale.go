package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/roach88/boutique/internal/record"
	"github.com/roach88/boutique/internal/report"
)

// SaleOptions holds flags for sale record.
type SaleOptions struct {
	*RootOptions
	Items     []string // PRODUCT_ID[:QTY]
	Customer  string
	Tax       string
	Discount  string
	Payment   string
	Reference string
	Received  string
	Cashier   string
	Notes     string
}

// NewSaleCommand creates the sale command group.
func NewSaleCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sale",
		Short: "Record and look up sales",
	}

	cmd.AddCommand(newSaleRecordCommand(rootOpts))
	cmd.AddCommand(newSaleListCommand(rootOpts))
	cmd.AddCommand(newSaleGetCommand(rootOpts))
	cmd.AddCommand(newSaleRangeCommand(rootOpts))

	return cmd
}

func newSaleRecordCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SaleOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Ring up a sale",
		Long: `Record a sale. Each --item copies the product's current name and price
into the sale; stock is decremented and the customer's spend increased in
the same transaction. Nothing is written if any part fails.

--received defaults to the sale total (exact change).

Exit codes:
  0 - Sale recorded
  1 - Sale rejected (invalid input, unknown product or customer)
  2 - Command error (database unavailable, etc.)

Examples:
  boutique sale record --item PROD-1:2 --item PROD-7 --received 100
  boutique sale record --item PROD-1 --customer CUST-3 \
    --payment mobileMoney --reference MM-778812`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSaleRecord(opts, cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Items, "item", nil, "line item PRODUCT_ID[:QTY], repeatable (required)")
	_ = cmd.MarkFlagRequired("item")
	cmd.Flags().StringVar(&opts.Customer, "customer", "", "customer id")
	cmd.Flags().StringVar(&opts.Tax, "tax", "0", "tax amount")
	cmd.Flags().StringVar(&opts.Discount, "discount", "0", "discount amount")
	cmd.Flags().StringVar(&opts.Payment, "payment", string(record.PaymentCash), "payment method (cash|mobileMoney)")
	cmd.Flags().StringVar(&opts.Reference, "reference", "", "mobile money reference")
	cmd.Flags().StringVar(&opts.Received, "received", "", "amount received (default: total)")
	cmd.Flags().StringVar(&opts.Cashier, "cashier", "", "cashier name")
	cmd.Flags().StringVar(&opts.Notes, "notes", "", "free-text notes")

	return cmd
}

func runSaleRecord(opts *SaleOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	f := opts.formatter(cmd)

	tax, err := parseMoney("tax", opts.Tax)
	if err != nil {
		return fail(f, ExitCommandError, "invalid input", err)
	}
	discount, err := parseMoney("discount", opts.Discount)
	if err != nil {
		return fail(f, ExitCommandError, "invalid input", err)
	}

	st, err := opts.openStore(ctx, f)
	if err != nil {
		return err
	}
	defer st.Close()

	items := make([]record.SaleItem, 0, len(opts.Items))
	for _, raw := range opts.Items {
		productID, qty, err := parseLine(raw)
		if err != nil {
			return fail(f, ExitCommandError, "invalid input", err)
		}
		p, found, err := st.GetProduct(ctx, productID)
		if err != nil {
			return fail(f, ExitCommandError, "failed to read product", err)
		}
		if !found {
			return notFound(f, "product", productID)
		}
		if p.Quantity < qty {
			f.VerboseLog("Only %d of %s in stock, selling %d", p.Quantity, p.SKU, qty)
		}
		it, err := record.NewSaleItem(p, qty)
		if err != nil {
			return fail(f, ExitFailure, "invalid sale item", err)
		}
		items = append(items, it)
	}

	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Total)
	}
	total := subtotal.Add(tax).Sub(discount)

	// Exact change unless told otherwise.
	received := total
	if cmd.Flags().Changed("received") {
		if received, err = parseMoney("received", opts.Received); err != nil {
			return fail(f, ExitCommandError, "invalid input", err)
		}
	}

	in := record.SaleInput{
		CustomerID:       opts.Customer,
		Items:            items,
		Subtotal:         subtotal,
		Tax:              tax,
		Discount:         discount,
		Total:            total,
		PaymentMethod:    record.PaymentMethod(opts.Payment),
		PaymentReference: opts.Reference,
		AmountReceived:   received,
		Change:           received.Sub(total),
		CashierName:      opts.Cashier,
		Notes:            opts.Notes,
	}

	id, err := st.RecordSale(ctx, in)
	if err != nil {
		return fail(f, ExitFailure, "failed to record sale", err)
	}

	sale, _, err := st.GetSale(ctx, id)
	if err != nil {
		return fail(f, ExitCommandError, "failed to read sale", err)
	}
	return outputSale(opts.RootOptions, cmd, sale)
}

func newSaleListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List every sale",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f := rootOpts.formatter(cmd)

			st, err := rootOpts.openStore(ctx, f)
			if err != nil {
				return err
			}
			defer st.Close()

			sales, err := st.GetSales(ctx)
			if err != nil {
				return fail(f, ExitCommandError, "failed to list sales", err)
			}
			if rootOpts.Format == "json" {
				return f.Success(sales)
			}
			writeSaleTable(cmd.OutOrStdout(), sales)
			return nil
		},
	}
}

func newSaleGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "get <id>",
		Short:         "Show one sale with its items",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f := rootOpts.formatter(cmd)

			st, err := rootOpts.openStore(ctx, f)
			if err != nil {
				return err
			}
			defer st.Close()

			sale, found, err := st.GetSale(ctx, args[0])
			if err != nil {
				return fail(f, ExitCommandError, "failed to read sale", err)
			}
			if !found {
				return notFound(f, "sale", args[0])
			}
			return outputSale(rootOpts, cmd, sale)
		},
	}
}

func newSaleRangeCommand(rootOpts *RootOptions) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "range",
		Short: "List sales between two dates",
		Long: `List the sales created between --from and --to, both whole days
included, in the configured timezone.

Examples:
  boutique sale range --from 2025-03-01 --to 2025-03-31`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f := rootOpts.formatter(cmd)

			loc, err := rootOpts.Config.Location()
			if err != nil {
				return fail(f, ExitCommandError, "invalid config", err)
			}
			start, end, err := report.DayRange(from, to, loc)
			if err != nil {
				return fail(f, ExitCommandError, "invalid input", err)
			}

			st, err := rootOpts.openStore(ctx, f)
			if err != nil {
				return err
			}
			defer st.Close()

			sales, err := st.GetSalesByDateRange(ctx, start, end)
			if err != nil {
				return fail(f, ExitCommandError, "failed to list sales", err)
			}
			if rootOpts.Format == "json" {
				return f.Success(sales)
			}
			writeSaleTable(cmd.OutOrStdout(), sales)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first day, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&to, "to", "", "last day, YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func outputSale(opts *RootOptions, cmd *cobra.Command, sale record.Sale) error {
	if opts.Format == "json" {
		return opts.formatter(cmd).Success(sale)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Sale %s  %s\n", sale.ID, sale.CreatedAt.Format(timeLayout))
	if sale.CustomerID != "" {
		fmt.Fprintf(w, "  Customer: %s\n", sale.CustomerID)
	}
	for _, it := range sale.Items {
		fmt.Fprintf(w, "  %3d x %-28s %10s %10s\n",
			it.Quantity, truncate(it.ProductName, 28), it.Price.StringFixed(2), it.Total.StringFixed(2))
	}
	fmt.Fprintf(w, "  Subtotal: %s\n", sale.Subtotal.StringFixed(2))
	fmt.Fprintf(w, "  Tax:      %s\n", sale.Tax.StringFixed(2))
	fmt.Fprintf(w, "  Discount: %s\n", sale.Discount.StringFixed(2))
	fmt.Fprintf(w, "  Total:    %s\n", sale.Total.StringFixed(2))
	fmt.Fprintf(w, "  Paid:     %s by %s", sale.AmountReceived.StringFixed(2), sale.PaymentMethod)
	if sale.PaymentReference != "" {
		fmt.Fprintf(w, " (%s)", sale.PaymentReference)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Change:   %s\n", sale.Change.StringFixed(2))
	if sale.CashierName != "" {
		fmt.Fprintf(w, "  Cashier:  %s\n", sale.CashierName)
	}
	if sale.Notes != "" {
		fmt.Fprintf(w, "  Notes:    %s\n", sale.Notes)
	}
	return nil
}

func writeSaleTable(w io.Writer, sales []record.Sale) {
	if len(sales) == 0 {
		fmt.Fprintln(w, "No sales.")
		return
	}
	fmt.Fprintf(w, "%-20s %-44s %5s %12s %-11s\n", "DATE", "ID", "ITEMS", "TOTAL", "PAYMENT")
	for _, s := range sales {
		fmt.Fprintf(w, "%-20s %-44s %5d %12s %-11s\n",
			s.CreatedAt.Format(time.DateTime), truncate(s.ID, 44), len(s.Items),
			s.Total.StringFixed(2), s.PaymentMethod)
	}
}
