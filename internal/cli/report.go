package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/boutique/internal/report"
)

// ReportOptions holds flags for the report command.
type ReportOptions struct {
	*RootOptions
	From         string
	To           string
	TopProducts  int
	TopCustomers int
	LowStock     int64
}

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarise sales over a date range",
		Long: `Summarise the sales between --from and --to (whole days, configured
timezone): revenue, transactions, average sale, tax, discounts, profit,
payment split, daily totals, best-selling products and top customers.
Current stock is appended: products below --low-stock units and units per
category.

Without dates the last 30 days up to today are reported.

Examples:
  boutique report
  boutique report --from 2025-03-01 --to 2025-03-31 --top-products 5
  boutique report --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.From, "from", "", "first day, YYYY-MM-DD (default: 30 days ago)")
	cmd.Flags().StringVar(&opts.To, "to", "", "last day, YYYY-MM-DD (default: today)")
	cmd.Flags().IntVar(&opts.TopProducts, "top-products", report.DefaultTopProducts, "number of products to rank")
	cmd.Flags().IntVar(&opts.TopCustomers, "top-customers", report.DefaultTopCustomers, "number of customers to rank")
	cmd.Flags().Int64Var(&opts.LowStock, "low-stock", report.DefaultLowStock, "flag products with fewer units than this")

	return cmd
}

func runReport(opts *ReportOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	f := opts.formatter(cmd)

	loc, err := opts.Config.Location()
	if err != nil {
		return fail(f, ExitCommandError, "invalid config", err)
	}

	today := time.Now().In(loc)
	from, to := opts.From, opts.To
	if to == "" {
		to = today.Format(time.DateOnly)
	}
	if from == "" {
		from = today.AddDate(0, 0, -30).Format(time.DateOnly)
	}
	start, end, err := report.DayRange(from, to, loc)
	if err != nil {
		return fail(f, ExitCommandError, "invalid input", err)
	}

	st, err := opts.openStore(ctx, f)
	if err != nil {
		return err
	}
	defer st.Close()

	sum, err := report.Build(ctx, st, start, end, report.Options{
		TopProducts:  opts.TopProducts,
		TopCustomers: opts.TopCustomers,
		Location:     loc,
		LowStock:     opts.LowStock,
	})
	if err != nil {
		return fail(f, ExitCommandError, "failed to build report", err)
	}

	if opts.Format == "json" {
		return f.Success(sum)
	}
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, opts.Config.StoreName)
	if err := sum.WriteText(w, opts.Config.Currency); err != nil {
		return fail(f, ExitCommandError, "failed to write report", err)
	}
	return nil
}
