package cli

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/roach88/boutique/internal/record"
	"github.com/roach88/boutique/internal/store"
)

// ProductOptions holds flags shared by product add and update.
type ProductOptions struct {
	*RootOptions
	ID          string
	Name        string
	SKU         string
	Category    string
	Price       string
	Wholesale   string
	Quantity    int64
	Description string
	Image       string
}

// NewProductCommand creates the product command group.
func NewProductCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "product",
		Short: "Manage the product catalogue",
	}

	cmd.AddCommand(newProductAddCommand(rootOpts))
	cmd.AddCommand(newProductListCommand(rootOpts))
	cmd.AddCommand(newProductGetCommand(rootOpts))
	cmd.AddCommand(newProductUpdateCommand(rootOpts))
	cmd.AddCommand(newProductDeleteCommand(rootOpts))
	cmd.AddCommand(newProductClearCommand(rootOpts))

	return cmd
}

func (o *ProductOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Name, "name", "", "product name")
	cmd.Flags().StringVar(&o.SKU, "sku", "", "stock keeping unit, unique")
	cmd.Flags().StringVar(&o.Category, "category", "", "category")
	cmd.Flags().StringVar(&o.Price, "price", "", "retail price")
	cmd.Flags().StringVar(&o.Wholesale, "wholesale", "", "wholesale price")
	cmd.Flags().Int64Var(&o.Quantity, "quantity", 0, "units in stock")
	cmd.Flags().StringVar(&o.Description, "description", "", "description")
	cmd.Flags().StringVar(&o.Image, "image", "", "image path or URL")
}

func newProductAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProductOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a product",
		Long: `Add a product. Profit is derived from the retail and wholesale prices.

Examples:
  boutique product add --name "Baby Wipes Bundle" --sku WIPES-001 \
    --category "Baby Hygiene & Bath" --price 12.99 --wholesale 8 --quantity 200`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProductAdd(opts, cmd)
		},
	}

	opts.bind(cmd)
	cmd.Flags().StringVar(&opts.ID, "id", "", "product id (generated if empty)")
	for _, name := range []string{"name", "sku", "category", "price"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func runProductAdd(opts *ProductOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	f := opts.formatter(cmd)

	price, err := parseMoney("price", opts.Price)
	if err != nil {
		return fail(f, ExitCommandError, "invalid input", err)
	}
	wholesale, err := parseMoney("wholesale", opts.Wholesale)
	if err != nil {
		return fail(f, ExitCommandError, "invalid input", err)
	}

	id := opts.ID
	if id == "" {
		id = store.NewID(store.PrefixProduct)
	}
	p := record.Product{
		ID:             id,
		Name:           opts.Name,
		SKU:            opts.SKU,
		Category:       opts.Category,
		Price:          price,
		WholesalePrice: wholesale,
		Quantity:       opts.Quantity,
		Description:    opts.Description,
		Image:          opts.Image,
	}

	st, err := opts.openStore(ctx, f)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.AddProduct(ctx, p); err != nil {
		return fail(f, ExitFailure, "failed to add product", err)
	}

	added, _, err := st.GetProduct(ctx, p.ID)
	if err != nil {
		return fail(f, ExitCommandError, "failed to read product", err)
	}
	return outputProduct(opts.RootOptions, cmd, added)
}

func newProductListCommand(rootOpts *RootOptions) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List products",
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

			var products []record.Product
			if category != "" {
				products, err = st.GetProductsByCategory(ctx, category)
			} else {
				products, err = st.GetProducts(ctx)
			}
			if err != nil {
				return fail(f, ExitCommandError, "failed to list products", err)
			}

			if rootOpts.Format == "json" {
				return f.Success(products)
			}
			writeProductTable(cmd.OutOrStdout(), products)
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "only list this category")
	return cmd
}

func newProductGetCommand(rootOpts *RootOptions) *cobra.Command {
	var bySKU bool

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one product",
		Long: `Show one product by id, or by SKU with --sku.

Examples:
  boutique product get PROD-0190f7a2-...
  boutique product get --sku WIPES-001`,
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

			var (
				p     record.Product
				found bool
			)
			if bySKU {
				p, found, err = st.GetProductBySKU(ctx, args[0])
			} else {
				p, found, err = st.GetProduct(ctx, args[0])
			}
			if err != nil {
				return fail(f, ExitCommandError, "failed to read product", err)
			}
			if !found {
				return notFound(f, "product", args[0])
			}
			return outputProduct(rootOpts, cmd, p)
		},
	}

	cmd.Flags().BoolVar(&bySKU, "sku", false, "look the argument up as a SKU")
	return cmd
}

func newProductUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProductOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a product",
		Long: `Change the given fields of an existing product. Fields whose flags are
not set keep their stored values. Profit is recomputed from the prices.

Examples:
  boutique product update PROD-0190f7a2-... --price 14.50 --quantity 180`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProductUpdate(opts, cmd, args[0])
		},
	}

	opts.bind(cmd)
	return cmd
}

func runProductUpdate(opts *ProductOptions, cmd *cobra.Command, id string) error {
	ctx := cmd.Context()
	f := opts.formatter(cmd)

	st, err := opts.openStore(ctx, f)
	if err != nil {
		return err
	}
	defer st.Close()

	p, found, err := st.GetProduct(ctx, id)
	if err != nil {
		return fail(f, ExitCommandError, "failed to read product", err)
	}
	if !found {
		return notFound(f, "product", id)
	}

	flags := cmd.Flags()
	setString := func(name string, dst *string, value string) {
		if flags.Changed(name) {
			*dst = value
		}
	}
	setMoney := func(name string, dst *decimal.Decimal, value string) error {
		if !flags.Changed(name) {
			return nil
		}
		d, err := parseMoney(name, value)
		if err != nil {
			return err
		}
		*dst = d
		return nil
	}

	setString("name", &p.Name, opts.Name)
	setString("sku", &p.SKU, opts.SKU)
	setString("category", &p.Category, opts.Category)
	setString("description", &p.Description, opts.Description)
	setString("image", &p.Image, opts.Image)
	if err := setMoney("price", &p.Price, opts.Price); err != nil {
		return fail(f, ExitCommandError, "invalid input", err)
	}
	if err := setMoney("wholesale", &p.WholesalePrice, opts.Wholesale); err != nil {
		return fail(f, ExitCommandError, "invalid input", err)
	}
	if flags.Changed("quantity") {
		p.Quantity = opts.Quantity
	}
	p.Profit = decimal.Zero

	if err := st.UpdateProduct(ctx, p); err != nil {
		return fail(f, ExitFailure, "failed to update product", err)
	}

	updated, _, err := st.GetProduct(ctx, id)
	if err != nil {
		return fail(f, ExitCommandError, "failed to read product", err)
	}
	return outputProduct(opts.RootOptions, cmd, updated)
}

func newProductDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <id>",
		Short:         "Delete a product (past sales keep their copy)",
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

			if err := st.DeleteProduct(ctx, args[0]); err != nil {
				return fail(f, ExitCommandError, "failed to delete product", err)
			}
			if rootOpts.Format == "json" {
				return f.Success(map[string]string{"deleted": args[0]})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted product %s\n", args[0])
			return nil
		},
	}
}

func newProductClearCommand(rootOpts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every product",
		Long: `Delete every product in the catalogue. Sales, customers and users are
kept. Requires --yes.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f := rootOpts.formatter(cmd)

			if !yes {
				return fail(f, ExitCommandError, "refusing to clear products", fmt.Errorf("pass --yes to confirm"))
			}

			st, err := rootOpts.openStore(ctx, f)
			if err != nil {
				return err
			}
			defer st.Close()

			n, err := st.ClearAllProducts(ctx)
			if err != nil {
				return fail(f, ExitCommandError, "failed to clear products", err)
			}
			if rootOpts.Format == "json" {
				return f.Success(map[string]int64{"cleared": n})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d product(s)\n", n)
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deleting every product")
	return cmd
}

func outputProduct(opts *RootOptions, cmd *cobra.Command, p record.Product) error {
	if opts.Format == "json" {
		return opts.formatter(cmd).Success(p)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Product %s\n", p.ID)
	fmt.Fprintf(w, "  Name:      %s\n", p.Name)
	fmt.Fprintf(w, "  SKU:       %s\n", p.SKU)
	fmt.Fprintf(w, "  Category:  %s\n", p.Category)
	fmt.Fprintf(w, "  Price:     %s\n", p.Price.StringFixed(2))
	fmt.Fprintf(w, "  Wholesale: %s\n", p.WholesalePrice.StringFixed(2))
	fmt.Fprintf(w, "  Profit:    %s\n", p.Profit.StringFixed(2))
	fmt.Fprintf(w, "  Quantity:  %d\n", p.Quantity)
	if p.Description != "" {
		fmt.Fprintf(w, "  About:     %s\n", p.Description)
	}
	fmt.Fprintf(w, "  Created:   %s\n", p.CreatedAt.Format(timeLayout))
	return nil
}

func writeProductTable(w io.Writer, products []record.Product) {
	if len(products) == 0 {
		fmt.Fprintln(w, "No products.")
		return
	}
	fmt.Fprintf(w, "%-16s %-28s %-20s %10s %6s\n", "SKU", "NAME", "CATEGORY", "PRICE", "QTY")
	for _, p := range products {
		fmt.Fprintf(w, "%-16s %-28s %-20s %10s %6d\n",
			truncate(p.SKU, 16), truncate(p.Name, 28), truncate(p.Category, 20),
			p.Price.StringFixed(2), p.Quantity)
	}
}
