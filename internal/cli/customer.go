package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/boutique/internal/record"
	"github.com/roach88/boutique/internal/store"
)

// CustomerOptions holds flags shared by customer add and update.
type CustomerOptions struct {
	*RootOptions
	ID      string
	Name    string
	Phone   string
	Email   string
	Address string
}

// NewCustomerCommand creates the customer command group.
func NewCustomerCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "customer",
		Short: "Manage registered customers",
	}

	cmd.AddCommand(newCustomerAddCommand(rootOpts))
	cmd.AddCommand(newCustomerListCommand(rootOpts))
	cmd.AddCommand(newCustomerGetCommand(rootOpts))
	cmd.AddCommand(newCustomerUpdateCommand(rootOpts))
	cmd.AddCommand(newCustomerHistoryCommand(rootOpts))

	return cmd
}

func (o *CustomerOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Name, "name", "", "customer name")
	cmd.Flags().StringVar(&o.Phone, "phone", "", "phone number, unique")
	cmd.Flags().StringVar(&o.Email, "email", "", "email address")
	cmd.Flags().StringVar(&o.Address, "address", "", "postal address")
}

func newCustomerAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CustomerOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a customer",
		Long: `Register a customer. Total spend starts at zero and grows with each
recorded sale.

Examples:
  boutique customer add --name "Jane Smith" --phone +254712345678`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f := opts.formatter(cmd)

			id := opts.ID
			if id == "" {
				id = store.NewID(store.PrefixCustomer)
			}
			c := record.Customer{
				ID:      id,
				Name:    opts.Name,
				Phone:   opts.Phone,
				Email:   opts.Email,
				Address: opts.Address,
			}

			st, err := opts.openStore(ctx, f)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.AddCustomer(ctx, c); err != nil {
				return fail(f, ExitFailure, "failed to add customer", err)
			}
			added, _, err := st.GetCustomer(ctx, c.ID)
			if err != nil {
				return fail(f, ExitCommandError, "failed to read customer", err)
			}
			return outputCustomer(opts.RootOptions, cmd, added)
		},
	}

	opts.bind(cmd)
	cmd.Flags().StringVar(&opts.ID, "id", "", "customer id (generated if empty)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("phone")

	return cmd
}

func newCustomerListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List customers",
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

			customers, err := st.GetCustomers(ctx)
			if err != nil {
				return fail(f, ExitCommandError, "failed to list customers", err)
			}
			if rootOpts.Format == "json" {
				return f.Success(customers)
			}
			writeCustomerTable(cmd.OutOrStdout(), customers)
			return nil
		},
	}
}

func newCustomerGetCommand(rootOpts *RootOptions) *cobra.Command {
	var byPhone bool

	cmd := &cobra.Command{
		Use:           "get <id>",
		Short:         "Show one customer, by id or by phone with --phone",
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
				c     record.Customer
				found bool
			)
			if byPhone {
				c, found, err = st.GetCustomerByPhone(ctx, args[0])
			} else {
				c, found, err = st.GetCustomer(ctx, args[0])
			}
			if err != nil {
				return fail(f, ExitCommandError, "failed to read customer", err)
			}
			if !found {
				return notFound(f, "customer", args[0])
			}
			return outputCustomer(rootOpts, cmd, c)
		},
	}

	cmd.Flags().BoolVar(&byPhone, "phone", false, "look the argument up as a phone number")
	return cmd
}

func newCustomerUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CustomerOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a customer's details",
		Long: `Change the given contact details of an existing customer. Total spend
cannot be edited.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f := opts.formatter(cmd)

			st, err := opts.openStore(ctx, f)
			if err != nil {
				return err
			}
			defer st.Close()

			c, found, err := st.GetCustomer(ctx, args[0])
			if err != nil {
				return fail(f, ExitCommandError, "failed to read customer", err)
			}
			if !found {
				return notFound(f, "customer", args[0])
			}

			flags := cmd.Flags()
			if flags.Changed("name") {
				c.Name = opts.Name
			}
			if flags.Changed("phone") {
				c.Phone = opts.Phone
			}
			if flags.Changed("email") {
				c.Email = opts.Email
			}
			if flags.Changed("address") {
				c.Address = opts.Address
			}

			if err := st.UpdateCustomer(ctx, c); err != nil {
				return fail(f, ExitFailure, "failed to update customer", err)
			}
			updated, _, err := st.GetCustomer(ctx, c.ID)
			if err != nil {
				return fail(f, ExitCommandError, "failed to read customer", err)
			}
			return outputCustomer(opts.RootOptions, cmd, updated)
		},
	}

	opts.bind(cmd)
	return cmd
}

func newCustomerHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "history <id>",
		Short:         "List a customer's purchases",
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

			sales, err := st.GetSalesByCustomer(ctx, args[0])
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

func outputCustomer(opts *RootOptions, cmd *cobra.Command, c record.Customer) error {
	if opts.Format == "json" {
		return opts.formatter(cmd).Success(c)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Customer %s\n", c.ID)
	fmt.Fprintf(w, "  Name:    %s\n", c.Name)
	fmt.Fprintf(w, "  Phone:   %s\n", c.Phone)
	if c.Email != "" {
		fmt.Fprintf(w, "  Email:   %s\n", c.Email)
	}
	if c.Address != "" {
		fmt.Fprintf(w, "  Address: %s\n", c.Address)
	}
	fmt.Fprintf(w, "  Spent:   %s\n", c.TotalSpent.StringFixed(2))
	fmt.Fprintf(w, "  Created: %s\n", c.CreatedAt.Format(timeLayout))
	return nil
}

func writeCustomerTable(w io.Writer, customers []record.Customer) {
	if len(customers) == 0 {
		fmt.Fprintln(w, "No customers.")
		return
	}
	fmt.Fprintf(w, "%-16s %-28s %12s\n", "PHONE", "NAME", "SPENT")
	for _, c := range customers {
		fmt.Fprintf(w, "%-16s %-28s %12s\n", truncate(c.Phone, 16), truncate(c.Name, 28), c.TotalSpent.StringFixed(2))
	}
}
