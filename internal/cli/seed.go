package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/boutique/internal/seed"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo users, products and customers",
		Long: `Load users, products and customers from a YAML seed file, or the
built-in demo data when --file is not given. Records whose id, SKU, phone or
username already exist are skipped, so seeding twice is harmless.

Exit codes:
  0 - Seed applied
  1 - Seed file invalid or a record rejected
  2 - Command error (database unavailable, file missing, etc.)

Examples:
  boutique seed
  boutique seed --file ./shop.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f := rootOpts.formatter(cmd)

			var (
				data *seed.File
				err  error
			)
			if file != "" {
				f.VerboseLog("Loading seed file %s", file)
				data, err = seed.Load(file)
			} else {
				f.VerboseLog("Loading built-in demo data")
				data, err = seed.Parse(seed.DemoData)
			}
			if err != nil {
				return fail(f, ExitFailure, "failed to load seed data", err)
			}

			st, err := rootOpts.openStore(ctx, f)
			if err != nil {
				return err
			}
			defer st.Close()

			res, err := seed.Apply(ctx, st, data)
			if err != nil {
				return fail(f, ExitFailure, "failed to apply seed data", err)
			}

			if rootOpts.Format == "json" {
				return f.Success(res)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Users:     %d added, %d skipped\n", res.Users.Added, res.Users.Skipped)
			fmt.Fprintf(w, "Products:  %d added, %d skipped\n", res.Products.Added, res.Products.Skipped)
			fmt.Fprintf(w, "Customers: %d added, %d skipped\n", res.Customers.Added, res.Customers.Skipped)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "YAML seed file (default: built-in demo data)")
	return cmd
}
