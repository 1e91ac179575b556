package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/boutique/internal/config"
	"github.com/roach88/boutique/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string
	EnvFile    string
	Database   string // overrides the configured path when set

	// Config is resolved in PersistentPreRunE.
	Config config.Config

	// StoreOptions are passed to every store the commands open. Tests use
	// it to inject a clock and a cheap password cost.
	StoreOptions []store.Option
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the boutique CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "boutique",
		Short: "Boutique point-of-sale store",
		Long: `Manage the boutique's local sales database: products, customers,
sales and till users, plus sales reports and demo data.

Settings come from --config (YAML), a .env file and BOUTIQUE_* environment
variables, in increasing priority. --db overrides the database path.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return usageError(cmd, fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}

			cfg, err := config.Load(opts.ConfigFile, opts.EnvFile)
			if err != nil {
				return fail(opts.formatter(cmd), ExitCommandError, "failed to load config", err)
			}
			if opts.Database != "" {
				cfg.Database = opts.Database
			}
			opts.Config = cfg

			setupLogging(cmd.ErrOrStderr(), cfg, opts.Verbose)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "path to YAML config file")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "path to .env file (ignored if missing)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides config)")

	// Subcommands inherit this.
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return usageError(c, err)
	})

	// Add subcommands
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewProductCommand(opts))
	cmd.AddCommand(NewCustomerCommand(opts))
	cmd.AddCommand(NewSaleCommand(opts))
	cmd.AddCommand(NewUserCommand(opts))
	cmd.AddCommand(NewLoginCommand(opts))
	cmd.AddCommand(NewReportCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// usageError reports a bad flag or argument on stderr and returns it as a
// command error.
func usageError(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
	return WrapExitError(ExitCommandError, "invalid usage", err)
}

// setupLogging installs a text slog handler on w. --verbose forces debug.
func setupLogging(w io.Writer, cfg config.Config, verbose bool) {
	level, err := cfg.Level()
	if err != nil {
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// formatter builds the output formatter for a command.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// openStore opens the configured database, creating it if needed.
func (o *RootOptions) openStore(ctx context.Context, f *OutputFormatter) (*store.Store, error) {
	f.VerboseLog("Opening database %s", o.Config.Database)
	st, err := store.Open(ctx, o.Config.Database, o.StoreOptions...)
	if err != nil {
		return nil, fail(f, ExitCommandError, "failed to open database", err)
	}
	return st, nil
}
