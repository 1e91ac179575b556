package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// EnvPassword is read by login when --password is not given.
const EnvPassword = "BOUTIQUE_PASSWORD"

// NewLoginCommand creates the login command.
func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Check a username and password",
		Long: `Check a till user's credentials and print their role.

The password is taken from --password, or from $BOUTIQUE_PASSWORD so it
stays out of shell history.

Exit codes:
  0 - Credentials accepted
  1 - Unknown user or wrong password`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f := rootOpts.formatter(cmd)

			if !cmd.Flags().Changed("password") {
				password = os.Getenv(EnvPassword)
			}

			st, err := rootOpts.openStore(ctx, f)
			if err != nil {
				return err
			}
			defer st.Close()

			u, err := st.Authenticate(ctx, username, password)
			if err != nil {
				return fail(f, ExitFailure, "login failed", err)
			}
			return outputUser(rootOpts, cmd, u)
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "login name (required)")
	cmd.Flags().StringVar(&password, "password", "", "password (default $BOUTIQUE_PASSWORD)")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}
