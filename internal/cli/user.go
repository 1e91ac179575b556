package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/boutique/internal/record"
	"github.com/roach88/boutique/internal/store"
)

// UserOptions holds flags for user add.
type UserOptions struct {
	*RootOptions
	ID       string
	Username string
	Password string
	Role     string
}

// NewUserCommand creates the user command group.
func NewUserCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage till users",
	}

	cmd.AddCommand(newUserAddCommand(rootOpts))
	cmd.AddCommand(newUserListCommand(rootOpts))
	cmd.AddCommand(newUserGetCommand(rootOpts))

	return cmd
}

func newUserAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UserOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a user",
		Long: `Create an admin or cashier account. The password is stored as a bcrypt
hash.

Examples:
  boutique user add --username cashier2 --password s3cret --role cashier`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f := opts.formatter(cmd)

			id := opts.ID
			if id == "" {
				id = store.NewID(store.PrefixUser)
			}
			u := record.User{
				ID:       id,
				Username: opts.Username,
				Password: opts.Password,
				Role:     record.Role(opts.Role),
			}

			st, err := opts.openStore(ctx, f)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.AddUser(ctx, u); err != nil {
				return fail(f, ExitFailure, "failed to add user", err)
			}
			added, _, err := st.GetUser(ctx, u.Username)
			if err != nil {
				return fail(f, ExitCommandError, "failed to read user", err)
			}
			return outputUser(opts.RootOptions, cmd, added)
		},
	}

	cmd.Flags().StringVar(&opts.ID, "id", "", "user id (generated if empty)")
	cmd.Flags().StringVar(&opts.Username, "username", "", "login name, unique (required)")
	cmd.Flags().StringVar(&opts.Password, "password", "", "password (required)")
	cmd.Flags().StringVar(&opts.Role, "role", string(record.RoleCashier), "role (admin|cashier)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newUserListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List users",
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

			users, err := st.GetUsers(ctx)
			if err != nil {
				return fail(f, ExitCommandError, "failed to list users", err)
			}
			if rootOpts.Format == "json" {
				return f.Success(users)
			}

			w := cmd.OutOrStdout()
			if len(users) == 0 {
				fmt.Fprintln(w, "No users.")
				return nil
			}
			fmt.Fprintf(w, "%-20s %-8s %s\n", "USERNAME", "ROLE", "CREATED")
			for _, u := range users {
				fmt.Fprintf(w, "%-20s %-8s %s\n", truncate(u.Username, 20), u.Role, u.CreatedAt.Format(timeLayout))
			}
			return nil
		},
	}
}

func newUserGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "get <username>",
		Short:         "Show one user",
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

			u, found, err := st.GetUser(ctx, args[0])
			if err != nil {
				return fail(f, ExitCommandError, "failed to read user", err)
			}
			if !found {
				return notFound(f, "user", args[0])
			}
			return outputUser(rootOpts, cmd, u)
		},
	}
}

func outputUser(opts *RootOptions, cmd *cobra.Command, u record.User) error {
	if opts.Format == "json" {
		return opts.formatter(cmd).Success(u)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "User %s\n", u.ID)
	fmt.Fprintf(w, "  Username: %s\n", u.Username)
	fmt.Fprintf(w, "  Role:     %s\n", u.Role)
	fmt.Fprintf(w, "  Created:  %s\n", u.CreatedAt.Format(timeLayout))
	return nil
}
