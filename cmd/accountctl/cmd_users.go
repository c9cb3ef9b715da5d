package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"accounts/internal/app"
	"accounts/internal/domain"
	"accounts/internal/dto"
)

var (
	createEmail     string
	createPassword  string
	createStaff     bool
	createSuperuser bool
	createInactive  bool
	listLimit       int
)

// createUserCmd creates users outside the registration form
var createUserCmd = &cobra.Command{
	Use:   "createuser",
	Short: "Create a user",
	Long: `Create a user with a profile and an activation record.

Users created here are active unless --inactive is given. --staff and
--superuser grant the matching roles.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if createEmail == "" {
			return fmt.Errorf("--email is required")
		}
		if createPassword == "" {
			return fmt.Errorf("--password is required")
		}
		return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
			var (
				user *domain.User
				err  error
			)
			switch {
			case createSuperuser:
				user, err = a.Accounts.CreateSuperuser(ctx, createEmail, createPassword)
			case createStaff:
				user, err = a.Accounts.CreateStaffUser(ctx, createEmail, createPassword)
			default:
				user, err = a.Accounts.CreateUser(ctx, dto.CreateUserRequest{
					Email:    createEmail,
					Password: createPassword,
					Active:   !createInactive,
				})
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) staff=%t admin=%t active=%t\n",
				user.Email, user.ID, user.IsStaff(), user.IsAdmin(), user.IsActive)
			return nil
		})
	},
}

var listUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List users",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
			users, err := a.Store.Users().List(ctx, listLimit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tEMAIL\tACTIVE\tSTAFF\tADMIN\tJOINED")
			for _, u := range users {
				fmt.Fprintf(tw, "%s\t%s\t%t\t%t\t%t\t%s\n",
					u.ID, u.Email, u.IsActive, u.IsStaff(), u.IsAdmin(), u.Timestamp.Format("2006-01-02"))
			}
			return tw.Flush()
		})
	},
}

var deactivateCmd = &cobra.Command{
	Use:   "deactivate <email>",
	Short: "Deactivate a user and end their sessions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
			n, err := a.Accounts.Deactivate(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deactivated %s, revoked %d session(s)\n", args[0], n)
			return nil
		})
	},
}

var pruneGrace time.Duration

var pruneSessionsCmd = &cobra.Command{
	Use:   "prune-sessions",
	Short: "Delete expired login sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
			n, err := a.Sessions.PruneExpired(ctx, pruneGrace)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pruned %d session(s)\n", n)
			return nil
		})
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
			if err := a.Store.Migrate(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		})
	},
}

func init() {
	createUserCmd.Flags().StringVar(&createEmail, "email", "", "email address")
	createUserCmd.Flags().StringVar(&createPassword, "password", "", "initial password")
	createUserCmd.Flags().BoolVar(&createStaff, "staff", false, "grant staff")
	createUserCmd.Flags().BoolVar(&createSuperuser, "superuser", false, "grant staff and admin")
	createUserCmd.Flags().BoolVar(&createInactive, "inactive", false, "leave the user inactive until they confirm their email")
	listUsersCmd.Flags().IntVar(&listLimit, "limit", 100, "maximum rows")
	pruneSessionsCmd.Flags().DurationVar(&pruneGrace, "grace", 0, "keep sessions that expired within this duration")
}
