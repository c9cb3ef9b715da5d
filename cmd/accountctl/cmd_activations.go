package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"accounts/internal/app"
)

var expireOlderThan time.Duration

var expireActivationsCmd = &cobra.Command{
	Use:   "expire-activations",
	Short: "Force-expire unconfirmed activations",
	Long: `Mark every unconfirmed activation older than --older-than as force-expired.
The default of 0 uses the configured activation window.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
			n, err := a.Activations.ExpireStale(ctx, expireOlderThan)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "expired %d activation(s)\n", n)
			return nil
		})
	},
}

var expireActivationCmd = &cobra.Command{
	Use:   "expire-activation <activation-id>",
	Short: "Force-expire one activation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid activation id: %w", err)
		}
		return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
			if err := a.Activations.ForceExpire(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "activation %s expired\n", id)
			return nil
		})
	},
}

var inspectActivationCmd = &cobra.Command{
	Use:   "activation <key>",
	Short: "Show the activations behind a key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
			statuses, err := a.Activations.Inspect(ctx, args[0])
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tEMAIL\tACTIVATED\tFORCED_EXPIRED\tCONFIRMABLE\tCREATED")
			for _, st := range statuses {
				fmt.Fprintf(tw, "%s\t%s\t%t\t%t\t%t\t%s\n",
					st.ActivationID, st.Email, st.Activated, st.ForcedExpired, st.Confirmable, st.CreatedAt.Format(time.RFC3339))
			}
			return tw.Flush()
		})
	},
}

var regenerateKeyCmd = &cobra.Command{
	Use:   "regenerate-key <activation-id>",
	Short: "Replace the key of an activation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid activation id: %w", err)
		}
		return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
			act, err := a.Activations.Regenerate(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "activation %s for %s has a new key\n", act.ID, act.Email)
			return nil
		})
	},
}

var resendCmd = &cobra.Command{
	Use:   "resend <email>",
	Short: "Send a new activation link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
			res, err := a.Activations.ResendActivation(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "activation %s for %s sent=%t\n", res.ActivationID, res.Email, res.Sent)
			return nil
		})
	},
}

func init() {
	expireActivationsCmd.Flags().DurationVar(&expireOlderThan, "older-than", 0, "age cutoff, e.g. 168h")
}
