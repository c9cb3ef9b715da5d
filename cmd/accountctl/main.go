package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"accounts/internal/app"
	"accounts/internal/config"
	"accounts/internal/observability/logging"
)

var rootCmd = &cobra.Command{
	Use:           "accountctl",
	Short:         "Administer storefront accounts",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// openApp builds the services a command runs against.
var openApp = func(ctx context.Context, logger *slog.Logger) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg, logger)
}

func init() {
	rootCmd.AddCommand(
		createUserCmd,
		listUsersCmd,
		deactivateCmd,
		migrateCmd,
		pruneSessionsCmd,
		expireActivationsCmd,
		expireActivationCmd,
		inspectActivationCmd,
		regenerateKeyCmd,
		resendCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// withApp builds the services and runs fn with them.
func withApp(ctx context.Context, fn func(ctx context.Context, a *app.App) error) error {
	logger := logging.NewLogger(logging.Config{
		ServiceName: "accountctl",
		Environment: "dev",
		Level:       os.Getenv("LOG_LEVEL"),
		Output:      os.Stderr,
	})
	slog.SetDefault(logger)

	a, err := openApp(ctx, logger)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}
