package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fastygo/memo/internal/services"
	"github.com/fastygo/memo/internal/services/lifecycle"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage stored sessions",
}

var sessionsPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete expired sessions now",
	Long: `Delete every expired session from the configured store.

The server does this on SESSION_PURGE_INTERVAL; redis expires sessions on
its own, so purge reports zero there.`,
	RunE: runSessionsPurge,
}

func runSessionsPurge(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	manager := lifecycle.New(cfg.Context.ShutdownTimeout, logger)
	defer func() { _ = manager.Shutdown(context.Background()) }()

	sessions, err := openSessionStore(ctx, cfg, logger, manager)
	if err != nil {
		return err
	}

	removed, err := services.NewSessionJanitor(sessions, nil, logger, services.JanitorConfig{}).RunOnce(ctx)
	if err != nil {
		return fmt.Errorf("purge failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired sessions\n", removed)
	return nil
}
