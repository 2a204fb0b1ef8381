package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fastygo/memo/internal/config"
	pgInfra "github.com/fastygo/memo/internal/infrastructure/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the postgres session schema",
	Long: `Apply the embedded migrations for the postgres session store.

Only meaningful with SESSION_BACKEND=postgres; serve runs the same
migrations on start unless RUN_MIGRATIONS=false.`,
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	if cfg.Session.Backend != config.BackendPostgres {
		fmt.Fprintf(cmd.OutOrStdout(), "session backend is %s, nothing to migrate\n", cfg.Session.Backend)
		return nil
	}
	if err := pgInfra.Migrate(cfg.Database, logger); err != nil {
		return fmt.Errorf("migrations failed: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
	return nil
}
