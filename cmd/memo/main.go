package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fastygo/memo/internal/config"
	appLogger "github.com/fastygo/memo/pkg/logger"
)

var (
	// Global flags
	logLevel string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "memo",
	Short: "MyMemo web client",
	Long: `memo serves the MyMemo login page and task dashboard.

It keeps sessions on the server, signs the browser cookie, and talks to the
auth and task services on the user's behalf. Configuration comes from the
environment, optionally loaded from .env.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		if logLevel != "" {
			cfg.Logger.Level = logLevel
		}
		logger, err = appLogger.New(appLogger.Config{
			Level:       cfg.Logger.Level,
			Encoding:    cfg.Logger.Encoding,
			Service:     cfg.AppName,
			Environment: cfg.Environment,
		})
		if err != nil {
			return fmt.Errorf("logger error: %w", err)
		}
		if cfg.Session.EphemeralSecret {
			logger.Warn("SESSION_SECRET not set, using a random secret; sessions end on restart")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd, migrateCmd, sessionsCmd)
	sessionsCmd.AddCommand(sessionsPurgeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
