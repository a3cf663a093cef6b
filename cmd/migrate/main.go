package main

import (
	"fmt"
	"log"
	"os"

	"github.com/prohmpiriya/postboard-api/migrations"
	"github.com/prohmpiriya/postboard-api/pkg/config"
	"github.com/prohmpiriya/postboard-api/pkg/database"
	"github.com/prohmpiriya/postboard-api/pkg/logger"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply or roll back the postboard schema",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to an env file (defaults to .env and the environment)")

	load := func() (*config.Config, *logger.Logger) {
		var (
			cfg *config.Config
			err error
		)
		if configPath != "" {
			cfg, err = config.LoadWithPath(configPath)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		if err := logger.Init(&logger.Config{
			Level:       cfg.App.LogLevel,
			ServiceName: "postboard-migrate",
			Development: cfg.IsDevelopment(),
		}); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		return cfg, logger.Get()
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, appLog := load()
			defer logger.Sync()

			version, err := database.Migrate(migrations.FS, cfg.Database.URL())
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			appLog.Info(fmt.Sprintf("Schema at migration version %d", version))
			return nil
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps < 1 {
				return fmt.Errorf("--steps must be at least 1")
			}
			cfg, appLog := load()
			defer logger.Sync()

			if err := database.Rollback(migrations.FS, cfg.Database.URL(), steps); err != nil {
				return fmt.Errorf("rollback failed: %w", err)
			}
			appLog.Info(fmt.Sprintf("Rolled back %d migration(s)", steps))
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	root.AddCommand(up, down)
	return root
}
