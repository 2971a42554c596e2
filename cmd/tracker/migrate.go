package main

import (
	"context"
	"fmt"

	"mobile_usage_tracker/internal/infra/config"
	"mobile_usage_tracker/internal/infra/logger"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create tables and indexes in the configured store",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("could not load configuration: %w", err)
		}
		logger.Init(cfg)
		return runMigrate(cmd.Context(), cfg)
	},
}

func runMigrate(ctx context.Context, cfg *config.AppConfig) error {
	log := logger.Component("migrate").WithField("backend", cfg.StoreBackend)

	be, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer be.close(context.Background())

	if err := be.migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	log.WithFields(logrus.Fields{"status": "ok"}).Info("Schema is up to date")
	return nil
}
