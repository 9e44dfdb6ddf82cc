package system

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/drivingschool_backend/internal/model"
	"github.com/Alijeyrad/drivingschool_backend/pkg/authorize"
	"github.com/Alijeyrad/drivingschool_backend/pkg/database"
)

// NewInitCommand creates the postgres database named in the config.
// sqlite needs nothing; the file appears on first open.
func NewInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the school database if it is missing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := database.InitializeDatabase(cmd.Context(), cfg, logger); err != nil {
				return fmt.Errorf("initialize database: %w", err)
			}
			logger.Info("database ready", "driver", cfg.Database.Driver, "name", cfg.Database.DBName)
			return nil
		},
	}
}

// NewMigrateCommand brings the tables for users, plans, credits,
// purchases, appointments and community records up to date.
func NewMigrateCommand() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations and check role policies",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			db, err := openDatabase(cfg, logger)
			if err != nil {
				return err
			}
			defer database.Close(db)

			if timeout <= 0 {
				timeout = time.Duration(cfg.Server.TimeoutSeconds) * time.Second
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			start := time.Now()
			if err := model.AutoMigrate(db.WithContext(ctx)); err != nil {
				return fmt.Errorf("migrate schema: %w", err)
			}
			if _, err := authorize.NewDefault(ctx); err != nil {
				return fmt.Errorf("load role policies: %w", err)
			}
			logger.Info("migrations applied", "took", time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "migration deadline (defaults to server.timeout_seconds)")
	return cmd
}
