package system

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Alijeyrad/drivingschool_backend/config"
	"github.com/Alijeyrad/drivingschool_backend/pkg/database"
	"github.com/Alijeyrad/drivingschool_backend/pkg/logs"
)

func NewSystemCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "system",
		Short: "Maintenance and tooling commands",
	}

	cmd.AddCommand(NewMigrateCommand())
	cmd.AddCommand(NewGenDocsCommand())
	cmd.AddCommand(NewInitCommand())
	cmd.AddCommand(NewSeedCommand())

	return cmd
}

func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read config: %w", err)
	}
	logger := logs.New(cfg)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func openDatabase(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	db, err := database.Open(database.FromCentralConfig(cfg.Database), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}
