package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Alijeyrad/drivingschool_backend/config"
)

// InitializeDatabase creates the application database if it does not exist.
// It connects to the default 'postgres' database to do so. sqlite files are
// created on first open and need no initialization.
func InitializeDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	dbCfg := FromCentralConfig(cfg.Database)
	if dbCfg.Driver == DriverSQLite {
		return nil
	}
	if dbCfg.DBName == "" {
		return fmt.Errorf("no database name provided")
	}

	adminCfg := dbCfg
	adminCfg.DBName = "postgres"

	db, err := Open(adminCfg, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres database: %w", err)
	}
	defer Close(db)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var exists bool
	if err := db.WithContext(ctx).
		Raw(`SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = ?)`, dbCfg.DBName).
		Scan(&exists).Error; err != nil {
		return fmt.Errorf("failed to check if database exists: %w", err)
	}
	if exists {
		return nil
	}

	// CREATE DATABASE cannot take bind parameters.
	if err := db.WithContext(ctx).Exec(fmt.Sprintf(`CREATE DATABASE %q`, dbCfg.DBName)).Error; err != nil {
		return fmt.Errorf("failed to create database %q: %w", dbCfg.DBName, err)
	}
	return nil
}
