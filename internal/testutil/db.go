// Package testutil builds throwaway databases and fixtures for service tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Alijeyrad/drivingschool_backend/internal/model"
	"github.com/Alijeyrad/drivingschool_backend/pkg/database"
	"github.com/Alijeyrad/drivingschool_backend/pkg/logs"
)

// NewDB returns a migrated in-memory sqlite database closed at test cleanup.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(database.Config{Driver: database.DriverSQLite, Path: ":memory:"}, logs.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	require.NoError(t, model.AutoMigrate(db))
	return db
}
