package database

import (
	"testing"
	"time"

	"github.com/Alijeyrad/drivingschool_backend/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromCentralConfig_DefaultsToPostgres(t *testing.T) {
	c := FromCentralConfig(config.DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "school", SSLMode: "disable"})
	assert.Equal(t, DriverPostgres, c.Driver)
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=school sslmode=disable TimeZone=UTC", c.DSN())
	assert.Equal(t, 5*time.Minute, c.ConnMaxLifetime())
	assert.Equal(t, 200*time.Millisecond, c.SlowThreshold())
}

func TestOpen_SQLite(t *testing.T) {
	db, err := Open(Config{Driver: DriverSQLite, Path: ":memory:"}, nil)
	require.NoError(t, err)
	defer Close(db)

	var one int
	require.NoError(t, db.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"}, nil)
	assert.Error(t, err)
}
