package redis

import (
	"context"
	"testing"
	"time"

	"github.com/Alijeyrad/drivingschool_backend/config"
	"github.com/stretchr/testify/assert"
)

func TestOptions_Defaults(t *testing.T) {
	opts := Options(config.RedisConfig{Addr: "localhost:6379"})
	assert.Equal(t, 10, opts.PoolSize)
	assert.Equal(t, 2, opts.MinIdleConns)
	assert.Equal(t, 5*time.Second, opts.DialTimeout)
	assert.Equal(t, 3*time.Second, opts.ReadTimeout)
}

func TestOptions_Overrides(t *testing.T) {
	opts := Options(config.RedisConfig{Addr: "r:6379", PoolSize: 50, ReadTimeoutSeconds: 9})
	assert.Equal(t, 50, opts.PoolSize)
	assert.Equal(t, 9*time.Second, opts.ReadTimeout)
}

func TestNew_EmptyAddr(t *testing.T) {
	_, err := New(context.Background(), config.RedisConfig{})
	assert.Error(t, err)
}
