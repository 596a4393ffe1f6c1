package database

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/dqs/pkg/config"
)

func TestNew_Disabled(t *testing.T) {
	_, err := New(context.Background(), &config.Config{})
	assert.True(t, errors.Is(err, ErrDisabled))
}

func TestNew_BadURL(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{URL: "://not a url", MaxConns: 1}}
	_, err := New(context.Background(), cfg)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrDisabled))
}

func TestHealthCheck(t *testing.T) {
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	db, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	status := db.HealthCheck(ctx)
	assert.True(t, status.Healthy, status.Error)
	assert.Greater(t, status.Stats.MaxConns, int32(0))
}
