package persistence

import (
	"context"
	"testing"

	"github.com/estate/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

func TestOpenDatabase(t *testing.T) {
	db, err := openDatabase(sqlite.Open(":memory:"), &config.DatabaseConfig{MaxOpenConns: 1}, nil)
	require.NoError(t, err)

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
	assert.NoError(t, db.Ping(context.Background()))

	require.NoError(t, db.Close())
	assert.Error(t, db.Ping(context.Background()))
}
