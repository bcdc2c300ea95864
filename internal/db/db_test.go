package db

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Leganyst/salon-core/internal/config"
	"github.com/Leganyst/salon-core/internal/model"
)

func TestNewGormDB_SQLite(t *testing.T) {
	log, _ := test.NewNullLogger()
	db, err := NewGormDB(&config.DBConfig{Driver: "sqlite", SQLitePath: "file::memory:", MaxOpenConns: 1}, log)
	require.NoError(t, err)

	require.NoError(t, model.AutoMigrate(db))
	require.NoError(t, Ping(context.Background(), db))

	assert.Equal(t, "UTC", db.NowFunc().Location().String())
}

func TestNewGormDB_UnknownDriver(t *testing.T) {
	log, _ := test.NewNullLogger()
	_, err := NewGormDB(&config.DBConfig{Driver: "oracle"}, log)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle")
}
