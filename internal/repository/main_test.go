package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Leganyst/salon-core/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger:         gormlogger.Discard,
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection, otherwise every new connection gets its own empty :memory: database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, model.AutoMigrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string, role model.Role) *model.User {
	t.Helper()
	u := &model.User{FullName: name, Phone: "0900000000", Role: role, IsActive: true}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedService(t *testing.T, db *gorm.DB, name string, price int64) *model.ServiceItem {
	t.Helper()
	s := &model.ServiceItem{Name: name, Price: price, IsActive: true}
	require.NoError(t, db.Create(s).Error)
	return s
}
