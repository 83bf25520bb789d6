package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"matchgraph/internal/config"
	"matchgraph/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := InitDB(config.DatabaseConfig{Type: "sqlite", DBName: ":memory:", LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, AutoMigrateTables(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()

	fullName := "User " + name
	user := &models.User{Email: fmt.Sprintf("%s@example.com", name), FullName: &fullName, IsActive: true}
	require.NoError(t, NewGormUserRepository(db).Create(context.Background(), user))
	return user
}

var baseTime = time.Date(2025, 12, 11, 12, 0, 0, 0, time.UTC)
