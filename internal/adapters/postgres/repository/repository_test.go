package repository_test

import (
	"testing"

	"gorm.io/gorm"

	"github.com/rafaelleal24/product-catalog/internal/adapters/config"
	"github.com/rafaelleal24/product-catalog/internal/adapters/postgres"
)

// newTestDB opens a private in-memory SQLite database. A single connection
// keeps every statement on the same memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := postgres.NewConnection(config.DatabaseConfig{
		Driver:       "sqlite",
		URL:          ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		AutoMigrate:  true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = postgres.Close(db) })
	return db
}
