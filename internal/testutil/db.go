package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"go-gin-gorm-microblog/internal/core/database"
	"go-gin-gorm-microblog/pkg/utils"
)

// NewDB opens a private in-memory SQLite database with the schema migrated
// and roles seeded. One connection keeps every query on the same memory DB.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_time_format=sqlite", uuid.NewString())
	db, err := database.NewGorm(database.Opts{
		Driver:             "sqlite",
		DSN:                dsn,
		MaxOpenConns:       1,
		LogLevel:           "silent",
		DisablePrepareStmt: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(context.Background(), db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// FastHasher is bcrypt at its minimum cost.
func FastHasher() utils.Hasher { return utils.NewBcryptHasher(bcrypt.MinCost) }
