package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-gin-gorm-microblog/internal/domain"
)

// Models lists every table in creation order.
func Models() []any {
	return []any{
		&domain.Role{},
		&domain.User{},
		&domain.UserRole{},
		&domain.Relationship{},
		&domain.Micropost{},
	}
}

// Migrate creates the schema and seeds the static roles. Safe to rerun.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return SeedRoles(ctx, db)
}

func SeedRoles(ctx context.Context, db *gorm.DB) error {
	for _, name := range domain.SeedRoles {
		role := domain.Role{Name: name}
		err := db.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
			Create(&role).Error
		if err != nil {
			return fmt.Errorf("seed role %q: %w", name, err)
		}
	}
	return nil
}

// Ping checks that the store answers.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
