package database

import (
	"fmt"

	"rukami/internal/models"

	"gorm.io/gorm"
)

// Models lists every table in dependency order.
var Models = []interface{}{
	&models.User{},
	&models.Category{},
	&models.Product{},
	&models.Favorite{},
	&models.CartItem{},
	&models.Review{},
}

// Migrate creates or updates the schema. It is safe to run repeatedly.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
