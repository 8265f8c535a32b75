package database

import (
	"fmt"

	"gorm.io/gorm"

	"bloghub/pkg/models"
)

// Migrate creates or updates the catalog tables and the two join
// tables at startup.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Tag{}, &models.Series{}, &models.Post{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
