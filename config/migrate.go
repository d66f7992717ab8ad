package config

import (
	"github.com/teamup-campus/teamup/internal/models"
	"gorm.io/gorm"
)

// MigratePostgres creates or updates the relational tables. Production
// schemas are managed outside the service; this is for local stacks.
func MigratePostgres(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Profile{},
		&models.Post{},
		&models.Interaction{},
		&models.RecommendationLog{},
	)
}
