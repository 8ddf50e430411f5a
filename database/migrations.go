package database

import (
	"log"

	"github.com/Ham-irza/resell-hub/models"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates all application tables. It is intended for
// development and first boot; production schema changes go through SQL
// migrations.
func AutoMigrate(db *gorm.DB) error {
	log.Println("[database] running auto-migration")
	return db.AutoMigrate(
		&models.Store{},
		&models.User{},
		&models.Plan{},
		&models.Product{},
		&models.Purchase{},
		&models.Transaction{},
		&models.Notification{},
		&models.RefreshToken{},
	)
}
