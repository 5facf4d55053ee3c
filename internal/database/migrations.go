package database

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/family-chores-api/internal/models"
	"gorm.io/gorm"
)

// Models lists every persisted model in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.Family{},
		&models.User{},
		&models.Task{},
		&models.Gift{},
		&models.UserTask{},
		&models.UserGift{},
	}
}

// Migrate creates or updates the schema, including the indexes declared on the
// models (the per-day completion index among them).
func Migrate(db *gorm.DB, log *logrus.Logger) error {
	log.Info("Running database migrations...")
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("Database migrations completed")
	return nil
}
