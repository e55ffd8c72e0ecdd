package db

import (
	"github.com/userdesk/backend/internal/domain"
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	err := db.AutoMigrate(
		&domain.User{},
		&domain.InfoView{},
		&domain.Task{},
	)
	if err != nil {
		return err
	}

	return createCustomIndexes(db)
}

func createCustomIndexes(db *gorm.DB) error {
	// Expiry sweep scans by age and status together.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_tasks_created_at_status
		ON tasks (created_at, status)
	`).Error; err != nil {
		return err
	}

	// Case-insensitive name filtering for listing and export.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_users_name_lower
		ON users (LOWER(name))
		WHERE deleted_at IS NULL
	`).Error; err != nil {
		return err
	}

	return nil
}
