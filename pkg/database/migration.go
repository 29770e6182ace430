package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/roomloop/flatmarket/internal/model"
)

// RunMigrations migrates all application tables and supporting indexes.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Flat{},
		&model.Payment{},
	); err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("index creation failed: %w", err)
	}

	return nil
}

// createIndexes adds composite indexes that AutoMigrate cannot express.
// All statements are idempotent.
func createIndexes(db *gorm.DB) error {
	statements := []string{
		// covers the public listing filter (city + active flag)
		`CREATE INDEX IF NOT EXISTS idx_flats_city_active ON flats (city, is_active) WHERE deleted_at IS NULL`,
		// covers rent range scans inside a city
		`CREATE INDEX IF NOT EXISTS idx_flats_city_rent ON flats (city, monthly_rent) WHERE deleted_at IS NULL`,
		// admin payment views are ordered newest first per user
		`CREATE INDEX IF NOT EXISTS idx_payments_user_created ON payments (user_id, created_at DESC)`,
		// case-insensitive email lookup for login and duplicate checks
		`CREATE INDEX IF NOT EXISTS idx_users_email_lower ON users (lower(email))`,
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("executing %q: %w", stmt, err)
		}
	}

	return nil
}
