package database

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/roomloop/flatmarket/internal/model"
)

// SeedDefaultAdmin creates the bootstrap admin account when no user with the
// configured email exists. Existing accounts are never touched.
func SeedDefaultAdmin(db *gorm.DB, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	var existing model.User
	err := db.Where("lower(email) = lower(?)", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("checking admin account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}

	admin := model.User{
		Name:     "Administrator",
		Email:    email,
		Password: string(hash),
		Role:     model.RoleAdmin,
	}

	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("creating admin account: %w", err)
	}

	return nil
}
