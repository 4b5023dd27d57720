package migration

import (
	"fmt"

	"github.com/titanmarket/titanmarket-backend/internal/domain"
	"gorm.io/gorm"
)

// Models lists every table owned by the service, in dependency order
func Models() []interface{} {
	return []interface{}{
		&domain.User{},
		&domain.Listing{},
		&domain.Conversation{},
		&domain.Message{},
		&domain.Report{},
	}
}

// Run executes AutoMigrate for all marketplace tables. Existing tables are
// altered in place; nothing is dropped.
func Run(db *gorm.DB) error {
	for _, model := range Models() {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("migrate %T: %w", model, err)
		}
	}
	return nil
}

// SeedAdmin grants the admin flag to an existing user by email
func SeedAdmin(db *gorm.DB, email string) error {
	result := db.Model(&domain.User{}).Where("email = ?", email).Update("is_admin", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("no user with email %s", email)
	}
	return nil
}
