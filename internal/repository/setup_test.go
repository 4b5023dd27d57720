package repository

import (
	"testing"

	"github.com/titanmarket/titanmarket-backend/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&domain.User{}, &domain.Listing{}, &domain.Conversation{}, &domain.Message{}, &domain.Report{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, email string) *domain.User {
	t.Helper()
	u := &domain.User{Email: email, DisplayName: email}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return u
}

func createListing(t *testing.T, db *gorm.DB, sellerID uint64, title string, price float64) *domain.Listing {
	t.Helper()
	l := &domain.Listing{
		SellerID:  sellerID,
		Title:     title,
		Price:     price,
		Category:  domain.CategoryTextbooks,
		Condition: domain.ConditionGood,
		Status:    domain.ListingStatusActive,
	}
	l.SetImageURLs(nil)
	if err := db.Create(l).Error; err != nil {
		t.Fatalf("failed to create listing: %v", err)
	}
	return l
}
