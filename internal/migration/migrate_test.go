package migration

import (
	"testing"

	"github.com/titanmarket/titanmarket-backend/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestRunCreatesTablesAndIsIdempotent(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := Run(db); err != nil {
			t.Fatalf("run %d: %v", i+1, err)
		}
	}

	for _, model := range Models() {
		if !db.Migrator().HasTable(model) {
			t.Errorf("expected table for %T", model)
		}
	}
	if !db.Migrator().HasIndex(&domain.Conversation{}, "idx_conversation_listing_buyer") {
		t.Error("expected unique (listing, buyer) index on conversations")
	}
}

func TestSeedAdmin(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := Run(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Create(&domain.User{Email: "admin@csu.fullerton.edu", DisplayName: "Admin"}).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	if err := SeedAdmin(db, "admin@csu.fullerton.edu"); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	var user domain.User
	db.First(&user, "email = ?", "admin@csu.fullerton.edu")
	if !user.IsAdmin {
		t.Error("expected admin flag to be set")
	}

	if err := SeedAdmin(db, "nobody@csu.fullerton.edu"); err == nil {
		t.Error("expected error for unknown email")
	}
}
