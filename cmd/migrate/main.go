package main

import (
	"flag"
	"log"

	"github.com/titanmarket/titanmarket-backend/internal/config"
	"github.com/titanmarket/titanmarket-backend/internal/migration"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	configPath := flag.String("config", config.ConfigPath(), "config file path")
	seedAdmin := flag.String("seed-admin", "", "grant the admin flag to this user email after migrating")
	dryRun := flag.Bool("dry-run", false, "list the tables that would be migrated without connecting")
	verbose := flag.Bool("verbose", false, "verbose SQL logging")
	flag.Parse()

	if loaded := config.LoadDotEnv(); len(loaded) == 0 {
		log.Println("No .env file found, using environment variables")
	}

	if *dryRun {
		for _, model := range migration.Models() {
			log.Printf("[dry-run] would migrate %T", model)
		}
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logLevel := gormlogger.Warn
	if *verbose {
		logLevel = gormlogger.Info
	}

	dialector := mysql.Open(cfg.Database.GetDSN())
	if cfg.Database.Driver == "postgres" {
		dialector = postgres.Open(cfg.Database.GetDSN())
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get underlying DB: %v", err)
	}
	defer sqlDB.Close()

	if err := migration.Run(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Printf("Migrated %d tables", len(migration.Models()))

	if *seedAdmin != "" {
		if err := migration.SeedAdmin(db, *seedAdmin); err != nil {
			log.Fatalf("Failed to seed admin: %v", err)
		}
		log.Printf("Granted admin to %s", *seedAdmin)
	}
}
