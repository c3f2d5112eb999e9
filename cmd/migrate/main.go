package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"greencoin.backend/internal/config"
	"greencoin.backend/internal/infrastructure/datasources/database"
)

type migrateDeps struct {
	loadEnv func() error
	loadCfg func() *config.Config
	open    func(cfg config.DatabaseConfig) (*gorm.DB, error)
	migrate func(db *gorm.DB) error
	out     io.Writer
}

func defaultMigrateDeps() migrateDeps {
	return migrateDeps{
		loadEnv: func() error { return godotenv.Load() },
		loadCfg: config.Load,
		open:    database.Open,
		migrate: database.Migrate,
		out:     os.Stdout,
	}
}

func runMigrate(deps migrateDeps) error {
	def := defaultMigrateDeps()
	if deps.loadEnv == nil {
		deps.loadEnv = def.loadEnv
	}
	if deps.loadCfg == nil {
		deps.loadCfg = def.loadCfg
	}
	if deps.open == nil {
		deps.open = def.open
	}
	if deps.migrate == nil {
		deps.migrate = def.migrate
	}
	if deps.out == nil {
		deps.out = def.out
	}

	if err := deps.loadEnv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := deps.loadCfg()
	db, err := deps.open(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect db: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	if err := deps.migrate(db); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(deps.out, "Schema migrated (driver=%s)\n", cfg.Database.Driver)
	return nil
}

func main() {
	if err := runMigrate(defaultMigrateDeps()); err != nil {
		log.Fatal(err)
	}
}
