package main

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"greencoin.backend/internal/config"
	"greencoin.backend/internal/infrastructure/datasources/database"
)

func sqliteConfig() *config.Config {
	return &config.Config{Database: config.DatabaseConfig{
		Driver:     "sqlite",
		SQLitePath: fmt.Sprintf("file:migrate_%d?mode=memory&cache=shared", time.Now().UnixNano()),
	}}
}

func TestRunMigrate_CreatesTables(t *testing.T) {
	var (
		out    bytes.Buffer
		opened *gorm.DB
	)
	err := runMigrate(migrateDeps{
		loadEnv: func() error { return errors.New("no .env") },
		loadCfg: sqliteConfig,
		open: func(cfg config.DatabaseConfig) (*gorm.DB, error) {
			db, err := database.Open(cfg)
			opened = db
			return db, err
		},
		migrate: func(db *gorm.DB) error {
			if err := database.Migrate(db); err != nil {
				return err
			}
			for _, table := range []string{"users", "collector_whitelist", "waste_reports", "coin_transactions"} {
				if !db.Migrator().HasTable(table) {
					return fmt.Errorf("missing table %s", table)
				}
			}
			return nil
		},
		out: &out,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opened == nil {
		t.Fatal("expected database to be opened")
	}
	if !strings.Contains(out.String(), "driver=sqlite") {
		t.Fatalf("unexpected output: %s", out.String())
	}
}

func TestRunMigrate_OpenError(t *testing.T) {
	err := runMigrate(migrateDeps{
		loadEnv: func() error { return nil },
		loadCfg: sqliteConfig,
		open: func(config.DatabaseConfig) (*gorm.DB, error) {
			return nil, errors.New("refused")
		},
	})
	if err == nil || !strings.Contains(err.Error(), "failed to connect db") {
		t.Fatalf("expected connect error, got %v", err)
	}
}

func TestRunMigrate_MigrateError(t *testing.T) {
	err := runMigrate(migrateDeps{
		loadEnv: func() error { return nil },
		loadCfg: sqliteConfig,
		migrate: func(*gorm.DB) error { return errors.New("ddl failed") },
		out:     &bytes.Buffer{},
	})
	if err == nil || !strings.Contains(err.Error(), "ddl failed") {
		t.Fatalf("expected migrate error, got %v", err)
	}
}
