package repositories

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"greencoin.backend/internal/domain/entities"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "open sqlite")

	// One connection serializes writers the way row locks do on postgres.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createUserTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE users (
		id TEXT PRIMARY KEY,
		firebase_uid TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		display_name TEXT,
		profile_image_url TEXT,
		role TEXT NOT NULL DEFAULT 'CITIZEN',
		coin_balance INTEGER NOT NULL DEFAULT 0 CHECK (coin_balance >= 0),
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createWhitelistTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE collector_whitelist (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		added_by TEXT,
		added_at DATETIME
	);`)
}

func createWasteReportTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE waste_reports (
		id TEXT PRIMARY KEY,
		reporter_id TEXT NOT NULL,
		collector_id TEXT,
		latitude REAL NOT NULL,
		longitude REAL NOT NULL,
		image_url TEXT NOT NULL,
		description TEXT,
		status TEXT NOT NULL,
		coins_awarded INTEGER NOT NULL,
		reported_at DATETIME NOT NULL,
		picked_at DATETIME,
		collected_at DATETIME,
		updated_at DATETIME
	);`)
}

func createCoinTransactionTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE coin_transactions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		amount INTEGER NOT NULL,
		transaction_type TEXT NOT NULL,
		reference_id TEXT,
		reference_type TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);`)
}

func createAllTables(t *testing.T, db *gorm.DB) {
	createUserTable(t, db)
	createWhitelistTable(t, db)
	createWasteReportTable(t, db)
	createCoinTransactionTable(t, db)
}

func seedUser(t *testing.T, repo *UserRepository, uid string, role entities.UserRole) *entities.User {
	t.Helper()
	u := &entities.User{
		FirebaseUID: uid,
		Email:       uid + "@greencoin.test",
		DisplayName: strings.ToUpper(uid[:1]) + uid[1:],
		Role:        role,
	}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func seedReport(t *testing.T, repo *WasteReportRepository, reporterID uuid.UUID, lat, lon float64) *entities.WasteReport {
	t.Helper()
	r := &entities.WasteReport{
		ReporterID:   reporterID,
		Latitude:     decimal.NewFromFloat(lat),
		Longitude:    decimal.NewFromFloat(lon),
		ImageURL:     "https://img.greencoin.test/" + uuid.NewString() + ".jpg",
		Status:       entities.ReportStatusOpen,
		CoinsAwarded: entities.DefaultCoinsPerReport,
	}
	require.NoError(t, repo.Create(context.Background(), r))
	return r
}
