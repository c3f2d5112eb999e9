package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type WasteReport struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ReporterID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	CollectorID  *uuid.UUID      `gorm:"type:uuid;index"`
	Latitude     decimal.Decimal `gorm:"type:numeric(10,7);not null"`
	Longitude    decimal.Decimal `gorm:"type:numeric(10,7);not null"`
	ImageURL     string          `gorm:"column:image_url;type:text;not null"`
	Description  string          `gorm:"type:text"`
	Status       string          `gorm:"type:varchar(20);not null;index"`
	CoinsAwarded int64           `gorm:"not null"`
	ReportedAt   time.Time       `gorm:"not null"`
	PickedAt     *time.Time
	CollectedAt  *time.Time
	UpdatedAt    time.Time

	Reporter  User  `gorm:"foreignKey:ReporterID"`
	Collector *User `gorm:"foreignKey:CollectorID"`
}

type CoinTransaction struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;index"`
	Amount          int64     `gorm:"not null"`
	TransactionType string    `gorm:"type:varchar(20);not null"`
	ReferenceID     string    `gorm:"type:varchar(255)"`
	ReferenceType   string    `gorm:"type:varchar(50);not null"`
	CreatedAt       time.Time `gorm:"not null;index"`
}

// All returns every persisted model, in dependency order, for migrations.
func All() []interface{} {
	return []interface{}{
		&User{},
		&CollectorWhitelist{},
		&WasteReport{},
		&CoinTransaction{},
	}
}
