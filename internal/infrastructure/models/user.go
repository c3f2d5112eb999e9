package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	FirebaseUID     string    `gorm:"column:firebase_uid;type:varchar(128);uniqueIndex;not null"`
	Email           string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	DisplayName     string    `gorm:"type:varchar(100)"`
	ProfileImageURL string    `gorm:"column:profile_image_url;type:text"`
	Role            string    `gorm:"type:varchar(20);not null;default:'CITIZEN'"`
	CoinBalance     int64     `gorm:"not null;default:0;check:chk_users_coin_balance,coin_balance >= 0"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CollectorWhitelist holds emails pre-registered as collectors.
type CollectorWhitelist struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email   string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	AddedBy string    `gorm:"type:varchar(255)"`
	AddedAt time.Time
}

func (CollectorWhitelist) TableName() string {
	return "collector_whitelist"
}
