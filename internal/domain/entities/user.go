package entities

import (
	"time"

	"github.com/google/uuid"
)

// UserRole represents user roles
type UserRole string

const (
	UserRoleCitizen   UserRole = "CITIZEN"
	UserRoleCollector UserRole = "COLLECTOR"
	UserRoleAuthority UserRole = "AUTHORITY"
	UserRoleAdmin     UserRole = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case UserRoleCitizen, UserRoleCollector, UserRoleAuthority, UserRoleAdmin:
		return true
	}
	return false
}

// User represents a user entity
type User struct {
	ID              uuid.UUID `json:"id"`
	FirebaseUID     string    `json:"firebaseUid"`
	Email           string    `json:"email"`
	DisplayName     string    `json:"displayName"`
	ProfileImageURL string    `json:"profileImageUrl,omitempty"`
	Role            UserRole  `json:"role"`
	CoinBalance     int64     `json:"coinBalance"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// HasRole reports whether the user holds the given role.
func (u *User) HasRole(role UserRole) bool {
	return u.Role == role
}

// Identity is a verified caller identity produced by an authenticator.
type Identity struct {
	Subject     string
	Email       string
	DisplayName string
	PhotoURL    string
}

// RegisterUserInput represents optional profile data sent on first login
type RegisterUserInput struct {
	DisplayName string `json:"displayName" form:"displayName" binding:"omitempty,max=100"`
}
