package repositories

import (
	"context"

	"github.com/google/uuid"
	"greencoin.backend/internal/domain/entities"
)

// UserRepository defines user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByFirebaseUID(ctx context.Context, firebaseUID string) (*entities.User, error)
	UpdateProfile(ctx context.Context, user *entities.User) error
	// AddBalance atomically adds amount to the balance and returns the new value.
	AddBalance(ctx context.Context, id uuid.UUID, amount int64) (int64, error)
	// DeductBalance atomically subtracts amount when the balance covers it.
	// It fails with ErrInsufficientBalance otherwise.
	DeductBalance(ctx context.Context, id uuid.UUID, amount int64) (int64, error)
	List(ctx context.Context, limit, offset int) ([]*entities.User, error)
}

// WhitelistRepository answers collector whitelist membership
type WhitelistRepository interface {
	IsWhitelisted(ctx context.Context, email string) (bool, error)
}
