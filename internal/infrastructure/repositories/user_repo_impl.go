package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"greencoin.backend/internal/domain/entities"
	domainerrors "greencoin.backend/internal/domain/errors"
	"greencoin.backend/internal/infrastructure/models"
	"greencoin.backend/pkg/utils"
)

// UserRepository implements user data operations
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	if user.ID == uuid.Nil {
		user.ID = utils.GenerateUUIDv7()
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	m := &models.User{
		ID:              user.ID,
		FirebaseUID:     user.FirebaseUID,
		Email:           user.Email,
		DisplayName:     user.DisplayName,
		ProfileImageURL: user.ProfileImageURL,
		Role:            string(user.Role),
		CoinBalance:     user.CoinBalance,
		CreatedAt:       user.CreatedAt,
		UpdatedAt:       user.UpdatedAt,
	}
	return classify(GetDB(ctx, r.db).Create(m).Error)
}

// GetByID gets a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	var m models.User
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, classify(err)
	}
	return toUserEntity(&m), nil
}

// GetByFirebaseUID gets a user by identity provider subject
func (r *UserRepository) GetByFirebaseUID(ctx context.Context, firebaseUID string) (*entities.User, error) {
	var m models.User
	if err := GetDB(ctx, r.db).Where("firebase_uid = ?", firebaseUID).First(&m).Error; err != nil {
		return nil, classify(err)
	}
	return toUserEntity(&m), nil
}

// UpdateProfile updates mutable profile fields. Role and balance are never
// written here.
func (r *UserRepository) UpdateProfile(ctx context.Context, user *entities.User) error {
	user.UpdatedAt = time.Now()
	result := GetDB(ctx, r.db).Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"display_name":      user.DisplayName,
			"profile_image_url": user.ProfileImageURL,
			"updated_at":        user.UpdatedAt,
		})
	if result.Error != nil {
		return classify(result.Error)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// AddBalance increments the balance in a single statement
func (r *UserRepository) AddBalance(ctx context.Context, id uuid.UUID, amount int64) (int64, error) {
	db := GetDB(ctx, r.db)
	result := db.Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"coin_balance": gorm.Expr("coin_balance + ?", amount),
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return 0, classify(result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, domainerrors.ErrNotFound
	}
	return r.balanceOf(ctx, id)
}

// DeductBalance decrements the balance only if it covers amount
func (r *UserRepository) DeductBalance(ctx context.Context, id uuid.UUID, amount int64) (int64, error) {
	db := GetDB(ctx, r.db)
	result := db.Model(&models.User{}).
		Where("id = ? AND coin_balance >= ?", id, amount).
		Updates(map[string]interface{}{
			"coin_balance": gorm.Expr("coin_balance - ?", amount),
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return 0, classify(result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := r.balanceOf(ctx, id); err != nil {
			return 0, err
		}
		return 0, domainerrors.ErrInsufficientBalance
	}
	return r.balanceOf(ctx, id)
}

// List lists users ordered by creation
func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*entities.User, error) {
	var userModels []models.User
	query := GetDB(ctx, r.db).Order("created_at ASC, id ASC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}
	if err := query.Find(&userModels).Error; err != nil {
		return nil, classify(err)
	}

	users := make([]*entities.User, 0, len(userModels))
	for i := range userModels {
		users = append(users, toUserEntity(&userModels[i]))
	}
	return users, nil
}

func (r *UserRepository) balanceOf(ctx context.Context, id uuid.UUID) (int64, error) {
	var m models.User
	if err := GetDB(ctx, r.db).Select("coin_balance").Where("id = ?", id).First(&m).Error; err != nil {
		return 0, classify(err)
	}
	return m.CoinBalance, nil
}

func toUserEntity(m *models.User) *entities.User {
	return &entities.User{
		ID:              m.ID,
		FirebaseUID:     m.FirebaseUID,
		Email:           m.Email,
		DisplayName:     m.DisplayName,
		ProfileImageURL: m.ProfileImageURL,
		Role:            entities.UserRole(m.Role),
		CoinBalance:     m.CoinBalance,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// WhitelistRepository implements collector whitelist lookups
type WhitelistRepository struct {
	db *gorm.DB
}

// NewWhitelistRepository creates a new whitelist repository
func NewWhitelistRepository(db *gorm.DB) *WhitelistRepository {
	return &WhitelistRepository{db: db}
}

// IsWhitelisted reports whether email is pre-registered as a collector.
// Matching is case-insensitive.
func (r *WhitelistRepository) IsWhitelisted(ctx context.Context, email string) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&models.CollectorWhitelist{}).
		Where("LOWER(email) = LOWER(?)", email).
		Count(&count).Error
	if err != nil {
		return false, classify(err)
	}
	return count > 0, nil
}
