package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"greencoin.backend/internal/domain/entities"
	domainerrors "greencoin.backend/internal/domain/errors"
	"greencoin.backend/internal/domain/repositories"
	"greencoin.backend/pkg/logger"
)

// UserUsecase maps verified identities onto local users
type UserUsecase struct {
	userRepo  repositories.UserRepository
	whitelist repositories.WhitelistRepository
}

// NewUserUsecase creates a new user usecase
func NewUserUsecase(userRepo repositories.UserRepository, whitelist repositories.WhitelistRepository) *UserUsecase {
	return &UserUsecase{userRepo: userRepo, whitelist: whitelist}
}

// Resolve returns the user behind identity, creating it on first sight.
// New users become COLLECTOR when their email is whitelisted and CITIZEN
// otherwise. The role of an existing user never changes here.
func (u *UserUsecase) Resolve(ctx context.Context, identity *entities.Identity) (*entities.User, error) {
	if identity == nil || strings.TrimSpace(identity.Subject) == "" {
		return nil, fmt.Errorf("identity without subject: %w", domainerrors.ErrUnauthenticated)
	}

	user, err := u.userRepo.GetByFirebaseUID(ctx, identity.Subject)
	switch {
	case err == nil:
		return u.refreshProfile(ctx, user, identity)
	case !errors.Is(err, domainerrors.ErrNotFound):
		return nil, err
	}

	if strings.TrimSpace(identity.Email) == "" {
		return nil, fmt.Errorf("identity %s has no email: %w", identity.Subject, domainerrors.ErrValidation)
	}

	role := entities.UserRoleCitizen
	listed, err := u.whitelist.IsWhitelisted(ctx, identity.Email)
	if err != nil {
		return nil, err
	}
	if listed {
		role = entities.UserRoleCollector
	}

	user = &entities.User{
		FirebaseUID:     identity.Subject,
		Email:           identity.Email,
		DisplayName:     displayNameFor(identity),
		ProfileImageURL: identity.PhotoURL,
		Role:            role,
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			// lost a race with a concurrent first login
			return u.userRepo.GetByFirebaseUID(ctx, identity.Subject)
		}
		return nil, err
	}

	logger.Info(ctx, "User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
	)
	return user, nil
}

// Register resolves identity and applies the profile sent with the request.
func (u *UserUsecase) Register(ctx context.Context, identity *entities.Identity, input *entities.RegisterUserInput) (*entities.User, error) {
	user, err := u.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}
	if input == nil {
		return user, nil
	}

	name := strings.TrimSpace(input.DisplayName)
	if name == "" || name == user.DisplayName {
		return user, nil
	}
	user.DisplayName = name
	if err := u.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Profile returns a user by id
func (u *UserUsecase) Profile(ctx context.Context, userID uuid.UUID) (*entities.User, error) {
	return u.userRepo.GetByID(ctx, userID)
}

func (u *UserUsecase) refreshProfile(ctx context.Context, user *entities.User, identity *entities.Identity) (*entities.User, error) {
	changed := false
	if identity.DisplayName != "" && identity.DisplayName != user.DisplayName {
		user.DisplayName = identity.DisplayName
		changed = true
	}
	if identity.PhotoURL != "" && identity.PhotoURL != user.ProfileImageURL {
		user.ProfileImageURL = identity.PhotoURL
		changed = true
	}
	if !changed {
		return user, nil
	}
	if err := u.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func displayNameFor(identity *entities.Identity) string {
	if name := strings.TrimSpace(identity.DisplayName); name != "" {
		return name
	}
	if at := strings.Index(identity.Email, "@"); at > 0 {
		return identity.Email[:at]
	}
	return "GreenCoin user"
}
