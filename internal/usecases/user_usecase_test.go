package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"greencoin.backend/internal/domain/entities"
	domainerrors "greencoin.backend/internal/domain/errors"
	"greencoin.backend/internal/usecases"
)

func TestUserUsecase_Resolve_CreatesCitizen(t *testing.T) {
	userRepo := new(MockUserRepository)
	whitelist := new(MockWhitelistRepository)
	uc := usecases.NewUserUsecase(userRepo, whitelist)
	ctx := context.Background()

	userRepo.On("GetByFirebaseUID", ctx, "uid-1").Return(nil, domainerrors.ErrNotFound).Once()
	whitelist.On("IsWhitelisted", ctx, "ana@greencoin.test").Return(false, nil).Once()
	userRepo.On("Create", ctx, mock.MatchedBy(func(u *entities.User) bool {
		return u.FirebaseUID == "uid-1" && u.Role == entities.UserRoleCitizen && u.CoinBalance == 0 && u.DisplayName == "ana"
	})).Return(nil).Once()

	user, err := uc.Resolve(ctx, &entities.Identity{Subject: "uid-1", Email: "ana@greencoin.test"})
	require.NoError(t, err)
	assert.Equal(t, entities.UserRoleCitizen, user.Role)
	userRepo.AssertExpectations(t)
	whitelist.AssertExpectations(t)
}

func TestUserUsecase_Resolve_WhitelistedBecomesCollector(t *testing.T) {
	userRepo := new(MockUserRepository)
	whitelist := new(MockWhitelistRepository)
	uc := usecases.NewUserUsecase(userRepo, whitelist)
	ctx := context.Background()

	userRepo.On("GetByFirebaseUID", ctx, "uid-2").Return(nil, domainerrors.ErrNotFound).Once()
	whitelist.On("IsWhitelisted", ctx, "crew@greencoin.test").Return(true, nil).Once()
	userRepo.On("Create", ctx, mock.AnythingOfType("*entities.User")).Return(nil).Once()

	user, err := uc.Resolve(ctx, &entities.Identity{Subject: "uid-2", Email: "crew@greencoin.test", DisplayName: "Crew"})
	require.NoError(t, err)
	assert.Equal(t, entities.UserRoleCollector, user.Role)
	assert.Equal(t, "Crew", user.DisplayName)
}

func TestUserUsecase_Resolve_ExistingUserKeepsRole(t *testing.T) {
	userRepo := new(MockUserRepository)
	whitelist := new(MockWhitelistRepository)
	uc := usecases.NewUserUsecase(userRepo, whitelist)
	ctx := context.Background()

	existing := &entities.User{ID: uuid.New(), FirebaseUID: "uid-3", DisplayName: "Old", Role: entities.UserRoleCitizen}
	userRepo.On("GetByFirebaseUID", ctx, "uid-3").Return(existing, nil).Once()
	userRepo.On("UpdateProfile", ctx, existing).Return(nil).Once()

	user, err := uc.Resolve(ctx, &entities.Identity{Subject: "uid-3", Email: "x@greencoin.test", DisplayName: "New", PhotoURL: "https://p"})
	require.NoError(t, err)
	assert.Equal(t, "New", user.DisplayName)
	assert.Equal(t, "https://p", user.ProfileImageURL)
	assert.Equal(t, entities.UserRoleCitizen, user.Role)
	whitelist.AssertNotCalled(t, "IsWhitelisted", mock.Anything, mock.Anything)
}

func TestUserUsecase_Resolve_UnchangedProfileSkipsWrite(t *testing.T) {
	userRepo := new(MockUserRepository)
	uc := usecases.NewUserUsecase(userRepo, new(MockWhitelistRepository))
	ctx := context.Background()

	existing := &entities.User{ID: uuid.New(), FirebaseUID: "uid-4", DisplayName: "Same"}
	userRepo.On("GetByFirebaseUID", ctx, "uid-4").Return(existing, nil).Once()

	_, err := uc.Resolve(ctx, &entities.Identity{Subject: "uid-4", DisplayName: "Same"})
	require.NoError(t, err)
	userRepo.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything)
}

func TestUserUsecase_Resolve_ConcurrentFirstLogin(t *testing.T) {
	userRepo := new(MockUserRepository)
	whitelist := new(MockWhitelistRepository)
	uc := usecases.NewUserUsecase(userRepo, whitelist)
	ctx := context.Background()

	winner := &entities.User{ID: uuid.New(), FirebaseUID: "uid-5", Role: entities.UserRoleCitizen}
	userRepo.On("GetByFirebaseUID", ctx, "uid-5").Return(nil, domainerrors.ErrNotFound).Once()
	whitelist.On("IsWhitelisted", ctx, "e@greencoin.test").Return(false, nil).Once()
	userRepo.On("Create", ctx, mock.Anything).Return(domainerrors.ErrAlreadyExists).Once()
	userRepo.On("GetByFirebaseUID", ctx, "uid-5").Return(winner, nil).Once()

	user, err := uc.Resolve(ctx, &entities.Identity{Subject: "uid-5", Email: "e@greencoin.test"})
	require.NoError(t, err)
	assert.Equal(t, winner.ID, user.ID)
}

func TestUserUsecase_Resolve_Errors(t *testing.T) {
	userRepo := new(MockUserRepository)
	whitelist := new(MockWhitelistRepository)
	uc := usecases.NewUserUsecase(userRepo, whitelist)
	ctx := context.Background()

	_, err := uc.Resolve(ctx, nil)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)

	_, err = uc.Resolve(ctx, &entities.Identity{Subject: "  "})
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)

	userRepo.On("GetByFirebaseUID", ctx, "uid-6").Return(nil, domainerrors.ErrNotFound).Once()
	_, err = uc.Resolve(ctx, &entities.Identity{Subject: "uid-6"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	boom := errors.New("db down")
	userRepo.On("GetByFirebaseUID", ctx, "uid-7").Return(nil, boom).Once()
	_, err = uc.Resolve(ctx, &entities.Identity{Subject: "uid-7", Email: "a@b.c"})
	assert.ErrorIs(t, err, boom)

	userRepo.On("GetByFirebaseUID", ctx, "uid-8").Return(nil, domainerrors.ErrNotFound).Once()
	whitelist.On("IsWhitelisted", ctx, "w@b.c").Return(false, domainerrors.ErrStorageUnavailable).Once()
	_, err = uc.Resolve(ctx, &entities.Identity{Subject: "uid-8", Email: "w@b.c"})
	assert.ErrorIs(t, err, domainerrors.ErrStorageUnavailable)
}

func TestUserUsecase_RegisterAndProfile(t *testing.T) {
	userRepo := new(MockUserRepository)
	uc := usecases.NewUserUsecase(userRepo, new(MockWhitelistRepository))
	ctx := context.Background()

	existing := &entities.User{ID: uuid.New(), FirebaseUID: "uid-9", DisplayName: "Before"}
	userRepo.On("GetByFirebaseUID", ctx, "uid-9").Return(existing, nil)
	userRepo.On("UpdateProfile", ctx, existing).Return(nil).Once()

	user, err := uc.Register(ctx, &entities.Identity{Subject: "uid-9"}, &entities.RegisterUserInput{DisplayName: " After "})
	require.NoError(t, err)
	assert.Equal(t, "After", user.DisplayName)

	userRepo.On("GetByID", ctx, existing.ID).Return(existing, nil).Once()
	profile, err := uc.Profile(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, profile.ID)
	userRepo.AssertExpectations(t)
}
