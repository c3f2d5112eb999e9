package repositories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"greencoin.backend/internal/domain/entities"
	domainerrors "greencoin.backend/internal/domain/errors"
)

func TestUserRepository_CRUDAndList(t *testing.T) {
	db := newTestDB(t)
	createUserTable(t, db)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := seedUser(t, repo, "alice", entities.UserRoleCitizen)
	require.NotEqual(t, uuid.Nil, u.ID)

	byID, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Email, byID.Email)
	require.Equal(t, entities.UserRoleCitizen, byID.Role)
	require.Zero(t, byID.CoinBalance)

	byUID, err := repo.GetByFirebaseUID(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, u.ID, byUID.ID)

	u.DisplayName = "Alice Updated"
	u.ProfileImageURL = "https://img.greencoin.test/alice.png"
	u.Role = entities.UserRoleAdmin
	require.NoError(t, repo.UpdateProfile(ctx, u))

	updated, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "Alice Updated", updated.DisplayName)
	require.Equal(t, entities.UserRoleCitizen, updated.Role, "profile updates never touch the role")

	seedUser(t, repo, "bob", entities.UserRoleCollector)
	items, err := repo.List(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)

	page, err := repo.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
}

func TestUserRepository_DuplicateSubject(t *testing.T) {
	db := newTestDB(t)
	createUserTable(t, db)
	repo := NewUserRepository(db)

	seedUser(t, repo, "alice", entities.UserRoleCitizen)
	err := repo.Create(context.Background(), &entities.User{
		FirebaseUID: "alice",
		Email:       "other@greencoin.test",
		Role:        entities.UserRoleCitizen,
	})
	require.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
}

func TestUserRepository_NotFoundBranches(t *testing.T) {
	db := newTestDB(t)
	createUserTable(t, db)
	repo := NewUserRepository(db)
	ctx := context.Background()
	id := uuid.New()

	_, err := repo.GetByID(ctx, id)
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = repo.GetByFirebaseUID(ctx, "missing")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	err = repo.UpdateProfile(ctx, &entities.User{ID: id})
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = repo.AddBalance(ctx, id, 10)
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = repo.DeductBalance(ctx, id, 10)
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestUserRepository_BalanceMovements(t *testing.T) {
	db := newTestDB(t)
	createUserTable(t, db)
	repo := NewUserRepository(db)
	ctx := context.Background()
	u := seedUser(t, repo, "alice", entities.UserRoleCitizen)

	balance, err := repo.AddBalance(ctx, u.ID, 25)
	require.NoError(t, err)
	require.Equal(t, int64(25), balance)

	balance, err = repo.DeductBalance(ctx, u.ID, 20)
	require.NoError(t, err)
	require.Equal(t, int64(5), balance)

	_, err = repo.DeductBalance(ctx, u.ID, 6)
	require.ErrorIs(t, err, domainerrors.ErrInsufficientBalance)

	balance, err = repo.DeductBalance(ctx, u.ID, 5)
	require.NoError(t, err)
	require.Zero(t, balance)
}

func TestWhitelistRepository_IsWhitelisted(t *testing.T) {
	db := newTestDB(t)
	createWhitelistTable(t, db)
	repo := NewWhitelistRepository(db)
	ctx := context.Background()

	mustExec(t, db, `INSERT INTO collector_whitelist (id, email, added_by) VALUES (?, ?, ?)`,
		uuid.NewString(), "Crew@GreenCoin.test", "ops")

	ok, err := repo.IsWhitelisted(ctx, "crew@greencoin.test")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.IsWhitelisted(ctx, "someone@greencoin.test")
	require.NoError(t, err)
	require.False(t, ok)
}
