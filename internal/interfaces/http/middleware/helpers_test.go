package middleware

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	redisv9 "github.com/redis/go-redis/v9"
	"greencoin.backend/internal/domain/entities"
	domainerrors "greencoin.backend/internal/domain/errors"
	redispkg "greencoin.backend/pkg/redis"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// tokenAuth accepts tokens listed in its map
type tokenAuth map[string]*entities.Identity

func (a tokenAuth) Authenticate(_ context.Context, token string) (*entities.Identity, error) {
	id, ok := a[token]
	if !ok {
		return nil, domainerrors.ErrUnauthenticated
	}
	return id, nil
}

type resolverStub struct {
	users map[string]*entities.User
	err   error
}

func (r *resolverStub) Resolve(_ context.Context, identity *entities.Identity) (*entities.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.users[identity.Subject], nil
}

func newAuthFixture() (tokenAuth, *resolverStub) {
	auth := tokenAuth{
		"citizen-token":   {Subject: "citizen", Email: "c@greencoin.test"},
		"collector-token": {Subject: "collector", Email: "k@greencoin.test"},
	}
	resolver := &resolverStub{users: map[string]*entities.User{
		"citizen":   {ID: uuid.New(), FirebaseUID: "citizen", Role: entities.UserRoleCitizen},
		"collector": {ID: uuid.New(), FirebaseUID: "collector", Role: entities.UserRoleCollector},
	}}
	return auth, resolver
}

func startMiniRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	srv, err := miniredis.Run()
	if err != nil {
		t.Skipf("skip: miniredis unavailable in this environment: %v", err)
	}
	t.Cleanup(srv.Close)

	cli := redisv9.NewClient(&redisv9.Options{Addr: srv.Addr()})
	redispkg.SetClient(cli)
	t.Cleanup(func() { _ = cli.Close() })
	return srv
}
