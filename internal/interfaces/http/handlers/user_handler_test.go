package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"greencoin.backend/internal/domain/entities"
	domainerrors "greencoin.backend/internal/domain/errors"
)

type userServiceStub struct {
	user      *entities.User
	lastInput *entities.RegisterUserInput
	err       error
}

func (s *userServiceStub) Register(_ context.Context, identity *entities.Identity, input *entities.RegisterUserInput) (*entities.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.lastInput = input
	u := *s.user
	u.FirebaseUID = identity.Subject
	if input.DisplayName != "" {
		u.DisplayName = input.DisplayName
	}
	return &u, nil
}

func (s *userServiceStub) Profile(_ context.Context, userID uuid.UUID) (*entities.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if userID != s.user.ID {
		return nil, domainerrors.ErrNotFound
	}
	return s.user, nil
}

func newUserRouter(svc userService, user *entities.User) *gin.Engine {
	h := &UserHandler{userUsecase: svc}
	r := gin.New()
	r.Use(withUser(user))
	r.POST("/users/register", h.Register)
	r.GET("/users/profile", h.Profile)
	return r
}

func TestUserHandler_Register(t *testing.T) {
	user := testUser(entities.UserRoleCitizen)
	svc := &userServiceStub{user: user}
	r := newUserRouter(svc, user)

	w := doRequest(t, r, http.MethodPost, "/users/register", gin.H{"displayName": "Ana"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Ana", decode[entities.User](t, w).DisplayName)

	w = doRequest(t, r, http.MethodPost, "/users/register?displayName=Budi", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Budi", svc.lastInput.DisplayName)

	req := httptest.NewRequest(http.MethodPost, "/users/register", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doRequest(t, r, http.MethodPost, "/users/register", gin.H{"displayName": strings.Repeat("x", 101)})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserHandler_Register_Errors(t *testing.T) {
	user := testUser(entities.UserRoleCitizen)

	w := doRequest(t, newUserRouter(&userServiceStub{user: user}, nil), http.MethodPost, "/users/register", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	svc := &userServiceStub{user: user, err: domainerrors.ErrValidation}
	w = doRequest(t, newUserRouter(svc, user), http.MethodPost, "/users/register", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserHandler_Profile(t *testing.T) {
	user := testUser(entities.UserRoleCollector)
	r := newUserRouter(&userServiceStub{user: user}, user)

	w := doRequest(t, r, http.MethodGet, "/users/profile", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[entities.User](t, w)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, entities.UserRoleCollector, got.Role)

	other := newUserRouter(&userServiceStub{user: user}, testUser(entities.UserRoleCitizen))
	assert.Equal(t, http.StatusNotFound, doRequest(t, other, http.MethodGet, "/users/profile", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(t, newUserRouter(&userServiceStub{user: user}, nil), http.MethodGet, "/users/profile", nil).Code)
}
