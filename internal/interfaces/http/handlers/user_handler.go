package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"greencoin.backend/internal/domain/entities"
	domainerrors "greencoin.backend/internal/domain/errors"
	"greencoin.backend/internal/interfaces/http/middleware"
	"greencoin.backend/internal/interfaces/http/response"
	"greencoin.backend/internal/usecases"
)

type userService interface {
	Register(ctx context.Context, identity *entities.Identity, input *entities.RegisterUserInput) (*entities.User, error)
	Profile(ctx context.Context, userID uuid.UUID) (*entities.User, error)
}

// UserHandler handles user endpoints
type UserHandler struct {
	userUsecase userService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userUsecase *usecases.UserUsecase) *UserHandler {
	return &UserHandler{userUsecase: userUsecase}
}

// Register creates or syncs the caller on first login
// POST /api/v1/users/register
func (h *UserHandler) Register(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	// displayName may come as JSON body or query parameter
	var input entities.RegisterUserInput
	if err := c.ShouldBind(&input); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	user, err := h.userUsecase.Register(c.Request.Context(), identity, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, user)
}

// Profile returns the caller's profile
// GET /api/v1/users/profile
func (h *UserHandler) Profile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	user, err := h.userUsecase.Profile(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, user)
}
