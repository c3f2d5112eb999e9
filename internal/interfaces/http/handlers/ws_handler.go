package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	domainerrors "greencoin.backend/internal/domain/errors"
	"greencoin.backend/internal/interfaces/http/middleware"
	"greencoin.backend/internal/interfaces/http/response"
	"greencoin.backend/pkg/logger"
)

type subscriptionHub interface {
	Serve(w http.ResponseWriter, r *http.Request, uid string) error
}

// WSHandler upgrades authenticated callers to the notification stream
type WSHandler struct {
	hub subscriptionHub
}

// NewWSHandler creates a new websocket handler
func NewWSHandler(hub subscriptionHub) *WSHandler {
	return &WSHandler{hub: hub}
}

// Subscribe streams report and coin events to the caller
// GET /api/v1/ws
func (h *WSHandler) Subscribe(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	// The upgrader writes its own HTTP error on failure
	if err := h.hub.Serve(c.Writer, c.Request, user.FirebaseUID); err != nil {
		logger.Warn(c.Request.Context(), "WebSocket upgrade failed", zap.Error(err))
	}
}
