package middleware

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"greencoin.backend/internal/domain/authz"
	"greencoin.backend/internal/domain/entities"
	domainerrors "greencoin.backend/internal/domain/errors"
	"greencoin.backend/internal/interfaces/http/response"
	"greencoin.backend/pkg/logger"
)

const (
	// AuthorizationHeader is the header key for authorization
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
	// TokenQueryParam carries the token for clients that cannot set headers
	TokenQueryParam = "token"
	// UserKey is the context key for the resolved *entities.User
	UserKey = "user"
	// UserIDKey is the context key for the user ID string
	UserIDKey = "user_id"
	// IdentityKey is the context key for the verified *entities.Identity
	IdentityKey = "identity"
)

// Authenticator verifies a bearer token
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*entities.Identity, error)
}

// UserResolver maps a verified identity onto a stored user
type UserResolver interface {
	Resolve(ctx context.Context, identity *entities.Identity) (*entities.User, error)
}

// AuthOption tweaks AuthMiddleware
type AuthOption func(*authOptions)

type authOptions struct {
	allowQueryToken bool
}

// AllowQueryToken accepts ?token= when no Authorization header is sent.
// Browsers cannot set headers on WebSocket upgrades.
func AllowQueryToken() AuthOption {
	return func(o *authOptions) { o.allowQueryToken = true }
}

// AuthMiddleware verifies the caller and loads the matching user
func AuthMiddleware(auth Authenticator, users UserResolver, opts ...AuthOption) gin.HandlerFunc {
	var o authOptions
	for _, opt := range opts {
		opt(&o)
	}

	return func(c *gin.Context) {
		token, err := extractToken(c, o.allowQueryToken)
		if err != nil {
			logger.Debug(c.Request.Context(), "Authentication failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
			response.AbortWithError(c, err)
			return
		}

		identity, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			logger.Debug(c.Request.Context(), "Authentication failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
			response.AbortWithError(c, domainerrors.Unauthorized("invalid or expired token"))
			return
		}

		user, err := users.Resolve(c.Request.Context(), identity)
		if err != nil {
			response.AbortWithError(c, err)
			return
		}

		c.Set(IdentityKey, identity)
		c.Set(UserKey, user)
		c.Set(UserIDKey, user.ID.String())
		ctx := context.WithValue(c.Request.Context(), logger.UserIDKey, user.ID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func extractToken(c *gin.Context, allowQuery bool) (string, error) {
	authHeader := c.GetHeader(AuthorizationHeader)
	if authHeader == "" {
		if allowQuery {
			if token := c.Query(TokenQueryParam); token != "" {
				return token, nil
			}
		}
		return "", domainerrors.Unauthorized("authorization header is required")
	}

	if !strings.HasPrefix(authHeader, BearerPrefix) {
		return "", domainerrors.Unauthorized("invalid authorization format, use: Bearer <token>")
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, BearerPrefix))
	if token == "" {
		return "", domainerrors.Unauthorized("empty bearer token")
	}
	return token, nil
}

// Authorize rejects callers whose role may not perform op
func Authorize(policy authz.Policy, op authz.Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetUser(c)
		if !ok {
			response.AbortWithError(c, domainerrors.Unauthorized("user not found in context"))
			return
		}
		if !policy.Allowed(op, user.Role) {
			logger.Info(c.Request.Context(), "Operation denied",
				zap.String("operation", string(op)),
				zap.String("role", string(user.Role)),
			)
			response.AbortWithError(c, domainerrors.Forbidden(fmt.Sprintf("role %s may not perform %s", user.Role, op)))
			return
		}
		c.Next()
	}
}

// GetUser gets the resolved user from context
func GetUser(c *gin.Context) (*entities.User, bool) {
	v, exists := c.Get(UserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*entities.User)
	return user, ok && user != nil
}

// GetUserID gets the user ID from context
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	user, ok := GetUser(c)
	if !ok {
		return uuid.Nil, false
	}
	return user.ID, true
}

// GetIdentity gets the verified identity from context
func GetIdentity(c *gin.Context) (*entities.Identity, bool) {
	v, exists := c.Get(IdentityKey)
	if !exists {
		return nil, false
	}
	identity, ok := v.(*entities.Identity)
	return identity, ok && identity != nil
}
