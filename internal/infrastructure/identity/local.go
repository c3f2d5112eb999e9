package identity

import (
	"context"
	"errors"
	"fmt"

	"greencoin.backend/internal/domain/entities"
	domainerrors "greencoin.backend/internal/domain/errors"
	"greencoin.backend/pkg/jwt"
)

// LocalAuthenticator accepts HS256 tokens signed by this service. It stands
// in for Firebase in development and tests.
type LocalAuthenticator struct {
	jwt *jwt.JWTService
}

// NewLocalAuthenticator creates a local authenticator
func NewLocalAuthenticator(svc *jwt.JWTService) *LocalAuthenticator {
	return &LocalAuthenticator{jwt: svc}
}

// Authenticate validates token and returns the caller identity
func (a *LocalAuthenticator) Authenticate(_ context.Context, token string) (*entities.Identity, error) {
	claims, err := a.jwt.ValidateToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrExpiredToken) {
			return nil, fmt.Errorf("token expired: %w", domainerrors.ErrUnauthenticated)
		}
		return nil, fmt.Errorf("invalid token: %w", domainerrors.ErrUnauthenticated)
	}

	return &entities.Identity{
		Subject:     claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.Name,
		PhotoURL:    claims.Picture,
	}, nil
}
