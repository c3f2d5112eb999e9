package identity

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"greencoin.backend/internal/domain/entities"
	domainerrors "greencoin.backend/internal/domain/errors"
)

const firebaseIssuerPrefix = "https://securetoken.google.com/"

// FirebaseIssuer returns the token issuer of a Firebase project
func FirebaseIssuer(projectID string) string {
	return firebaseIssuerPrefix + projectID
}

// FirebaseAuthenticator verifies Firebase ID tokens through OIDC discovery
type FirebaseAuthenticator struct {
	verifier *oidc.IDTokenVerifier
}

type firebaseClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// NewFirebaseAuthenticator discovers the signing keys of projectID. Tokens
// must carry the project as audience.
func NewFirebaseAuthenticator(ctx context.Context, projectID string) (*FirebaseAuthenticator, error) {
	provider, err := oidc.NewProvider(ctx, FirebaseIssuer(projectID))
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}
	return NewFirebaseAuthenticatorWithVerifier(provider.Verifier(&oidc.Config{ClientID: projectID})), nil
}

// NewFirebaseAuthenticatorWithVerifier uses a prepared verifier
func NewFirebaseAuthenticatorWithVerifier(verifier *oidc.IDTokenVerifier) *FirebaseAuthenticator {
	return &FirebaseAuthenticator{verifier: verifier}
}

// Authenticate verifies token and returns the caller identity
func (a *FirebaseAuthenticator) Authenticate(ctx context.Context, token string) (*entities.Identity, error) {
	idToken, err := a.verifier.Verify(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("firebase token: %v: %w", err, domainerrors.ErrUnauthenticated)
	}

	var claims firebaseClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("firebase claims: %v: %w", err, domainerrors.ErrUnauthenticated)
	}

	return &entities.Identity{
		Subject:     idToken.Subject,
		Email:       claims.Email,
		DisplayName: claims.Name,
		PhotoURL:    claims.Picture,
	}, nil
}
