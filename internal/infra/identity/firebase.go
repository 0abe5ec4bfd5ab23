package identity

import (
	"context"

	"github.com/coreos/go-oidc/v3/oidc"
)

const (
	firebaseIssuerPrefix = "https://securetoken.google.com/"
	firebaseJWKSURL      = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"
)

// FirebaseVerifier accepts Firebase Authentication ID tokens for one project.
type FirebaseVerifier struct {
	verifier *oidc.IDTokenVerifier
}

func NewFirebaseVerifier(ctx context.Context, projectID string) *FirebaseVerifier {
	return NewFirebaseVerifierWithKeySet(projectID, oidc.NewRemoteKeySet(ctx, firebaseJWKSURL))
}

// NewFirebaseVerifierWithKeySet uses keys instead of Google's published JWKS.
func NewFirebaseVerifierWithKeySet(projectID string, keys oidc.KeySet) *FirebaseVerifier {
	return &FirebaseVerifier{
		verifier: oidc.NewVerifier(firebaseIssuerPrefix+projectID, keys, &oidc.Config{
			ClientID: projectID,
		}),
	}
}

func (f *FirebaseVerifier) Verify(ctx context.Context, rawToken string) (Identity, error) {
	tok, err := f.verifier.Verify(ctx, rawToken)
	if err != nil {
		return Identity{}, ErrUnauthorized
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
	}
	if err := tok.Claims(&claims); err != nil || claims.Email == "" {
		return Identity{}, ErrUnauthorized
	}
	// Firebase email/password accounts exist before the address is confirmed.
	if !claims.EmailVerified {
		return Identity{}, ErrUnauthorized
	}

	return Identity{Subject: tok.Subject, Email: claims.Email}, nil
}
