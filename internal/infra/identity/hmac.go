package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"zapshift-backend/internal/domain/users"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTokenTTL = 24 * time.Hour

type appClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// HMACVerifier issues and checks the HS256 tokens handed out by /auth/login
// and Google sign-in.
type HMACVerifier struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{
		secret: []byte(secret),
		ttl:    defaultTokenTTL,
		now:    time.Now,
	}
}

func (v *HMACVerifier) Issue(user users.User) (string, error) {
	if len(v.secret) == 0 {
		return "", errors.New("JWT secret not configured")
	}
	now := v.now()
	claims := appClaims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(v.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

func (v *HMACVerifier) Verify(_ context.Context, rawToken string) (Identity, error) {
	var claims appClaims
	token, err := jwt.ParseWithClaims(rawToken, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil || !token.Valid {
		return Identity{}, ErrUnauthorized
	}
	if claims.Email == "" {
		return Identity{}, ErrUnauthorized
	}

	return Identity{Subject: claims.Subject, Email: claims.Email, Role: claims.Role}, nil
}
