// Package identity turns bearer tokens into verified callers.
package identity

import (
	"context"
	"errors"

	"zapshift-backend/internal/domain/users"
)

var ErrUnauthorized = errors.New("unauthorized access")

// Identity is the verified caller. Role may be empty when the issuer does not
// know it; EnrichRole fills it from the user store.
type Identity struct {
	Subject string
	Email   string
	Role    string
}

type Verifier interface {
	Verify(ctx context.Context, rawToken string) (Identity, error)
}

// Chain tries each verifier in order; the first success wins.
type Chain []Verifier

func (c Chain) Verify(ctx context.Context, rawToken string) (Identity, error) {
	if rawToken == "" {
		return Identity{}, ErrUnauthorized
	}
	for _, v := range c {
		if v == nil {
			continue
		}
		if id, err := v.Verify(ctx, rawToken); err == nil {
			return id, nil
		}
	}
	return Identity{}, ErrUnauthorized
}

// UserFinder is the part of the user repository role lookup needs.
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*users.User, error)
}

type roleEnricher struct {
	next  Verifier
	users UserFinder
}

// EnrichRole wraps next so identities without a role get the stored one.
// Callers unknown to the store keep the default user role.
func EnrichRole(next Verifier, finder UserFinder) Verifier {
	return &roleEnricher{next: next, users: finder}
}

func (e *roleEnricher) Verify(ctx context.Context, rawToken string) (Identity, error) {
	id, err := e.next.Verify(ctx, rawToken)
	if err != nil {
		return Identity{}, err
	}
	if id.Role != "" {
		return id, nil
	}

	id.Role = users.RoleUser
	if u, err := e.users.FindByEmail(ctx, id.Email); err == nil && u.Role != "" {
		id.Role = u.Role
	}
	return id, nil
}
