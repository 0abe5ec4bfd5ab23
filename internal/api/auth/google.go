package auth

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"zapshift-backend/internal/domain/users"
	"zapshift-backend/internal/infra/identity"
	"zapshift-backend/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const stateCookie = "oauth_state"

// GET /auth/google
func (h *Handler) GoogleStart(c *gin.Context) {
	if h.google == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "google sign-in is not configured"})
		return
	}

	state, err := identity.RandomState()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate state"})
		return
	}

	// five minutes is plenty for the consent screen
	c.SetCookie(stateCookie, state, 300, "/", "", h.SecureCookies, true)
	c.Redirect(http.StatusFound, h.google.AuthCodeURL(state))
}

// GET /auth/google/callback
func (h *Handler) GoogleCallback(c *gin.Context) {
	if h.google == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "google sign-in is not configured"})
		return
	}

	state := c.Query("state")
	code := c.Query("code")
	if code == "" || state == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing code/state"})
		return
	}
	cookieState, err := c.Cookie(stateCookie)
	if err != nil || cookieState != state {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid oauth state"})
		return
	}
	c.SetCookie(stateCookie, "", -1, "/", "", h.SecureCookies, true)

	claims, err := h.google.Exchange(c.Request.Context(), code)
	if err != nil {
		h.log.Warn("google code exchange failed", zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "google sign-in failed"})
		return
	}
	if !claims.EmailVerified {
		h.log.Warn("google account email not verified", zap.String("email", claims.Email))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "google sign-in failed"})
		return
	}

	user, err := h.findOrCreateGoogleUser(c.Request.Context(), claims)
	if err != nil {
		h.log.Error("google user upsert failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}

	token, err := h.tokens.Issue(*user)
	if err != nil {
		h.log.Error("token issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create token"})
		return
	}

	if h.FrontendRedirect == "" {
		c.JSON(http.StatusOK, gin.H{"token": token})
		return
	}
	c.Redirect(http.StatusFound, h.FrontendRedirect+"?token="+url.QueryEscape(token))
}

// findOrCreateGoogleUser links the Google subject to an existing account with
// the same email, or creates a plain user.
func (h *Handler) findOrCreateGoogleUser(ctx context.Context, gc *identity.GoogleClaims) (*users.User, error) {
	email := strings.ToLower(gc.Email)

	user, err := h.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if user.GoogleSub == nil {
			if err := h.users.LinkGoogle(ctx, email, gc.Sub); err != nil {
				return nil, err
			}
			sub := gc.Sub
			user.GoogleSub = &sub
			user.AuthProvider = "google"
		}
		return user, nil
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	sub := gc.Sub
	user = &users.User{
		Name:         gc.Name,
		Email:        email,
		PhotoURL:     gc.Picture,
		AuthProvider: "google",
		GoogleSub:    &sub,
		Role:         users.RoleUser,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return h.users.FindByEmail(ctx, email)
		}
		return nil, err
	}
	return user, nil
}
