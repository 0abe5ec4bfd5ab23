package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"zapshift-backend/internal/app/http/middleware"
	"zapshift-backend/internal/domain/users"
	"zapshift-backend/internal/infra/identity"
	"zapshift-backend/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer signs the app tokens accepted by the HMAC verifier.
type TokenIssuer interface {
	Issue(user users.User) (string, error)
}

// GoogleFlow is the part of Google sign-in the handlers drive.
type GoogleFlow interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*identity.GoogleClaims, error)
}

type Handler struct {
	users  repository.UserRepository
	tokens TokenIssuer
	google GoogleFlow
	log    *zap.Logger

	// FrontendRedirect receives ?token= after Google sign-in. Empty means the
	// callback answers with JSON instead.
	FrontendRedirect string
	SecureCookies    bool
}

// NewHandler wires the auth endpoints. google may be nil when Google sign-in
// is not configured; its routes then answer 503.
func NewHandler(repo repository.UserRepository, tokens TokenIssuer, google GoogleFlow, log *zap.Logger) *Handler {
	return &Handler{users: repo, tokens: tokens, google: google, log: log}
}

// POST /auth/login
func (h *Handler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	user, err := h.users.FindByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			h.log.Error("login lookup failed", zap.Error(err))
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if user.Password == nil || *user.Password == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "This account uses social sign-in"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.Password), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := h.tokens.Issue(*user)
	if err != nil {
		h.log.Error("token issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// PUT /auth/password
// The caller's email comes from a verified token (Firebase, Google or an app
// token minted from one), so only the owner of an address can give it a
// password.
func (h *Handler) SetPassword(c *gin.Context) {
	email := c.GetString(middleware.CtxEmail)
	if email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized access"})
		return
	}

	var input struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password is required"})
		return
	}
	if !isPasswordStrong(input.Password) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 8 characters long and contain both letters and numbers"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	if err := h.users.SetPassword(c.Request.Context(), strings.ToLower(email), string(hashed)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.log.Error("set password failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set password"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

func isPasswordStrong(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasLetter := false
	hasDigit := false
	for _, c := range password {
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
			hasLetter = true
		case '0' <= c && c <= '9':
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}
