package users

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"zapshift-backend/internal/app/http/middleware"
	"zapshift-backend/internal/domain/users"
	"zapshift-backend/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	store repository.Store
	log   *zap.Logger
}

func NewHandler(store repository.Store, log *zap.Logger) *Handler {
	return &Handler{store: store, log: log}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" binding:"required,email"`
	PhotoURL string `json:"photoURL"`
}

// POST /users
// Every new account starts as a plain user without a password. Nobody has
// proven they own the email at this point, so a password can only be added
// later through PUT /auth/password with a verified identity. Registering an
// existing email is not an error; the dashboard calls this after each social
// login.
func (h *Handler) Register(c *gin.Context) {
	var input registerRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A valid email is required"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))

	ctx := c.Request.Context()
	if _, err := h.store.Users().FindByEmail(ctx, email); err == nil {
		c.JSON(http.StatusOK, gin.H{"message": "User already exists"})
		return
	} else if !errors.Is(err, repository.ErrNotFound) {
		h.log.Error("user lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		return
	}

	user := users.User{
		Name:         input.Name,
		Email:        email,
		PhotoURL:     input.PhotoURL,
		AuthProvider: "firebase",
		Role:         users.RoleUser,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.store.Users().Create(ctx, &user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			c.JSON(http.StatusOK, gin.H{"message": "User already exists"})
			return
		}
		h.log.Error("user insert failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"acknowledged": true, "insertedId": user.ID})
}

// GET /users/:email/role
func (h *Handler) GetRole(c *gin.Context) {
	user, err := h.store.Users().FindByEmail(c.Request.Context(), strings.ToLower(c.Param("email")))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.log.Error("role lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"role": user.Role})
}

// GET /me
func (h *Handler) GetCurrentUser(c *gin.Context) {
	email := c.GetString(middleware.CtxEmail)
	if email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized access"})
		return
	}

	ctx := c.Request.Context()
	user, err := h.store.Users().FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.log.Error("current user lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		return
	}

	parcelList, err := h.store.Parcels().List(ctx, email)
	if err != nil {
		h.log.Error("parcel summary failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		return
	}
	paymentList, err := h.store.Payments().List(ctx, email)
	if err != nil {
		h.log.Error("payment summary failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		return
	}

	c.JSON(http.StatusOK, MeResponse{
		User:     BuildUserDTO(user),
		Parcels:  BuildParcelSummary(parcelList),
		Payments: BuildPaymentSummary(paymentList),
	})
}
