package billing

import (
	"net/http"

	"zapshift-backend/internal/app/http/middleware"
	"zapshift-backend/internal/domain/users"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GET /payments?email=...
// Callers only see their own entries. Without an email filter an admin sees all.
func (h *Handler) ListPayments(c *gin.Context) {
	caller := c.GetString(middleware.CtxEmail)
	email := c.Query("email")

	if email != "" && email != caller {
		c.JSON(http.StatusForbidden, gin.H{"message": "forbidden access"})
		return
	}
	if email == "" && c.GetString(middleware.CtxRole) != users.RoleAdmin {
		email = caller
	}

	payments, err := h.payments.List(c.Request.Context(), email)
	if err != nil {
		h.log.Error("list payments failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payments"})
		return
	}

	c.JSON(http.StatusOK, payments)
}
