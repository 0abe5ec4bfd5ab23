package riders

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"zapshift-backend/internal/domain/riders"
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

type applyRequest struct {
	Name             string `json:"name" binding:"required"`
	Email            string `json:"email" binding:"required,email"`
	Age              int    `json:"age" binding:"gte=0"`
	Phone            string `json:"phone"`
	NID              string `json:"nid"`
	Region           string `json:"region"`
	District         string `json:"district"`
	BikeBrand        string `json:"bikeBrand"`
	BikeRegistration string `json:"bikeRegistration"`
}

type statusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending approved rejected"`
}

// GET /riders?status=
func (h *Handler) List(c *gin.Context) {
	list, err := h.store.Riders().List(c.Request.Context(), c.Query("status"))
	if err != nil {
		h.log.Error("list riders failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load riders"})
		return
	}
	c.JSON(http.StatusOK, list)
}

// POST /riders
func (h *Handler) Apply(c *gin.Context) {
	var in applyRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid rider fields"})
		return
	}

	rider := riders.Rider{
		Name:             in.Name,
		Email:            in.Email,
		Age:              in.Age,
		Phone:            in.Phone,
		NID:              in.NID,
		Region:           in.Region,
		District:         in.District,
		BikeBrand:        in.BikeBrand,
		BikeRegistration: in.BikeRegistration,
		Status:           riders.StatusPending,
		CreatedAt:        time.Now().UTC(),
	}
	if err := h.store.Riders().Create(c.Request.Context(), &rider); err != nil {
		h.log.Error("create rider failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit application"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"acknowledged": true, "insertedId": rider.ID})
}

// PATCH /riders/:id
// Approval also promotes the user account registered under the application's
// email to the rider role. Any email in the body is ignored.
func (h *Handler) UpdateStatus(c *gin.Context) {
	var in statusRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid status"})
		return
	}

	var result repository.UpdateResult
	err := h.store.InTx(c.Request.Context(), func(ctx context.Context, tx repository.Store) error {
		rider, err := tx.Riders().FindByID(ctx, c.Param("id"))
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		res, err := tx.Riders().UpdateStatus(ctx, rider.ID, in.Status)
		if err != nil {
			return err
		}
		result = res
		if in.Status == riders.StatusApproved && res.MatchedCount > 0 {
			if _, err := tx.Users().UpdateRole(ctx, strings.ToLower(rider.Email), users.RoleRider); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		h.log.Error("update rider status failed", zap.String("rider_id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update rider"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"acknowledged":  true,
		"matchedCount":  result.MatchedCount,
		"modifiedCount": result.ModifiedCount,
	})
}
