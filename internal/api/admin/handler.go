package admin

import (
	"net/http"
	"time"

	"zapshift-backend/internal/domain/parcels"
	"zapshift-backend/internal/domain/riders"
	"zapshift-backend/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type AdminStats struct {
	TotalUsers    int            `json:"total_users"`
	UsersPerRole  map[string]int `json:"users_per_role"`
	TotalParcels  int            `json:"total_parcels"`
	PaidParcels   int            `json:"paid_parcels"`
	PendingRiders int            `json:"pending_riders"`
	Payments      int            `json:"payments"`
	TotalRevenue  float64        `json:"total_revenue"`
	RecentRevenue float64        `json:"recent_revenue"`
}

type Handler struct {
	store repository.Store
	log   *zap.Logger
	now   func() time.Time
}

func NewHandler(store repository.Store, log *zap.Logger) *Handler {
	return &Handler{store: store, log: log, now: time.Now}
}

// GET /admin/users
func (h *Handler) ListAllUsers(c *gin.Context) {
	list, err := h.store.Users().List(c.Request.Context())
	if err != nil {
		h.log.Error("list users failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /admin/payments
func (h *Handler) ListAllPayments(c *gin.Context) {
	list, err := h.store.Payments().List(c.Request.Context(), "")
	if err != nil {
		h.log.Error("list payments failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payments"})
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /admin/stats
// Recent revenue covers the last 30 days of paidAt.
func (h *Handler) GetAdminStats(c *gin.Context) {
	ctx := c.Request.Context()

	userList, err := h.store.Users().List(ctx)
	if err != nil {
		h.statsFailed(c, err)
		return
	}
	parcelList, err := h.store.Parcels().List(ctx, "")
	if err != nil {
		h.statsFailed(c, err)
		return
	}
	pending, err := h.store.Riders().List(ctx, riders.StatusPending)
	if err != nil {
		h.statsFailed(c, err)
		return
	}
	paymentList, err := h.store.Payments().List(ctx, "")
	if err != nil {
		h.statsFailed(c, err)
		return
	}

	stats := AdminStats{
		TotalUsers:    len(userList),
		UsersPerRole:  map[string]int{},
		TotalParcels:  len(parcelList),
		PendingRiders: len(pending),
		Payments:      len(paymentList),
	}
	for _, u := range userList {
		stats.UsersPerRole[u.Role]++
	}
	for _, p := range parcelList {
		if p.PaymentStatus == parcels.PaymentStatusPaid {
			stats.PaidParcels++
		}
	}

	since := h.now().AddDate(0, 0, -30)
	total, recent := decimal.Zero, decimal.Zero
	for _, p := range paymentList {
		amount := decimal.NewFromFloat(p.Amount)
		total = total.Add(amount)
		if !p.PaidAt.Before(since) {
			recent = recent.Add(amount)
		}
	}
	stats.TotalRevenue = total.InexactFloat64()
	stats.RecentRevenue = recent.InexactFloat64()

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) statsFailed(c *gin.Context, err error) {
	h.log.Error("admin stats failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
}
