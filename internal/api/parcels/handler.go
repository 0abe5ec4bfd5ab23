package parcels

import (
	"errors"
	"net/http"
	"time"

	"zapshift-backend/internal/domain/parcels"
	"zapshift-backend/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	parcels repository.ParcelRepository
	log     *zap.Logger
}

func NewHandler(repo repository.ParcelRepository, log *zap.Logger) *Handler {
	return &Handler{parcels: repo, log: log}
}

type createParcelRequest struct {
	ParcelType   string  `json:"parcelType"`
	ParcelName   string  `json:"parcelName" binding:"required,max=200"`
	ParcelWeight float64 `json:"parcelWeight" binding:"gte=0"`

	SenderName     string `json:"senderName"`
	SenderEmail    string `json:"senderEmail" binding:"required,email"`
	SenderPhone    string `json:"senderPhone"`
	SenderAddress  string `json:"senderAddress"`
	SenderRegion   string `json:"senderRegion"`
	SenderDistrict string `json:"senderDistrict"`

	ReceiverName     string `json:"receiverName"`
	ReceiverEmail    string `json:"receiverEmail"`
	ReceiverPhone    string `json:"receiverPhone"`
	ReceiverAddress  string `json:"receiverAddress"`
	ReceiverRegion   string `json:"receiverRegion"`
	ReceiverDistrict string `json:"receiverDistrict"`

	PickupInstruction   string `json:"pickupInstruction"`
	DeliveryInstruction string `json:"deliveryInstruction"`

	Cost float64 `json:"cost" binding:"gt=0"`
}

// GET /parcels?email=
func (h *Handler) List(c *gin.Context) {
	list, err := h.parcels.List(c.Request.Context(), c.Query("email"))
	if err != nil {
		h.log.Error("list parcels failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load parcels"})
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /parcels/:id
func (h *Handler) Get(c *gin.Context) {
	parcel, err := h.parcels.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Parcel not found"})
			return
		}
		h.log.Error("get parcel failed", zap.String("parcel_id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load parcel"})
		return
	}
	c.JSON(http.StatusOK, parcel)
}

// POST /parcels
// Payment fields are server-owned: a new parcel is always unpaid.
func (h *Handler) Create(c *gin.Context) {
	var in createParcelRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid parcel fields"})
		return
	}

	parcel := parcels.Parcel{
		ParcelType:          in.ParcelType,
		ParcelName:          in.ParcelName,
		ParcelWeight:        in.ParcelWeight,
		SenderName:          in.SenderName,
		SenderEmail:         in.SenderEmail,
		SenderPhone:         in.SenderPhone,
		SenderAddress:       in.SenderAddress,
		SenderRegion:        in.SenderRegion,
		SenderDistrict:      in.SenderDistrict,
		ReceiverName:        in.ReceiverName,
		ReceiverEmail:       in.ReceiverEmail,
		ReceiverPhone:       in.ReceiverPhone,
		ReceiverAddress:     in.ReceiverAddress,
		ReceiverRegion:      in.ReceiverRegion,
		ReceiverDistrict:    in.ReceiverDistrict,
		PickupInstruction:   in.PickupInstruction,
		DeliveryInstruction: in.DeliveryInstruction,
		Cost:                in.Cost,
		PaymentStatus:       parcels.PaymentStatusUnpaid,
		CreatedAt:           time.Now().UTC(),
	}

	if err := h.parcels.Create(c.Request.Context(), &parcel); err != nil {
		h.log.Error("create parcel failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create parcel"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"acknowledged": true, "insertedId": parcel.ID})
}

// DELETE /parcels/:id
func (h *Handler) Delete(c *gin.Context) {
	n, err := h.parcels.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.log.Error("delete parcel failed", zap.String("parcel_id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete parcel"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"acknowledged": true, "deletedCount": n})
}
