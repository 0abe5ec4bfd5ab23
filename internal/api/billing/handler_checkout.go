package billing

import (
	"net/http"

	domain "zapshift-backend/internal/domain/billing"
	billingsvc "zapshift-backend/internal/service/billing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// POST /create-checkout-session
func (h *Handler) CreateCheckoutSession(c *gin.Context) {
	var body domain.CheckoutRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid checkout fields"})
		return
	}

	url, err := h.checkout.Start(c.Request.Context(), body)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// PATCH /payment-success?session_id=...
func (h *Handler) PaymentSuccess(c *gin.Context) {
	receipt, err := h.finalizer.Finalize(c.Request.Context(), c.Query("session_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ReceiptBody(receipt))
}

// ReceiptBody renders a finalization outcome in the shape the dashboard expects.
func ReceiptBody(r *billingsvc.Receipt) gin.H {
	switch {
	case !r.Success:
		return gin.H{"success": false}
	case r.AlreadyRecorded:
		return gin.H{
			"message":       "already exist",
			"trackingId":    r.TrackingID,
			"transactionId": r.TransactionID,
			"amount":        r.Amount,
		}
	default:
		return gin.H{
			"success": true,
			"modifyParcel": gin.H{
				"matchedCount":  r.ParcelMatched,
				"modifiedCount": r.ParcelModified,
			},
			"trackingId":    r.TrackingID,
			"amount":        r.Amount,
			"parcelName":    r.ParcelName,
			"transactionId": r.TransactionID,
			"paymentInfo":   gin.H{"insertedId": r.PaymentID},
		}
	}
}

func (h *Handler) respondError(c *gin.Context, err error) {
	status := billingsvc.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("payment request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": billingsvc.PublicMessage(err)})
}
