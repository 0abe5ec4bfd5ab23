// Package stripewebhooks receives Stripe events. Completed checkouts go through
// the same finalizer as the redirect confirmation, so whichever arrives first
// records the payment and the other replays it.
package stripewebhooks

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"zapshift-backend/internal/infra/stripe"
	billingsvc "zapshift-backend/internal/service/billing"

	"github.com/gin-gonic/gin"
	stripego "github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/webhook"
	"go.uber.org/zap"
)

const maxBodyBytes = 65536

// SessionApplier records a checkout session that arrived in a signed event.
type SessionApplier interface {
	Apply(ctx context.Context, session *stripe.Session) (*billingsvc.Receipt, error)
}

type Handler struct {
	secret    string
	finalizer SessionApplier
	log       *zap.Logger
}

func NewHandler(endpointSecret string, finalizer SessionApplier, log *zap.Logger) *Handler {
	return &Handler{secret: endpointSecret, finalizer: finalizer, log: log}
}

// POST /webhooks/stripe
func (h *Handler) StripeWebhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Error reading request body"})
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		payload,
		c.GetHeader("Stripe-Signature"),
		h.secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		h.log.Warn("stripe signature verification failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Signature verification failed"})
		return
	}

	switch event.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		var session stripego.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse session"})
			return
		}

		receipt, err := h.finalizer.Apply(c.Request.Context(), stripe.FromCheckoutSession(&session))
		if err != nil {
			// 5xx makes Stripe retry; a replay is harmless.
			h.log.Error("webhook finalization failed",
				zap.String("event_id", event.ID),
				zap.String("session_id", session.ID),
				zap.Error(err),
			)
			c.JSON(billingsvc.HTTPStatus(err), gin.H{"error": billingsvc.PublicMessage(err)})
			return
		}

		h.log.Info("webhook processed",
			zap.String("event_id", event.ID),
			zap.String("session_id", session.ID),
			zap.Bool("success", receipt.Success),
			zap.Bool("already_recorded", receipt.AlreadyRecorded),
		)
		c.JSON(http.StatusOK, gin.H{"status": "received"})

	default:
		// Acknowledge unknown events to avoid retries
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
	}
}
