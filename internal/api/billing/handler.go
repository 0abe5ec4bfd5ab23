package billing

import (
	"context"

	domain "zapshift-backend/internal/domain/billing"
	"zapshift-backend/internal/repository"
	billingsvc "zapshift-backend/internal/service/billing"

	"go.uber.org/zap"
)

type CheckoutStarter interface {
	Start(ctx context.Context, req domain.CheckoutRequest) (string, error)
}

type SessionFinalizer interface {
	Finalize(ctx context.Context, sessionID string) (*billingsvc.Receipt, error)
}

// Handler serves checkout, payment confirmation and the payment history.
type Handler struct {
	checkout  CheckoutStarter
	finalizer SessionFinalizer
	payments  repository.PaymentRepository
	log       *zap.Logger
}

func NewHandler(checkout CheckoutStarter, finalizer SessionFinalizer, payments repository.PaymentRepository, log *zap.Logger) *Handler {
	return &Handler{checkout: checkout, finalizer: finalizer, payments: payments, log: log}
}
