// Package billing holds the payment flow: opening hosted checkout sessions and
// turning completed ones into a paid parcel plus one ledger entry.
package billing

import (
	"context"
	"errors"

	domain "zapshift-backend/internal/domain/billing"
	"zapshift-backend/internal/infra/stripe"
	"zapshift-backend/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SessionProvider is the part of the payment provider the flow uses.
type SessionProvider interface {
	CreateSession(ctx context.Context, req stripe.SessionRequest) (*stripe.Session, error)
	RetrieveSession(ctx context.Context, id string) (*stripe.Session, error)
}

// CheckoutConfig holds the redirect templates and charge currency.
type CheckoutConfig struct {
	Currency   string
	SuccessURL string
	CancelURL  string
}

type Initiator struct {
	store    repository.Store
	provider SessionProvider
	cfg      CheckoutConfig
	log      *zap.Logger
}

func NewInitiator(store repository.Store, provider SessionProvider, cfg CheckoutConfig, log *zap.Logger) *Initiator {
	return &Initiator{store: store, provider: provider, cfg: cfg, log: log}
}

// Start validates the request against the stored parcel and opens a hosted
// checkout session for it. It returns the URL the buyer should be sent to.
func (i *Initiator) Start(ctx context.Context, req domain.CheckoutRequest) (string, error) {
	minor, err := domain.ToMinorUnits(req.Cost)
	if err != nil {
		return "", newError(KindValidation, "cost must be a positive amount with at most two decimal places", err)
	}

	parcel, err := i.store.Parcels().FindByID(ctx, req.ParcelID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return "", newError(KindNotFound, "parcel not found", err)
	case err != nil:
		return "", newError(KindInternal, "load parcel", err)
	}

	if parcel.IsPaid() {
		return "", ErrAlreadyPaid
	}
	if !decimal.NewFromFloat(parcel.Cost).Equal(req.Cost) {
		return "", newError(KindValidation, "cost does not match the parcel", nil)
	}

	// Name and email come from the stored parcel; they end up in the ledger.
	session, err := i.provider.CreateSession(ctx, stripe.SessionRequest{
		ParcelID:    req.ParcelID,
		ParcelName:  parcel.ParcelName,
		Email:       parcel.SenderEmail,
		AmountMinor: minor,
		Currency:    i.cfg.Currency,
		SuccessURL:  i.cfg.SuccessURL,
		CancelURL:   i.cfg.CancelURL,
	})
	if err != nil {
		i.log.Error("checkout session creation failed",
			zap.String("parcel_id", req.ParcelID),
			zap.Error(err),
		)
		return "", newError(KindProviderUnavailable, ErrProviderUnavailable.Message, err)
	}

	i.log.Info("checkout session created",
		zap.String("parcel_id", req.ParcelID),
		zap.String("session_id", session.ID),
		zap.Int64("amount_minor", minor),
	)
	return session.URL, nil
}
