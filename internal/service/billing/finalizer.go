package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "zapshift-backend/internal/domain/billing"
	"zapshift-backend/internal/domain/tracking"
	"zapshift-backend/internal/infra/stripe"
	"zapshift-backend/internal/repository"

	"go.uber.org/zap"
)

const maxTrackingAttempts = 5

var errTrackingExhausted = errors.New("could not allocate a unique tracking id")

// IDGenerator produces candidate tracking ids.
type IDGenerator interface {
	New() (string, error)
}

// Receipt is the outcome of finalizing one checkout session.
type Receipt struct {
	Success         bool
	AlreadyRecorded bool

	TransactionID string
	TrackingID    string
	Amount        float64
	Currency      string
	ParcelID      string
	ParcelName    string

	PaymentID      string
	ParcelMatched  int64
	ParcelModified int64
}

// Finalizer records completed checkout sessions exactly once per provider
// transaction id.
type Finalizer struct {
	store    repository.Store
	provider SessionProvider
	log      *zap.Logger

	Tracking IDGenerator
	Now      func() time.Time
}

func NewFinalizer(store repository.Store, provider SessionProvider, log *zap.Logger) *Finalizer {
	return &Finalizer{
		store:    store,
		provider: provider,
		log:      log,
		Tracking: tracking.NewGenerator(),
		Now:      time.Now,
	}
}

// Finalize fetches the session from the provider and applies it.
func (f *Finalizer) Finalize(ctx context.Context, sessionID string) (*Receipt, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, newError(KindValidation, "session_id is required", nil)
	}

	session, err := f.provider.RetrieveSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, stripe.ErrSessionNotFound) {
			return nil, newError(KindNotFound, "checkout session not found", err)
		}
		f.log.Error("checkout session lookup failed", zap.String("session_id", sessionID), zap.Error(err))
		return nil, newError(KindProviderUnavailable, ErrProviderUnavailable.Message, err)
	}

	return f.Apply(ctx, session)
}

// Apply records a session already fetched from the provider, e.g. one carried
// by a webhook event. Replays of a recorded transaction return the stored outcome.
func (f *Finalizer) Apply(ctx context.Context, session *stripe.Session) (*Receipt, error) {
	txID := session.PaymentIntentID

	if txID != "" {
		existing, err := f.store.Payments().FindByTransactionID(ctx, txID)
		switch {
		case err == nil:
			return f.replay(ctx, existing), nil
		case !errors.Is(err, repository.ErrNotFound):
			return nil, newError(KindInternal, "look up payment", err)
		}
	}

	if session.PaymentStatus != stripe.PaymentStatusPaid {
		f.log.Info("checkout session not paid",
			zap.String("session_id", session.ID),
			zap.String("payment_status", session.PaymentStatus),
			zap.String("status", session.Status),
		)
		return &Receipt{Success: false}, nil
	}
	if txID == "" {
		return nil, newError(KindInternal, "paid session has no transaction id", nil)
	}

	payment, update, inserted, err := f.record(ctx, session)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return receiptFrom(payment), nil
	}
	trackingID := payment.TrackingID

	if update.MatchedCount == 0 {
		f.log.Warn("consistency warning: paid parcel not updated",
			zap.String("parcel_id", payment.ParcelID),
			zap.String("transaction_id", txID),
			zap.String("tracking_id", trackingID),
		)
	}

	f.log.Info("payment recorded",
		zap.String("transaction_id", txID),
		zap.String("parcel_id", payment.ParcelID),
		zap.String("tracking_id", trackingID),
		zap.Float64("amount", payment.Amount),
	)

	r := receiptFrom(payment)
	r.AlreadyRecorded = false
	r.ParcelMatched = update.MatchedCount
	r.ParcelModified = update.ModifiedCount
	return r, nil
}

// record writes the ledger entry and marks the parcel paid. When a concurrent
// finalizer already stored the transaction, its payment is returned with
// inserted false. A duplicate on the tracking id alone draws a fresh id and
// retries.
func (f *Finalizer) record(ctx context.Context, session *stripe.Session) (payment *domain.Payment, update repository.UpdateResult, inserted bool, err error) {
	txID := session.PaymentIntentID

	for attempt := 0; attempt < maxTrackingAttempts; attempt++ {
		trackingID, err := f.allocateTrackingID(ctx)
		if err != nil {
			return nil, update, false, newError(KindInternal, "allocate tracking id", err)
		}

		payment = &domain.Payment{
			Amount:        domain.ToMajorUnits(session.AmountTotal),
			Currency:      session.Currency,
			CustomerEmail: session.CustomerEmail,
			ParcelID:      session.Metadata[stripe.MetadataParcelID],
			TrackingID:    trackingID,
			ParcelName:    session.Metadata[stripe.MetadataParcelName],
			TransactionID: txID,
			PaymentStatus: session.PaymentStatus,
			PaidAt:        f.Now().UTC(),
		}

		// The ledger insert goes first: the unique transaction id decides the
		// winner before any parcel is touched, even without a transaction.
		err = f.store.InTx(ctx, func(ctx context.Context, tx repository.Store) error {
			if err := tx.Payments().Create(ctx, payment); err != nil {
				return err
			}
			res, err := tx.Parcels().MarkPaid(ctx, payment.ParcelID, payment.TrackingID, payment.Amount)
			if err != nil {
				return fmt.Errorf("mark parcel paid: %w", err)
			}
			update = res
			return nil
		})
		if err == nil {
			return payment, update, true, nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, update, false, newError(KindInternal, "record payment", err)
		}

		existing, findErr := f.store.Payments().FindByTransactionID(ctx, txID)
		if findErr == nil {
			f.log.Info("concurrent finalization resolved to existing payment",
				zap.String("transaction_id", txID),
			)
			return existing, update, false, nil
		}
		if !errors.Is(findErr, repository.ErrNotFound) {
			return nil, update, false, newError(KindInternal, "record payment", findErr)
		}
		f.log.Warn("tracking id taken at insert, retrying",
			zap.String("transaction_id", txID),
			zap.String("tracking_id", trackingID),
			zap.Int("attempt", attempt+1),
		)
	}
	return nil, update, false, newError(KindInternal, "record payment", errTrackingExhausted)
}

// replay returns the stored outcome. A parcel still unpaid after a partial
// write is brought in line with the ledger; a paid one is left alone.
func (f *Finalizer) replay(ctx context.Context, p *domain.Payment) *Receipt {
	res, err := f.store.Parcels().MarkPaid(ctx, p.ParcelID, p.TrackingID, p.Amount)
	switch {
	case err != nil:
		f.log.Warn("parcel reconciliation failed", zap.String("parcel_id", p.ParcelID), zap.Error(err))
	case res.ModifiedCount > 0:
		f.log.Warn("parcel reconciled from ledger",
			zap.String("parcel_id", p.ParcelID),
			zap.String("transaction_id", p.TransactionID),
		)
	}
	return receiptFrom(p)
}

func receiptFrom(p *domain.Payment) *Receipt {
	return &Receipt{
		Success:         true,
		AlreadyRecorded: true,
		TransactionID:   p.TransactionID,
		TrackingID:      p.TrackingID,
		Amount:          p.Amount,
		Currency:        p.Currency,
		ParcelID:        p.ParcelID,
		ParcelName:      p.ParcelName,
		PaymentID:       p.ID,
	}
}

func (f *Finalizer) allocateTrackingID(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxTrackingAttempts; attempt++ {
		id, err := f.Tracking.New()
		if err != nil {
			return "", err
		}
		taken, err := f.store.Payments().TrackingIDExists(ctx, id)
		if err != nil {
			return "", err
		}
		if !taken {
			return id, nil
		}
		f.log.Debug("tracking id collision", zap.String("tracking_id", id))
	}
	return "", errTrackingExhausted
}
