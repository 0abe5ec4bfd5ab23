package billing_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	domain "zapshift-backend/internal/domain/billing"
	"zapshift-backend/internal/domain/parcels"
	"zapshift-backend/internal/domain/tracking"
	"zapshift-backend/internal/infra/stripe"
	"zapshift-backend/internal/repository/repotest"
	"zapshift-backend/internal/service/billing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

type fakeProvider struct {
	mu          sync.Mutex
	sessions    map[string]*stripe.Session
	created     []stripe.SessionRequest
	createErr   error
	retrieveErr error
	retrieves   int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{sessions: map[string]*stripe.Session{}}
}

func (p *fakeProvider) CreateSession(_ context.Context, req stripe.SessionRequest) (*stripe.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.createErr != nil {
		return nil, p.createErr
	}
	p.created = append(p.created, req)
	return &stripe.Session{ID: "S1", URL: "https://checkout.stripe.com/c/pay/S1"}, nil
}

func (p *fakeProvider) RetrieveSession(_ context.Context, id string) (*stripe.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.retrieves++
	if p.retrieveErr != nil {
		return nil, p.retrieveErr
	}
	s, ok := p.sessions[id]
	if !ok {
		return nil, stripe.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func paidSession(id, txID, parcelID string, minor int64) *stripe.Session {
	return &stripe.Session{
		ID:              id,
		PaymentIntentID: txID,
		AmountTotal:     minor,
		Currency:        "bdt",
		CustomerEmail:   "a@x.com",
		PaymentStatus:   stripe.PaymentStatusPaid,
		Status:          "complete",
		Metadata: map[string]string{
			stripe.MetadataParcelID:   parcelID,
			stripe.MetadataParcelName: "Box",
		},
	}
}

type fixture struct {
	store     *repotest.Store
	provider  *fakeProvider
	initiator *billing.Initiator
	finalizer *billing.Finalizer
}

func newFixture(t *testing.T, log *zap.Logger) *fixture {
	t.Helper()
	if log == nil {
		log = zaptest.NewLogger(t)
	}
	store := repotest.New()
	provider := newFakeProvider()
	return &fixture{
		store:    store,
		provider: provider,
		initiator: billing.NewInitiator(store, provider, billing.CheckoutConfig{
			Currency:   "bdt",
			SuccessURL: "https://zap.example/dashboard/payment-success?session_id={CHECKOUT_SESSION_ID}",
			CancelURL:  "https://zap.example/dashboard/payment-cancelled",
		}, log),
		finalizer: billing.NewFinalizer(store, provider, log),
	}
}

func (f *fixture) addParcel(t *testing.T, id string, cost float64) {
	t.Helper()
	require.NoError(t, f.store.Parcels().Create(context.Background(), &parcels.Parcel{
		ID:            id,
		ParcelName:    "Box",
		SenderEmail:   "a@x.com",
		Cost:          cost,
		PaymentStatus: parcels.PaymentStatusUnpaid,
		CreatedAt:     time.Now(),
	}))
}

func TestEndToEnd_CheckoutThenFinalizeThenReplay(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.addParcel(t, "P1", 500)

	url, err := f.initiator.Start(ctx, domain.CheckoutRequest{
		ParcelID:    "P1",
		ParcelName:  "Box",
		SenderEmail: "a@x.com",
		Cost:        decimal.NewFromInt(500),
	})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/S1", url)
	require.Len(t, f.provider.created, 1)
	assert.Equal(t, int64(50000), f.provider.created[0].AmountMinor)
	assert.Equal(t, "P1", f.provider.created[0].ParcelID)

	f.provider.sessions["S1"] = paidSession("S1", "TX1", "P1", 50000)

	first, err := f.finalizer.Finalize(ctx, "S1")
	require.NoError(t, err)
	assert.True(t, first.Success)
	assert.False(t, first.AlreadyRecorded)
	assert.Equal(t, 500.0, first.Amount)
	assert.Equal(t, "TX1", first.TransactionID)
	assert.Equal(t, "Box", first.ParcelName)
	assert.True(t, tracking.Valid(first.TrackingID), first.TrackingID)
	assert.Equal(t, int64(1), first.ParcelMatched)
	assert.Equal(t, int64(1), first.ParcelModified)
	assert.NotEmpty(t, first.PaymentID)

	parcel, err := f.store.Parcels().FindByID(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, parcels.PaymentStatusPaid, parcel.PaymentStatus)
	require.NotNil(t, parcel.TrackingID)
	assert.Equal(t, first.TrackingID, *parcel.TrackingID)
	require.NotNil(t, parcel.Amount)
	assert.Equal(t, 500.0, *parcel.Amount)

	row, err := f.store.Payments().FindByTransactionID(ctx, "TX1")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", row.CustomerEmail)
	assert.Equal(t, "bdt", row.Currency)
	assert.False(t, row.PaidAt.IsZero())

	second, err := f.finalizer.Finalize(ctx, "S1")
	require.NoError(t, err)
	assert.True(t, second.AlreadyRecorded)
	assert.Equal(t, first.TrackingID, second.TrackingID)
	assert.Equal(t, first.TransactionID, second.TransactionID)
	assert.Equal(t, first.Amount, second.Amount)
	assert.Equal(t, 1, f.store.PaymentCount())
}

func TestFinalize_NonPaidSessionChangesNothing(t *testing.T) {
	f := newFixture(t, nil)
	f.addParcel(t, "P1", 500)
	s := paidSession("S2", "", "P1", 50000)
	s.PaymentStatus = stripe.PaymentStatusUnpaid
	s.Status = "open"
	f.provider.sessions["S2"] = s

	r, err := f.finalizer.Finalize(context.Background(), "S2")
	require.NoError(t, err)
	assert.False(t, r.Success)
	assert.Zero(t, f.store.PaymentCount())

	parcel, err := f.store.Parcels().FindByID(context.Background(), "P1")
	require.NoError(t, err)
	assert.False(t, parcel.IsPaid())
	assert.Nil(t, parcel.TrackingID)
}

func TestFinalize_Errors(t *testing.T) {
	t.Run("empty session id", func(t *testing.T) {
		f := newFixture(t, nil)
		_, err := f.finalizer.Finalize(context.Background(), "  ")
		assert.ErrorIs(t, err, billing.ErrValidation)
		assert.Equal(t, http.StatusBadRequest, billing.HTTPStatus(err))
		assert.Zero(t, f.provider.retrieves)
	})

	t.Run("unknown session", func(t *testing.T) {
		f := newFixture(t, nil)
		_, err := f.finalizer.Finalize(context.Background(), "S404")
		assert.ErrorIs(t, err, billing.ErrNotFound)
		assert.Equal(t, http.StatusNotFound, billing.HTTPStatus(err))
	})

	t.Run("provider unreachable", func(t *testing.T) {
		f := newFixture(t, nil)
		f.provider.retrieveErr = errors.New("dial tcp: connection refused")

		_, err := f.finalizer.Finalize(context.Background(), "S1")
		assert.ErrorIs(t, err, billing.ErrProviderUnavailable)
		assert.Equal(t, http.StatusBadGateway, billing.HTTPStatus(err))
		assert.NotContains(t, billing.PublicMessage(err), "dial tcp")
	})
}

func TestFinalize_MissingParcelLogsConsistencyWarning(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	f := newFixture(t, zap.New(core))
	f.provider.sessions["S1"] = paidSession("S1", "TX1", "P-gone", 50000)

	r, err := f.finalizer.Finalize(context.Background(), "S1")
	require.NoError(t, err)
	assert.True(t, r.Success)
	assert.Zero(t, r.ParcelMatched)
	assert.Equal(t, 1, f.store.PaymentCount())

	warnings := logs.FilterMessage("consistency warning: paid parcel not updated").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "P-gone", warnings[0].ContextMap()["parcel_id"])
}

func TestFinalize_ConcurrentReplayRecordsOnce(t *testing.T) {
	f := newFixture(t, zap.NewNop())
	f.addParcel(t, "P1", 500)
	f.provider.sessions["S1"] = paidSession("S1", "TX1", "P1", 50000)

	const callers = 8
	receipts := make([]*billing.Receipt, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			receipts[i], errs[i] = f.finalizer.Finalize(context.Background(), "S1")
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.True(t, receipts[i].Success)
		assert.Equal(t, receipts[0].TrackingID, receipts[i].TrackingID)
	}
	assert.Equal(t, 1, f.store.PaymentCount())

	parcel, err := f.store.Parcels().FindByID(context.Background(), "P1")
	require.NoError(t, err)
	assert.Equal(t, receipts[0].TrackingID, *parcel.TrackingID)
}

func TestFinalize_LosingWriterReturnsWinner(t *testing.T) {
	f := newFixture(t, nil)
	f.addParcel(t, "P1", 500)
	f.provider.sessions["S1"] = paidSession("S1", "TX1", "P1", 50000)

	winner := &domain.Payment{TransactionID: "TX1", TrackingID: "ZAP-20250310-000001", Amount: 500, ParcelID: "P1", ParcelName: "Box"}
	var once sync.Once
	f.store.BeforePaymentCreate = func(ctx context.Context, p *domain.Payment) error {
		var err error
		once.Do(func() {
			f.store.BeforePaymentCreate = nil
			err = f.store.Payments().Create(ctx, winner)
		})
		return err
	}

	r, err := f.finalizer.Finalize(context.Background(), "S1")
	require.NoError(t, err)
	assert.True(t, r.AlreadyRecorded)
	assert.Equal(t, "ZAP-20250310-000001", r.TrackingID)
	assert.Equal(t, 1, f.store.PaymentCount())

	// The losing writer never reached the parcel.
	parcel, err := f.store.Parcels().FindByID(context.Background(), "P1")
	require.NoError(t, err)
	assert.False(t, parcel.IsPaid())
}

type sequenceGenerator struct {
	ids []string
	i   int
}

func (g *sequenceGenerator) New() (string, error) {
	id := g.ids[g.i%len(g.ids)]
	g.i++
	return id, nil
}

func TestFinalize_RegeneratesTakenTrackingID(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	require.NoError(t, f.store.Payments().Create(ctx, &domain.Payment{TransactionID: "TX0", TrackingID: "ZAP-20250310-AAAAAA"}))
	f.addParcel(t, "P1", 500)
	f.provider.sessions["S1"] = paidSession("S1", "TX1", "P1", 50000)
	f.finalizer.Tracking = &sequenceGenerator{ids: []string{"ZAP-20250310-AAAAAA", "ZAP-20250310-BBBBBB"}}

	r, err := f.finalizer.Finalize(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, "ZAP-20250310-BBBBBB", r.TrackingID)
}

func TestFinalize_RetriesTrackingCollisionAtInsert(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.addParcel(t, "P1", 500)
	f.provider.sessions["S1"] = paidSession("S1", "TX1", "P1", 50000)
	f.finalizer.Tracking = &sequenceGenerator{ids: []string{"ZAP-20250310-AAAAAA", "ZAP-20250310-BBBBBB"}}

	// Another payment takes the tracking id between the existence check and the insert.
	var once sync.Once
	f.store.BeforePaymentCreate = func(ctx context.Context, p *domain.Payment) error {
		var err error
		once.Do(func() {
			f.store.BeforePaymentCreate = nil
			err = f.store.Payments().Create(ctx, &domain.Payment{TransactionID: "TX-OTHER", TrackingID: p.TrackingID})
		})
		return err
	}

	r, err := f.finalizer.Finalize(ctx, "S1")
	require.NoError(t, err)
	assert.True(t, r.Success)
	assert.False(t, r.AlreadyRecorded)
	assert.Equal(t, "ZAP-20250310-BBBBBB", r.TrackingID)
	assert.Equal(t, 2, f.store.PaymentCount())

	parcel, err := f.store.Parcels().FindByID(ctx, "P1")
	require.NoError(t, err)
	require.NotNil(t, parcel.TrackingID)
	assert.Equal(t, "ZAP-20250310-BBBBBB", *parcel.TrackingID)
}

func TestFinalize_GivesUpWhenInsertKeepsColliding(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.addParcel(t, "P1", 500)
	f.provider.sessions["S1"] = paidSession("S1", "TX1", "P1", 50000)

	var (
		competing bool
		n         int
	)
	f.store.BeforePaymentCreate = func(ctx context.Context, p *domain.Payment) error {
		if competing {
			return nil
		}
		competing = true
		defer func() { competing = false }()
		n++
		return f.store.Payments().Create(ctx, &domain.Payment{TransactionID: fmt.Sprintf("TX-OTHER-%d", n), TrackingID: p.TrackingID})
	}

	_, err := f.finalizer.Finalize(ctx, "S1")
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, billing.HTTPStatus(err))
	assert.Equal(t, 5, n)

	_, err = f.store.Payments().FindByTransactionID(ctx, "TX1")
	assert.Error(t, err)
	parcel, err := f.store.Parcels().FindByID(ctx, "P1")
	require.NoError(t, err)
	assert.False(t, parcel.IsPaid())
}

func TestFinalize_GivesUpAfterRepeatedCollisions(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	require.NoError(t, f.store.Payments().Create(ctx, &domain.Payment{TransactionID: "TX0", TrackingID: "ZAP-20250310-AAAAAA"}))
	f.provider.sessions["S1"] = paidSession("S1", "TX1", "P1", 50000)
	f.finalizer.Tracking = &sequenceGenerator{ids: []string{"ZAP-20250310-AAAAAA"}}

	_, err := f.finalizer.Finalize(ctx, "S1")
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, billing.HTTPStatus(err))
	assert.Equal(t, 1, f.store.PaymentCount())
}

func TestFinalize_ReplayRepairsUnpaidParcel(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.addParcel(t, "P1", 500)
	require.NoError(t, f.store.Payments().Create(ctx, &domain.Payment{
		TransactionID: "TX1", TrackingID: "ZAP-20250310-ABCDEF", Amount: 500, ParcelID: "P1",
	}))
	f.provider.sessions["S1"] = paidSession("S1", "TX1", "P1", 50000)

	r, err := f.finalizer.Finalize(ctx, "S1")
	require.NoError(t, err)
	assert.True(t, r.AlreadyRecorded)

	parcel, err := f.store.Parcels().FindByID(ctx, "P1")
	require.NoError(t, err)
	assert.True(t, parcel.IsPaid())
	assert.Equal(t, "ZAP-20250310-ABCDEF", *parcel.TrackingID)
}

func TestStart_Rejections(t *testing.T) {
	valid := domain.CheckoutRequest{ParcelID: "P1", ParcelName: "Box", SenderEmail: "a@x.com", Cost: decimal.NewFromInt(500)}

	cases := []struct {
		name   string
		mutate func(f *fixture, req *domain.CheckoutRequest)
		want   error
		status int
	}{
		{"negative cost", func(_ *fixture, r *domain.CheckoutRequest) { r.Cost = decimal.NewFromInt(-5) }, billing.ErrValidation, http.StatusBadRequest},
		{"fractional cent", func(_ *fixture, r *domain.CheckoutRequest) { r.Cost = decimal.RequireFromString("10.005") }, billing.ErrValidation, http.StatusBadRequest},
		{"cost mismatch", func(_ *fixture, r *domain.CheckoutRequest) { r.Cost = decimal.NewFromInt(5) }, billing.ErrValidation, http.StatusBadRequest},
		{"unknown parcel", func(_ *fixture, r *domain.CheckoutRequest) { r.ParcelID = "P404" }, billing.ErrNotFound, http.StatusNotFound},
		{"already paid", func(f *fixture, _ *domain.CheckoutRequest) {
			_, err := f.store.Parcels().MarkPaid(context.Background(), "P1", "ZAP-20250310-ABCDEF", 500)
			require.NoError(t, err)
		}, billing.ErrAlreadyPaid, http.StatusConflict},
		{"provider down", func(f *fixture, _ *domain.CheckoutRequest) {
			f.provider.createErr = errors.New("stripe: 500")
		}, billing.ErrProviderUnavailable, http.StatusBadGateway},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, nil)
			f.addParcel(t, "P1", 500)
			req := valid
			tc.mutate(f, &req)

			url, err := f.initiator.Start(context.Background(), req)
			assert.Empty(t, url)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, tc.status, billing.HTTPStatus(err))
			assert.Zero(t, f.store.PaymentCount())
		})
	}
}

func TestStart_UsesStoredParcelDetails(t *testing.T) {
	f := newFixture(t, nil)
	f.addParcel(t, "P1", 500)

	_, err := f.initiator.Start(context.Background(), domain.CheckoutRequest{
		ParcelID: "P1", ParcelName: "Refund to attacker", SenderEmail: "evil@x.com", Cost: decimal.NewFromInt(500),
	})
	require.NoError(t, err)
	require.Len(t, f.provider.created, 1)
	assert.Equal(t, "Box", f.provider.created[0].ParcelName)
	assert.Equal(t, "a@x.com", f.provider.created[0].Email)
}

func TestStart_AcceptsTwoDecimalCost(t *testing.T) {
	f := newFixture(t, nil)
	f.addParcel(t, "P1", 120.5)

	_, err := f.initiator.Start(context.Background(), domain.CheckoutRequest{
		ParcelID: "P1", ParcelName: "Box", SenderEmail: "a@x.com", Cost: decimal.RequireFromString("120.50"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(12050), f.provider.created[0].AmountMinor)
	assert.Equal(t, "bdt", f.provider.created[0].Currency)
}
