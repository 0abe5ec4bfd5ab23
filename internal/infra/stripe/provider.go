package stripe

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	stripego "github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/client"
	"go.uber.org/zap"
)

// Metadata keys attached to every checkout session.
const (
	MetadataParcelID   = "parcelId"
	MetadataParcelName = "parcelName"
)

var ErrSessionNotFound = errors.New("checkout session not found")

// SessionRequest describes a one-off payment for a single parcel.
type SessionRequest struct {
	ParcelID    string
	ParcelName  string
	Email       string
	AmountMinor int64
	Currency    string
	SuccessURL  string
	CancelURL   string
}

// Session is the subset of a Stripe checkout session the payment flow reads.
type Session struct {
	ID              string
	URL             string
	PaymentIntentID string
	AmountTotal     int64
	Currency        string
	CustomerEmail   string
	PaymentStatus   string
	Status          string
	Metadata        map[string]string
}

type Option func(*stripego.BackendConfig)

// WithBaseURL points the API backend somewhere else, e.g. stripe-mock or a test server.
func WithBaseURL(url string) Option {
	return func(c *stripego.BackendConfig) { c.URL = stripego.String(url) }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *stripego.BackendConfig) { c.LeveledLogger = log.Sugar() }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *stripego.BackendConfig) { c.HTTPClient = hc }
}

// Provider wraps a keyed stripe client so the secret never touches stripe.Key.
type Provider struct {
	api *client.API
}

func NewProvider(key string, opts ...Option) *Provider {
	cfg := &stripego.BackendConfig{
		MaxNetworkRetries: stripego.Int64(0),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	api := &client.API{}
	api.Init(key, &stripego.Backends{
		API:     stripego.GetBackendWithConfig(stripego.APIBackend, cfg),
		Connect: stripego.GetBackendWithConfig(stripego.ConnectBackend, cfg),
		Uploads: stripego.GetBackendWithConfig(stripego.UploadsBackend, cfg),
	})
	return &Provider{api: api}
}

// CreateSession opens a hosted payment page; the returned URL is where the buyer pays.
func (p *Provider) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	params := &stripego.CheckoutSessionParams{
		Mode:          stripego.String(string(stripego.CheckoutSessionModePayment)),
		CustomerEmail: stripego.String(req.Email),
		SuccessURL:    stripego.String(req.SuccessURL),
		CancelURL:     stripego.String(req.CancelURL),
		LineItems: []*stripego.CheckoutSessionLineItemParams{
			{
				PriceData: &stripego.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripego.String(req.Currency),
					UnitAmount: stripego.Int64(req.AmountMinor),
					ProductData: &stripego.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripego.String(req.ParcelName),
					},
				},
				Quantity: stripego.Int64(1),
			},
		},
	}
	params.Context = ctx
	params.AddMetadata(MetadataParcelID, req.ParcelID)
	params.AddMetadata(MetadataParcelName, req.ParcelName)

	s, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return toSession(s), nil
}

// RetrieveSession fetches a session by id. Unknown ids return ErrSessionNotFound.
func (p *Provider) RetrieveSession(ctx context.Context, id string) (*Session, error) {
	params := &stripego.CheckoutSessionParams{}
	params.Context = ctx

	s, err := p.api.CheckoutSessions.Get(id, params)
	if err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		}
		return nil, fmt.Errorf("retrieve checkout session: %w", err)
	}
	return toSession(s), nil
}

// IsNotFound reports whether err is Stripe's answer for an unknown object.
func IsNotFound(err error) bool {
	var se *stripego.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code == stripego.ErrorCodeResourceMissing || se.HTTPStatusCode == http.StatusNotFound
}

func toSession(s *stripego.CheckoutSession) *Session {
	out := &Session{
		ID:            s.ID,
		URL:           s.URL,
		AmountTotal:   s.AmountTotal,
		Currency:      string(s.Currency),
		CustomerEmail: s.CustomerEmail,
		PaymentStatus: NormalizePaymentStatus(string(s.PaymentStatus)),
		Status:        string(s.Status),
		Metadata:      s.Metadata,
	}
	if s.PaymentIntent != nil {
		out.PaymentIntentID = s.PaymentIntent.ID
	}
	if out.CustomerEmail == "" && s.CustomerDetails != nil {
		out.CustomerEmail = s.CustomerDetails.Email
	}
	if out.Metadata == nil {
		out.Metadata = map[string]string{}
	}
	return out
}

// FromCheckoutSession converts a session delivered by a webhook event.
func FromCheckoutSession(s *stripego.CheckoutSession) *Session {
	return toSession(s)
}
