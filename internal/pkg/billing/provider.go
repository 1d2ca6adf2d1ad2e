package billing

import (
	"context"
	"strconv"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/checkout/session"
	"github.com/stripe/stripe-go/v78/customer"
	"github.com/stripe/stripe-go/v78/webhook"

	"github.com/MoritzHellmann/TaskPeak/internal/pkg/env"
)

// Provider abstracts the payment provider so the service can be tested with
// substitute collaborators.
type Provider interface {
	// CreateCustomer creates a billing customer tagged with the user id in
	// its metadata and returns the provider customer id.
	CreateCustomer(ctx context.Context, userID uint) (string, error)
	// CreateCheckoutSession creates a hosted subscription checkout session
	// and returns its redirect URL. The user id is attached both as the
	// client reference and as event metadata; different Stripe event shapes
	// populate different fields.
	CreateCheckoutSession(ctx context.Context, customerID string, userID uint) (string, error)
	// ConstructEvent verifies the signature header against the raw payload
	// and parses the event. Verification must happen on the unparsed bytes.
	ConstructEvent(payload []byte, sigHeader string) (stripe.Event, error)
}

// StripeProvider implements Provider with stripe-go.
type StripeProvider struct {
	cfg Config
}

// NewStripeProvider sets the global Stripe API key and returns a provider.
func NewStripeProvider(cfg Config) *StripeProvider {
	stripe.Key = cfg.SecretKey
	return &StripeProvider{cfg: cfg}
}

// NewStripeProviderFromEnv builds the provider from environment configuration.
func NewStripeProviderFromEnv() *StripeProvider {
	appURL := env.GetEnv("APP_URL", "http://localhost:4000")
	return NewStripeProvider(Config{
		SecretKey:     env.GetEnv("STRIPE_SECRET_KEY", ""),
		WebhookSecret: env.GetEnv("STRIPE_WEBHOOK_SECRET", ""),
		PriceID:       env.GetEnv("STRIPE_PRICE_ID", ""),
		SuccessURL:    appURL + "/upgrade?success=1",
		CancelURL:     appURL + "/upgrade?canceled=1",
	})
}

func (p *StripeProvider) CreateCustomer(ctx context.Context, userID uint) (string, error) {
	_ = ctx
	params := &stripe.CustomerParams{}
	params.AddMetadata("user_id", formatUserID(userID))

	c, err := customer.New(params)
	if err != nil {
		return "", err
	}
	return c.ID, nil
}

func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, customerID string, userID uint) (string, error) {
	_ = ctx
	ref := formatUserID(userID)
	params := &stripe.CheckoutSessionParams{
		Customer:          stripe.String(customerID),
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL:        stripe.String(p.cfg.SuccessURL),
		CancelURL:         stripe.String(p.cfg.CancelURL),
		ClientReferenceID: stripe.String(ref),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(p.cfg.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.AddMetadata("user_id", ref)

	sess, err := session.New(params)
	if err != nil {
		return "", err
	}
	return sess.URL, nil
}

func (p *StripeProvider) ConstructEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, sigHeader, p.cfg.WebhookSecret)
}

func formatUserID(userID uint) string {
	return strconv.FormatUint(uint64(userID), 10)
}

func parseUserID(ref string) uint {
	id, err := strconv.ParseUint(ref, 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}
