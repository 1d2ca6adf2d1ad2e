package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v78"
	"gorm.io/gorm"

	"github.com/MoritzHellmann/TaskPeak/internal/pkg/entitlements"
	"github.com/MoritzHellmann/TaskPeak/internal/pkg/metrics"
)

var (
	// ErrUserNotFound is returned by StartCheckout when no profile row exists
	// for the requested user.
	ErrUserNotFound = errors.New("user not found")
	// ErrSignatureVerification marks webhook payloads whose signature did not
	// verify against the raw body. Security-relevant; never retried here.
	ErrSignatureVerification = errors.New("webhook signature verification failed")
)

// Service owns the per-user plan record: it initiates checkouts and applies
// asynchronous Stripe events. All transitions are idempotent overwrites, so
// redelivered or out-of-order events converge on the provider's latest state.
type Service struct {
	repo     Repository
	provider Provider
}

// NewService creates a billing service from injected collaborators.
func NewService(repo Repository, provider Provider) *Service {
	return &Service{repo: repo, provider: provider}
}

// NewServiceFromDB creates a billing service from a GORM DB handle with the
// Stripe provider configured from the environment.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db), NewStripeProviderFromEnv())
}

// StartCheckout ensures the user has a Stripe customer, creates a hosted
// subscription checkout session and returns its redirect URL.
//
// Customer creation is lazy and idempotent: the existing id is reused on
// every later call, so at most one Stripe customer is ever created per user.
func (s *Service) StartCheckout(ctx context.Context, userID uint) (string, error) {
	profile, err := s.repo.GetProfileByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("load user profile: %w", err)
	}

	customerID := profile.StripeCustomerID
	if customerID == "" {
		customerID, err = s.provider.CreateCustomer(ctx, userID)
		if err != nil {
			return "", fmt.Errorf("create stripe customer: %w", err)
		}
		if err := s.repo.SaveStripeCustomerID(userID, customerID); err != nil {
			return "", fmt.Errorf("persist stripe customer id: %w", err)
		}
	}

	url, err := s.provider.CreateCheckoutSession(ctx, customerID, userID)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}

	metrics.CheckoutSessions.Inc()
	return url, nil
}

// EffectivePlan returns the user's current plan. A missing profile row means
// the user never touched billing and defaults to free.
func (s *Service) EffectivePlan(ctx context.Context, userID uint) (entitlements.Plan, error) {
	_ = ctx
	profile, err := s.repo.GetProfileByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entitlements.PlanFree, nil
		}
		return entitlements.PlanFree, fmt.Errorf("load user profile: %w", err)
	}
	return entitlements.NormalizePlan(profile.Plan), nil
}

// HandleWebhookEvent verifies the signature on the raw payload, parses the
// event and applies it. Signature failures are ErrSignatureVerification;
// persistence failures are returned so the caller answers with a server
// error and Stripe redelivers (safe, transitions are idempotent).
func (s *Service) HandleWebhookEvent(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := s.provider.ConstructEvent(payload, sigHeader)
	if err != nil {
		metrics.WebhookEvents.WithLabelValues("unknown", metrics.OutcomeRejected).Inc()
		return fmt.Errorf("%w: %v", ErrSignatureVerification, err)
	}

	outcome, err := s.applyEvent(ctx, event)
	metrics.WebhookEvents.WithLabelValues(string(event.Type), outcome).Inc()
	return err
}

func (s *Service) applyEvent(ctx context.Context, event stripe.Event) (string, error) {
	switch event.Type {
	case EventCheckoutSessionCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return metrics.OutcomeFailed, fmt.Errorf("decode checkout session: %w", err)
		}
		return s.applyCheckoutCompleted(ctx, &sess)

	case EventSubscriptionUpdated:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return metrics.OutcomeFailed, fmt.Errorf("decode subscription: %w", err)
		}
		return s.applySubscriptionUpdated(ctx, &sub)

	case EventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return metrics.OutcomeFailed, fmt.Errorf("decode subscription: %w", err)
		}
		return s.applySubscriptionDeleted(ctx, &sub)
	}

	// Unrecognized event types are acknowledged so Stripe stops redelivering.
	return metrics.OutcomeNoop, nil
}

// applyCheckoutCompleted upgrades the user referenced by the session. The
// user reference can arrive in the session metadata or the client reference;
// checkout sessions can complete without a subscription in edge cases, in
// which case the event is a no-op rather than an error.
func (s *Service) applyCheckoutCompleted(ctx context.Context, sess *stripe.CheckoutSession) (string, error) {
	_ = ctx
	userID := resolveUserRef(sess)
	if userID == 0 || sess.Customer == nil || sess.Customer.ID == "" ||
		sess.Subscription == nil || sess.Subscription.ID == "" {
		return metrics.OutcomeNoop, nil
	}

	if err := s.repo.UpgradeByUserID(userID, sess.Customer.ID, sess.Subscription.ID); err != nil {
		return metrics.OutcomeFailed, fmt.Errorf("apply checkout completion: %w", err)
	}
	return metrics.OutcomeApplied, nil
}

// applySubscriptionUpdated matches by customer id because subscription
// objects do not carry our user identity. The subscription id is kept even
// on downgrade; it records the last-known subscription for debugging.
func (s *Service) applySubscriptionUpdated(ctx context.Context, sub *stripe.Subscription) (string, error) {
	_ = ctx
	if sub.Customer == nil || sub.Customer.ID == "" {
		return metrics.OutcomeNoop, nil
	}

	plan := entitlements.PlanFree
	if sub.Status == stripe.SubscriptionStatusActive || sub.Status == stripe.SubscriptionStatusTrialing {
		plan = entitlements.PlanPremium
	}

	rows, err := s.repo.SetPlanByCustomerID(sub.Customer.ID, string(plan), sub.ID)
	if err != nil {
		return metrics.OutcomeFailed, fmt.Errorf("apply subscription update: %w", err)
	}
	if rows == 0 {
		// No linked profile yet; expected under eventual account linkage.
		return metrics.OutcomeNoop, nil
	}
	return metrics.OutcomeApplied, nil
}

func (s *Service) applySubscriptionDeleted(ctx context.Context, sub *stripe.Subscription) (string, error) {
	_ = ctx
	if sub.Customer == nil || sub.Customer.ID == "" {
		return metrics.OutcomeNoop, nil
	}

	rows, err := s.repo.DowngradeByCustomerID(sub.Customer.ID)
	if err != nil {
		return metrics.OutcomeFailed, fmt.Errorf("apply subscription deletion: %w", err)
	}
	if rows == 0 {
		return metrics.OutcomeNoop, nil
	}
	return metrics.OutcomeApplied, nil
}

// resolveUserRef extracts the user id from a checkout session, preferring the
// metadata channel and falling back to the client reference. Different event
// shapes populate different fields, so both are attached at session creation.
func resolveUserRef(sess *stripe.CheckoutSession) uint {
	if ref, ok := sess.Metadata["user_id"]; ok {
		if id := parseUserID(ref); id != 0 {
			return id
		}
	}
	return parseUserID(sess.ClientReferenceID)
}
