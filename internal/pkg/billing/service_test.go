package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v78"
	"gorm.io/gorm"

	"github.com/MoritzHellmann/TaskPeak/app/models"
	"github.com/MoritzHellmann/TaskPeak/internal/pkg/entitlements"
)

type fakeRepository struct {
	profiles map[uint]*models.UserProfile
}

func newFakeRepository(profiles ...*models.UserProfile) *fakeRepository {
	r := &fakeRepository{profiles: make(map[uint]*models.UserProfile)}
	for _, p := range profiles {
		r.profiles[p.UserID] = p
	}
	return r
}

func (r *fakeRepository) GetProfileByUserID(userID uint) (*models.UserProfile, error) {
	p, ok := r.profiles[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *fakeRepository) SaveStripeCustomerID(userID uint, customerID string) error {
	if p, ok := r.profiles[userID]; ok {
		p.StripeCustomerID = customerID
	}
	return nil
}

func (r *fakeRepository) UpgradeByUserID(userID uint, customerID, subscriptionID string) error {
	p, ok := r.profiles[userID]
	if !ok {
		return nil
	}
	p.Plan = string(entitlements.PlanPremium)
	p.StripeCustomerID = customerID
	p.StripeSubscriptionID = subscriptionID
	return nil
}

func (r *fakeRepository) SetPlanByCustomerID(customerID, plan, subscriptionID string) (int64, error) {
	var rows int64
	for _, p := range r.profiles {
		if p.StripeCustomerID == customerID {
			p.Plan = plan
			p.StripeSubscriptionID = subscriptionID
			rows++
		}
	}
	return rows, nil
}

func (r *fakeRepository) DowngradeByCustomerID(customerID string) (int64, error) {
	var rows int64
	for _, p := range r.profiles {
		if p.StripeCustomerID == customerID {
			p.Plan = string(entitlements.PlanFree)
			p.StripeSubscriptionID = ""
			rows++
		}
	}
	return rows, nil
}

type fakeProvider struct {
	createCalls  int
	sessionCalls int
	event        stripe.Event
	signatureErr error
}

func (p *fakeProvider) CreateCustomer(ctx context.Context, userID uint) (string, error) {
	p.createCalls++
	return fmt.Sprintf("cus_fake_%d", userID), nil
}

func (p *fakeProvider) CreateCheckoutSession(ctx context.Context, customerID string, userID uint) (string, error) {
	p.sessionCalls++
	return "https://checkout.stripe.test/" + customerID, nil
}

func (p *fakeProvider) ConstructEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	if p.signatureErr != nil {
		return stripe.Event{}, p.signatureErr
	}
	return p.event, nil
}

func stripeEvent(t *testing.T, eventType string, object interface{}) stripe.Event {
	t.Helper()
	raw, err := json.Marshal(object)
	require.NoError(t, err)
	return stripe.Event{
		Type: stripe.EventType(eventType),
		Data: &stripe.EventData{Raw: raw},
	}
}

func deliver(t *testing.T, svc *Service, eventType string, object interface{}) error {
	t.Helper()
	provider := svc.provider.(*fakeProvider)
	provider.event = stripeEvent(t, eventType, object)
	return svc.HandleWebhookEvent(context.Background(), []byte("{}"), "t=1,v1=fake")
}

func TestStartCheckoutCreatesCustomerOnce(t *testing.T) {
	repo := newFakeRepository(&models.UserProfile{UserID: 7, Plan: "free"})
	provider := &fakeProvider{}
	svc := NewService(repo, provider)

	url, err := svc.StartCheckout(context.Background(), 7)
	require.NoError(t, err)
	assert.Contains(t, url, "cus_fake_7")
	assert.Equal(t, 1, provider.createCalls)
	assert.Equal(t, "cus_fake_7", repo.profiles[7].StripeCustomerID)

	// Second checkout reuses the persisted customer id.
	_, err = svc.StartCheckout(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 1, provider.createCalls)
	assert.Equal(t, 2, provider.sessionCalls)
}

func TestStartCheckoutUnknownUser(t *testing.T) {
	svc := NewService(newFakeRepository(), &fakeProvider{})

	_, err := svc.StartCheckout(context.Background(), 99)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCheckoutCompletedUpgradesAndIsIdempotent(t *testing.T) {
	repo := newFakeRepository(&models.UserProfile{UserID: 7, Plan: "free"})
	svc := NewService(repo, &fakeProvider{})

	payload := map[string]interface{}{
		"id":                  "cs_1",
		"customer":            "cus_1",
		"subscription":        "sub_1",
		"metadata":            map[string]string{"user_id": "7"},
		"client_reference_id": "7",
	}

	require.NoError(t, deliver(t, svc, EventCheckoutSessionCompleted, payload))
	first := *repo.profiles[7]

	// Redelivery produces the identical end state.
	require.NoError(t, deliver(t, svc, EventCheckoutSessionCompleted, payload))
	assert.Equal(t, first, *repo.profiles[7])

	assert.Equal(t, "premium", repo.profiles[7].Plan)
	assert.Equal(t, "cus_1", repo.profiles[7].StripeCustomerID)
	assert.Equal(t, "sub_1", repo.profiles[7].StripeSubscriptionID)
}

func TestCheckoutCompletedWithoutSubscriptionIsNoop(t *testing.T) {
	repo := newFakeRepository(&models.UserProfile{UserID: 7, Plan: "free"})
	svc := NewService(repo, &fakeProvider{})

	err := deliver(t, svc, EventCheckoutSessionCompleted, map[string]interface{}{
		"id":       "cs_1",
		"customer": "cus_1",
		"metadata": map[string]string{"user_id": "7"},
	})
	require.NoError(t, err)
	assert.Equal(t, "free", repo.profiles[7].Plan)
}

func TestCheckoutCompletedUnresolvableUserIsNoop(t *testing.T) {
	repo := newFakeRepository(&models.UserProfile{UserID: 7, Plan: "free"})
	svc := NewService(repo, &fakeProvider{})

	err := deliver(t, svc, EventCheckoutSessionCompleted, map[string]interface{}{
		"id":           "cs_1",
		"customer":     "cus_1",
		"subscription": "sub_1",
	})
	require.NoError(t, err)
	assert.Equal(t, "free", repo.profiles[7].Plan)
}

func TestSubscriptionUpdatedLastAppliedWins(t *testing.T) {
	active := map[string]interface{}{"id": "sub_1", "customer": "cus_1", "status": "active"}
	canceled := map[string]interface{}{"id": "sub_1", "customer": "cus_1", "status": "canceled"}

	// active then canceled ends free
	repo := newFakeRepository(&models.UserProfile{UserID: 7, Plan: "free", StripeCustomerID: "cus_1"})
	svc := NewService(repo, &fakeProvider{})
	require.NoError(t, deliver(t, svc, EventSubscriptionUpdated, active))
	assert.Equal(t, "premium", repo.profiles[7].Plan)
	require.NoError(t, deliver(t, svc, EventSubscriptionUpdated, canceled))
	assert.Equal(t, "free", repo.profiles[7].Plan)
	// Subscription id is kept on downgrade for audit purposes.
	assert.Equal(t, "sub_1", repo.profiles[7].StripeSubscriptionID)

	// canceled then active ends premium
	repo = newFakeRepository(&models.UserProfile{UserID: 7, Plan: "free", StripeCustomerID: "cus_1"})
	svc = NewService(repo, &fakeProvider{})
	require.NoError(t, deliver(t, svc, EventSubscriptionUpdated, canceled))
	require.NoError(t, deliver(t, svc, EventSubscriptionUpdated, active))
	assert.Equal(t, "premium", repo.profiles[7].Plan)
}

func TestSubscriptionUpdatedTrialingIsPremium(t *testing.T) {
	repo := newFakeRepository(&models.UserProfile{UserID: 7, Plan: "free", StripeCustomerID: "cus_1"})
	svc := NewService(repo, &fakeProvider{})

	err := deliver(t, svc, EventSubscriptionUpdated, map[string]interface{}{
		"id": "sub_1", "customer": "cus_1", "status": "trialing",
	})
	require.NoError(t, err)
	assert.Equal(t, "premium", repo.profiles[7].Plan)
}

func TestSubscriptionDeletedDowngradesAndClearsSubscription(t *testing.T) {
	repo := newFakeRepository(&models.UserProfile{
		UserID: 7, Plan: "premium", StripeCustomerID: "cus_1", StripeSubscriptionID: "sub_1",
	})
	svc := NewService(repo, &fakeProvider{})

	err := deliver(t, svc, EventSubscriptionDeleted, map[string]interface{}{
		"id": "sub_1", "customer": "cus_1", "status": "canceled",
	})
	require.NoError(t, err)
	assert.Equal(t, "free", repo.profiles[7].Plan)
	assert.Equal(t, "", repo.profiles[7].StripeSubscriptionID)
	// The customer id survives: it is set once and never cleared.
	assert.Equal(t, "cus_1", repo.profiles[7].StripeCustomerID)
}

func TestSubscriptionDeletedUnknownCustomerIsNoop(t *testing.T) {
	repo := newFakeRepository(&models.UserProfile{UserID: 7, Plan: "premium", StripeCustomerID: "cus_1"})
	svc := NewService(repo, &fakeProvider{})

	err := deliver(t, svc, EventSubscriptionDeleted, map[string]interface{}{
		"id": "sub_9", "customer": "cus_unknown", "status": "canceled",
	})
	require.NoError(t, err)
	assert.Equal(t, "premium", repo.profiles[7].Plan)
}

func TestUnknownEventTypeIsAcknowledgedWithoutMutation(t *testing.T) {
	repo := newFakeRepository(&models.UserProfile{UserID: 7, Plan: "free", StripeCustomerID: "cus_1"})
	svc := NewService(repo, &fakeProvider{})

	err := deliver(t, svc, "invoice.paid", map[string]interface{}{"id": "in_1"})
	require.NoError(t, err)
	assert.Equal(t, "free", repo.profiles[7].Plan)
}

func TestInvalidSignatureNeverReachesLifecycle(t *testing.T) {
	repo := newFakeRepository(&models.UserProfile{UserID: 7, Plan: "free", StripeCustomerID: "cus_1"})
	provider := &fakeProvider{signatureErr: errors.New("no valid signature")}
	svc := NewService(repo, provider)

	err := svc.HandleWebhookEvent(context.Background(), []byte(`{"type":"customer.subscription.updated"}`), "t=1,v1=bogus")
	assert.ErrorIs(t, err, ErrSignatureVerification)
	assert.Equal(t, "free", repo.profiles[7].Plan)
}

func TestEffectivePlanDefaultsToFree(t *testing.T) {
	svc := NewService(newFakeRepository(), &fakeProvider{})

	plan, err := svc.EffectivePlan(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, entitlements.PlanFree, plan)
}
