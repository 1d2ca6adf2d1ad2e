package billing

// Stripe event types the lifecycle manager reacts to. Everything else is
// acknowledged as a no-op so the provider does not retry it.
const (
	EventCheckoutSessionCompleted = "checkout.session.completed"
	EventSubscriptionUpdated      = "customer.subscription.updated"
	EventSubscriptionDeleted      = "customer.subscription.deleted"
)

// Config carries the static Stripe checkout parameters. There is a single
// fixed subscription product; the price reference comes from the dashboard.
type Config struct {
	SecretKey     string
	WebhookSecret string
	PriceID       string
	SuccessURL    string
	CancelURL     string
}
