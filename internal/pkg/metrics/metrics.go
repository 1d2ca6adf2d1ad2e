package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Billing and entitlement counters, registered on the default registry and
// exposed via the /metrics endpoint.
var (
	// WebhookEvents counts received Stripe webhook events by type and outcome
	// (applied, noop, rejected, failed).
	WebhookEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskpeak_stripe_webhook_events_total",
			Help: "Number of Stripe webhook events received.",
		},
		[]string{"event_type", "outcome"},
	)

	// CheckoutSessions counts hosted checkout sessions created for users.
	CheckoutSessions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "taskpeak_checkout_sessions_total",
			Help: "Number of Stripe checkout sessions created.",
		},
	)

	// LimitDenials counts creations blocked by the usage gate, by resource.
	LimitDenials = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskpeak_limit_denials_total",
			Help: "Number of resource creations denied by free tier caps.",
		},
		[]string{"resource"},
	)
)

const (
	OutcomeApplied  = "applied"
	OutcomeNoop     = "noop"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)
