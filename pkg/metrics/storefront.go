package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Preference outcomes.
const (
	PreferenceCreated      = "created"
	PreferenceInvalid      = "invalid"
	PreferenceUnconfigured = "unconfigured"
	PreferenceUpstreamErr  = "upstream_error"
)

// Webhook outcomes that are not a payment status.
const (
	WebhookIgnored   = "ignored"
	WebhookDuplicate = "duplicate"
	WebhookInvalid   = "invalid"
	WebhookFailed    = "failed"
)

// StorefrontMetrics records checkout, webhook, cart and HTTP activity.
type StorefrontMetrics struct {
	preferences   *prometheus.CounterVec
	preferenceDur prometheus.Histogram
	webhooks      *prometheus.CounterVec
	cartMutations *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// NewStorefrontMetrics registers the storefront metrics on the provided registerer.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	preferences := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_preferences_total",
		Help: "Payment preference creation attempts by outcome.",
	}, []string{"outcome"})
	preferenceDur := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_preference_duration_seconds",
		Help:    "Latency of payment preference creation against the processor.",
		Buckets: prometheus.DefBuckets,
	})
	webhooks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_webhooks_total",
		Help: "Payment notifications by outcome.",
	}, []string{"outcome"})
	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Cart mutations by operation.",
	}, []string{"op"})
	httpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by route pattern.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
	reg.MustRegister(preferences, preferenceDur, webhooks, cartMutations, httpDuration)
	return &StorefrontMetrics{
		preferences:   preferences,
		preferenceDur: preferenceDur,
		webhooks:      webhooks,
		cartMutations: cartMutations,
		httpDuration:  httpDuration,
	}
}

// IncPreference counts a preference creation attempt.
func (m *StorefrontMetrics) IncPreference(outcome string) {
	if m == nil || m.preferences == nil {
		return
	}
	m.preferences.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObservePreferenceDuration records how long the processor took to answer.
func (m *StorefrontMetrics) ObservePreferenceDuration(d time.Duration) {
	if m == nil || m.preferenceDur == nil {
		return
	}
	m.preferenceDur.Observe(d.Seconds())
}

// IncWebhook counts a processed notification.
func (m *StorefrontMetrics) IncWebhook(outcome string) {
	if m == nil || m.webhooks == nil {
		return
	}
	m.webhooks.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncCartMutation counts a cart operation.
func (m *StorefrontMetrics) IncCartMutation(op string) {
	if m == nil || m.cartMutations == nil {
		return
	}
	m.cartMutations.WithLabelValues(normalizeLabel(op)).Inc()
}

// ObserveHTTP records a finished request.
func (m *StorefrontMetrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil || m.httpDuration == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, normalizeLabel(route), strconv.Itoa(status)).Observe(d.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
