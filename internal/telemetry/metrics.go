package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the client core.
// A nil *Metrics is valid and records nothing, so components can take one
// optionally.
type Metrics struct {
	// Backend API client
	APIRequests *prometheus.CounterVec
	APIDuration *prometheus.HistogramVec

	// Session API server
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	// Checkout funnel
	CheckoutSteps  *prometheus.CounterVec
	CheckoutFailed *prometheus.CounterVec
	CheckoutValue  prometheus.Histogram

	// Client state
	StateMutations *prometheus.CounterVec
	StateWriteErrs *prometheus.CounterVec

	// Events
	EventsPublished *prometheus.CounterVec
}

// NewMetrics creates all collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	if namespace == "" {
		namespace = "adorn"
	}
	f := promauto.With(reg)

	return &Metrics{
		APIRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "api_client",
				Name:      "requests_total",
				Help:      "Requests sent to the storefront backend",
			},
			[]string{"method", "route", "status"}, // status: HTTP code or "error"
		),
		APIDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "api_client",
				Name:      "request_duration_seconds",
				Help:      "Backend request latency",
				Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"method", "route"},
		),

		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of session API requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Session API request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path", "status"},
		),
		HTTPInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Number of session API requests currently being processed",
			},
		),

		CheckoutSteps: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "checkout",
				Name:      "steps_total",
				Help:      "Checkout attempts reaching each step",
			},
			[]string{"step"}, // step: started, intent_created, authorized, completed
		),
		CheckoutFailed: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "checkout",
				Name:      "failed_total",
				Help:      "Checkout attempts that failed, by step and error code",
			},
			[]string{"step", "code"},
		),
		CheckoutValue: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "checkout",
				Name:      "order_value_minor",
				Help:      "Completed order totals in minor currency units",
				Buckets:   prometheus.ExponentialBuckets(1000, 2.5, 10),
			},
		),

		StateMutations: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "state",
				Name:      "mutations_total",
				Help:      "Persisted client state mutations",
			},
			[]string{"store", "op"},
		),
		StateWriteErrs: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "state",
				Name:      "write_errors_total",
				Help:      "Client state writes that failed and were rolled back",
			},
			[]string{"store"},
		),

		EventsPublished: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "events",
				Name:      "published_total",
				Help:      "Checkout events handed to the publisher",
			},
			[]string{"type", "result"}, // result: ok, error
		),
	}
}

// ObserveAPIRequest records one backend round trip. status 0 means the
// request never got a response.
func (m *Metrics) ObserveAPIRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.APIRequests.WithLabelValues(method, route, label).Inc()
	m.APIDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveHTTPRequest records one session API request.
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, d time.Duration) {
	if m == nil {
		return
	}
	s := strconv.Itoa(status)
	m.HTTPRequests.WithLabelValues(method, path, s).Inc()
	m.HTTPDuration.WithLabelValues(method, path, s).Observe(d.Seconds())
}

// CheckoutStep counts an attempt reaching step.
func (m *Metrics) CheckoutStep(step string) {
	if m == nil {
		return
	}
	m.CheckoutSteps.WithLabelValues(step).Inc()
}

// CheckoutFailure counts a failed attempt.
func (m *Metrics) CheckoutFailure(step, code string) {
	if m == nil {
		return
	}
	m.CheckoutFailed.WithLabelValues(step, code).Inc()
}

// CheckoutCompleted records the value of a completed order.
func (m *Metrics) CheckoutCompleted(totalMinor int64) {
	if m == nil {
		return
	}
	m.CheckoutSteps.WithLabelValues("completed").Inc()
	m.CheckoutValue.Observe(float64(totalMinor))
}

// StateMutation counts a successful client state mutation.
func (m *Metrics) StateMutation(store, op string) {
	if m == nil {
		return
	}
	m.StateMutations.WithLabelValues(store, op).Inc()
}

// StateWriteError counts a failed client state write.
func (m *Metrics) StateWriteError(store string) {
	if m == nil {
		return
	}
	m.StateWriteErrs.WithLabelValues(store).Inc()
}

// EventPublished counts a publish attempt.
func (m *Metrics) EventPublished(eventType string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.EventsPublished.WithLabelValues(eventType, result).Inc()
}
