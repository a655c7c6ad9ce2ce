package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveAPIRequest("GET", "/products", 200, time.Millisecond)
		m.CheckoutStep("started")
		m.CheckoutFailure("authorizing", "payment_required")
		m.CheckoutCompleted(5500)
		m.StateMutation("cart", "add")
		m.StateWriteError("cart")
		m.EventPublished("checkout.completed", nil)
	})
}

func TestMetrics_Records(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg, "test")

	m.ObserveAPIRequest("GET", "/products/:id", 200, 20*time.Millisecond)
	m.ObserveAPIRequest("GET", "/products/:id", 0, time.Second)
	m.CheckoutStep("started")
	m.CheckoutCompleted(5500)
	m.CheckoutFailure("authorizing", "payment_required")
	m.StateMutation("cart", "add")
	m.StateMutation("cart", "add")
	m.EventPublished("checkout.failed", errors.New("nats down"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.APIRequests.WithLabelValues("GET", "/products/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.APIRequests.WithLabelValues("GET", "/products/:id", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CheckoutSteps.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CheckoutFailed.WithLabelValues("authorizing", "payment_required")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.StateMutations.WithLabelValues("cart", "add")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues("checkout.failed", "error")))
}

func TestSentry_DisabledIsSafe(t *testing.T) {
	var s *Sentry
	assert.False(t, s.IsEnabled())
	assert.NotPanics(t, func() {
		s.CaptureError(context.Background(), errors.New("boom"), map[string]string{"step": "confirming"})
		s.AddBreadcrumb("checkout", "intent created", nil)
	})
}
