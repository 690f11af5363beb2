// Package metrics exposes Prometheus collectors for the storefront API.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "royalfootwear"

// Metrics holds every collector. A nil *Metrics is valid and records nothing.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	OrdersPlaced       prometheus.Counter
	OrderRevenue       prometheus.Counter
	OrderCartClearFail prometheus.Counter

	LoginAttempts *prometheus.CounterVec
	LoginLockouts prometheus.Counter

	CartWriteConflicts *prometheus.CounterVec
	LockWaitDuration   prometheus.Histogram
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		OrdersPlaced: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "placed_total",
			Help:      "Orders persisted.",
		}),
		OrderRevenue: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "grand_total_sum",
			Help:      "Sum of order grand totals.",
		}),
		OrderCartClearFail: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "cart_clear_failures_total",
			Help:      "Orders whose cart could not be cleared after the order was persisted.",
		}),
		LoginAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "login_attempts_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		LoginLockouts: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "lockouts_total",
			Help:      "Accounts locked after too many failed attempts.",
		}),
		CartWriteConflicts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aggregate",
			Name:      "write_conflicts_total",
			Help:      "Optimistic version conflicts by aggregate.",
		}, []string{"aggregate"}),
		LockWaitDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "aggregate",
			Name:      "lock_wait_seconds",
			Help:      "Time spent acquiring per-account locks.",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		}),
	}
}

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordOrderPlaced records a persisted order.
func (m *Metrics) RecordOrderPlaced(grandTotal float64) {
	if m == nil {
		return
	}
	m.OrdersPlaced.Inc()
	m.OrderRevenue.Add(grandTotal)
}

// RecordCartClearFailure records an order whose cart was left behind.
func (m *Metrics) RecordCartClearFailure() {
	if m == nil {
		return
	}
	m.OrderCartClearFail.Inc()
}

// RecordLogin records a login attempt outcome.
func (m *Metrics) RecordLogin(outcome string, lockedNow bool) {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues(outcome).Inc()
	if lockedNow {
		m.LoginLockouts.Inc()
	}
}

// RecordWriteConflict records a version conflict on an aggregate ("cart", "wishlist").
func (m *Metrics) RecordWriteConflict(aggregate string) {
	if m == nil {
		return
	}
	m.CartWriteConflicts.WithLabelValues(aggregate).Inc()
}

// ObserveLockWait records how long a lock acquisition took.
func (m *Metrics) ObserveLockWait(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.LockWaitDuration.Observe(elapsed.Seconds())
}
