// Package metrics exposes planner counters to Prometheus.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Kerhoff/dayplan/internal/schedule"
)

// Metrics holds the planner collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry      *prometheus.Registry
	mutations     *prometheus.CounterVec
	rollbacks     *prometheus.CounterVec
	blocked       *prometheus.CounterVec
	remindersSent prometheus.Counter
}

// New registers the planner collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dayplan",
			Name:      "mutations_total",
			Help:      "Planner mutations by operation and result.",
		}, []string{"op", "result"}),
		rollbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dayplan",
			Name:      "rollbacks_total",
			Help:      "Optimistic updates rolled back after a failed write.",
		}, []string{"op"}),
		blocked: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dayplan",
			Name:      "blocked_total",
			Help:      "Mutations refused by an active order lock.",
		}, []string{"op"}),
		remindersSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "dayplan",
			Name:      "reminders_sent_total",
			Help:      "Item reminders handed to the chat transport.",
		}),
	}
}

// Observe records the outcome of op.
func (m *Metrics) Observe(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, schedule.ErrLocked):
		result = "blocked"
		m.blocked.WithLabelValues(op).Inc()
	case errors.Is(err, schedule.ErrValidation):
		result = "invalid"
	case errors.Is(err, schedule.ErrPersistence):
		result = "rolled_back"
		m.rollbacks.WithLabelValues(op).Inc()
	default:
		result = "error"
	}
	m.mutations.WithLabelValues(op, result).Inc()
}

// ReminderSent counts one delivered reminder.
func (m *Metrics) ReminderSent() {
	if m == nil {
		return
	}
	m.remindersSent.Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
