package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the booking counters. A nil *Metrics is a valid no-op.
type Metrics struct {
	registry *prometheus.Registry

	bookingsCreated  prometheus.Counter
	transitions      *prometheus.CounterVec
	reviewsCreated   prometheus.Counter
	notifications    *prometheus.CounterVec
	notifyQueueDepth prometheus.GaugeFunc
}

// New registers the booking collectors on a fresh registry.
// queueDepth may be nil when no dispatcher is running.
func New(queueDepth func() float64) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		bookingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "naco",
			Name:      "bookings_created_total",
			Help:      "Bookings created.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "naco",
			Name:      "booking_transitions_total",
			Help:      "Booking transition attempts by canonical action and result.",
		}, []string{"action", "result"}),
		reviewsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "naco",
			Name:      "reviews_created_total",
			Help:      "Reviews created.",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "naco",
			Name:      "notifications_total",
			Help:      "Notification dispatch outcomes.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(
		m.bookingsCreated,
		m.transitions,
		m.reviewsCreated,
		m.notifications,
		prometheus.NewGoCollector(),
	)
	if queueDepth != nil {
		m.notifyQueueDepth = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "naco",
			Name:      "notification_queue_depth",
			Help:      "Notifications waiting to be persisted.",
		}, queueDepth)
		reg.MustRegister(m.notifyQueueDepth)
	}
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) BookingCreated() {
	if m != nil {
		m.bookingsCreated.Inc()
	}
}

func (m *Metrics) Transition(action, result string) {
	if m != nil {
		m.transitions.WithLabelValues(action, result).Inc()
	}
}

func (m *Metrics) ReviewCreated() {
	if m != nil {
		m.reviewsCreated.Inc()
	}
}

// Notification records "stored", "failed" or "dropped".
func (m *Metrics) Notification(outcome string) {
	if m != nil {
		m.notifications.WithLabelValues(outcome).Inc()
	}
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// NotificationCounter returns the counter for one dispatch outcome.
func (m *Metrics) NotificationCounter(outcome string) prometheus.Counter {
	return m.notifications.WithLabelValues(outcome)
}

// TransitionCounter returns the counter for one action and result.
func (m *Metrics) TransitionCounter(action, result string) prometheus.Counter {
	return m.transitions.WithLabelValues(action, result)
}
