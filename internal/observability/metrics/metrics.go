package metrics

import "github.com/prometheus/client_golang/prometheus"

// ChatMetrics exposes counters/histograms for the assistant's chat flows.
// All observers are nil-safe so wiring them is optional in tests.
type ChatMetrics struct {
	turnsTotal        *prometheus.CounterVec
	bookingsConfirmed prometheus.Counter
	bookingsCancelled prometheus.Counter
	emailFailures     prometheus.Counter
	turnLatency       *prometheus.HistogramVec
}

// Turn routes, used as the "route" label on turn counters.
const (
	RouteRetrieval    = "retrieval"
	RouteBooking      = "booking"
	RouteConfirmation = "confirmation"
	RouteChat         = "chat"
)

func NewChatMetrics(reg prometheus.Registerer) *ChatMetrics {
	m := &ChatMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medibot",
			Subsystem: "chat",
			Name:      "turns_total",
			Help:      "Total chat turns by routing decision",
		}, []string{"route"}),
		bookingsConfirmed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "medibot",
			Subsystem: "bookings",
			Name:      "confirmed_total",
			Help:      "Total bookings confirmed and persisted",
		}),
		bookingsCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "medibot",
			Subsystem: "bookings",
			Name:      "cancelled_total",
			Help:      "Total booking drafts cancelled at confirmation",
		}),
		emailFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "medibot",
			Subsystem: "notify",
			Name:      "email_failures_total",
			Help:      "Confirmation emails that could not be delivered",
		}),
		turnLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "medibot",
			Subsystem: "chat",
			Name:      "turn_latency_seconds",
			Help:      "Latency of processing one chat turn",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.bookingsConfirmed, m.bookingsCancelled, m.emailFailures, m.turnLatency)
	return m
}

func (m *ChatMetrics) ObserveTurn(route string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(route).Inc()
}

func (m *ChatMetrics) ObserveBookingConfirmed() {
	if m == nil {
		return
	}
	m.bookingsConfirmed.Inc()
}

func (m *ChatMetrics) ObserveBookingCancelled() {
	if m == nil {
		return
	}
	m.bookingsCancelled.Inc()
}

func (m *ChatMetrics) ObserveEmailFailure() {
	if m == nil {
		return
	}
	m.emailFailures.Inc()
}

func (m *ChatMetrics) ObserveTurnLatency(route string, seconds float64) {
	if m == nil {
		return
	}
	m.turnLatency.WithLabelValues(route).Observe(seconds)
}
