package metrics

import "github.com/prometheus/client_golang/prometheus"

// ConversationMetrics exposes counters for the inbound conversation flow.
type ConversationMetrics struct {
	inboundTotal        *prometheus.CounterVec
	repliesTotal        *prometheus.CounterVec
	bookingsTotal       prometheus.Counter
	persistenceFailures *prometheus.CounterVec
}

func NewConversationMetrics(reg prometheus.Registerer) *ConversationMetrics {
	m := &ConversationMetrics{
		inboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "intake",
			Subsystem: "conversation",
			Name:      "inbound_total",
			Help:      "Total inbound messages by handling outcome",
		}, []string{"outcome"}),
		repliesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "intake",
			Subsystem: "conversation",
			Name:      "replies_total",
			Help:      "Total outbound replies by delivery status",
		}, []string{"status"}),
		bookingsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "intake",
			Subsystem: "conversation",
			Name:      "bookings_total",
			Help:      "Total completed booking records",
		}),
		persistenceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "intake",
			Subsystem: "conversation",
			Name:      "persistence_failures_total",
			Help:      "Persistence write failures by store",
		}, []string{"store"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.inboundTotal, m.repliesTotal, m.bookingsTotal, m.persistenceFailures)
	return m
}

func (m *ConversationMetrics) ObserveInbound(outcome string) {
	if m == nil {
		return
	}
	m.inboundTotal.WithLabelValues(outcome).Inc()
}

func (m *ConversationMetrics) ObserveReply(status string) {
	if m == nil {
		return
	}
	m.repliesTotal.WithLabelValues(status).Inc()
}

func (m *ConversationMetrics) ObserveBooking() {
	if m == nil {
		return
	}
	m.bookingsTotal.Inc()
}

func (m *ConversationMetrics) ObservePersistenceFailure(store string) {
	if m == nil {
		return
	}
	m.persistenceFailures.WithLabelValues(store).Inc()
}
