package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics menghitung lalu lintas engine booking.
type BookingMetrics struct {
	availabilityChecks *prometheus.CounterVec
	submissions        *prometheus.CounterVec
	notified           prometheus.Counter
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		availabilityChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rental",
			Subsystem: "booking",
			Name:      "availability_checks_total",
			Help:      "Total cek ketersediaan per hasil",
		}, []string{"result"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rental",
			Subsystem: "booking",
			Name:      "submissions_total",
			Help:      "Total submit booking per hasil (created/validation/conflict/not_found/error)",
		}, []string{"kind", "result"}),
		notified: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rental",
			Subsystem: "notifier",
			Name:      "messages_prepared_total",
			Help:      "Total pesan WA admin yang disiapkan",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.availabilityChecks, m.submissions, m.notified)
	return m
}

func (m *BookingMetrics) ObserveCheck(available bool) {
	if m == nil {
		return
	}
	result := "unavailable"
	if available {
		result = "available"
	}
	m.availabilityChecks.WithLabelValues(result).Inc()
}

// ObserveSubmission: kind = "single" | "cart", result = outcome.
func (m *BookingMetrics) ObserveSubmission(kind, result string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(kind, result).Inc()
}

func (m *BookingMetrics) ObserveNotified() {
	if m == nil {
		return
	}
	m.notified.Inc()
}
