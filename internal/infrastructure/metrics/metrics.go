package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the service counters. Each instance owns its registry so
// tests can create as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	// SubmissionsTotal counts submission attempts by outcome:
	// accepted, invalid, attachment_rejected, storage_failed.
	SubmissionsTotal *prometheus.CounterVec
	// NotificationsTotal counts email dispatches by recipient kind and result.
	NotificationsTotal *prometheus.CounterVec
	// ListingsTotal counts report listings by result.
	ListingsTotal *prometheus.CounterVec
	// LiveViewers is the number of connected dashboard websocket clients.
	LiveViewers prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		SubmissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "emergency",
			Name:      "submissions_total",
			Help:      "Report submissions by outcome.",
		}, []string{"outcome"}),
		NotificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "emergency",
			Name:      "notifications_total",
			Help:      "Notification dispatches by recipient and result.",
		}, []string{"recipient", "result"}),
		ListingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "emergency",
			Name:      "listings_total",
			Help:      "Report listings by result.",
		}, []string{"result"}),
		LiveViewers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "emergency",
			Name:      "live_viewers",
			Help:      "Connected live dashboard clients.",
		}),
	}

	m.Registry.MustRegister(
		m.SubmissionsTotal,
		m.NotificationsTotal,
		m.ListingsTotal,
		m.LiveViewers,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *Metrics) Submission(outcome string) {
	if m == nil {
		return
	}
	m.SubmissionsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Notification(recipient string, err error) {
	if m == nil {
		return
	}
	result := "sent"
	if err != nil {
		result = "failed"
	}
	m.NotificationsTotal.WithLabelValues(recipient, result).Inc()
}

func (m *Metrics) Listing(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "failed"
	}
	m.ListingsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ViewerConnected() {
	if m != nil {
		m.LiveViewers.Inc()
	}
}

func (m *Metrics) ViewerDisconnected() {
	if m != nil {
		m.LiveViewers.Dec()
	}
}
