package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rentdesk",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	bookingsAdmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rentdesk",
			Name:      "bookings_admitted_total",
			Help:      "Confirmed bookings by channel.",
		},
		[]string{"channel"},
	)

	bookingsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rentdesk",
			Name:      "bookings_rejected_total",
			Help:      "Rejected admissions by reason.",
		},
		[]string{"reason"},
	)

	notifyDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rentdesk",
			Name:      "notify_deliveries_total",
			Help:      "Notification delivery attempts by result.",
		},
		[]string{"result"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingsAdmitted, bookingsRejected, notifyDeliveries)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncAdmitted records a confirmed booking for a channel.
func IncAdmitted(channel string) {
	bookingsAdmitted.WithLabelValues(channel).Inc()
}

// IncRejected records a rejected admission with a reason label
// (validation, not_found, conflict).
func IncRejected(reason string) {
	bookingsRejected.WithLabelValues(reason).Inc()
}

// IncNotify records a notification delivery outcome (ok, retry, failed).
func IncNotify(result string) {
	notifyDeliveries.WithLabelValues(result).Inc()
}
