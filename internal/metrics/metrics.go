package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "parksmart",
			Name:      "http_requests_total",
			Help:      "Count of HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	bookingCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "parksmart",
			Name:      "booking_created_total",
			Help:      "Count of bookings created by kind.",
		},
		[]string{"kind"},
	)

	bookingRevoked = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "parksmart",
			Name:      "booking_revoked_total",
			Help:      "Count of hourly bookings settled by admins.",
		},
	)

	ticketIssued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "parksmart",
			Name:      "ticket_issued_total",
			Help:      "Count of ticket artifacts rendered by kind.",
		},
		[]string{"kind"},
	)

	ticketFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "parksmart",
			Name:      "ticket_issue_failures_total",
			Help:      "Count of failed ticket render or email attempts by stage.",
		},
		[]string{"stage"},
	)

	emailSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "parksmart",
			Name:      "email_sent_total",
			Help:      "Count of confirmation emails delivered to the provider.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingCreated, bookingRevoked,
			ticketIssued, ticketFailures, emailSent)
	})
}

func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

func IncBookingCreated(kind string) {
	bookingCreated.WithLabelValues(kind).Inc()
}

func IncBookingRevoked() {
	bookingRevoked.Inc()
}

func IncTicketIssued(kind string) {
	ticketIssued.WithLabelValues(kind).Inc()
}

func IncTicketFailure(stage string) {
	ticketFailures.WithLabelValues(stage).Inc()
}

func IncEmailSent() {
	emailSent.Inc()
}
