package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	BookingsTotal        *prometheus.CounterVec
	BookingDuration      prometheus.Histogram
	AvailabilityRequests prometheus.Counter
}

// New registers the collectors on the given registry (or the default one
// when nil) and returns them.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		BookingsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bookings_total",
			Help: "Booking attempts by outcome.",
		}, []string{"outcome"}),
		BookingDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "booking_duration_seconds",
			Help:    "End-to-end booking request duration.",
			Buckets: prometheus.DefBuckets,
		}),
		AvailabilityRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "availability_requests_total",
			Help: "Availability resolutions served.",
		}),
	}
}
