package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BookingsCreated   = promauto.NewCounter(prometheus.CounterOpts{Namespace: "gatoryde", Name: "bookings_created_total", Help: "Bookings that entered the authorized state"})
	BookingsCancelled = promauto.NewCounter(prometheus.CounterOpts{Namespace: "gatoryde", Name: "bookings_cancelled_total", Help: "Bookings cancelled by rider or driver"})
	TripsStarted      = promauto.NewCounter(prometheus.CounterOpts{Namespace: "gatoryde", Name: "trips_started_total", Help: "Bookings moved to in_progress via trip start code"})
	TripsCompleted    = promauto.NewCounter(prometheus.CounterOpts{Namespace: "gatoryde", Name: "trips_completed_total", Help: "Rides completed by their driver"})
	DisputesOpened    = promauto.NewCounter(prometheus.CounterOpts{Namespace: "gatoryde", Name: "disputes_opened_total", Help: "Disputes opened against bookings"})
	DisputesResolved  = promauto.NewCounter(prometheus.CounterOpts{Namespace: "gatoryde", Name: "disputes_resolved_total", Help: "Disputes resolved or rejected by admins"})
)
