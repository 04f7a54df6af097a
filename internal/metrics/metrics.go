package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reservations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skyreserve_reservations_total",
		Help: "Reservation requests by outcome",
	}, []string{"outcome"})

	reservationRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skyreserve_reservation_retries_total",
		Help: "Reservation attempts repeated after a lock conflict",
	})

	seatsReserved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skyreserve_seats_reserved_total",
		Help: "Seats committed across all flights",
	})

	reservationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "skyreserve_reservation_duration_seconds",
		Help:    "Wall time of a reservation including retries",
		Buckets: prometheus.DefBuckets,
	})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skyreserve_catalog_cache_lookups_total",
		Help: "Catalog cache lookups by result",
	}, []string{"result"})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skyreserve_http_requests_total",
		Help: "HTTP requests by route and status",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "skyreserve_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	eventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skyreserve_events_published_total",
		Help: "Booking events written to Kafka by topic",
	}, []string{"topic"})

	publishErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skyreserve_event_publish_errors_total",
		Help: "Booking events that could not be written to Kafka",
	})
)

// ObserveReservation records the outcome of one Reserve call. outcome is
// "confirmed" or the error kind name.
func ObserveReservation(outcome string, seats int, elapsed time.Duration) {
	reservations.WithLabelValues(outcome).Inc()
	reservationDuration.Observe(elapsed.Seconds())
	if outcome == "confirmed" {
		seatsReserved.Add(float64(seats))
	}
}

func ReservationRetried() {
	reservationRetries.Inc()
}

func CacheHit() {
	cacheLookups.WithLabelValues("hit").Inc()
}

func CacheMiss() {
	cacheLookups.WithLabelValues("miss").Inc()
}

func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func EventPublished(topic string) {
	eventsPublished.WithLabelValues(topic).Inc()
}

func PublishFailed() {
	publishErrors.Inc()
}
