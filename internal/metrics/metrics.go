package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP (входящие запросы браузера)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "code"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "code"},
	)

	// Remote booking API
	remoteRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remote_api_requests_total",
			Help: "Total number of calls to the remote booking API.",
		},
		[]string{"operation", "code"},
	)
	remoteDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "remote_api_request_duration_seconds",
			Help:    "Remote booking API call duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Controllers
	listPagesLoaded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "booking_list_pages_loaded_total",
			Help: "Total number of non-empty booking pages appended to list views.",
		},
	)
	listExhausted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "booking_list_exhausted_total",
			Help: "Total number of list views that reached the end of data.",
		},
	)
	bookingsDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bookings_deleted_total",
			Help: "Total number of bookings deleted from list views.",
		},
	)
	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bookings_created_total",
			Help: "Total number of bookings created through the form.",
		},
	)
	validationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_validation_failures_total",
			Help: "Number of rejected form submissions by failing field.",
		},
		[]string{"field"},
	)
	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_sessions",
			Help: "Current number of browser sessions holding controllers.",
		},
	)

	// Kafka
	kafkaMessagesSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kafka_messages_sent_total",
			Help: "Total number of Kafka messages successfully sent.",
		},
	)
	kafkaErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_errors_total",
			Help: "Total number of Kafka-related errors.",
		},
		[]string{"component", "operation"},
	)
	kafkaEventsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kafka_events_dropped_total",
			Help: "Booking events dropped because the publish queue was full.",
		},
	)
)

var registerOnce sync.Once

func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,

			remoteRequests,
			remoteDuration,

			listPagesLoaded,
			listExhausted,
			bookingsDeleted,
			bookingsCreated,
			validationFailures,
			activeSessions,

			kafkaMessagesSent,
			kafkaErrors,
			kafkaEventsDropped,
		)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// --- HTTP ---
func ObserveHTTPRequest(method, route, code string, d time.Duration) {
	httpRequests.WithLabelValues(method, route, code).Inc()
	httpDuration.WithLabelValues(method, route, code).Observe(d.Seconds())
}

// --- Remote API ---
// code 0 означает, что ответа не было (ошибка транспорта).
func ObserveRemoteCall(operation string, code int, d time.Duration) {
	label := "error"
	if code > 0 {
		label = strconv.Itoa(code)
	}
	remoteRequests.WithLabelValues(operation, label).Inc()
	remoteDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// --- Controllers ---
func IncListPageLoaded() { listPagesLoaded.Inc() }
func IncListExhausted()  { listExhausted.Inc() }
func IncBookingDeleted() { bookingsDeleted.Inc() }
func IncBookingCreated() { bookingsCreated.Inc() }
func IncValidationFailure(field string) {
	validationFailures.WithLabelValues(field).Inc()
}
func SetActiveSessions(n int) {
	if n < 0 {
		n = 0
	}
	activeSessions.Set(float64(n))
}

// --- Kafka ---
func IncKafkaSent() { kafkaMessagesSent.Inc() }
func IncKafkaError(component, operation string) {
	kafkaErrors.WithLabelValues(component, operation).Inc()
}
func IncKafkaDropped() { kafkaEventsDropped.Inc() }
