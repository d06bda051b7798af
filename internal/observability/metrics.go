package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	requestsTotal         *prometheus.CounterVec
	latencySeconds        *prometheus.HistogramVec
	errorsTotal           *prometheus.CounterVec
	attendanceWritesTotal *prometheus.CounterVec
	decisionsTotal        *prometheus.CounterVec
	justificationsTotal   prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "uwuweb_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		latencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "uwuweb_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		errorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "uwuweb_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		attendanceWritesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "uwuweb_attendance_writes_total",
			Help: "Attendance rows written, labelled by resulting status.",
		}, []string{"status"})

		decisionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "uwuweb_justification_decisions_total",
			Help: "Justification decisions made, labelled by outcome.",
		}, []string{"outcome"})

		justificationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "uwuweb_justifications_submitted_total",
			Help: "Justifications submitted by students.",
		})

		prometheus.MustRegister(requestsTotal, latencySeconds, errorsTotal,
			attendanceWritesTotal, decisionsTotal, justificationsTotal)
	})
}

// Requests exposes the counter for API requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// Latency exposes the latency histogram for API requests.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return latencySeconds
}

// Errors exposes the counter for API error responses.
func Errors() *prometheus.CounterVec {
	RegisterMetrics()
	return errorsTotal
}

// AttendanceWrites exposes the counter for attendance writes.
func AttendanceWrites() *prometheus.CounterVec {
	RegisterMetrics()
	return attendanceWritesTotal
}

// JustificationDecisions exposes the counter for approval decisions.
func JustificationDecisions() *prometheus.CounterVec {
	RegisterMetrics()
	return decisionsTotal
}

// JustificationsSubmitted exposes the counter for submissions.
func JustificationsSubmitted() prometheus.Counter {
	RegisterMetrics()
	return justificationsTotal
}
