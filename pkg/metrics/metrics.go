package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTP traffic
	ReqCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "questline_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ReqDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "questline_request_duration_seconds",
			Help:    "Request duration seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ErrorCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "questline_errors_total",
			Help: "Total handler errors",
		},
		[]string{"handler", "type"},
	)

	// Journey engine
	JourneysCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "questline_journeys_created_total",
			Help: "Journeys created, by theme",
		},
		[]string{"theme"},
	)

	JourneysCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "questline_journeys_completed_total",
		Help: "Journeys marked completed",
	})

	CheckInsRecorded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "questline_check_ins_total",
		Help: "Check-ins recorded",
	})

	CheckInsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "questline_check_ins_rejected_total",
			Help: "Check-ins rejected, by reason",
		},
		[]string{"reason"},
	)

	GatesCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "questline_reflection_gates_completed_total",
		Help: "Reflection gates answered",
	})

	Compensations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "questline_compensations_total",
			Help: "Partial writes rolled back, by record kind",
		},
		[]string{"kind"},
	)

	AchievementsAwarded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "questline_achievements_awarded_total",
		Help: "Achievements awarded to users",
	})

	WSClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "questline_ws_clients",
		Help: "Connected websocket clients",
	})
)

var once sync.Once

// InitMetrics registers every collector with the default registry. Safe to
// call more than once.
func InitMetrics() {
	once.Do(func() {
		prometheus.MustRegister(
			ReqCount, ReqDuration, ErrorCount,
			JourneysCreated, JourneysCompleted,
			CheckInsRecorded, CheckInsRejected,
			GatesCompleted, Compensations,
			AchievementsAwarded, WSClients,
		)
	})
}
