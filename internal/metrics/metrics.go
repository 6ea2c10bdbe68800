package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wpp_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wpp_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Business metrics
	UsersRegistered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wpp_users_registered_total",
			Help: "Total users registered",
		},
	)

	MessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wpp_messages_sent_total",
			Help: "Total messages sent",
		},
		[]string{"kind"}, // "text" or "image"
	)

	ContactsAdded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wpp_contacts_added_total",
			Help: "Total contacts added",
		},
	)

	ProfileUpdates = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wpp_profile_updates_total",
			Help: "Total profile updates",
		},
	)

	UsersOnline = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wpp_users_online",
			Help: "Users with a live presence heartbeat",
		},
	)

	EventSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wpp_event_subscribers",
			Help: "Open websocket event streams",
		},
	)

	// Storage metrics
	PersistenceFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wpp_persistence_failures_total",
			Help: "Snapshot writes that failed and were rolled back",
		},
	)

	SnapshotSaveDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wpp_snapshot_save_duration_seconds",
			Help:    "Time to persist a full snapshot",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .5},
		},
	)
)
