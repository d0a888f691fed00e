package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Informer collectors.
var (
	informerEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cassandra_operator_informer_events_total",
			Help: "Change events emitted by resource caches, by kind and event type.",
		},
		[]string{"kind", "type"},
	)

	informerResyncsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cassandra_operator_informer_resyncs_total",
			Help: "Full list-and-diff resyncs, by kind and result.",
		},
		[]string{"kind", "result"},
	)

	informerResyncDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cassandra_operator_informer_resync_duration_seconds",
			Help:    "Duration of full resyncs including every list page.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"kind"},
	)

	informerWatchRestartsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cassandra_operator_informer_watch_restarts_total",
			Help: "Watch streams that ended and sent the reflector back to resync, by reason.",
		},
		[]string{"kind", "reason"},
	)

	informerCacheSize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cassandra_operator_informer_cache_size",
			Help: "Number of resources held in the cache of a kind.",
		},
		[]string{"kind"},
	)

	informerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cassandra_operator_informer_state",
			Help: "Info-style reflector state per kind. Always 1 for the current state.",
		},
		[]string{"kind", "state"},
	)

	informerHandlerErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cassandra_operator_informer_handler_errors_total",
			Help: "Subscriber handlers that returned an error or panicked.",
		},
		[]string{"kind", "subscriber"},
	)
)

// Controller collectors.
var (
	datacenterReplicas = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cassandra_operator_datacenter_replicas",
			Help: "Desired and ready Cassandra node counts for a datacenter.",
		},
		[]string{"datacenter", "namespace", "state"},
	)

	backupsPending = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cassandra_operator_backups_pending",
			Help: "Backup requests that have not reached a terminal phase.",
		},
		[]string{"namespace"},
	)
)

// Collectors returns every metric collector of the package.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		informerEventsTotal,
		informerResyncsTotal,
		informerResyncDuration,
		informerWatchRestartsTotal,
		informerCacheSize,
		informerState,
		informerHandlerErrorsTotal,
		datacenterReplicas,
		backupsPending,
	}
}

// Register registers every collector with reg.
func Register(reg prometheus.Registerer) error {
	for _, c := range Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
