package monitoring

import (
	"time"

	"github.com/otterscale/cassandra-operator/internal/core"
)

// Recorder implements core.Observer on top of the package collectors.
type Recorder struct{}

var _ core.Observer = Recorder{}

func (Recorder) ObserveEvent(kind string, t core.ChangeType) {
	informerEventsTotal.WithLabelValues(kind, string(t)).Inc()
}

func (Recorder) ObserveHandlerError(kind, subscriber string) {
	informerHandlerErrorsTotal.WithLabelValues(kind, subscriber).Inc()
}

func (Recorder) ObserveResync(kind string, _ int, elapsed time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	informerResyncsTotal.WithLabelValues(kind, result).Inc()
	informerResyncDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

func (Recorder) ObserveWatchRestart(kind, reason string) {
	informerWatchRestartsTotal.WithLabelValues(kind, reason).Inc()
}

// ObserveState keeps exactly one state series per kind.
func (Recorder) ObserveState(kind string, state core.ReflectorState) {
	informerState.DeletePartialMatch(map[string]string{"kind": kind})
	informerState.WithLabelValues(kind, string(state)).Set(1)
}

func (Recorder) ObserveCacheSize(kind string, size int) {
	informerCacheSize.WithLabelValues(kind).Set(float64(size))
}

// SetDatacenterReplicas sets the desired and ready node gauges for a
// datacenter.
func (Recorder) SetDatacenterReplicas(datacenter, namespace string, desired, ready int32) {
	datacenterReplicas.WithLabelValues(datacenter, namespace, "desired").Set(float64(desired))
	datacenterReplicas.WithLabelValues(datacenter, namespace, "ready").Set(float64(ready))
}

// DeleteDatacenterReplicas drops the gauges of a removed datacenter.
func (Recorder) DeleteDatacenterReplicas(datacenter, namespace string) {
	datacenterReplicas.DeletePartialMatch(map[string]string{
		"datacenter": datacenter,
		"namespace":  namespace,
	})
}

// SetBackupsPending sets the pending backup request count of a
// namespace.
func (Recorder) SetBackupsPending(namespace string, n int) {
	backupsPending.WithLabelValues(namespace).Set(float64(n))
}
