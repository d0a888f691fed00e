package monitoring

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"

	"github.com/otterscale/cassandra-operator/internal/core"
)

func TestRegister(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := Register(reg); err == nil {
		t.Fatal("second Register succeeded, want AlreadyRegisteredError")
	}
}

func TestRecorder_Events(t *testing.T) {
	t.Parallel()

	var r Recorder
	r.ObserveEvent("events-kind", core.ChangeAdded)
	r.ObserveEvent("events-kind", core.ChangeAdded)
	r.ObserveEvent("events-kind", core.ChangeDeleted)

	if got := testutil.ToFloat64(informerEventsTotal.WithLabelValues("events-kind", string(core.ChangeAdded))); got != 2 {
		t.Fatalf("added events = %v, want 2", got)
	}
	if got := testutil.ToFloat64(informerEventsTotal.WithLabelValues("events-kind", string(core.ChangeDeleted))); got != 1 {
		t.Fatalf("deleted events = %v, want 1", got)
	}
}

func TestRecorder_Resync(t *testing.T) {
	t.Parallel()

	var r Recorder
	r.ObserveResync("resync-kind", 3, 20*time.Millisecond, nil)
	r.ObserveResync("resync-kind", 0, time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(informerResyncsTotal.WithLabelValues("resync-kind", "success")); got != 1 {
		t.Fatalf("successful resyncs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(informerResyncsTotal.WithLabelValues("resync-kind", "error")); got != 1 {
		t.Fatalf("failed resyncs = %v, want 1", got)
	}
}

func TestRecorder_StateKeepsOneSeries(t *testing.T) {
	t.Parallel()

	var r Recorder
	r.ObserveState("state-kind", core.StateSyncing)
	r.ObserveState("state-kind", core.StateWatching)

	if got := testutil.ToFloat64(informerState.WithLabelValues("state-kind", string(core.StateWatching))); got != 1 {
		t.Fatalf("watching = %v, want 1", got)
	}
	if n := countSeries(t, informerState, "kind", "state-kind"); n != 1 {
		t.Fatalf("state series for kind = %d, want 1", n)
	}
}

func TestRecorder_CacheSizeAndRestarts(t *testing.T) {
	t.Parallel()

	var r Recorder
	r.ObserveCacheSize("size-kind", 7)
	r.ObserveWatchRestart("size-kind", "timeout")
	r.ObserveHandlerError("size-kind", "datacenters")

	if got := testutil.ToFloat64(informerCacheSize.WithLabelValues("size-kind")); got != 7 {
		t.Fatalf("cache size = %v, want 7", got)
	}
	if got := testutil.ToFloat64(informerWatchRestartsTotal.WithLabelValues("size-kind", "timeout")); got != 1 {
		t.Fatalf("restarts = %v, want 1", got)
	}
	if got := testutil.ToFloat64(informerHandlerErrorsTotal.WithLabelValues("size-kind", "datacenters")); got != 1 {
		t.Fatalf("handler errors = %v, want 1", got)
	}
}

func TestDatacenterReplicas(t *testing.T) {
	t.Parallel()

	var r Recorder
	r.SetDatacenterReplicas("dc-gauge", "db", 3, 2)
	if got := testutil.ToFloat64(datacenterReplicas.WithLabelValues("dc-gauge", "db", "ready")); got != 2 {
		t.Fatalf("ready = %v, want 2", got)
	}

	r.DeleteDatacenterReplicas("dc-gauge", "db")
	if n := countSeries(t, datacenterReplicas, "datacenter", "dc-gauge"); n != 0 {
		t.Fatalf("series after delete = %d, want 0", n)
	}
}

func TestBackupsPending(t *testing.T) {
	t.Parallel()

	Recorder{}.SetBackupsPending("backup-ns", 4)
	if got := testutil.ToFloat64(backupsPending.WithLabelValues("backup-ns")); got != 4 {
		t.Fatalf("pending = %v, want 4", got)
	}
}

// countSeries counts collected series whose label name has value.
func countSeries(t *testing.T, c prometheus.Collector, name, value string) int {
	t.Helper()

	ch := make(chan prometheus.Metric, 64)
	go func() {
		c.Collect(ch)
		close(ch)
	}()

	n := 0
	for m := range ch {
		var pb dto.Metric
		if err := m.Write(&pb); err != nil {
			t.Fatalf("write metric: %v", err)
		}
		for _, lp := range pb.GetLabel() {
			if lp.GetName() == name && lp.GetValue() == value {
				n++
			}
		}
	}
	return n
}
