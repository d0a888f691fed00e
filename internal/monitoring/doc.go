// Package monitoring provides Prometheus metrics for the cassandra
// operator. It exposes informer-level counters and gauges (resyncs,
// change events, watch restarts, cache sizes) and the domain gauges
// maintained by the controllers.
//
// All metrics follow the naming convention cassandra_operator_<subsystem>_<metric>
// and are registered explicitly against the registry owned by the
// composition root:
//
//	reg := prometheus.NewRegistry()
//	if err := monitoring.Register(reg); err != nil { ... }
//	reflector, _ := core.NewReflector(kind, store, core.WithObserver(monitoring.Recorder{}))
package monitoring
