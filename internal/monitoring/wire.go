package monitoring

import (
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/otterscale/cassandra-operator/internal/core"
)

// ProvideRegistry returns a registry carrying the runtime collectors
// and every collector of this package.
func ProvideRegistry() (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if err := Register(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

func ProvideRecorder() Recorder {
	return Recorder{}
}

func ProvideObserver(r Recorder) core.Observer {
	return r
}

var ProviderSet = wire.NewSet(ProvideRegistry, ProvideRecorder, ProvideObserver)
