package leader

import (
	"github.com/google/wire"

	"github.com/otterscale/cassandra-operator/internal/config"
	"github.com/otterscale/cassandra-operator/internal/providers/kubernetes"
)

// ProvideElector returns nil when leader election is disabled.
func ProvideElector(k *kubernetes.Kubernetes, conf *config.Config) (*Elector, error) {
	if !conf.OperatorLeaderEnabled() {
		return nil, nil
	}
	ns := conf.OperatorLeaderNamespace()
	if ns == "" {
		ns = conf.OperatorNamespace()
	}
	return NewElector(k.Clientset.CoordinationV1(), Config{
		Namespace: ns,
		LeaseName: conf.OperatorLeaderLeaseName(),
	})
}

var ProviderSet = wire.NewSet(ProvideElector)
