package kubernetes

import (
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/otterscale/cassandra-operator/internal/config"
	"github.com/otterscale/cassandra-operator/internal/core"
)

// RegistryOptions configures every reflector built from the registry.
type RegistryOptions struct {
	Store    StoreOptions
	Backoff  wait.Backoff
	Observer core.Observer
}

// NewRegistry registers a factory for every resource kind the operator
// knows about. Reflectors are only constructed for the kinds passed to
// core.Registry.Build.
func NewRegistry(k *Kubernetes, opts RegistryOptions) (*core.Registry, error) {
	reflectorOpts := []core.ReflectorOption{core.WithBackoff(opts.Backoff)}
	if opts.Observer != nil {
		reflectorOpts = append(reflectorOpts, core.WithObserver(opts.Observer))
	}

	reg := core.NewRegistry()
	factories := map[string]core.InformerFactory{
		KindClusters: func() (core.Informer, error) {
			return core.NewReflector(UnstructuredKind(KindClusters), NewDynamicStore(k.Dynamic, KindClusters, ClusterGVR, opts.Store), reflectorOpts...)
		},
		KindDatacenters: func() (core.Informer, error) {
			return core.NewReflector(UnstructuredKind(KindDatacenters), NewDynamicStore(k.Dynamic, KindDatacenters, DatacenterGVR, opts.Store), reflectorOpts...)
		},
		KindBackups: func() (core.Informer, error) {
			return core.NewReflector(UnstructuredKind(KindBackups), NewDynamicStore(k.Dynamic, KindBackups, BackupGVR, opts.Store), reflectorOpts...)
		},
		KindStatefulSets: func() (core.Informer, error) {
			return core.NewReflector(StatefulSetKind, NewStatefulSetStore(k.Clientset, opts.Store), reflectorOpts...)
		},
		KindConfigMaps: func() (core.Informer, error) {
			return core.NewReflector(ConfigMapKind, NewConfigMapStore(k.Clientset, opts.Store), reflectorOpts...)
		},
		KindSecrets: func() (core.Informer, error) {
			return core.NewReflector(SecretKind, NewSecretStore(k.Clientset, opts.Store), reflectorOpts...)
		},
	}
	for kind, factory := range factories {
		if err := reg.Register(kind, factory); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// ProvideRegistryOptions is a Wire provider that derives reflector
// settings from configuration.
func ProvideRegistryOptions(conf *config.Config, observer core.Observer) RegistryOptions {
	backoff := core.DefaultBackoff
	if d := conf.OperatorResyncBackoff(); d > 0 {
		backoff.Duration = d
	}
	return RegistryOptions{
		Store: StoreOptions{
			Namespace:    conf.OperatorNamespace(),
			PageSize:     conf.OperatorListPageSize(),
			WatchTimeout: conf.OperatorWatchTimeout(),
		},
		Backoff:  backoff,
		Observer: observer,
	}
}

// ProvideInformers is a Wire provider that builds the informers for the
// configured kinds.
func ProvideInformers(reg *core.Registry, conf *config.Config) (*core.Informers, error) {
	return reg.Build(conf.OperatorKinds())
}
