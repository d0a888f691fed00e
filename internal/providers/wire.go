// Package providers aggregates the infrastructure-layer
// implementations into a single Wire provider set.
package providers

import (
	"github.com/google/wire"

	"github.com/otterscale/cassandra-operator/internal/providers/kubernetes"
)

// ProviderSet is the Wire provider set for all external adapters.
var ProviderSet = wire.NewSet(
	kubernetes.ProvideRestConfig,
	kubernetes.New,
	kubernetes.ProvideRegistryOptions,
	kubernetes.NewRegistry,
	kubernetes.ProvideInformers,
)
