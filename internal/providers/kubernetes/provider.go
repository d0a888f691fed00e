package kubernetes

import (
	"log/slog"

	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/otterscale/cassandra-operator/internal/config"
)

// ProvideRestConfig is a Wire provider that returns a *rest.Config for
// Kubernetes API access. An explicit kubeconfig wins; otherwise the
// in-cluster service account is used, falling back to the user's
// kubeconfig for local development.
func ProvideRestConfig(conf *config.Config) (*rest.Config, error) {
	if path := conf.Kubeconfig(); path != "" {
		return clientcmd.BuildConfigFromFlags("", path)
	}
	cfg, err := rest.InClusterConfig()
	if err != nil {
		slog.Warn("in-cluster config not available, falling back to kubeconfig", "error", err)
		rules := clientcmd.NewDefaultClientConfigLoadingRules()
		return clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, &clientcmd.ConfigOverrides{}).ClientConfig()
	}
	return cfg, nil
}
