package kubernetes

import (
	"fmt"

	"k8s.io/client-go/discovery"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
)

// Kubernetes bundles the API clients shared by every resource store,
// the CRD installer and the preflight check.
type Kubernetes struct {
	Dynamic   dynamic.Interface
	Clientset kubernetes.Interface
}

// New builds the dynamic and typed clients for cfg.
func New(cfg *rest.Config) (*Kubernetes, error) {
	dyn, err := dynamic.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("create dynamic client: %w", err)
	}
	cs, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("create clientset: %w", err)
	}
	return NewForClients(dyn, cs), nil
}

// NewForClients wraps existing clients, typically fakes in tests.
func NewForClients(dyn dynamic.Interface, cs kubernetes.Interface) *Kubernetes {
	return &Kubernetes{Dynamic: dyn, Clientset: cs}
}

// Discovery returns the discovery client of the typed clientset.
func (k *Kubernetes) Discovery() discovery.DiscoveryInterface {
	return k.Clientset.Discovery()
}
