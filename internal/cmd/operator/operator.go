// Package operator implements the operator runtime: preflight checks,
// optional CRD installation, and the managed lifecycle of the resource
// loops, the status server and the controller manager.
package operator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/otterscale/cassandra-operator/internal/bootstrap"
	"github.com/otterscale/cassandra-operator/internal/controller"
	"github.com/otterscale/cassandra-operator/internal/core"
	"github.com/otterscale/cassandra-operator/internal/handler"
	"github.com/otterscale/cassandra-operator/internal/providers/kubernetes"
	"github.com/otterscale/cassandra-operator/internal/transport"
	"github.com/otterscale/cassandra-operator/internal/transport/http"
)

// Config holds the runtime parameters for an Operator.
type Config struct {
	Address          string
	AllowedOrigins   []string
	InstallCRDs      bool
	MinServerVersion string
}

// Operator runs one reflector per enabled kind next to the status
// server and the controller manager.
type Operator struct {
	kube      *kubernetes.Kubernetes
	bootstrap *bootstrap.Bootstrapper
	informers *core.Informers
	handler   *handler.Handler
	manager   *controller.Manager
}

func NewOperator(
	kube *kubernetes.Kubernetes,
	bootstrapper *bootstrap.Bootstrapper,
	informers *core.Informers,
	handler *handler.Handler,
	manager *controller.Manager,
) *Operator {
	return &Operator{
		kube:      kube,
		bootstrap: bootstrapper,
		informers: informers,
		handler:   handler,
		manager:   manager,
	}
}

// Run blocks until ctx is cancelled or a component fails. A fatal
// resource loop failure cancels every other component and is returned
// as a *transport.ListenerError naming the kind.
func (o *Operator) Run(ctx context.Context, cfg Config) error {
	if err := kubernetes.CheckServerVersion(o.kube.Discovery(), cfg.MinServerVersion); err != nil {
		return fmt.Errorf("preflight: %w", err)
	}

	if cfg.InstallCRDs {
		if err := o.bootstrap.Run(ctx); err != nil {
			return fmt.Errorf("install CRDs: %w", err)
		}
	}

	httpSrv, err := http.NewServer(
		http.WithAddress(cfg.Address),
		http.WithAllowedOrigins(cfg.AllowedOrigins),
		http.WithMount(o.handler.Mount),
	)
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	listeners := make([]transport.Listener, 0, len(o.informers.All())+2)
	kinds := make([]string, 0, len(o.informers.All()))
	for _, inf := range o.informers.All() {
		listeners = append(listeners, inf)
		kinds = append(kinds, inf.Kind())
	}
	listeners = append(listeners, httpSrv, o.manager)

	slog.Info("operator starting", "kinds", kinds, "address", httpSrv.Addr().String())

	return transport.Serve(ctx, listeners...)
}
