// Package controller holds the subscribers that react to cached
// resource changes, and the Manager that runs them behind leader
// election once every informer has synced.
package controller

import (
	"context"

	"github.com/otterscale/cassandra-operator/internal/core"
)

// Controller subscribes to the informers it depends on.
type Controller interface {
	Name() string
	// Setup registers the controller's handlers and returns the
	// functions that cancel them. ctx stays valid while the controller
	// runs. A *core.ErrKindNotFound means a required kind is disabled
	// and the controller is skipped.
	Setup(ctx context.Context, informers *core.Informers) ([]func(), error)
}

// Gauges records the domain metrics maintained by the controllers.
type Gauges interface {
	SetDatacenterReplicas(datacenter, namespace string, desired, ready int32)
	DeleteDatacenterReplicas(datacenter, namespace string)
	SetBackupsPending(namespace string, n int)
}
