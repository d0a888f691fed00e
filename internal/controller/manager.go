package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/otterscale/cassandra-operator/internal/core"
	"github.com/otterscale/cassandra-operator/internal/leader"
)

// ErrLeadershipLost is returned by Manager.Start when the Lease was
// lost while the parent context was still live.
var ErrLeadershipLost = errors.New("leader election lost")

// Manager starts the controllers once every informer has synced and,
// when an elector is set, only while this replica holds the Lease. It
// satisfies transport.Listener.
type Manager struct {
	informers   *core.Informers
	elector     *leader.Elector
	controllers []Controller
	log         *slog.Logger

	mu      sync.Mutex
	cancels []func()
	running bool
}

// NewManager returns a manager for controllers. elector may be nil, in
// which case the controllers start right after the informers sync.
func NewManager(informers *core.Informers, elector *leader.Elector, log *slog.Logger, controllers ...Controller) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		informers:   informers,
		elector:     elector,
		controllers: controllers,
		log:         log.With("component", "controller-manager"),
	}
}

func (m *Manager) Name() string { return "controller-manager" }

func (m *Manager) Start(ctx context.Context) error {
	m.log.Info("waiting for informers to sync")
	if err := m.informers.WaitForSync(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	if m.elector == nil {
		if err := m.startControllers(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		m.stopControllers()
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	setupErr := make(chan error, 1)
	err := m.elector.Run(runCtx,
		func(leading context.Context) {
			if err := m.startControllers(leading); err != nil {
				setupErr <- err
				cancel()
			}
		},
		m.stopControllers,
	)
	if err != nil {
		return err
	}
	select {
	case err := <-setupErr:
		return err
	default:
	}
	if ctx.Err() != nil {
		return nil
	}
	holder, err := m.elector.Holder(ctx)
	if err != nil {
		m.log.Warn("lease holder unknown", "error", err)
		return ErrLeadershipLost
	}
	return fmt.Errorf("%w: lease held by %s", ErrLeadershipLost, holder)
}

func (m *Manager) Stop(_ context.Context) error {
	m.stopControllers()
	return nil
}

// Running reports whether the controllers are currently subscribed.
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *Manager) startControllers(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil
	}
	for _, c := range m.controllers {
		cancels, err := c.Setup(ctx, m.informers)
		var notFound *core.ErrKindNotFound
		switch {
		case errors.As(err, &notFound):
			m.log.Warn("controller skipped, required kind disabled", "controller", c.Name(), "kind", notFound.Kind)
			continue
		case err != nil:
			m.cancelLocked()
			return fmt.Errorf("set up controller %s: %w", c.Name(), err)
		}
		m.cancels = append(m.cancels, cancels...)
		m.log.Info("controller started", "controller", c.Name())
	}
	m.running = true
	return nil
}

func (m *Manager) stopControllers() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}
	m.cancelLocked()
	m.running = false
	m.log.Info("controllers stopped")
}

func (m *Manager) cancelLocked() {
	for _, cancel := range m.cancels {
		cancel()
	}
	m.cancels = nil
}
