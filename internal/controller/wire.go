package controller

import (
	"log/slog"

	"github.com/google/wire"

	"github.com/otterscale/cassandra-operator/internal/core"
	"github.com/otterscale/cassandra-operator/internal/leader"
	"github.com/otterscale/cassandra-operator/internal/monitoring"
)

// ProvideManager wires the built-in controllers into a Manager.
func ProvideManager(informers *core.Informers, elector *leader.Elector, recorder monitoring.Recorder) *Manager {
	log := slog.Default()
	return NewManager(informers, elector, log,
		NewEventLogger(log),
		NewDatacenterController(recorder, log),
		NewBackupController(recorder, log),
	)
}

var ProviderSet = wire.NewSet(ProvideManager)
