package controller

import (
	"context"
	"log/slog"

	"github.com/otterscale/cassandra-operator/internal/core"
)

// EventLogger logs every change of every enabled kind.
type EventLogger struct {
	log *slog.Logger
}

func NewEventLogger(log *slog.Logger) *EventLogger {
	if log == nil {
		log = slog.Default()
	}
	return &EventLogger{log: log.With("controller", "event-logger")}
}

func (l *EventLogger) Name() string { return "event-logger" }

func (l *EventLogger) Setup(_ context.Context, informers *core.Informers) ([]func(), error) {
	var cancels []func()
	for _, inf := range informers.All() {
		cancels = append(cancels, inf.Notify(l.Name(), l.handle))
	}
	return cancels, nil
}

func (l *EventLogger) handle(n core.Notification) error {
	l.log.Info("resource changed",
		"kind", n.Kind,
		"type", n.Type,
		"namespace", n.Namespace,
		"name", n.Name,
		"version", n.Version,
	)
	return nil
}
