// Package watch implements the debug command that runs a single
// resource loop and prints its change events.
package watch

import (
	"context"
	"fmt"
	"io"

	"github.com/otterscale/cassandra-operator/internal/core"
)

const lineFormat = "%-9s %-20s %-40s %s\n"

// Watcher builds one informer from the registry and streams its
// changes to a writer.
type Watcher struct {
	registry *core.Registry
}

func NewWatcher(registry *core.Registry) *Watcher {
	return &Watcher{registry: registry}
}

// Kinds returns the kinds that can be watched.
func (w *Watcher) Kinds() []string {
	return w.registry.Kinds()
}

// Run prints one line per change event of kind until ctx is cancelled.
// The current cache contents are printed as Added events once the
// first resync completes. A fatal loop failure is returned.
func (w *Watcher) Run(ctx context.Context, kind string, out io.Writer) error {
	set, err := w.registry.Build([]string{kind})
	if err != nil {
		return err
	}
	inf, err := set.Get(kind)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(out, lineFormat, "TYPE", "NAMESPACE", "NAME", "VERSION"); err != nil {
		return err
	}
	cancel := inf.Notify("watch", func(n core.Notification) error {
		_, err := fmt.Fprintf(out, lineFormat, n.Type, n.Namespace, n.Name, n.Version)
		return err
	})
	defer cancel()

	return inf.Start(ctx)
}
