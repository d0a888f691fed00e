package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/otterscale/cassandra-operator/internal/cmd/watch"
	"github.com/otterscale/cassandra-operator/internal/config"
)

type WatchInjector func() (*watch.Watcher, func(), error)

func NewWatchCommand(_ *config.Config, newWatcher WatchInjector) (*cobra.Command, error) {
	var kind string

	cmd := &cobra.Command{
		Use:     "watch",
		Short:   "Run a single resource loop and print its change events",
		Example: "cassandra-operator watch --kind=cassandradatacenters --namespace=db",
		RunE: func(cmd *cobra.Command, _ []string) error {
			w, cleanup, err := newWatcher()
			if err != nil {
				return fmt.Errorf("failed to initialize watcher: %w", err)
			}
			defer cleanup()

			if kind == "" {
				return fmt.Errorf("--kind is required, one of: %s", strings.Join(w.Kinds(), ", "))
			}

			return w.Run(cmd.Context(), kind, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "Resource kind to watch (e.g. cassandradatacenters, statefulsets)")

	return cmd, nil
}
