// Package main is the entry point for the cassandra-operator binary.
// It supports two subcommands:
//
//   - operator: runs the resource loops, the status server and the
//     controllers
//   - watch:    runs a single resource loop and prints its changes
//
// Dependencies are assembled via Google Wire; see wire.go.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/otterscale/cassandra-operator/internal/cmd"
	"github.com/otterscale/cassandra-operator/internal/cmd/operator"
	"github.com/otterscale/cassandra-operator/internal/cmd/watch"
	"github.com/otterscale/cassandra-operator/internal/config"
	"github.com/otterscale/cassandra-operator/internal/logging"
)

// version is injected at build time via -ldflags
// (e.g. -ldflags "-X main.version=v1.2.3").
var version = "devel"

func main() {
	// Cancel on SIGINT (Ctrl+C) or SIGTERM (container runtime).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		// Cobra is configured with SilenceErrors: true, so we
		// print the error here for consistent formatting.
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run wires all dependencies and executes the root Cobra command.
func run(ctx context.Context) error {
	rootCmd, cleanup, err := wireCmd()
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer cleanup()

	return rootCmd.ExecuteContext(ctx)
}

// newCmd is a Wire provider that constructs the root Cobra command and
// registers the operator and watch subcommands. The subcommand
// injectors run inside RunE so that they observe parsed flags.
func newCmd(conf *config.Config) (*cobra.Command, error) {
	c := &cobra.Command{
		Use:           "cassandra-operator",
		Short:         "Cassandra operator: watch-and-reconcile engine for Cassandra clusters on Kubernetes.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			_, err := logging.Setup(conf)
			return err
		},
	}

	if err := conf.BindFlags(c.PersistentFlags(), config.CommonOptions); err != nil {
		return nil, err
	}

	operatorCmd, err := cmd.NewOperatorCommand(conf, func() (*operator.Operator, func(), error) {
		return wireOperator(conf)
	})
	if err != nil {
		return nil, err
	}

	watchCmd, err := cmd.NewWatchCommand(conf, func() (*watch.Watcher, func(), error) {
		return wireWatcher(conf)
	})
	if err != nil {
		return nil, err
	}

	c.AddCommand(operatorCmd, watchCmd)

	return c, nil
}
