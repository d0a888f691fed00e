//go:build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/spf13/cobra"

	"github.com/otterscale/cassandra-operator/internal/bootstrap"
	"github.com/otterscale/cassandra-operator/internal/cmd"
	"github.com/otterscale/cassandra-operator/internal/cmd/operator"
	"github.com/otterscale/cassandra-operator/internal/cmd/watch"
	"github.com/otterscale/cassandra-operator/internal/config"
	"github.com/otterscale/cassandra-operator/internal/controller"
	"github.com/otterscale/cassandra-operator/internal/handler"
	"github.com/otterscale/cassandra-operator/internal/leader"
	"github.com/otterscale/cassandra-operator/internal/monitoring"
	"github.com/otterscale/cassandra-operator/internal/providers"
)

func wireCmd() (*cobra.Command, func(), error) {
	panic(wire.Build(
		newCmd,
		config.ProviderSet,
	))
}

func wireOperator(*config.Config) (*operator.Operator, func(), error) {
	panic(wire.Build(
		cmd.ProviderSet,
		providers.ProviderSet,
		monitoring.ProviderSet,
		bootstrap.ProviderSet,
		handler.ProviderSet,
		leader.ProviderSet,
		controller.ProviderSet,
	))
}

func wireWatcher(*config.Config) (*watch.Watcher, func(), error) {
	panic(wire.Build(
		cmd.ProviderSet,
		providers.ProviderSet,
		monitoring.ProviderSet,
	))
}
