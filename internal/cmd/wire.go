// Package cmd defines the Cobra subcommands (operator, watch) and their
// Wire provider sets. It bridges configuration, dependency injection,
// and the runtime packages.
package cmd

import (
	"github.com/google/wire"

	"github.com/otterscale/cassandra-operator/internal/cmd/operator"
	"github.com/otterscale/cassandra-operator/internal/cmd/watch"
)

// ProviderSet is the Wire provider set for the CLI layer.
var ProviderSet = wire.NewSet(
	operator.NewOperator,
	watch.NewWatcher,
)
