package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/otterscale/cassandra-operator/internal/cmd/operator"
	"github.com/otterscale/cassandra-operator/internal/config"
)

type OperatorInjector func() (*operator.Operator, func(), error)

func NewOperatorCommand(conf *config.Config, newOperator OperatorInjector) (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:     "operator",
		Short:   "Watch Cassandra resources, serve their cached state and run the controllers",
		Example: "cassandra-operator operator --address=:8299 --kinds=cassandradatacenters,statefulsets --leader-enabled",
		RunE: func(cmd *cobra.Command, _ []string) error {
			op, cleanup, err := newOperator()
			if err != nil {
				return fmt.Errorf("failed to initialize operator: %w", err)
			}
			defer cleanup()

			cfg := operator.Config{
				Address:          conf.OperatorAddress(),
				AllowedOrigins:   conf.OperatorAllowedOrigins(),
				InstallCRDs:      conf.OperatorInstallCRDs(),
				MinServerVersion: conf.OperatorMinServerVersion(),
			}

			return op.Run(cmd.Context(), cfg)
		},
	}

	if err := conf.BindFlags(cmd.Flags(), config.OperatorOptions); err != nil {
		return nil, err
	}

	return cmd, nil
}
