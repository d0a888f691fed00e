// Package config provides unified configuration loading from files,
// environment variables, and CLI flags using viper and pflag.
//
// Resolution order (highest wins):
//  1. CLI flags
//  2. Environment variables (prefix CASSANDRA_OPERATOR_)
//  3. Config file (config.yaml in . or /etc/cassandra-operator/)
//  4. Compiled defaults
package config

// Viper keys shared by every subcommand.
const (
	keyKubeconfig         = "kubeconfig"
	keyLogLevel           = "log.level"
	keyLogFormat          = "log.format"
	keyOperatorNamespace  = "operator.namespace"
	keyOperatorPageSize   = "operator.list.page_size"
	keyOperatorWatchLimit = "operator.watch.timeout"
	keyOperatorBackoff    = "operator.resync.backoff"
)

// Viper keys for operator-mode configuration.
const (
	keyOperatorAddress          = "operator.address"
	keyOperatorAllowedOrigins   = "operator.allowed_origins"
	keyOperatorKinds            = "operator.kinds"
	keyOperatorInstallCRDs      = "operator.install_crds"
	keyOperatorMinServerVersion = "operator.min_server_version"
	keyOperatorLeaderEnabled    = "operator.leader.enabled"
	keyOperatorLeaderLeaseName  = "operator.leader.lease_name"
	keyOperatorLeaderNamespace  = "operator.leader.namespace"
)
