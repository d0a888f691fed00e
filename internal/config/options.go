package config

import (
	"strings"
	"time"
)

// Option describes a single configuration entry: its viper key, the
// corresponding CLI flag name, the compiled default, and a
// human-readable description shown in --help output.
type Option struct {
	Key         string
	Flag        string
	Default     any
	Description string
}

// CommonOptions are bound as persistent flags on the root command and
// apply to every subcommand.
var CommonOptions = []Option{
	{Key: keyKubeconfig, Flag: toFlag(keyKubeconfig), Default: "", Description: "Path to a kubeconfig file; in-cluster config is used when empty"},
	{Key: keyLogLevel, Flag: toFlag(keyLogLevel), Default: "info", Description: "Log level (debug, info, warn, error)"},
	{Key: keyLogFormat, Flag: toFlag(keyLogFormat), Default: "text", Description: "Log format (text, json)"},
	{Key: keyOperatorNamespace, Flag: toFlag(keyOperatorNamespace), Default: "", Description: "Namespace to watch; all namespaces when empty"},
	{Key: keyOperatorPageSize, Flag: toFlag(keyOperatorPageSize), Default: 500, Description: "Maximum items per list page during a resync"},
	{Key: keyOperatorWatchLimit, Flag: toFlag(keyOperatorWatchLimit), Default: 5 * time.Minute, Description: "Server-side watch timeout before a periodic resync"},
	{Key: keyOperatorBackoff, Flag: toFlag(keyOperatorBackoff), Default: 500 * time.Millisecond, Description: "Initial delay between resyncs after transient failures"},
}

// OperatorOptions defines the configuration entries available in
// operator mode.
var OperatorOptions = []Option{
	{Key: keyOperatorAddress, Flag: toFlag(keyOperatorAddress), Default: ":8299", Description: "Status server listen address"},
	{Key: keyOperatorAllowedOrigins, Flag: toFlag(keyOperatorAllowedOrigins), Default: []string{}, Description: "Status server allowed origins"},
	{Key: keyOperatorKinds, Flag: toFlag(keyOperatorKinds), Default: []string{}, Description: "Resource kinds to watch; all registered kinds when empty"},
	{Key: keyOperatorInstallCRDs, Flag: toFlag(keyOperatorInstallCRDs), Default: false, Description: "Install the embedded CustomResourceDefinitions on startup"},
	{Key: keyOperatorMinServerVersion, Flag: toFlag(keyOperatorMinServerVersion), Default: "v1.29.0", Description: "Minimum supported Kubernetes API server version"},
	{Key: keyOperatorLeaderEnabled, Flag: toFlag(keyOperatorLeaderEnabled), Default: false, Description: "Run controllers only while holding the leader lease"},
	{Key: keyOperatorLeaderLeaseName, Flag: toFlag(keyOperatorLeaderLeaseName), Default: "cassandra-operator-leader", Description: "Leader election lease name"},
	{Key: keyOperatorLeaderNamespace, Flag: toFlag(keyOperatorLeaderNamespace), Default: "", Description: "Leader election lease namespace; detected when empty"},
}

// toFlag converts a viper key like "operator.leader.lease_name" into a
// CLI flag like "leader-lease-name" by lower-casing, replacing dots and
// underscores with hyphens, and stripping the "operator-" prefix.
func toFlag(key string) string {
	flag := strings.ToLower(key)
	flag = strings.ReplaceAll(flag, ".", "-")
	flag = strings.ReplaceAll(flag, "_", "-")
	flag = strings.TrimPrefix(flag, "operator-")
	return flag
}
