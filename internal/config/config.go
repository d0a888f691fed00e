package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// envPrefix namespaces environment overrides, e.g.
// CASSANDRA_OPERATOR_OPERATOR_NAMESPACE for "operator.namespace".
const envPrefix = "CASSANDRA_OPERATOR"

// Config wraps a viper instance and exposes typed accessors for every
// known key.
type Config struct {
	v *viper.Viper
}

// New loads defaults, the optional config file and the environment.
// Flags are layered on top by BindFlags.
func New() (*Config, error) {
	return newWithPaths(".", "/etc/cassandra-operator/")
}

func newWithPaths(paths ...string) (*Config, error) {
	v := viper.New()

	// default values
	for _, o := range CommonOptions {
		v.SetDefault(o.Key, o.Default)
	}
	for _, o := range OperatorOptions {
		v.SetDefault(o.Key, o.Default)
	}

	// load config from file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(err, &notFoundErr) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// load config from environment variables
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return &Config{v: v}, nil
}

// BindFlags registers one flag per option on fs and binds it to the
// option's key. A key must be bound on exactly one flag set.
func (c *Config) BindFlags(fs *pflag.FlagSet, options []Option) error {
	for _, o := range options {
		switch v := o.Default.(type) {
		case string:
			fs.String(o.Flag, v, o.Description)
		case int:
			fs.Int(o.Flag, v, o.Description)
		case bool:
			fs.Bool(o.Flag, v, o.Description)
		case []string:
			fs.StringSlice(o.Flag, v, o.Description)
		case time.Duration:
			fs.Duration(o.Flag, v, o.Description)
		default:
			return fmt.Errorf("unsupported flag type for key: %s", o.Key)
		}

		if err := c.v.BindPFlag(o.Key, fs.Lookup(o.Flag)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", o.Flag, err)
		}
	}

	return nil
}

func (c *Config) Kubeconfig() string {
	return c.v.GetString(keyKubeconfig) // CASSANDRA_OPERATOR_KUBECONFIG
}

func (c *Config) LogLevel() string {
	return c.v.GetString(keyLogLevel) // CASSANDRA_OPERATOR_LOG_LEVEL
}

func (c *Config) LogFormat() string {
	return c.v.GetString(keyLogFormat) // CASSANDRA_OPERATOR_LOG_FORMAT
}

func (c *Config) OperatorNamespace() string {
	return c.v.GetString(keyOperatorNamespace) // CASSANDRA_OPERATOR_OPERATOR_NAMESPACE
}

func (c *Config) OperatorListPageSize() int64 {
	return c.v.GetInt64(keyOperatorPageSize) // CASSANDRA_OPERATOR_OPERATOR_LIST_PAGE_SIZE
}

func (c *Config) OperatorWatchTimeout() time.Duration {
	return c.v.GetDuration(keyOperatorWatchLimit) // CASSANDRA_OPERATOR_OPERATOR_WATCH_TIMEOUT
}

func (c *Config) OperatorResyncBackoff() time.Duration {
	return c.v.GetDuration(keyOperatorBackoff) // CASSANDRA_OPERATOR_OPERATOR_RESYNC_BACKOFF
}

func (c *Config) OperatorAddress() string {
	return c.v.GetString(keyOperatorAddress) // CASSANDRA_OPERATOR_OPERATOR_ADDRESS
}

func (c *Config) OperatorAllowedOrigins() []string {
	return c.v.GetStringSlice(keyOperatorAllowedOrigins) // CASSANDRA_OPERATOR_OPERATOR_ALLOWED_ORIGINS
}

func (c *Config) OperatorKinds() []string {
	return c.v.GetStringSlice(keyOperatorKinds) // CASSANDRA_OPERATOR_OPERATOR_KINDS
}

func (c *Config) OperatorInstallCRDs() bool {
	return c.v.GetBool(keyOperatorInstallCRDs) // CASSANDRA_OPERATOR_OPERATOR_INSTALL_CRDS
}

func (c *Config) OperatorMinServerVersion() string {
	return c.v.GetString(keyOperatorMinServerVersion) // CASSANDRA_OPERATOR_OPERATOR_MIN_SERVER_VERSION
}

func (c *Config) OperatorLeaderEnabled() bool {
	return c.v.GetBool(keyOperatorLeaderEnabled) // CASSANDRA_OPERATOR_OPERATOR_LEADER_ENABLED
}

func (c *Config) OperatorLeaderLeaseName() string {
	return c.v.GetString(keyOperatorLeaderLeaseName) // CASSANDRA_OPERATOR_OPERATOR_LEADER_LEASE_NAME
}

func (c *Config) OperatorLeaderNamespace() string {
	return c.v.GetString(keyOperatorLeaderNamespace) // CASSANDRA_OPERATOR_OPERATOR_LEADER_NAMESPACE
}
