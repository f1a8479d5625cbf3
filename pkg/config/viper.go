package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/ndbprep/pkg/dotdir"
)

// EnvPrefix is prepended to every environment override, e.g.
// NDBPREP_STORAGE_PROVIDER.
const EnvPrefix = "NDBPREP"

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the NDBPREP_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (NDBPREP_STORAGE_PROVIDER, NDBPREP_KAFKA_TOPIC, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	setViperDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Storage
	v.SetDefault("storage.provider", d.Storage.Provider)
	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)
	v.SetDefault("storage.postgres_dsn", d.Storage.PostgresDSN)
	v.SetDefault("storage.mongo_uri", d.Storage.MongoURI)
	v.SetDefault("storage.mongo_database", d.Storage.MongoDatabase)
	v.SetDefault("storage.collection", d.Storage.Collection)
	v.SetDefault("storage.batch_size", d.Storage.BatchSize)

	// Templates
	v.SetDefault("templates.configs_dir", d.Templates.ConfigsDir)
	v.SetDefault("templates.symmetric", d.Templates.Symmetric)

	// Dataset
	v.SetDefault("dataset.output", d.Dataset.Output)

	// Kafka
	v.SetDefault("kafka.brokers", d.Kafka.Brokers)
	v.SetDefault("kafka.topic", d.Kafka.Topic)
}

// GetStringList reads a list key that may come from TOML as an array or
// from an env var or flag as a comma separated string.
func GetStringList(v *viper.Viper, key string) []string {
	switch raw := v.Get(key).(type) {
	case string:
		return splitList(raw)
	case []string:
		return splitList(strings.Join(raw, ","))
	default:
		return splitList(strings.Join(v.GetStringSlice(key), ","))
	}
}
