package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Config represents the persistent ndbprep configuration stored as
// config.toml in the .ndbprep/ directory.
type Config struct {
	Version   int             `toml:"version"`
	Storage   StorageConfig   `toml:"storage"`
	Templates TemplatesConfig `toml:"templates"`
	Dataset   DatasetConfig   `toml:"dataset"`
	Kafka     KafkaConfig     `toml:"kafka"`
}

// StorageConfig selects and configures the store the wikidata indexer
// writes to.
type StorageConfig struct {
	Provider      string `toml:"provider,omitempty"`
	SQLitePath    string `toml:"sqlite_path,omitempty"`
	PostgresDSN   string `toml:"postgres_dsn,omitempty"`
	MongoURI      string `toml:"mongo_uri,omitempty"`
	MongoDatabase string `toml:"mongo_database,omitempty"`
	Collection    string `toml:"collection,omitempty"`
	BatchSize     uint   `toml:"batch_size,omitempty"`
}

// TemplatesConfig holds template compiler settings.
type TemplatesConfig struct {
	ConfigsDir string   `toml:"configs_dir,omitempty"`
	Symmetric  []string `toml:"symmetric,omitempty"`
}

// DatasetConfig holds example generator settings.
type DatasetConfig struct {
	Output string `toml:"output,omitempty"`
}

// KafkaConfig holds the event stream settings used when publishing
// generated examples.
type KafkaConfig struct {
	Brokers []string `toml:"brokers,omitempty"`
	Topic   string   `toml:"topic,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// splitList parses a comma separated value, dropping empty entries.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"storage.provider": {
		get: func(c *Config) string { return c.Storage.Provider },
		set: func(c *Config, v string) error {
			if !IsValidProvider(v) {
				return fmt.Errorf("invalid value for storage.provider: %q (available: %s)",
					v, strings.Join(Providers, ", "))
			}
			c.Storage.Provider = v
			return nil
		},
	},
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) error { c.Storage.SQLitePath = v; return nil },
	},
	"storage.postgres_dsn": {
		get: func(c *Config) string { return c.Storage.PostgresDSN },
		set: func(c *Config, v string) error { c.Storage.PostgresDSN = v; return nil },
	},
	"storage.mongo_uri": {
		get: func(c *Config) string { return c.Storage.MongoURI },
		set: func(c *Config, v string) error { c.Storage.MongoURI = v; return nil },
	},
	"storage.mongo_database": {
		get: func(c *Config) string { return c.Storage.MongoDatabase },
		set: func(c *Config, v string) error { c.Storage.MongoDatabase = v; return nil },
	},
	"storage.collection": {
		get: func(c *Config) string { return c.Storage.Collection },
		set: func(c *Config, v string) error { c.Storage.Collection = v; return nil },
	},
	"storage.batch_size": {
		get: func(c *Config) string {
			if c.Storage.BatchSize == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Storage.BatchSize), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for storage.batch_size: %w", err)
			}
			if n == 0 {
				return errors.New("invalid value for storage.batch_size: must be positive")
			}
			c.Storage.BatchSize = uint(n)
			return nil
		},
	},
	"templates.configs_dir": {
		get: func(c *Config) string { return c.Templates.ConfigsDir },
		set: func(c *Config, v string) error { c.Templates.ConfigsDir = v; return nil },
	},
	"templates.symmetric": {
		get: func(c *Config) string { return strings.Join(c.Templates.Symmetric, ",") },
		set: func(c *Config, v string) error { c.Templates.Symmetric = splitList(v); return nil },
	},
	"dataset.output": {
		get: func(c *Config) string { return c.Dataset.Output },
		set: func(c *Config, v string) error { c.Dataset.Output = v; return nil },
	},
	"kafka.brokers": {
		get: func(c *Config) string { return strings.Join(c.Kafka.Brokers, ",") },
		set: func(c *Config, v string) error { c.Kafka.Brokers = splitList(v); return nil },
	},
	"kafka.topic": {
		get: func(c *Config) string { return c.Kafka.Topic },
		set: func(c *Config, v string) error { c.Kafka.Topic = v; return nil },
	},
}
