package config

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline.
type Flag struct {
	// Name is the long flag name (e.g. "provider").
	Name string

	// Shorthand is the one-letter short flag (e.g. "p"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "storage.provider").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddUintFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagProvider      = "provider"
	FlagSQLite        = "sqlite"
	FlagPostgres      = "postgres"
	FlagMongoURI      = "mongo-uri"
	FlagMongoDatabase = "mongo-database"
	FlagCollection    = "collection"
	FlagBatchSize     = "batch-size"
	FlagConfigsDir    = "configs-dir"
	FlagSymmetric     = "symmetric"
	FlagOutput        = "out"
	FlagKafkaBrokers  = "kafka-brokers"
	FlagKafkaTopic    = "kafka-topic"
)

// Flags is the registry shared by every ndbprep command.
var Flags = FlagSet{
	FlagProvider: {
		Name:        "provider",
		Shorthand:   "p",
		ViperKey:    "storage.provider",
		Description: "Storage provider (" + strings.Join(Providers, ", ") + ")",
	},
	FlagSQLite: {
		Name:        "sqlite",
		Shorthand:   "s",
		ViperKey:    "storage.sqlite_path",
		Description: "Path to the SQLite database",
	},
	FlagPostgres: {
		Name:        "postgres",
		ViperKey:    "storage.postgres_dsn",
		Description: "PostgreSQL connection string",
	},
	FlagMongoURI: {
		Name:        "mongo-uri",
		ViperKey:    "storage.mongo_uri",
		Description: "MongoDB connection URI",
	},
	FlagMongoDatabase: {
		Name:        "mongo-database",
		ViperKey:    "storage.mongo_database",
		Description: "MongoDB database name",
	},
	FlagCollection: {
		Name:        "collection",
		ViperKey:    "storage.collection",
		Description: "Table or collection the entities are written to",
	},
	FlagBatchSize: {
		Name:        "batch-size",
		Shorthand:   "b",
		ViperKey:    "storage.batch_size",
		Description: "Number of entities per insert batch",
	},
	FlagConfigsDir: {
		Name:        "configs-dir",
		ViperKey:    "templates.configs_dir",
		Description: "Directory holding for_<version>/ sheets and generated configs",
	},
	FlagSymmetric: {
		Name:        "symmetric",
		ViperKey:    "templates.symmetric",
		Description: "Comma separated relation ids whose templates are mirrored",
	},
	FlagOutput: {
		Name:        "out",
		Shorthand:   "o",
		ViperKey:    "dataset.output",
		Description: "JSONL output file, - for stdout",
	},
	FlagKafkaBrokers: {
		Name:        "kafka-brokers",
		ViperKey:    "kafka.brokers",
		Description: "Comma separated Kafka brokers; examples are published when set",
	},
	FlagKafkaTopic: {
		Name:        "kafka-topic",
		ViperKey:    "kafka.topic",
		Description: "Kafka topic for generated examples",
	},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default for a viper key as a flag string. List
// defaults are joined with commas.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	if list, ok := v.Get(viperKey).([]string); ok {
		return strings.Join(list, ",")
	}
	return v.GetString(viperKey)
}

// defaultUint returns the default uint value for a viper key from NewDefaultConfig.
func defaultUint(viperKey string) uint {
	v := viper.New()
	setViperDefaults(v)
	return v.GetUint(viperKey)
}
