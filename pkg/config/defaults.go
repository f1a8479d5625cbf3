package config

// Storage providers understood by the index command.
const (
	ProviderSQLite   = "sqlite"
	ProviderPostgres = "postgres"
	ProviderMongo    = "mongo"
	ProviderMemory   = "memory"
)

// Providers lists the supported storage providers.
var Providers = []string{ProviderSQLite, ProviderPostgres, ProviderMongo, ProviderMemory}

const (
	defaultProvider      = ProviderSQLite
	defaultSQLitePath    = "wikidata.db"
	defaultMongoURI      = "mongodb://localhost:27017"
	defaultMongoDatabase = "wikidata"
	defaultCollection    = "wikidata"
	defaultBatchSize     = 5000

	defaultConfigsDir = "configs"

	// defaultOutput writes examples to stdout.
	defaultOutput = "-"

	defaultKafkaTopic = "ndb.examples"
)

// defaultSymmetric are the relations whose templates are mirrored by swapping
// subject and object: P47 (shares border with) and P26 (spouse).
var defaultSymmetric = []string{"P47", "P26"}

// IsValidProvider reports whether name is a supported storage provider.
func IsValidProvider(name string) bool {
	for _, p := range Providers {
		if p == name {
			return true
		}
	}
	return false
}

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Storage: StorageConfig{
			Provider:      defaultProvider,
			SQLitePath:    defaultSQLitePath,
			MongoURI:      defaultMongoURI,
			MongoDatabase: defaultMongoDatabase,
			Collection:    defaultCollection,
			BatchSize:     defaultBatchSize,
		},
		Templates: TemplatesConfig{
			ConfigsDir: defaultConfigsDir,
			Symmetric:  append([]string(nil), defaultSymmetric...),
		},
		Dataset: DatasetConfig{
			Output: defaultOutput,
		},
		Kafka: KafkaConfig{
			Topic: defaultKafkaTopic,
		},
	}
}
