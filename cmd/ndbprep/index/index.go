// Package indexcmder provides the `ndbprep index` command, which loads a
// Wikidata JSON dump into the configured entity store.
package indexcmder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papercomputeco/ndbprep/cmd/ndbprep/cmdutil"
	"github.com/papercomputeco/ndbprep/pkg/cliui"
	"github.com/papercomputeco/ndbprep/pkg/config"
	"github.com/papercomputeco/ndbprep/pkg/storage/provider"
	"github.com/papercomputeco/ndbprep/pkg/wikidata"
)

const indexLongDesc string = `Index a Wikidata JSON dump.

Streams the dump line by line (decompressing .bz2 files on the fly), projects
each entity into its id, English label, English Wikipedia title, claims and
sitelinks, and writes the records to the configured store in batches.
Lines that are not valid entity JSON are logged and skipped.

Storage defaults come from config.toml and NDBPREP_* env vars; flags win.

Examples:
  ndbprep index latest-all.json.bz2
  ndbprep index dump.json.bz2 --sqlite ./wikidata.db --batch-size 1000
  ndbprep index dump.json.bz2 --provider mongo --mongo-uri mongodb://db:27017
  ndbprep index dump.json.bz2 --provider postgres --postgres postgres://localhost/ndb`

const indexShortDesc string = "Index a Wikidata dump into a store"

var flagKeys = []string{
	config.FlagProvider,
	config.FlagSQLite,
	config.FlagPostgres,
	config.FlagMongoURI,
	config.FlagMongoDatabase,
	config.FlagCollection,
	config.FlagBatchSize,
}

type indexCommander struct {
	provider      string
	sqlitePath    string
	postgresDSN   string
	mongoURI      string
	mongoDatabase string
	collection    string
	batchSize     uint

	logger *slog.Logger
}

// NewIndexCmd creates the index cobra command.
func NewIndexCmd() *cobra.Command {
	cmder := &indexCommander{}

	cmd := &cobra.Command{
		Use:   "index <wikidata_file>",
		Short: indexShortDesc,
		Long:  indexLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, args[0])
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagProvider, &cmder.provider)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgres, &cmder.postgresDSN)
	config.AddStringFlag(cmd, config.Flags, config.FlagMongoURI, &cmder.mongoURI)
	config.AddStringFlag(cmd, config.Flags, config.FlagMongoDatabase, &cmder.mongoDatabase)
	config.AddStringFlag(cmd, config.Flags, config.FlagCollection, &cmder.collection)
	config.AddUintFlag(cmd, config.Flags, config.FlagBatchSize, &cmder.batchSize)

	return cmd
}

func (c *indexCommander) run(ctx context.Context, cmd *cobra.Command, dumpPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	log, closeLog, err := cmdutil.NewLogger(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()
	c.logger = log

	v, err := cmdutil.Viper(cmd, flagKeys...)
	if err != nil {
		return err
	}

	storageCfg, err := storageConfig(v)
	if err != nil {
		return err
	}

	dump, err := wikidata.OpenDump(dumpPath)
	if err != nil {
		return err
	}
	defer dump.Close()

	store, err := provider.New(ctx, storageCfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			c.logger.Warn("closing store", "error", cerr)
		}
	}()

	c.logger.Info("indexing dump",
		"dump", dumpPath,
		"store", provider.Describe(storageCfg),
		"batch_size", storageCfg.BatchSize,
	)

	ix := wikidata.NewIndexer(store, wikidata.Options{
		BatchSize: int(storageCfg.BatchSize),
		Logger:    c.logger,
		OnBatch: func(r wikidata.Result) {
			c.logger.Info("batch stored", "batches", r.Batches, "indexed", r.Indexed, "lines", r.Lines)
		},
	})

	var result *wikidata.Result
	msg := fmt.Sprintf("Indexing %s", filepath.Base(dumpPath))
	err = cliui.Step(cmd.ErrOrStderr(), msg, func() error {
		var runErr error
		result, runErr = ix.Run(ctx, dump)
		return runErr
	})
	if err != nil {
		if result != nil {
			c.logger.Error("indexing stopped", "indexed", result.Indexed, "lines", result.Lines)
		}
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.Summary())
	return nil
}

// storageConfig reads the storage section from v after flags are bound.
func storageConfig(v *viper.Viper) (config.StorageConfig, error) {
	cfg := config.StorageConfig{
		Provider:      v.GetString("storage.provider"),
		SQLitePath:    v.GetString("storage.sqlite_path"),
		PostgresDSN:   v.GetString("storage.postgres_dsn"),
		MongoURI:      v.GetString("storage.mongo_uri"),
		MongoDatabase: v.GetString("storage.mongo_database"),
		Collection:    v.GetString("storage.collection"),
		BatchSize:     v.GetUint("storage.batch_size"),
	}

	if cfg.BatchSize == 0 {
		return cfg, errors.New("batch size must be a positive integer")
	}
	return cfg, nil
}
