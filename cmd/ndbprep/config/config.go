// Package configcmder provides the config command for managing persistent
// ndbprep configuration stored in the .ndbprep/ directory.
package configcmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/ndbprep/pkg/cliui"
	"github.com/papercomputeco/ndbprep/pkg/config"
)

const configLongDesc string = `Manage persistent ndbprep configuration.

Configuration is stored as config.toml in the .ndbprep/ directory and provides
default values for command flags. NDBPREP_* environment variables override the
file, and CLI flags always take precedence over both.

Keys use dotted notation matching the TOML section structure:
  storage.provider, storage.sqlite_path, storage.postgres_dsn,
  storage.mongo_uri, storage.mongo_database, storage.collection,
  storage.batch_size, templates.configs_dir, templates.symmetric,
  dataset.output, kafka.brokers, kafka.topic

Use subcommands to get, set, or list configuration values:
  ndbprep config set <key> <value>    Set a configuration value
  ndbprep config get <key>            Get a configuration value
  ndbprep config list                 List all configuration values

Examples:
  ndbprep config set storage.provider mongo
  ndbprep config set templates.symmetric P47,P26,P3373
  ndbprep config get storage.batch_size
  ndbprep config list`

const configShortDesc string = "Manage persistent ndbprep configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

func completeKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

func checkKey(key string) error {
	if !config.IsValidConfigKey(key) {
		return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
			key, strings.Join(config.ValidConfigKeys(), ", "))
	}
	return nil
}

func printTarget(w io.Writer, cfger *config.Configer) {
	target := cfger.GetTarget()
	if target != "" {
		fmt.Fprintf(w, "\n  %s %s\n\n",
			cliui.KeyStyle.Render("Config file:"),
			cliui.DimStyle.Render(target),
		)
	} else {
		fmt.Fprintf(w, "\n  %s\n\n", cliui.DimStyle.Render("No config file found. Using defaults."))
	}
}
