// Package cmdutil holds the plumbing shared by ndbprep subcommands: loggers
// built from the root persistent flags and viper instances bound to a
// command's registered flags.
package cmdutil

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papercomputeco/ndbprep/pkg/cliui"
	"github.com/papercomputeco/ndbprep/pkg/config"
	"github.com/papercomputeco/ndbprep/pkg/logger"
)

// Root persistent flag names.
const (
	FlagDebug     = "debug"
	FlagConfigDir = "config-dir"
	FlagJSONLogs  = "json-logs"
	FlagLogFile   = "log-file"
)

// AddPersistentFlags registers the flags every subcommand inherits.
func AddPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolP(FlagDebug, "d", false, "Enable debug logging")
	cmd.PersistentFlags().String(FlagConfigDir, "", "Override path to .ndbprep/ config directory")
	cmd.PersistentFlags().Bool(FlagJSONLogs, false, "Emit logs as JSON")
	cmd.PersistentFlags().String(FlagLogFile, "", "Also append JSON logs to this file")
}

// NewLogger builds the logger for cmd. Logs go to the command's stderr so
// that stdout stays free for data. When --log-file is set every record is
// also appended to that file as JSON. The returned close func releases the
// log file and is never nil.
func NewLogger(cmd *cobra.Command) (*slog.Logger, func() error, error) {
	debug, _ := cmd.Flags().GetBool(FlagDebug)
	jsonLogs, _ := cmd.Flags().GetBool(FlagJSONLogs)
	logFile, _ := cmd.Flags().GetString(FlagLogFile)

	stderr := cmd.ErrOrStderr()
	console := logger.New(
		logger.WithDebug(debug),
		logger.WithJSON(jsonLogs),
		logger.WithPretty(cliui.IsTerminal(stderr)),
		logger.WithWriter(stderr),
	)

	if logFile == "" {
		return console, func() error { return nil }, nil
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	file := logger.New(
		logger.WithDebug(debug),
		logger.WithJSON(true),
		logger.WithWriter(f),
	)
	return logger.Multi(console, file), f.Close, nil
}

// Viper loads config for cmd and binds the given registry flags so that
// explicitly passed flags win over env, file and defaults.
func Viper(cmd *cobra.Command, registryKeys ...string) (*viper.Viper, error) {
	configDir, _ := cmd.Flags().GetString(FlagConfigDir)

	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, err
	}

	config.BindRegisteredFlags(v, cmd, config.Flags, registryKeys)
	return v, nil
}

// SummaryWriter picks where a command prints its closing summary. Commands
// streaming data to stdout report on stderr instead.
func SummaryWriter(cmd *cobra.Command, dataOnStdout bool) io.Writer {
	if dataOnStdout {
		return cmd.ErrOrStderr()
	}
	return cmd.OutOrStdout()
}
