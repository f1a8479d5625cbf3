// Package templatescmder provides the `ndbprep templates` command, which
// compiles a version of the relation template sheets into one JSON config.
package templatescmder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/ndbprep/cmd/ndbprep/cmdutil"
	"github.com/papercomputeco/ndbprep/pkg/cliui"
	"github.com/papercomputeco/ndbprep/pkg/config"
	"github.com/papercomputeco/ndbprep/pkg/templates"
)

const templatesLongDesc string = `Compile relation template sheets.

Reads every <configs-dir>/for_<version>/*.csv sheet exported from the template
spreadsheet, collapses duplicate templates, adds subject/object swapped
variants for symmetric relations, and writes the result to
<configs-dir>/generate_<version>.json keyed by relation id (e.g. P47).

Pass --symmetric "" to disable swapped variants.

Examples:
  ndbprep templates v2.4
  ndbprep templates v2.4 --configs-dir ./configs --symmetric P47,P26,P3373`

const templatesShortDesc string = "Compile template sheets into a config"

var flagKeys = []string{
	config.FlagConfigsDir,
	config.FlagSymmetric,
}

type templatesCommander struct {
	configsDir string
	symmetric  string

	logger *slog.Logger
}

// NewTemplatesCmd creates the templates cobra command.
func NewTemplatesCmd() *cobra.Command {
	cmder := &templatesCommander{}

	cmd := &cobra.Command{
		Use:   "templates <version>",
		Short: templatesShortDesc,
		Long:  templatesLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, args[0])
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagConfigsDir, &cmder.configsDir)
	config.AddStringFlag(cmd, config.Flags, config.FlagSymmetric, &cmder.symmetric)

	return cmd
}

func (c *templatesCommander) run(_ context.Context, cmd *cobra.Command, version string) error {
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

	configsDir := v.GetString("templates.configs_dir")
	symmetric := config.GetStringList(v, "templates.symmetric")
	if symmetric == nil {
		// An explicitly emptied list disables swapping.
		symmetric = []string{}
	}

	src := templates.SourceDir(configsDir, version)
	out := templates.OutputPath(configsDir, version)
	c.logger.Debug("compiling templates", "source", src, "output", out, "symmetric", symmetric)

	compiler := templates.NewCompiler(templates.Options{
		Symmetric: symmetric,
		Logger:    c.logger,
	})

	var compiled templates.Config
	err = cliui.Step(cmd.ErrOrStderr(), "Compiling "+src, func() error {
		var compileErr error
		compiled, compileErr = compiler.CompileDir(src)
		if compileErr != nil {
			return compileErr
		}
		return compiled.WriteFile(out)
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Compiled %d relations to %s\n", len(compiled), out)
	return nil
}
