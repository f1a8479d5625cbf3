// Package tokenizercmder provides the `ndbprep tokenizer` command.
package tokenizercmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/ndbprep/pkg/cliui"
	"github.com/papercomputeco/ndbprep/pkg/tokenizer"
)

const tokenizerLongDesc string = `Register the NeuralDB special tokens with a tokenizer.

Adds <sep>, <SEP>, <eos> and [SEP] to additional_special_tokens in the
special_tokens_map.json of a tokenizer directory. The file is created when
missing; other keys and existing tokens are kept.

Examples:
  ndbprep tokenizer ./models/t5-base`

const tokenizerShortDesc string = "Add NeuralDB special tokens to a tokenizer"

// NewTokenizerCmd creates the tokenizer cobra command.
func NewTokenizerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokenizer <dir>",
		Short: tokenizerShortDesc,
		Long:  tokenizerLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0])
		},
	}

	return cmd
}

func run(cmd *cobra.Command, dir string) error {
	reg := &tokenizer.FileRegistrar{Dir: dir}

	added, err := tokenizer.Prepare(reg)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "  %s Added %d special tokens (%s) to %s\n",
		cliui.SuccessMark,
		added,
		strings.Join(tokenizer.SpecialTokens, " "),
		cliui.DimStyle.Render(reg.Path()),
	)
	return nil
}
