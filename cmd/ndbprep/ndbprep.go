// Package ndbprepcmder
package ndbprepcmder

import (
	"github.com/spf13/cobra"

	"github.com/papercomputeco/ndbprep/cmd/ndbprep/cmdutil"
	configcmder "github.com/papercomputeco/ndbprep/cmd/ndbprep/config"
	datasetcmder "github.com/papercomputeco/ndbprep/cmd/ndbprep/dataset"
	indexcmder "github.com/papercomputeco/ndbprep/cmd/ndbprep/index"
	templatescmder "github.com/papercomputeco/ndbprep/cmd/ndbprep/templates"
	tokenizercmder "github.com/papercomputeco/ndbprep/cmd/ndbprep/tokenizer"
	versioncmder "github.com/papercomputeco/ndbprep/cmd/version"
)

const ndbprepLongDesc string = `ndbprep prepares NeuralDB training data.

Pipeline:
  ndbprep index <dump>          Index a Wikidata dump into a store
  ndbprep templates <version>   Compile relation template sheets
  ndbprep dataset <ndb_file>    Generate (state, action, label) examples
  ndbprep tokenizer <dir>       Register the separator and <eos> tokens

Defaults for every flag live in .ndbprep/config.toml (see ndbprep config).`

const ndbprepShortDesc string = "ndbprep - NeuralDB data preparation"

func NewNdbprepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "ndbprep",
		Short:        ndbprepShortDesc,
		Long:         ndbprepLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmdutil.AddPersistentFlags(cmd)

	// Add subcommands
	cmd.AddCommand(indexcmder.NewIndexCmd())
	cmd.AddCommand(templatescmder.NewTemplatesCmd())
	cmd.AddCommand(datasetcmder.NewDatasetCmd())
	cmd.AddCommand(tokenizercmder.NewTokenizerCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
