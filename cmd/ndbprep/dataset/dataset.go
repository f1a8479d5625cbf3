// Package datasetcmder provides the `ndbprep dataset` command, which turns a
// NeuralDB file into labeled (state, action, label) training examples.
package datasetcmder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/ndbprep/cmd/ndbprep/cmdutil"
	"github.com/papercomputeco/ndbprep/pkg/config"
	"github.com/papercomputeco/ndbprep/pkg/eventstream"
	"github.com/papercomputeco/ndbprep/pkg/eventstream/kafka"
	"github.com/papercomputeco/ndbprep/pkg/ndb"
)

const datasetLongDesc string = `Generate training examples from a NeuralDB file.

Each line of the input holds one database: a list of facts and the queries
asked against it. For every query the generator emits the positive and
negative next-step decisions a support-set model is trained on. Output is
JSONL with one [state, action, label] array per line.

With --kafka-brokers set the examples are also published, one event each,
to --kafka-topic. Events of a run share a run id and arrive in order.

Examples:
  ndbprep dataset train.jsonl > train_examples.jsonl
  ndbprep dataset train.jsonl --out train_examples.jsonl
  ndbprep dataset dev.jsonl -o dev_examples.jsonl --kafka-brokers localhost:9092`

const datasetShortDesc string = "Generate training examples from an NDB file"

// publishChunk bounds the number of events handed to the publisher at once.
const publishChunk = 1000

var flagKeys = []string{
	config.FlagOutput,
	config.FlagKafkaBrokers,
	config.FlagKafkaTopic,
}

type datasetCommander struct {
	output       string
	kafkaBrokers string
	kafkaTopic   string

	logger       *slog.Logger
	newPublisher func(brokers []string, topic string) (eventstream.Publisher, error)
}

// NewDatasetCmd creates the dataset cobra command.
func NewDatasetCmd() *cobra.Command {
	cmder := &datasetCommander{newPublisher: newPublisher}

	cmd := &cobra.Command{
		Use:   "dataset <ndb_file>",
		Short: datasetShortDesc,
		Long:  datasetLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, args[0])
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagOutput, &cmder.output)
	config.AddStringFlag(cmd, config.Flags, config.FlagKafkaBrokers, &cmder.kafkaBrokers)
	config.AddStringFlag(cmd, config.Flags, config.FlagKafkaTopic, &cmder.kafkaTopic)

	return cmd
}

func newPublisher(brokers []string, topic string) (eventstream.Publisher, error) {
	return kafka.NewPublisher(kafka.Config{Brokers: brokers, Topic: topic})
}

func (c *datasetCommander) run(ctx context.Context, cmd *cobra.Command, input string) error {
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
	output := v.GetString("dataset.output")
	brokers := config.GetStringList(v, "kafka.brokers")
	topic := v.GetString("kafka.topic")

	dbs, err := ndb.ReadNDB(input)
	if err != nil {
		return err
	}
	c.logger.Debug("read databases", "input", input, "databases", len(dbs))

	examples, err := ndb.CreateDataset(dbs)
	if err != nil {
		return err
	}

	toStdout := output == "" || output == "-"
	if err := c.write(cmd.OutOrStdout(), output, toStdout, examples); err != nil {
		return err
	}

	if len(brokers) > 0 {
		if err := c.publish(ctx, brokers, topic, input, examples); err != nil {
			return err
		}
	}

	fmt.Fprintln(cmdutil.SummaryWriter(cmd, toStdout), ndb.Tally(examples).Summary())
	return nil
}

func (c *datasetCommander) write(stdout io.Writer, output string, toStdout bool, examples []ndb.Example) error {
	if toStdout {
		return ndb.WriteJSONL(stdout, examples)
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	if err := ndb.WriteJSONL(f, examples); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing output file: %w", err)
	}

	c.logger.Debug("wrote examples", "output", output, "examples", len(examples))
	return nil
}

// publish sends one event per example. Events are built a chunk at a time so
// only publishChunk of them are alive at once.
func (c *datasetCommander) publish(ctx context.Context, brokers []string, topic, input string, examples []ndb.Example) error {
	pub, err := c.newPublisher(brokers, topic)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := pub.Close(); cerr != nil {
			c.logger.Warn("closing publisher", "error", cerr)
		}
	}()

	runID := eventstream.NewRunID()
	for start := 0; start < len(examples); start += publishChunk {
		end := min(start+publishChunk, len(examples))
		events := eventstream.NewExampleEventsAt(runID, input, start+1, examples[start:end])
		if err := pub.Publish(ctx, events); err != nil {
			return fmt.Errorf("publishing examples %d-%d: %w", start, end, err)
		}
	}

	c.logger.Info("published examples", "run_id", runID, "topic", topic, "events", len(examples))
	return nil
}
