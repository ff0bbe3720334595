package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sangteak601/rosbag2/internal/reader"
	"github.com/sangteak601/rosbag2/internal/storage"
)

// NewInfoCommand creates the info command.
func NewInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info <bag>...",
		Short: "Summarize the contents of one or more bags",
		Long: `Read each bag's metadata and print its duration, message count
and per-topic statistics.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd, args)
		},
	}
}

// bagInfo is one bag's summary, gathered before rendering so multiple
// bags can be read concurrently.
type bagInfo struct {
	uri  string
	meta *storage.BagMetadata
}

func runInfo(cmd *cobra.Command, uris []string) error {
	// Inspection opens bags read-only; the configured write pragmas
	// (journal mode and friends) must not be applied there.
	cfg := getConfig(cmd)

	infos := make([]bagInfo, len(uris))
	var g errgroup.Group
	for i, uri := range uris {
		i, uri := i, uri
		g.Go(func() error {
			r := reader.NewSequential(reader.Config{URI: uri, StorageID: cfg.StorageID})
			if err := r.Open(); err != nil {
				return err
			}
			defer func() { _ = r.Close() }()

			meta, err := r.GetMetadata()
			if err != nil {
				return fmt.Errorf("failed to read metadata of %s: %w", uri, err)
			}
			infos[i] = bagInfo{uri: uri, meta: meta}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	for i, info := range infos {
		if i > 0 {
			fmt.Fprintln(w)
		}
		renderInfo(w, info)
	}
	return nil
}

func renderInfo(w io.Writer, info bagInfo) {
	meta := info.meta

	fmt.Fprintf(w, "Bag:           %s\n", info.uri)
	fmt.Fprintf(w, "Storage:       %s (%s)\n", meta.StorageIdentifier, meta.RelativePath)
	fmt.Fprintf(w, "Messages:      %d\n", meta.MessageCount)
	if meta.MessageCount > 0 {
		fmt.Fprintf(w, "Start:         %s\n", meta.StartingTime.Format(time.RFC3339Nano))
		fmt.Fprintf(w, "Duration:      %s\n", meta.Duration)
	}

	topics := make([]storage.TopicInformation, len(meta.Topics))
	copy(topics, meta.Topics)
	sort.Slice(topics, func(i, j int) bool {
		return topics[i].TopicMetadata.Name < topics[j].TopicMetadata.Name
	})

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Topic", "Type", "Format", "Messages"})
	for _, topic := range topics {
		t.AppendRow(table.Row{
			topic.TopicMetadata.Name,
			topic.TopicMetadata.Type,
			topic.TopicMetadata.SerializationFormat,
			topic.MessageCount,
		})
	}
	t.Render()
}
