// Package bag handles the bag directory layout and the metadata.yaml
// file written next to the storage file.
package bag

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/sangteak601/rosbag2/internal/storage"
)

// MetadataFilename is the name of the bag summary file inside a bag
// directory.
const MetadataFilename = "metadata.yaml"

// Version is the metadata.yaml format version this package writes.
const Version = 4

// Metadata is the root document of metadata.yaml.
type Metadata struct {
	Info FileInformation `yaml:"rosbag2_bagfile_information"`
}

// FileInformation summarizes one recorded bag.
type FileInformation struct {
	Version           int                     `yaml:"version"`
	StorageIdentifier string                  `yaml:"storage_identifier"`
	RelativeFilePaths []string                `yaml:"relative_file_paths"`
	Duration          Nanoseconds             `yaml:"duration"`
	StartingTime      TimeSinceEpoch          `yaml:"starting_time"`
	MessageCount      int64                   `yaml:"message_count"`
	Topics            []TopicWithMessageCount `yaml:"topics_with_message_count"`
}

// Nanoseconds wraps a duration in nanoseconds.
type Nanoseconds struct {
	Nanoseconds int64 `yaml:"nanoseconds"`
}

// TimeSinceEpoch wraps a point in time in nanoseconds since the Unix
// epoch.
type TimeSinceEpoch struct {
	NanosecondsSinceEpoch int64 `yaml:"nanoseconds_since_epoch"`
}

// TopicWithMessageCount pairs a topic description with its message count.
type TopicWithMessageCount struct {
	TopicMetadata TopicMetadata `yaml:"topic_metadata"`
	MessageCount  int64         `yaml:"message_count"`
}

// TopicMetadata is the yaml shape of a topic description.
type TopicMetadata struct {
	Name                string `yaml:"name"`
	Type                string `yaml:"type"`
	SerializationFormat string `yaml:"serialization_format"`
	OfferedQoSProfiles  string `yaml:"offered_qos_profiles"`
}

// FromStorage converts a storage summary into metadata.yaml form.
func FromStorage(meta *storage.BagMetadata) *Metadata {
	info := FileInformation{
		Version:           Version,
		StorageIdentifier: meta.StorageIdentifier,
		RelativeFilePaths: []string{meta.RelativePath},
		Duration:          Nanoseconds{Nanoseconds: meta.Duration.Nanoseconds()},
		StartingTime:      TimeSinceEpoch{NanosecondsSinceEpoch: meta.StartingTime.UnixNano()},
		MessageCount:      meta.MessageCount,
	}
	if meta.MessageCount == 0 {
		info.StartingTime.NanosecondsSinceEpoch = 0
	}
	for _, t := range meta.Topics {
		info.Topics = append(info.Topics, TopicWithMessageCount{
			TopicMetadata: TopicMetadata{
				Name:                t.TopicMetadata.Name,
				Type:                t.TopicMetadata.Type,
				SerializationFormat: t.TopicMetadata.SerializationFormat,
				OfferedQoSProfiles:  t.TopicMetadata.OfferedQoSProfiles,
			},
			MessageCount: t.MessageCount,
		})
	}
	return &Metadata{Info: info}
}

// Write stores metadata.yaml in the bag directory dir.
func Write(dir string, meta *Metadata) error {
	data, err := yaml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal bag metadata: %w", err)
	}
	path := filepath.Join(dir, MetadataFilename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Read loads metadata.yaml from the bag directory dir.
func Read(dir string) (*Metadata, error) {
	path := filepath.Join(dir, MetadataFilename)
	data, err := os.ReadFile(path) //nolint:gosec // G304: bag paths come from the caller
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var meta Metadata
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &meta, nil
}

// Exists reports whether dir contains a metadata.yaml.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, MetadataFilename))
	return err == nil
}
