package bag

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangteak601/rosbag2/internal/storage"
)

func TestMetadata_WriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	meta := FromStorage(&storage.BagMetadata{
		StorageIdentifier: "sqlite3",
		RelativePath:      "bag_0.db3",
		MessageCount:      5,
		StartingTime:      time.Unix(0, 1650000000000000000),
		Duration:          3 * time.Second,
		Topics: []storage.TopicInformation{
			{
				TopicMetadata: storage.TopicMetadata{
					Name:                "/chatter",
					Type:                "std_msgs/msg/String",
					SerializationFormat: "cdr",
				},
				MessageCount: 5,
			},
		},
	})

	require.NoError(t, Write(dir, meta))
	require.True(t, Exists(dir))

	got, err := Read(dir)
	require.NoError(t, err)

	assert.Equal(t, Version, got.Info.Version)
	assert.Equal(t, "sqlite3", got.Info.StorageIdentifier)
	assert.Equal(t, []string{"bag_0.db3"}, got.Info.RelativeFilePaths)
	assert.Equal(t, int64(5), got.Info.MessageCount)
	assert.Equal(t, int64(1650000000000000000), got.Info.StartingTime.NanosecondsSinceEpoch)
	assert.Equal(t, (3 * time.Second).Nanoseconds(), got.Info.Duration.Nanoseconds)
	require.Len(t, got.Info.Topics, 1)
	assert.Equal(t, "/chatter", got.Info.Topics[0].TopicMetadata.Name)
	assert.Equal(t, int64(5), got.Info.Topics[0].MessageCount)
}

func TestMetadata_EmptyBagHasZeroStartingTime(t *testing.T) {
	meta := FromStorage(&storage.BagMetadata{
		StorageIdentifier: "sqlite3",
		RelativePath:      "bag_0.db3",
	})
	assert.Zero(t, meta.Info.StartingTime.NanosecondsSinceEpoch)
	assert.Zero(t, meta.Info.MessageCount)
}

func TestMetadata_DocumentKey(t *testing.T) {
	dir := t.TempDir()
	meta := FromStorage(&storage.BagMetadata{StorageIdentifier: "sqlite3", RelativePath: "b_0.db3"})
	require.NoError(t, Write(dir, meta))

	data, err := os.ReadFile(filepath.Join(dir, MetadataFilename))
	require.NoError(t, err)
	assert.Contains(t, string(data), "rosbag2_bagfile_information:")
	assert.Contains(t, string(data), "storage_identifier: sqlite3")
}

func TestRead_MissingFile(t *testing.T) {
	_, err := Read(t.TempDir())
	require.Error(t, err)
	assert.False(t, Exists(t.TempDir()))
}
