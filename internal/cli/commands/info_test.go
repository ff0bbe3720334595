package commands

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangteak601/rosbag2/internal/storage"
	_ "github.com/sangteak601/rosbag2/internal/storage/sqlite" // sqlite3 storage backend
	"github.com/sangteak601/rosbag2/internal/writer"
)

func recordBag(t *testing.T, uri string) {
	t.Helper()
	w := writer.NewSequential(writer.Config{URI: uri})
	require.NoError(t, w.Open())
	require.NoError(t, w.CreateTopic(storage.TopicMetadata{
		Name: "/chatter", Type: "std_msgs/msg/String", SerializationFormat: "cdr",
	}))
	require.NoError(t, w.Write(&storage.SerializedBagMessage{
		Topic: "/chatter", Timestamp: 1000, Data: []byte("hi"),
	}))
	require.NoError(t, w.Close())
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewInfoCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInfoCommand_RendersBagSummary(t *testing.T) {
	uri := filepath.Join(t.TempDir(), "info_bag")
	recordBag(t, uri)

	out, err := runCommand(t, uri)
	require.NoError(t, err)

	assert.Contains(t, out, "Storage:       sqlite3")
	assert.Contains(t, out, "Messages:      1")
	assert.Contains(t, out, "/chatter")
	assert.Contains(t, out, "std_msgs/msg/String")
}

func TestInfoCommand_MultipleBags(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first")
	second := filepath.Join(dir, "second")
	recordBag(t, first)
	recordBag(t, second)

	out, err := runCommand(t, first, second)
	require.NoError(t, err)

	assert.Contains(t, out, first)
	assert.Contains(t, out, second)
}

func TestInfoCommand_MissingBag(t *testing.T) {
	_, err := runCommand(t, filepath.Join(t.TempDir(), "does_not_exist"))
	require.Error(t, err)
}

func TestInfoCommand_RequiresArgs(t *testing.T) {
	_, err := runCommand(t)
	require.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	cmd := NewVersionCommand("9.9.9")
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "rosbag2 v9.9.9")
}
