package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "sqlite3", cfg.StorageID)
	assert.Equal(t, "WAL", cfg.Pragmas["journal_mode"])
	assert.Equal(t, "NORMAL", cfg.Pragmas["synchronous"])
	assert.False(t, cfg.Verbose)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rosbag2.yaml")
	content := `storage_id: sqlite3
pragmas:
  journal_mode: MEMORY
  cache_size: "-4000"
verbose: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "MEMORY", cfg.Pragmas["journal_mode"])
	assert.Equal(t, "-4000", cfg.Pragmas["cache_size"])
	// Defaults not mentioned by the file survive the merge.
	assert.Equal(t, "NORMAL", cfg.Pragmas["synchronous"])
	assert.True(t, cfg.Verbose)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rosbag2.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage_id: from_file\n"), 0o644))

	t.Setenv("ROSBAG2_STORAGE_ID", "from_env")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "from_env", cfg.StorageID)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("ROSBAG2_STORAGE_ID", "from_env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("storage-id", "", "")
	flags.Bool("verbose", false, "")
	require.NoError(t, flags.Set("storage-id", "from_flag"))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "from_flag", cfg.StorageID)
	// Unchanged flags do not clobber lower-priority sources.
	assert.False(t, cfg.Verbose)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.Error(t, err)
}
