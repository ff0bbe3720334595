// Package config loads the rosbag2 tool configuration from defaults, an
// optional YAML storage-config file, environment variables and CLI flags.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config is the resolved tool configuration.
type Config struct {
	// StorageID selects the storage backend.
	StorageID string `koanf:"storage_id"`

	// Pragmas are backend tuning options applied on open.
	Pragmas map[string]string `koanf:"pragmas"`

	// Verbose enables debug logging.
	Verbose bool `koanf:"verbose"`
}

// Defaults mirror the storage plugin's preferred write settings.
var defaults = map[string]interface{}{
	"storage_id": "sqlite3",
	"pragmas": map[string]string{
		"journal_mode": "WAL",
		"synchronous":  "NORMAL",
	},
	"verbose": false,
}

// findConfigFile picks the config file to use.
// Priority: explicit path > rosbag2.yaml > rosbag2.yml in the CWD.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"rosbag2.yaml", "rosbag2.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load resolves the configuration. Later sources override earlier ones:
// defaults, config file, ROSBAG2_-prefixed environment variables, flags.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(cfgFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// ROSBAG2_STORAGE_ID -> storage_id
	if err := k.Load(env.Provider("ROSBAG2_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "ROSBAG2_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}
