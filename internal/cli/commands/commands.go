// Package commands implements the rosbag2 subcommands.
package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/sangteak601/rosbag2/internal/config"
)

// configKey is used to store config in the command context.
type configKey struct{}

// SetConfig stores the resolved configuration in the command's context.
func SetConfig(cmd *cobra.Command, cfg *config.Config) {
	cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
}

// getConfig retrieves the configuration from the command's context,
// falling back to defaults when the root command did not load one.
func getConfig(cmd *cobra.Command) *config.Config {
	if cfg, ok := cmd.Context().Value(configKey{}).(*config.Config); ok {
		return cfg
	}
	cfg, err := config.Load("", nil)
	if err != nil {
		return &config.Config{StorageID: "sqlite3"}
	}
	return cfg
}
