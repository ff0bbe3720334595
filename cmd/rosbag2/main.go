// Package main provides the rosbag2 command-line tool.
package main

import (
	"os"

	"github.com/sangteak601/rosbag2/internal/cli"
	_ "github.com/sangteak601/rosbag2/internal/storage/sqlite" // sqlite3 storage backend
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
