// Package writer records messages into a bag directory.
package writer

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sangteak601/rosbag2/internal/bag"
	"github.com/sangteak601/rosbag2/internal/storage"
)

// Config controls how a bag is created.
type Config struct {
	// URI is the bag directory to create.
	URI string

	// StorageID selects the storage backend ("sqlite3" by default).
	StorageID string

	// Pragmas are passed through to the backend.
	Pragmas map[string]string

	// Logger receives progress output; defaults to a discard logger.
	Logger *slog.Logger
}

// Sequential writes messages to a single storage file in arrival order
// and produces metadata.yaml when closed.
type Sequential struct {
	cfg     Config
	logger  *slog.Logger
	storage storage.ReadWriteStorage
	opened  bool
}

// NewSequential creates a writer for the given configuration.
func NewSequential(cfg Config) *Sequential {
	if cfg.StorageID == "" {
		cfg.StorageID = "sqlite3"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Sequential{cfg: cfg, logger: logger}
}

// Open creates the bag directory and its storage file. The storage file
// is named after the directory, like <bag>/<bag>_0.db3.
func (w *Sequential) Open() error {
	if w.opened {
		return fmt.Errorf("writer already open")
	}

	if err := os.MkdirAll(w.cfg.URI, 0o755); err != nil {
		return fmt.Errorf("failed to create bag directory: %w", err)
	}

	backend, err := storage.New(w.cfg.StorageID)
	if err != nil {
		return err
	}

	name := filepath.Base(w.cfg.URI) + "_0.db3"
	uri := filepath.Join(w.cfg.URI, name)
	if err := backend.Open(storage.OpenOptions{
		URI:     uri,
		Flag:    storage.ReadWrite,
		Pragmas: w.cfg.Pragmas,
	}); err != nil {
		return err
	}

	w.logger.Debug("opened bag for writing", "uri", uri, "storage_id", w.cfg.StorageID)
	w.storage = backend
	w.opened = true
	return nil
}

// CreateTopic registers a topic before messages are written to it.
func (w *Sequential) CreateTopic(topic storage.TopicMetadata) error {
	if !w.opened {
		return fmt.Errorf("writer not open")
	}
	return w.storage.CreateTopic(topic)
}

// Write appends one message to the bag.
func (w *Sequential) Write(msg *storage.SerializedBagMessage) error {
	if !w.opened {
		return fmt.Errorf("writer not open")
	}
	return w.storage.Write(msg)
}

// Close finalizes the bag: the summary is computed, metadata.yaml is
// written next to the storage file and the storage is closed.
func (w *Sequential) Close() error {
	if !w.opened {
		return nil
	}
	w.opened = false

	meta, err := w.storage.GetMetadata()
	if err != nil {
		_ = w.storage.Close()
		return err
	}
	if err := bag.Write(w.cfg.URI, bag.FromStorage(meta)); err != nil {
		_ = w.storage.Close()
		return err
	}

	w.logger.Debug("closed bag", "uri", w.cfg.URI, "messages", meta.MessageCount)
	return w.storage.Close()
}
