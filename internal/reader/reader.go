// Package reader plays back messages from a bag directory or a bare
// storage file.
package reader

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sangteak601/rosbag2/internal/bag"
	"github.com/sangteak601/rosbag2/internal/storage"
)

// Config controls how a bag is opened for reading.
type Config struct {
	// URI is a bag directory containing metadata.yaml, or a storage
	// file opened directly with the default backend.
	URI string

	// StorageID is the backend used for bare storage files. Bag
	// directories record their own backend in metadata.yaml.
	StorageID string

	// Pragmas are passed through to the backend.
	Pragmas map[string]string

	// Logger receives progress output; defaults to a discard logger.
	Logger *slog.Logger
}

// Sequential reads messages back in timestamp order.
type Sequential struct {
	cfg     Config
	logger  *slog.Logger
	storage storage.ReadOnlyStorage
	opened  bool
}

// NewSequential creates a reader for the given configuration.
func NewSequential(cfg Config) *Sequential {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Sequential{cfg: cfg, logger: logger}
}

// Open resolves the storage file and backend. Bag directories are
// resolved through their metadata.yaml; anything else is treated as a
// sqlite3 storage file.
func (r *Sequential) Open() error {
	if r.opened {
		return fmt.Errorf("reader already open")
	}

	uri := r.cfg.URI
	storageID := r.cfg.StorageID
	if storageID == "" {
		storageID = "sqlite3"
	}

	info, err := os.Stat(uri)
	if err != nil {
		return fmt.Errorf("failed to open bag %s: %w", uri, err)
	}
	if info.IsDir() {
		if !bag.Exists(uri) {
			return fmt.Errorf("%s is not a bag directory: no %s", uri, bag.MetadataFilename)
		}
		meta, err := bag.Read(uri)
		if err != nil {
			return err
		}
		if len(meta.Info.RelativeFilePaths) == 0 {
			return fmt.Errorf("bag %s lists no storage files", uri)
		}
		storageID = meta.Info.StorageIdentifier
		uri = filepath.Join(uri, meta.Info.RelativeFilePaths[0])
	}

	backend, err := storage.New(storageID)
	if err != nil {
		return err
	}
	if err := backend.Open(storage.OpenOptions{
		URI:     uri,
		Flag:    storage.ReadOnly,
		Pragmas: r.cfg.Pragmas,
	}); err != nil {
		return err
	}

	r.logger.Debug("opened bag for reading", "uri", uri, "storage_id", storageID)
	r.storage = backend
	r.opened = true
	return nil
}

// HasNext reports whether another message is available.
func (r *Sequential) HasNext() bool {
	return r.opened && r.storage.HasNext()
}

// ReadNext returns the next message in timestamp order.
func (r *Sequential) ReadNext() (*storage.SerializedBagMessage, error) {
	if !r.opened {
		return nil, fmt.Errorf("reader not open")
	}
	return r.storage.ReadNext()
}

// SetFilter restricts playback to the filter's topics.
func (r *Sequential) SetFilter(filter storage.Filter) error {
	if !r.opened {
		return fmt.Errorf("reader not open")
	}
	return r.storage.SetFilter(filter)
}

// ResetFilter removes any active filter.
func (r *Sequential) ResetFilter() error {
	if !r.opened {
		return fmt.Errorf("reader not open")
	}
	return r.storage.ResetFilter()
}

// GetAllTopicsAndTypes lists the topics recorded in the bag.
func (r *Sequential) GetAllTopicsAndTypes() ([]storage.TopicMetadata, error) {
	if !r.opened {
		return nil, fmt.Errorf("reader not open")
	}
	return r.storage.GetAllTopicsAndTypes()
}

// GetMetadata computes the bag summary from the storage file.
func (r *Sequential) GetMetadata() (*storage.BagMetadata, error) {
	if !r.opened {
		return nil, fmt.Errorf("reader not open")
	}
	return r.storage.GetMetadata()
}

// Close releases the storage backend.
func (r *Sequential) Close() error {
	if !r.opened {
		return nil
	}
	r.opened = false
	return r.storage.Close()
}
