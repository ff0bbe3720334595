package storage

// IOFlag selects the mode a storage backend is opened in.
type IOFlag int

const (
	// ReadOnly opens an existing bag for reading.
	ReadOnly IOFlag = iota

	// ReadWrite creates the bag file if needed and opens it for writing.
	ReadWrite
)

// OpenOptions carries backend-independent open parameters.
type OpenOptions struct {
	// URI is the path of the storage file.
	URI string

	// Flag selects read-only or read-write access.
	Flag IOFlag

	// Pragmas contains backend-specific tuning options
	// (for sqlite3: journal_mode, synchronous, cache_size, ...).
	Pragmas map[string]string
}

// Filter restricts which messages a reader returns.
// An empty topic list means no filtering.
type Filter struct {
	Topics []string
}

// ReadOnlyStorage is the reading side of a storage backend.
type ReadOnlyStorage interface {
	// Open attaches the backend to the storage file named by the options.
	Open(OpenOptions) error

	// HasNext reports whether another message is available.
	HasNext() bool

	// ReadNext returns the next message in timestamp order.
	ReadNext() (*SerializedBagMessage, error)

	// GetAllTopicsAndTypes lists the topics registered in the bag.
	GetAllTopicsAndTypes() ([]TopicMetadata, error)

	// GetMetadata computes the bag summary (counts, start time, duration).
	GetMetadata() (*BagMetadata, error)

	// SetFilter restricts subsequent reads to the filter's topics.
	// It must be called before the first ReadNext of a pass.
	SetFilter(Filter) error

	// ResetFilter removes any active filter.
	ResetFilter() error

	Close() error
}

// ReadWriteStorage extends ReadOnlyStorage with the writing side.
type ReadWriteStorage interface {
	ReadOnlyStorage

	// CreateTopic registers a topic so messages can be written to it.
	// Registering the same topic twice is a no-op.
	CreateTopic(TopicMetadata) error

	// RemoveTopic deletes a topic and its messages.
	RemoveTopic(TopicMetadata) error

	// Write appends one message to the bag.
	Write(*SerializedBagMessage) error
}
