package sqlite

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sangteak601/rosbag2/internal/storage"
)

// Identifier is the storage plugin name, matching the on-disk format.
const Identifier = "sqlite3"

func init() {
	storage.Register(Identifier, func() storage.ReadWriteStorage { return New() })
}

// Storage is the sqlite3 bag storage backend. Every query it issues goes
// through the typed statement wrapper.
type Storage struct {
	db   *DB
	flag storage.IOFlag

	// topicIDs caches topic name to rowid for message writes.
	topicIDs map[string]int64

	writeStmt *Statement

	filter storage.Filter

	// Read pass state. The cursor is shared statement state, so one
	// pass serves both HasNext and ReadNext.
	readStmt   *Statement
	readResult *QueryResult
	readCursor *Cursor
	readErr    error
}

// New returns an unopened sqlite3 storage backend.
func New() *Storage {
	return &Storage{topicIDs: make(map[string]int64)}
}

// Open attaches the backend to the database file named by opts. For
// read-write access the file is created and migrated as needed; existing
// topics are loaded into the topic cache so bags can be appended to.
func (s *Storage) Open(opts storage.OpenOptions) error {
	db, err := Open(opts.URI, opts.Flag, opts.Pragmas)
	if err != nil {
		return err
	}
	s.db = db
	s.flag = opts.Flag

	if err := s.loadTopicIDs(); err != nil {
		_ = db.Close()
		s.db = nil
		return err
	}
	return nil
}

func (s *Storage) loadTopicIDs() error {
	stmt, err := s.db.Prepare("SELECT id, name FROM topics ORDER BY id")
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	result, err := stmt.Query(Int64, Text)
	if err != nil {
		return err
	}
	cursor, err := result.Begin()
	if err != nil {
		return err
	}
	for !cursor.Equal(result.End()) {
		row := cursor.Row()
		s.topicIDs[row.Text(1)] = row.Int64(0)
		if err := cursor.Advance(); err != nil {
			return err
		}
	}
	return nil
}

// CreateTopic registers a topic. Registering an already known topic is a
// no-op.
func (s *Storage) CreateTopic(topic storage.TopicMetadata) error {
	if _, ok := s.topicIDs[topic.Name]; ok {
		return nil
	}

	insert, err := s.db.Prepare(
		"INSERT INTO topics (name, type, serialization_format, offered_qos_profiles) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer func() { _ = insert.Close() }()

	if _, err := insert.Bind(topic.Name, topic.Type, topic.SerializationFormat, topic.OfferedQoSProfiles); err != nil {
		return err
	}
	if _, err := insert.ExecuteAndReset(); err != nil {
		return err
	}

	id, err := s.topicID(topic.Name)
	if err != nil {
		return err
	}
	s.topicIDs[topic.Name] = id
	return nil
}

func (s *Storage) topicID(name string) (int64, error) {
	stmt, err := s.db.Prepare("SELECT id FROM topics WHERE name = ?")
	if err != nil {
		return 0, err
	}
	defer func() { _ = stmt.Close() }()

	if _, err := stmt.Bind(name); err != nil {
		return 0, err
	}
	result, err := stmt.Query(Int64)
	if err != nil {
		return 0, err
	}
	cursor, err := result.Begin()
	if err != nil {
		return 0, err
	}
	if cursor.Equal(result.End()) {
		return 0, fmt.Errorf("topic %q not found", name)
	}
	return cursor.Row().Int64(0), nil
}

// RemoveTopic deletes a topic and all of its messages.
func (s *Storage) RemoveTopic(topic storage.TopicMetadata) error {
	id, ok := s.topicIDs[topic.Name]
	if !ok {
		return fmt.Errorf("topic %q not found", topic.Name)
	}

	for _, query := range []string{
		"DELETE FROM messages WHERE topic_id = ?",
		"DELETE FROM topics WHERE id = ?",
	} {
		stmt, err := s.db.Prepare(query)
		if err != nil {
			return err
		}
		if _, err := stmt.Bind(id); err != nil {
			_ = stmt.Close()
			return err
		}
		if _, err := stmt.ExecuteAndReset(); err != nil {
			_ = stmt.Close()
			return err
		}
		if err := stmt.Close(); err != nil {
			return err
		}
	}

	delete(s.topicIDs, topic.Name)
	return nil
}

// Write appends one message. Its topic must have been created first.
func (s *Storage) Write(msg *storage.SerializedBagMessage) error {
	id, ok := s.topicIDs[msg.Topic]
	if !ok {
		return fmt.Errorf("topic %q has not been created", msg.Topic)
	}

	if s.writeStmt == nil {
		stmt, err := s.db.Prepare("INSERT INTO messages (timestamp, topic_id, data) VALUES (?, ?, ?)")
		if err != nil {
			return err
		}
		s.writeStmt = stmt
	}

	if _, err := s.writeStmt.Bind(msg.Timestamp, id, msg.Data); err != nil {
		return err
	}
	if _, err := s.writeStmt.ExecuteAndReset(); err != nil {
		return err
	}
	return nil
}

// SetFilter restricts subsequent reads to the filter's topics. Any read
// pass in progress is discarded; the next read starts over.
func (s *Storage) SetFilter(filter storage.Filter) error {
	s.filter = filter
	return s.resetRead()
}

// ResetFilter removes any active filter and discards the read pass.
func (s *Storage) ResetFilter() error {
	s.filter = storage.Filter{}
	return s.resetRead()
}

func (s *Storage) resetRead() error {
	s.readResult = nil
	s.readCursor = nil
	s.readErr = nil
	if s.readStmt != nil {
		err := s.readStmt.Close()
		s.readStmt = nil
		return err
	}
	return nil
}

func (s *Storage) ensureReadCursor() error {
	if s.readCursor != nil || s.readErr != nil {
		return s.readErr
	}

	query := "SELECT topics.name, messages.timestamp, messages.data " +
		"FROM messages JOIN topics ON messages.topic_id = topics.id"
	args := make([]any, 0, len(s.filter.Topics))
	if len(s.filter.Topics) > 0 {
		query += " WHERE topics.name IN (?" + strings.Repeat(", ?", len(s.filter.Topics)-1) + ")"
		for _, t := range s.filter.Topics {
			args = append(args, t)
		}
	}
	query += " ORDER BY messages.timestamp"

	stmt, err := s.db.Prepare(query)
	if err != nil {
		s.readErr = err
		return err
	}
	if _, err := stmt.Bind(args...); err != nil {
		_ = stmt.Close()
		s.readErr = err
		return err
	}
	result, err := stmt.Query(Text, Int64, Blob)
	if err != nil {
		_ = stmt.Close()
		s.readErr = err
		return err
	}
	cursor, err := result.Begin()
	if err != nil {
		_ = stmt.Close()
		s.readErr = err
		return err
	}

	s.readStmt = stmt
	s.readResult = result
	s.readCursor = cursor
	return nil
}

// HasNext reports whether another message is available. The first call
// starts the read pass.
func (s *Storage) HasNext() bool {
	if err := s.ensureReadCursor(); err != nil {
		return false
	}
	return !s.readCursor.Equal(s.readResult.End())
}

// ReadNext returns the next message in timestamp order.
func (s *Storage) ReadNext() (*storage.SerializedBagMessage, error) {
	if err := s.ensureReadCursor(); err != nil {
		return nil, err
	}
	if s.readCursor.Equal(s.readResult.End()) {
		return nil, fmt.Errorf("no more messages to read")
	}

	row := s.readCursor.Row()
	msg := &storage.SerializedBagMessage{
		Topic:     row.Text(0),
		Timestamp: row.Int64(1),
		Data:      row.Blob(2),
	}

	if err := s.readCursor.Advance(); err != nil {
		s.readErr = err
		return nil, err
	}
	return msg, nil
}

// GetAllTopicsAndTypes lists the topics registered in the bag.
func (s *Storage) GetAllTopicsAndTypes() ([]storage.TopicMetadata, error) {
	stmt, err := s.db.Prepare(
		"SELECT name, type, serialization_format, offered_qos_profiles FROM topics ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer func() { _ = stmt.Close() }()

	result, err := stmt.Query(Text, Text, Text, Text)
	if err != nil {
		return nil, err
	}
	cursor, err := result.Begin()
	if err != nil {
		return nil, err
	}

	var topics []storage.TopicMetadata
	for !cursor.Equal(result.End()) {
		row := cursor.Row()
		topics = append(topics, storage.TopicMetadata{
			Name:                row.Text(0),
			Type:                row.Text(1),
			SerializationFormat: row.Text(2),
			OfferedQoSProfiles:  row.Text(3),
		})
		if err := cursor.Advance(); err != nil {
			return nil, err
		}
	}
	return topics, nil
}

// GetMetadata computes the bag summary: per-topic message counts plus
// the global starting time and duration.
func (s *Storage) GetMetadata() (*storage.BagMetadata, error) {
	stmt, err := s.db.Prepare(
		"SELECT topics.name, topics.type, topics.serialization_format, " +
			"COUNT(messages.id), COALESCE(MIN(messages.timestamp), 0), COALESCE(MAX(messages.timestamp), 0) " +
			"FROM topics LEFT JOIN messages ON topics.id = messages.topic_id " +
			"GROUP BY topics.id ORDER BY topics.id")
	if err != nil {
		return nil, err
	}
	defer func() { _ = stmt.Close() }()

	result, err := stmt.Query(Text, Text, Text, Int64, Int64, Int64)
	if err != nil {
		return nil, err
	}
	cursor, err := result.Begin()
	if err != nil {
		return nil, err
	}

	meta := &storage.BagMetadata{
		StorageIdentifier: Identifier,
		RelativePath:      filepath.Base(s.db.Path()),
	}

	var minTime, maxTime int64 = -1, -1
	for !cursor.Equal(result.End()) {
		row := cursor.Row()
		count := row.Int64(3)
		meta.Topics = append(meta.Topics, storage.TopicInformation{
			TopicMetadata: storage.TopicMetadata{
				Name:                row.Text(0),
				Type:                row.Text(1),
				SerializationFormat: row.Text(2),
			},
			MessageCount: count,
		})
		meta.MessageCount += count

		if count > 0 {
			if minTime == -1 || row.Int64(4) < minTime {
				minTime = row.Int64(4)
			}
			if row.Int64(5) > maxTime {
				maxTime = row.Int64(5)
			}
		}

		if err := cursor.Advance(); err != nil {
			return nil, err
		}
	}

	if minTime >= 0 {
		meta.StartingTime = time.Unix(0, minTime)
		meta.Duration = time.Duration(maxTime - minTime)
	}
	return meta, nil
}

// Close releases all prepared statements and the database handle.
func (s *Storage) Close() error {
	if err := s.resetRead(); err != nil {
		return err
	}
	if s.writeStmt != nil {
		if err := s.writeStmt.Close(); err != nil {
			return err
		}
		s.writeStmt = nil
	}
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

var _ storage.ReadWriteStorage = (*Storage)(nil)
