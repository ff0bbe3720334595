// Package storage defines the bag storage interfaces and the plugin
// registry used to instantiate concrete storage backends.
package storage

import "time"

// SerializedBagMessage is one recorded message as stored on disk: the
// topic it was published on, the receive time in nanoseconds since the
// Unix epoch, and the serialized payload.
type SerializedBagMessage struct {
	Topic     string
	Timestamp int64
	Data      []byte
}

// Time returns the message receive time as a time.Time.
func (m *SerializedBagMessage) Time() time.Time {
	return time.Unix(0, m.Timestamp)
}

// TopicMetadata describes a topic registered in a bag.
type TopicMetadata struct {
	Name                string
	Type                string
	SerializationFormat string

	// OfferedQoSProfiles is an opaque, serialized QoS description
	// carried through to the bag so a player can restore it.
	OfferedQoSProfiles string
}

// TopicInformation pairs a topic with its recorded message count.
type TopicInformation struct {
	TopicMetadata TopicMetadata
	MessageCount  int64
}

// BagMetadata summarizes the contents of one bag storage file.
type BagMetadata struct {
	StorageIdentifier string
	RelativePath      string
	MessageCount      int64
	StartingTime      time.Time
	Duration          time.Duration
	Topics            []TopicInformation
}
