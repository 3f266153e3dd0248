// Package kv provides the scoped key-value blob persistence used by the
// palette preference store. A Blob is one named slot; backends exist for
// plain JSON files, SQLite, and memory (tests).
package kv

// Blob is a single named persistence slot. Load returns (nil, nil) when
// nothing has been saved yet.
type Blob interface {
	Load() ([]byte, error)
	Save(data []byte) error
	Close() error
}
