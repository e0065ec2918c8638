// Package journal records committed ledger operations as append-only,
// optimistically versioned streams, one stream per mint.
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrConflict is returned when an append's expected version does not
// match the stream's current version.
var ErrConflict = errors.New("journal: stream version conflict")

// Entry is one committed ledger effect.
type Entry struct {
	ID      string          `json:"id"`
	Stream  string          `json:"stream"`
	Type    string          `json:"type"`
	Version int             `json:"version"`
	Time    time.Time       `json:"time"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// NewEntry creates an entry with a fresh ID and JSON-encoded payload.
// Stream and Version are assigned by the store on append.
func NewEntry(entryType string, payload any) (*Entry, error) {
	var data json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		data = b
	}
	return &Entry{
		ID:   uuid.New().String(),
		Type: entryType,
		Time: time.Now().UTC(),
		Data: data,
	}, nil
}

// Decode unmarshals the entry payload into v.
func (e *Entry) Decode(v any) error {
	return json.Unmarshal(e.Data, v)
}

// Store persists journal entries. Streams are independently versioned;
// versions start at 0 and the expected version for a new stream is -1.
type Store interface {
	// Append adds entries to a stream if expectedVersion matches the
	// stream's current version. Returns the new stream version.
	Append(ctx context.Context, stream string, expectedVersion int, entries []*Entry) (int, error)

	// Read returns entries in a stream from the given version onward.
	Read(ctx context.Context, stream string, fromVersion int) ([]*Entry, error)

	// StreamVersion returns the current version of a stream, or -1 if
	// the stream does not exist.
	StreamVersion(ctx context.Context, stream string) (int, error)

	// Close releases store resources.
	Close() error
}
