// Package clipboard turns clipboard text into sealed updates and back.
//
// Every published update gets a random UUID and a timestamp; its content is
// sealed into an envelope. Receiving suppresses the update seen last, which
// also drops echoes of our own broadcasts.
package clipboard

import (
	"errors"

	"github.com/illarion/clipseal/internal/envelope"
	"github.com/illarion/clipseal/internal/storage"
)

// TypeUpdate is the message type of a clipboard update
const TypeUpdate = "CLIPBOARD_UPDATE"

var ErrInvalidUpdate = errors.New("invalid clipboard update")

// Update is a clipboard change in clear text
type Update struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp"` // unix millis
	Origin    string `json:"origin,omitempty"`
	Content   string `json:"content"`
}

// SealedUpdate is an Update with its content sealed
type SealedUpdate struct {
	ID        string            `json:"id"`
	Timestamp int64             `json:"timestamp"`
	Origin    string            `json:"origin"`
	Payload   envelope.Envelope `json:"payload"`
}

func (u *SealedUpdate) record() *storage.Record {
	return &storage.Record{
		ID:        u.ID,
		Timestamp: u.Timestamp,
		Origin:    u.Origin,
		Payload:   u.Payload,
	}
}

// FromRecord rebuilds the sealed update stored in a history record
func FromRecord(rec *storage.Record) *SealedUpdate {
	return &SealedUpdate{
		ID:        rec.ID,
		Timestamp: rec.Timestamp,
		Origin:    rec.Origin,
		Payload:   rec.Payload,
	}
}
