package storage

import (
	"encoding/binary"
	"time"

	"github.com/illarion/clipseal/internal/envelope"
)

// Record is one sealed clipboard update in the history
type Record struct {
	Seq       uint64            `json:"seq"`
	ID        string            `json:"id"`
	Timestamp int64             `json:"timestamp"` // unix millis
	Origin    string            `json:"origin"`
	Payload   envelope.Envelope `json:"payload"`
}

// Time returns the record timestamp as a time.Time
func (r *Record) Time() time.Time {
	return time.UnixMilli(r.Timestamp)
}

func seqKey(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)
	return k
}
