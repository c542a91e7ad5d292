package core

import (
	"fmt"
	"time"

	"snapvault/pkg/types"
)

// TimestampLayout is the ISO-8601 layout commit timestamps are written in.
const TimestampLayout = time.RFC3339Nano

// legacyTimestampLayout matches zone-less ISO-8601 stamps such as
// "2024-05-01T10:22:03.123456".
const legacyTimestampLayout = "2006-01-02T15:04:05.999999999"

// CommitRecord is one immutable entry of the commit log. Its sequence
// number is its position in the log and is not stored.
type CommitRecord struct {
	Timestamp string   `json:"timestamp" cbor:"ts"`
	Message   string   `json:"message" cbor:"m"`
	Snapshot  Snapshot `json:"snapshot" cbor:"s"`
}

// NewCommitRecord freezes snapshot into a record stamped with now.
func NewCommitRecord(snapshot Snapshot, message string, now time.Time) CommitRecord {
	return CommitRecord{
		Timestamp: now.Format(TimestampLayout),
		Message:   message,
		Snapshot:  snapshot.Clone(),
	}
}

// Time parses the record timestamp.
func (c CommitRecord) Time() (time.Time, error) {
	if t, err := time.Parse(TimestampLayout, c.Timestamp); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(legacyTimestampLayout, c.Timestamp, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid commit timestamp %q: %w", c.Timestamp, err)
	}
	return t, nil
}

// Clone returns a deep copy so callers cannot mutate a logged record.
func (c CommitRecord) Clone() CommitRecord {
	c.Snapshot = c.Snapshot.Clone()
	return c
}

// Fingerprint identifies the record by the digest of its canonical CBOR
// encoding. It is derived on demand and never persisted.
func (c CommitRecord) Fingerprint() (types.Hash, error) {
	h, _, err := CalculateHash(c)
	return h, err
}
