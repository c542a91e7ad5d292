// pkg/commitlog/log.go
package commitlog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"snapvault/pkg/core"

	"go.uber.org/zap"
)

var (
	ErrNoChanges     = errors.New("no changes to commit")
	ErrInvalidCommit = errors.New("invalid commit number")
)

// Entry pairs a record with its position in the log.
type Entry struct {
	Seq    int
	Record core.CommitRecord
}

// Log is the append-only commit history backed by .vcs/commits.json.
type Log struct {
	path    string
	records []core.CommitRecord
	dirty   bool
	mu      sync.RWMutex

	now func() time.Time
}

// Load reads the log at path. A missing file is an empty log.
func Load(path string) (*Log, error) {
	l := &Log{path: path, now: time.Now}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return l, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read commit log: %w", err)
	}
	if err := json.Unmarshal(data, &l.records); err != nil {
		return nil, fmt.Errorf("corrupted commit log: %w", err)
	}
	for seq, rec := range l.records {
		if _, err := rec.Time(); err != nil {
			return nil, fmt.Errorf("corrupted commit log: commit %d: %w", seq, err)
		}
	}
	return l, nil
}

// Append records snapshot as the next commit and returns its sequence
// number. An empty snapshot is rejected with ErrNoChanges.
func (l *Log) Append(snapshot core.Snapshot, message string) (int, error) {
	if len(snapshot) == 0 {
		return 0, ErrNoChanges
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	rec := core.NewCommitRecord(snapshot, message, l.now())
	l.records = append(l.records, rec)
	l.dirty = true

	seq := len(l.records) - 1
	zap.L().Debug("commit appended",
		zap.Int("seq", seq),
		zap.Int("files", len(rec.Snapshot)),
	)
	return seq, nil
}

// Get returns the record at seq.
func (l *Log) Get(seq int) (core.CommitRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if seq < 0 || seq >= len(l.records) {
		return core.CommitRecord{}, fmt.Errorf("%w: %d (log has %d commits)", ErrInvalidCommit, seq, len(l.records))
	}
	return l.records[seq].Clone(), nil
}

// List returns every record, oldest first.
func (l *Log) List() []core.CommitRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]core.CommitRecord, len(l.records))
	for i, r := range l.records {
		out[i] = r.Clone()
	}
	return out
}

// Entries is List with sequence numbers attached.
func (l *Log) Entries() []Entry {
	records := l.List()
	out := make([]Entry, len(records))
	for i, r := range records {
		out[i] = Entry{Seq: i, Record: r}
	}
	return out
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// Dirty reports whether commits were appended since the last save.
func (l *Log) Dirty() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.dirty
}

// Save rewrites the log file with every record.
func (l *Log) Save() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	records := l.records
	if records == nil {
		records = []core.CommitRecord{} // "[]", never "null"
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(l.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write commit log: %w", err)
	}
	l.dirty = false
	return nil
}
