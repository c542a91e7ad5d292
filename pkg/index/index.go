// pkg/index/index.go
package index

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"snapvault/pkg/core"
	"snapvault/pkg/types"

	"go.uber.org/zap"
)

// Staged is the pending path -> digest mapping. It is deliberately a
// different type from core.Snapshot: staged entries are mutable and
// short-lived, snapshots are frozen.
type Staged map[string]types.Hash

// Index manages the staging area and its on-disk copy (.vcs/index.json).
type Index struct {
	path    string
	entries Staged
	dirty   bool
	mu      sync.RWMutex
}

// NewIndex loads the index at indexPath. A missing file is an empty index.
func NewIndex(indexPath string) (*Index, error) {
	idx := &Index{
		path:    indexPath,
		entries: make(Staged),
	}

	data, err := os.ReadFile(indexPath)
	if os.IsNotExist(err) {
		return idx, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}
	if err := json.Unmarshal(data, &idx.entries); err != nil {
		return nil, fmt.Errorf("corrupted index file: %w", err)
	}
	if idx.entries == nil {
		idx.entries = make(Staged) // file held "null"
	}
	return idx, nil
}

// Add stages path at hash, replacing any earlier digest for the same path.
func (i *Index) Add(path string, hash types.Hash) {
	key := CleanPath(path)
	i.mu.Lock()
	defer i.mu.Unlock()

	i.entries[key] = hash
	i.dirty = true
}

// Remove unstages path and reports whether it was staged.
func (i *Index) Remove(path string) bool {
	key := CleanPath(path)
	i.mu.Lock()
	defer i.mu.Unlock()

	if _, ok := i.entries[key]; !ok {
		return false
	}
	delete(i.entries, key)
	i.dirty = true
	return true
}

// Read returns a copy of the staged entries.
func (i *Index) Read() Staged {
	i.mu.RLock()
	defer i.mu.RUnlock()

	snap := make(Staged, len(i.entries))
	maps.Copy(snap, i.entries)
	return snap
}

// Paths returns the staged paths in lexical order.
func (i *Index) Paths() []string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return slices.Sorted(maps.Keys(i.entries))
}

// SnapshotAndClear freezes the staged entries into a snapshot and resets
// the live index in the same critical section.
func (i *Index) SnapshotAndClear() core.Snapshot {
	i.mu.Lock()
	defer i.mu.Unlock()

	snap := make(core.Snapshot, len(i.entries))
	maps.Copy(snap, i.entries)
	i.entries = make(Staged)
	i.dirty = true
	return snap
}

// IsEmpty reports whether nothing is staged.
func (i *Index) IsEmpty() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.entries) == 0
}


// Dirty reports whether the index changed since it was loaded or saved.
func (i *Index) Dirty() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.dirty
}

// Save writes the index as a JSON object of path -> digest.
func (i *Index) Save() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	data, err := json.MarshalIndent(i.entries, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(i.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}
	i.dirty = false
	zap.L().Debug("index saved", zap.String("path", i.path), zap.Int("entries", len(i.entries)))
	return nil
}

// CleanPath normalises a working-tree path into its index key.
func CleanPath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}
