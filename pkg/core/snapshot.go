package core

import (
	"maps"
	"slices"

	"snapvault/pkg/types"
)

// Snapshot is the full path -> digest mapping captured by a commit.
// It shares its shape with the staging index but never its lifecycle:
// a snapshot is frozen the moment it is taken.
type Snapshot map[string]types.Hash

// Clone returns an independent copy. A nil snapshot clones to an empty one.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	maps.Copy(out, s)
	return out
}

// Paths returns the snapshot paths in lexical order.
func (s Snapshot) Paths() []string {
	return slices.Sorted(maps.Keys(s))
}
