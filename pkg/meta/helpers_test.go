package meta

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"testing"
	"time"

	"snapvault/pkg/core"
	"snapvault/pkg/types"

	"github.com/stretchr/testify/require"
)

// mockHash derives a valid digest for test data.
func mockHash(input string) types.Hash {
	sum := sha1.Sum([]byte(input))
	return types.Hash(hex.EncodeToString(sum[:]))
}

var baseTime = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func newRecord(minute int, msg string, paths ...string) core.CommitRecord {
	snap := make(core.Snapshot, len(paths))
	for _, p := range paths {
		snap[p] = mockHash(p + msg)
	}
	return core.NewCommitRecord(snap, msg, baseTime.Add(time.Duration(minute)*time.Minute))
}

// mustIndexCommit fails the test when indexing fails.
func mustIndexCommit(t *testing.T, repo *Repository, seq int, rec core.CommitRecord, msgAndArgs ...any) {
	t.Helper()
	err := repo.IndexCommit(context.Background(), seq, rec)
	require.NoError(t, err, msgAndArgs...)
}
