package core

import (
	"testing"
	"time"

	"snapvault/pkg/types"

	"github.com/stretchr/testify/require"
)

// mockHash returns a well-formed digest derived from input.
func mockHash(input string) types.Hash {
	return CalculateBlobHash([]byte(input))
}

// mustFingerprint fails the test immediately if the record cannot be encoded.
func mustFingerprint(t *testing.T, c CommitRecord, msgAndArgs ...any) types.Hash {
	t.Helper()
	h, err := c.Fingerprint()
	require.NoError(t, err, msgAndArgs...)
	return h
}

var fixedNow = time.Date(2024, 5, 1, 10, 22, 3, 123456000, time.UTC)
