// pkg/types/common.go
package types

import "encoding/hex"

// DigestLen is the length of a hex-encoded SHA-1 content digest.
const DigestLen = 40

// Hash is the content digest of a blob (SHA-1, hex encoded).
// Treat it as an immutable value object.
type Hash string

func (h Hash) String() string { return string(h) }

func (h Hash) IsZero() bool { return h == "" }

// IsValid reports whether h looks like a full hex digest.
func (h Hash) IsValid() bool {
	if len(h) != DigestLen {
		return false
	}
	_, err := hex.DecodeString(string(h))
	return err == nil
}

// Short returns the abbreviated form used in human output.
func (h Hash) Short() string {
	if len(h) <= 8 {
		return string(h)
	}
	return string(h[:8])
}

// HashPrefix is a user supplied, possibly abbreviated digest.
type HashPrefix string

func (p HashPrefix) String() string { return string(p) }
