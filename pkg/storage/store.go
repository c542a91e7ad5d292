package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"snapvault/pkg/core"
	"snapvault/pkg/types"
)

var (
	ErrNotFound       = errors.New("object not found")
	ErrAmbiguousHash  = errors.New("ambiguous hash prefix")
	ErrPrefixTooShort = errors.New("hash prefix too short")
)

// MinPrefixLen is the shortest digest prefix ExpandHash accepts.
const MinPrefixLen = 4

// Store defines the interface for a storage backend.
// Implementations can be local disk, an embedded KV store or S3.
type Store interface {
	// Put persists obj under obj.ID(). Writing a digest that already exists
	// is a no-op.
	Put(ctx context.Context, obj core.Object) error

	// Get returns the bytes stored under hash, or ErrNotFound.
	Get(ctx context.Context, hash types.Hash) (io.ReadCloser, error)

	// Has reports whether hash is present.
	Has(ctx context.Context, hash types.Hash) (bool, error)

	// ExpandHash resolves an abbreviated digest to the single stored digest
	// it prefixes.
	ExpandHash(ctx context.Context, short types.HashPrefix) (types.Hash, error)
}

// PutBlob stores content as a blob and returns its digest.
func PutBlob(ctx context.Context, s Store, content []byte) (types.Hash, error) {
	blob := core.NewBlob(content)
	if err := s.Put(ctx, blob); err != nil {
		return "", fmt.Errorf("failed to store blob %s: %w", blob.ID().Short(), err)
	}
	return blob.ID(), nil
}

// ReadBlob returns the exact bytes previously stored under hash.
func ReadBlob(ctx context.Context, s Store, hash types.Hash) ([]byte, error) {
	r, err := s.Get(ctx, hash)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// CheckPrefix validates a user supplied prefix before a backend scans for it.
func CheckPrefix(short types.HashPrefix) error {
	if len(short) < MinPrefixLen {
		return fmt.Errorf("%w: %q (need at least %d characters)", ErrPrefixTooShort, short, MinPrefixLen)
	}
	return nil
}

// RawObject lets decorators hand a transformed payload to the backend while
// keeping the original digest.
type RawObject struct {
	Hash types.Hash
	Kind core.ObjectType
	Data []byte
}

func (o RawObject) Type() core.ObjectType { return o.Kind }
func (o RawObject) ID() types.Hash        { return o.Hash }
func (o RawObject) Bytes() []byte         { return o.Data }
