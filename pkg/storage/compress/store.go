// pkg/storage/compress/store.go
package compress

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"snapvault/pkg/core"
	"snapvault/pkg/storage"
	"snapvault/pkg/types"

	"github.com/klauspost/compress/zstd"
)

// Store compresses blobs with zstd before handing them to the backend.
// Digests are always computed over the uncompressed content.
type Store struct {
	backend storage.Store
	enc     *zstd.Encoder
	dec     *zstd.Decoder
}

// NewStore wraps backend. level follows zstd's 1 (fastest) .. 4 (best) scale.
func NewStore(backend storage.Store, level int) (*Store, error) {
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	return &Store{backend: backend, enc: enc, dec: dec}, nil
}

func (s *Store) Put(ctx context.Context, obj core.Object) error {
	packed := s.enc.EncodeAll(obj.Bytes(), nil)
	return s.backend.Put(ctx, storage.RawObject{
		Hash: obj.ID(),
		Kind: obj.Type(),
		Data: packed,
	})
}

func (s *Store) Get(ctx context.Context, hash types.Hash) (io.ReadCloser, error) {
	packed, err := storage.ReadBlob(ctx, s.backend, hash)
	if err != nil {
		return nil, err
	}
	data, err := s.dec.DecodeAll(packed, nil)
	if err != nil {
		return nil, fmt.Errorf("decompressing blob %s: %w", hash.Short(), err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *Store) Has(ctx context.Context, hash types.Hash) (bool, error) {
	return s.backend.Has(ctx, hash)
}

func (s *Store) ExpandHash(ctx context.Context, short types.HashPrefix) (types.Hash, error) {
	return s.backend.ExpandHash(ctx, short)
}

func (s *Store) Close() error {
	s.dec.Close()
	return s.enc.Close()
}
