package cache

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"snapvault/pkg/core"
	"snapvault/pkg/storage"
	"snapvault/pkg/types"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LRUStore keeps recently read blobs in memory. Blobs are immutable, so a
// cached entry can never go stale.
type LRUStore struct {
	backend storage.Store
	cache   *lru.Cache[types.Hash, []byte]
}

func NewLRUStore(backend storage.Store, size int) (*LRUStore, error) {
	c, err := lru.New[types.Hash, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("creating blob cache: %w", err)
	}
	return &LRUStore{backend: backend, cache: c}, nil
}

func (s *LRUStore) Put(ctx context.Context, obj core.Object) error {
	if err := s.backend.Put(ctx, obj); err != nil {
		return err
	}
	s.cache.Add(obj.ID(), obj.Bytes())
	return nil
}

func (s *LRUStore) Get(ctx context.Context, hash types.Hash) (io.ReadCloser, error) {
	if data, ok := s.cache.Get(hash); ok {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	data, err := storage.ReadBlob(ctx, s.backend, hash)
	if err != nil {
		return nil, err
	}
	s.cache.Add(hash, data)
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *LRUStore) Has(ctx context.Context, hash types.Hash) (bool, error) {
	if s.cache.Contains(hash) {
		return true, nil
	}
	return s.backend.Has(ctx, hash)
}

func (s *LRUStore) ExpandHash(ctx context.Context, short types.HashPrefix) (types.Hash, error) {
	return s.backend.ExpandHash(ctx, short)
}
