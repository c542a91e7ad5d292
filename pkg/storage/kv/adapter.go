// pkg/storage/kv/adapter.go
package kv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"snapvault/pkg/core"
	"snapvault/pkg/storage"
	"snapvault/pkg/types"

	"github.com/dgraph-io/badger/v4"
)

const keyPrefix = "blob:"

// Adapter implements storage.Store on an embedded Badger database.
type Adapter struct {
	db *badger.DB
}

// NewAdapter opens a Badger database in dir.
func NewAdapter(dir string) (*Adapter, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	return open(opts)
}

// NewInMemoryAdapter opens a throwaway database, handy for tests.
func NewInMemoryAdapter() (*Adapter, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	return open(opts)
}

func open(opts badger.Options) (*Adapter, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger store: %w", err)
	}
	return &Adapter{db: db}, nil
}

func makeKey(hash types.Hash) []byte {
	return []byte(keyPrefix + string(hash))
}

func (s *Adapter) Put(ctx context.Context, obj core.Object) error {
	key := makeKey(obj.ID())
	return s.db.Update(func(txn *badger.Txn) error {
		// Write-once: an existing digest already holds this content.
		_, err := txn.Get(key)
		if err == nil {
			return nil
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(key, obj.Bytes())
	})
}

func (s *Adapter) Get(ctx context.Context, hash types.Hash) (io.ReadCloser, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(makeKey(hash))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading blob %s: %w", hash.Short(), err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *Adapter) Has(ctx context.Context, hash types.Hash) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(makeKey(hash))
		return err
	})
	if err == nil {
		return true, nil
	}
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	return false, err
}

func (s *Adapter) ExpandHash(ctx context.Context, short types.HashPrefix) (types.Hash, error) {
	if err := storage.CheckPrefix(short); err != nil {
		return "", err
	}

	prefix := []byte(keyPrefix + string(short))
	var matches []types.Hash
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix) && len(matches) < 2; it.Next() {
			key := string(it.Item().KeyCopy(nil))
			matches = append(matches, types.Hash(strings.TrimPrefix(key, keyPrefix)))
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("listing blobs: %w", err)
	}

	switch len(matches) {
	case 0:
		return "", storage.ErrNotFound
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: %s", storage.ErrAmbiguousHash, short)
	}
}

// Close flushes and closes the database.
func (s *Adapter) Close() error {
	return s.db.Close()
}
