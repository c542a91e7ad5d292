package disk

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"snapvault/pkg/core"
	"snapvault/pkg/storage"
	"snapvault/pkg/types"

	"go.uber.org/zap"
)

// Adapter implements storage.Store on a plain directory.
type Adapter struct {
	rootPath string // e.g. /home/user/project/.vcs/objects
}

// NewAdapter opens (and creates if needed) an object directory.
func NewAdapter(root string) (*Adapter, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create root storage dir: %w", err)
	}
	return &Adapter{rootPath: root}, nil
}

// layout returns the file a digest lives in: one flat file per blob,
// named by the full digest (objects/<digest>).
func (s *Adapter) layout(hash types.Hash) string {
	return filepath.Join(s.rootPath, string(hash))
}

func (s *Adapter) Put(ctx context.Context, obj core.Object) error {
	hash := obj.ID()
	targetPath := s.layout(hash)

	// 1. Content addressing makes the write idempotent.
	if _, err := os.Stat(targetPath); err == nil {
		zap.L().Debug("blob already stored", zap.String("hash", hash.String()))
		return nil
	}

	// 2. Write to a temp file and rename it into place, so a digest either
	// does not exist or holds the complete payload.
	tempFile, err := os.CreateTemp(s.rootPath, "temp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tempFile.Name())

	if _, err := tempFile.Write(obj.Bytes()); err != nil {
		tempFile.Close()
		return err
	}
	if err := tempFile.Close(); err != nil {
		return err
	}

	// 3. Move into the final location.
	if err := os.Rename(tempFile.Name(), targetPath); err != nil {
		return err
	}

	zap.L().Debug("blob stored",
		zap.String("hash", hash.String()),
		zap.Int("bytes", len(obj.Bytes())),
	)
	return nil
}

func (s *Adapter) Get(ctx context.Context, hash types.Hash) (io.ReadCloser, error) {
	if !hash.IsValid() {
		return nil, fmt.Errorf("%w: malformed digest %q", storage.ErrNotFound, hash)
	}
	f, err := os.Open(s.layout(hash))
	if os.IsNotExist(err) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Adapter) Has(ctx context.Context, hash types.Hash) (bool, error) {
	if !hash.IsValid() {
		return false, nil
	}
	_, err := os.Stat(s.layout(hash))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// ExpandHash scans the object directory for digests starting with short.
func (s *Adapter) ExpandHash(ctx context.Context, short types.HashPrefix) (types.Hash, error) {
	if err := storage.CheckPrefix(short); err != nil {
		return "", err
	}
	if types.Hash(short).IsValid() {
		ok, err := s.Has(ctx, types.Hash(short))
		if err != nil {
			return "", err
		}
		if !ok {
			return "", storage.ErrNotFound
		}
		return types.Hash(short), nil
	}

	names, err := s.list()
	if err != nil {
		return "", err
	}

	var found types.Hash
	for _, h := range names {
		if !strings.HasPrefix(string(h), string(short)) {
			continue
		}
		if found != "" {
			return "", fmt.Errorf("%w: %s", storage.ErrAmbiguousHash, short)
		}
		found = h
	}
	if found == "" {
		return "", storage.ErrNotFound
	}
	return found, nil
}

// Count returns the number of stored blobs.
func (s *Adapter) Count() (int, error) {
	names, err := s.list()
	return len(names), err
}

// list returns every stored digest, skipping in-flight temp files.
func (s *Adapter) list() ([]types.Hash, error) {
	entries, err := os.ReadDir(s.rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to list objects: %w", err)
	}
	out := make([]types.Hash, 0, len(entries))
	for _, e := range entries {
		h := types.Hash(e.Name())
		if e.IsDir() || !h.IsValid() {
			continue
		}
		out = append(out, h)
	}
	return out, nil
}
