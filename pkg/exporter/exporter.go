package exporter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"snapvault/pkg/core"
	"snapvault/pkg/storage"
	"snapvault/pkg/types"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrCorruptRepository means a commit references data the repository cannot
// produce: a blob missing from the store or a path escaping the work tree.
var ErrCorruptRepository = errors.New("repository is corrupt")

// RestoreCallback is invoked once per file written during a restore.
type RestoreCallback func(path string, hash types.Hash, size int64)

type Exporter struct {
	store       storage.Store
	root        string
	parallelism int
}

// NewExporter writes into the work tree at root. parallelism bounds the
// number of concurrent file writes; values below 1 mean sequential.
func NewExporter(store storage.Store, root string, parallelism int) *Exporter {
	if parallelism < 1 {
		parallelism = 1
	}
	return &Exporter{store: store, root: root, parallelism: parallelism}
}

// ExportBlob streams the blob stored under hash into w.
func (e *Exporter) ExportBlob(ctx context.Context, hash types.Hash, w io.Writer) error {
	reader, err := e.store.Get(ctx, hash)
	if err != nil {
		return fmt.Errorf("failed to get blob %s: %w", hash.Short(), err)
	}
	defer reader.Close()

	if _, err := io.Copy(w, reader); err != nil {
		return fmt.Errorf("failed to write blob %s: %w", hash.Short(), err)
	}
	return nil
}

// RestoreSnapshot writes every file of snap into the work tree, creating
// parent directories and overwriting existing files. Files not in snap are
// left alone.
//
// Every blob is checked for presence before the first write, so a corrupt
// commit fails without touching the work tree.
func (e *Exporter) RestoreSnapshot(ctx context.Context, snap core.Snapshot, onRestore RestoreCallback) error {
	paths := snap.Paths()

	// 1. Verify
	for _, p := range paths {
		if !filepath.IsLocal(filepath.FromSlash(p)) {
			return fmt.Errorf("%w: snapshot path %q escapes the work tree", ErrCorruptRepository, p)
		}
		hash := snap[p]
		ok, err := e.store.Has(ctx, hash)
		if err != nil {
			return fmt.Errorf("failed to check blob %s: %w", hash.Short(), err)
		}
		if !ok {
			return fmt.Errorf("%w: blob %s for %q: %w", ErrCorruptRepository, hash, p, storage.ErrNotFound)
		}
	}

	// 2. Write, at most e.parallelism at a time
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallelism)

	for _, p := range paths {
		hash := snap[p]
		g.Go(func() error {
			size, err := e.restoreFile(gctx, p, hash)
			if err != nil {
				return err
			}
			if onRestore != nil {
				mu.Lock()
				onRestore(p, hash, size)
				mu.Unlock()
			}
			return nil
		})
	}
	return g.Wait()
}

func (e *Exporter) restoreFile(ctx context.Context, p string, hash types.Hash) (int64, error) {
	content, err := storage.ReadBlob(ctx, e.store, hash)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, fmt.Errorf("%w: blob %s for %q: %w", ErrCorruptRepository, hash, p, err)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read blob %s: %w", hash.Short(), err)
	}

	fullPath := filepath.Join(e.root, filepath.FromSlash(p))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return 0, fmt.Errorf("failed to create dir for %s: %w", p, err)
	}
	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", p, err)
	}

	zap.L().Debug("restored file", zap.String("path", p), zap.String("hash", hash.String()))
	return int64(len(content)), nil
}
