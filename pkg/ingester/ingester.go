package ingester

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"snapvault/pkg/ignore"
	"snapvault/pkg/index"
	"snapvault/pkg/storage"
	"snapvault/pkg/types"

	"go.uber.org/zap"
)

var (
	ErrPathNotFound    = errors.New("path does not exist")
	ErrOutsideWorkTree = errors.New("path is outside the working tree")
	ErrInRepoDir       = errors.New("path is inside the repository directory")
)

// Result describes one file that was stored and staged.
type Result struct {
	Path string // index key, slash separated and relative to the work tree
	Hash types.Hash
	Size int64
}

// Ingester stores working-tree files as blobs and stages them.
type Ingester struct {
	store   storage.Store
	index   *index.Index
	root    string
	matcher *ignore.Matcher
	repoRel string // repository directory relative to root, if inside it
}

// NewIngester binds an ingester to the work tree at root. matcher may be nil,
// in which case directory walks skip nothing.
func NewIngester(store storage.Store, idx *index.Index, root string, matcher *ignore.Matcher) *Ingester {
	return &Ingester{
		store:   store,
		index:   idx,
		root:    root,
		matcher: matcher,
	}
}

// WithRepoDir refuses every path under dir, the repository's own state.
func (ing *Ingester) WithRepoDir(dir string) *Ingester {
	if rel, err := filepath.Rel(ing.root, filepath.Clean(dir)); err == nil && filepath.IsLocal(rel) {
		ing.repoRel = rel
	}
	return ing
}

// AddPaths stores and stages every file named by paths. Directories are
// walked, skipping ignored entries; a file named explicitly is added even if
// an ignore rule matches it. Relative paths are resolved against the work
// tree root.
//
// Every path is checked before anything is written, so a missing path leaves
// both the store and the index untouched. Such failures are *fs.PathError
// wrapping ErrPathNotFound or ErrOutsideWorkTree.
func (ing *Ingester) AddPaths(ctx context.Context, paths []string) ([]Result, error) {
	type target struct {
		abs, rel string
		isDir    bool
	}

	// 1. Resolve and validate everything up front
	targets := make([]target, 0, len(paths))
	for _, p := range paths {
		abs, rel, err := ing.resolve(p)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(abs)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &fs.PathError{Op: "add", Path: p, Err: ErrPathNotFound}
		}
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}
		targets = append(targets, target{abs: abs, rel: rel, isDir: info.IsDir()})
	}

	// 2. Store and stage
	var results []Result
	for _, t := range targets {
		if !t.isDir {
			res, err := ing.addFile(ctx, t.abs, t.rel)
			if err != nil {
				return results, err
			}
			results = append(results, res)
			continue
		}

		walked, err := ing.addDir(ctx, t.abs)
		results = append(results, walked...)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

func (ing *Ingester) addDir(ctx context.Context, dir string) ([]Result, error) {
	var results []Result
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(ing.root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if rel != "." && ing.matcher.Matches(rel) {
			zap.L().Debug("skipping ignored path", zap.String("path", rel))
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		// symlinks, devices, sockets
		if !d.Type().IsRegular() {
			return nil
		}

		res, err := ing.addFile(ctx, path, rel)
		if err != nil {
			return err
		}
		results = append(results, res)
		return nil
	})
	return results, err
}

func (ing *Ingester) addFile(ctx context.Context, abs, rel string) (Result, error) {
	content, err := os.ReadFile(abs)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read %s: %w", rel, err)
	}

	hash, err := storage.PutBlob(ctx, ing.store, content)
	if err != nil {
		return Result{}, err
	}

	ing.index.Add(rel, hash)
	zap.L().Debug("staged file",
		zap.String("path", rel),
		zap.String("hash", hash.String()),
		zap.Int("size", len(content)),
	)
	return Result{Path: index.CleanPath(rel), Hash: hash, Size: int64(len(content))}, nil
}

// resolve returns the absolute path and the work-tree relative index key.
func (ing *Ingester) resolve(p string) (abs, rel string, err error) {
	abs = p
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(ing.root, p)
	}
	abs = filepath.Clean(abs)

	rel, err = filepath.Rel(ing.root, abs)
	if err != nil || !filepath.IsLocal(rel) {
		return "", "", &fs.PathError{Op: "add", Path: p, Err: ErrOutsideWorkTree}
	}
	if ing.repoRel != "" && (rel == ing.repoRel || strings.HasPrefix(rel, ing.repoRel+string(filepath.Separator))) {
		return "", "", &fs.PathError{Op: "add", Path: p, Err: ErrInRepoDir}
	}
	return abs, filepath.ToSlash(rel), nil
}
