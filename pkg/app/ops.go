package app

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"snapvault/pkg/commitlog"
	"snapvault/pkg/core"
	"snapvault/pkg/exporter"
	"snapvault/pkg/ignore"
	"snapvault/pkg/index"
	"snapvault/pkg/ingester"
	"snapvault/pkg/types"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Add stores the named files (directories are walked) and stages them.
// Nothing is stored or staged if any path is missing.
func (a *App) Add(ctx context.Context, paths ...string) ([]ingester.Result, error) {
	matcher, err := ignore.NewMatcher(a.WorkTree, filepath.Base(a.RepoPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load ignore rules: %w", err)
	}
	ing := ingester.NewIngester(a.Store, a.Index, a.WorkTree, matcher).WithRepoDir(a.RepoPath)
	return ing.AddPaths(ctx, paths)
}

// Commit freezes the staging index into a new commit and clears it. It
// returns commitlog.ErrNoChanges, leaving everything as is, when nothing is
// staged.
func (a *App) Commit(ctx context.Context, message string) (int, error) {
	if a.Index.IsEmpty() {
		return 0, commitlog.ErrNoChanges
	}

	snap := a.Index.SnapshotAndClear()
	seq, err := a.Log.Append(snap, message)
	if err != nil {
		return 0, err
	}
	a.setHead(seq)

	if a.Meta != nil {
		rec, _ := a.Log.Get(seq)
		// the next Open backfills whatever is missing
		if err := a.Meta.IndexCommit(ctx, seq, rec); err != nil {
			zap.L().Warn("failed to mirror commit", zap.Int("seq", seq), zap.Error(err))
		}
	}
	return seq, nil
}

// History returns every commit, oldest first.
func (a *App) History() []commitlog.Entry {
	return a.Log.Entries()
}

// Search returns commits, oldest first, whose message contains grep
// (case-insensitive) and whose snapshot contains path. Empty filters match
// everything. The SQL mirror answers when enabled.
func (a *App) Search(ctx context.Context, grep, path string) ([]commitlog.Entry, error) {
	if path != "" {
		path = a.indexKey(path)
	}
	if grep == "" && path == "" {
		return a.Log.Entries(), nil
	}
	if a.Meta != nil {
		return a.searchMeta(ctx, grep, path)
	}

	var out []commitlog.Entry
	needle := strings.ToLower(grep)
	for _, e := range a.Log.Entries() {
		if grep != "" && !strings.Contains(strings.ToLower(e.Record.Message), needle) {
			continue
		}
		if path != "" {
			if _, ok := e.Record.Snapshot[path]; !ok {
				continue
			}
		}
		out = append(out, e)
	}
	return out, nil
}

func (a *App) searchMeta(ctx context.Context, grep, path string) ([]commitlog.Entry, error) {
	var seqs []int
	if grep != "" {
		found, err := a.Meta.FindCommitsByMessage(ctx, grep, 0)
		if err != nil {
			return nil, err
		}
		for _, c := range found {
			seqs = append(seqs, c.Seq)
		}
	}
	if path != "" {
		found, err := a.Meta.FindCommitsByPath(ctx, path, 0)
		if err != nil {
			return nil, err
		}
		byPath := make([]int, 0, len(found))
		for _, c := range found {
			byPath = append(byPath, c.Seq)
		}
		if grep == "" {
			seqs = byPath
		} else {
			seqs = slices.DeleteFunc(seqs, func(s int) bool { return !slices.Contains(byPath, s) })
		}
	}

	// the file log stays authoritative for record contents
	slices.Sort(seqs)
	out := make([]commitlog.Entry, 0, len(seqs))
	for _, s := range seqs {
		rec, err := a.Log.Get(s)
		if err != nil {
			continue
		}
		out = append(out, commitlog.Entry{Seq: s, Record: rec})
	}
	return out, nil
}

// Checkout writes every file of commit seq into the work tree. The staging
// index is not touched and files outside the snapshot are left alone. An
// out-of-range seq returns commitlog.ErrInvalidCommit before anything is
// written.
func (a *App) Checkout(ctx context.Context, seq int) (core.CommitRecord, error) {
	rec, err := a.Log.Get(seq)
	if err != nil {
		return core.CommitRecord{}, err
	}

	exp := exporter.NewExporter(a.Store, a.WorkTree, viper.GetInt("checkout.parallelism"))
	err = exp.RestoreSnapshot(ctx, rec.Snapshot, func(path string, hash types.Hash, size int64) {
		zap.L().Info("checked out file", zap.String("path", path), zap.Int64("size", size))
	})
	if err != nil {
		return core.CommitRecord{}, err
	}

	a.setHead(seq)
	return rec, nil
}

// Status returns the staged paths in lexical order.
func (a *App) Status() []string {
	return a.Index.Paths()
}

// Unstage drops path from the staging index and reports whether it was
// staged. Stored blobs are kept.
func (a *App) Unstage(path string) bool {
	return a.Index.Remove(a.indexKey(path))
}

// Show returns commit seq.
func (a *App) Show(seq int) (commitlog.Entry, error) {
	rec, err := a.Log.Get(seq)
	if err != nil {
		return commitlog.Entry{}, err
	}
	return commitlog.Entry{Seq: seq, Record: rec}, nil
}

// Cat writes the blob whose digest starts with prefix to w.
func (a *App) Cat(ctx context.Context, prefix string, w io.Writer) (types.Hash, error) {
	hash, err := a.Store.ExpandHash(ctx, types.HashPrefix(strings.ToLower(prefix)))
	if err != nil {
		return "", err
	}
	exp := exporter.NewExporter(a.Store, a.WorkTree, 1)
	if err := exp.ExportBlob(ctx, hash, w); err != nil {
		return "", err
	}
	return hash, nil
}

// Head returns the commit last created or checked out.
func (a *App) Head() (int, bool) {
	return a.head, a.head >= 0
}

func (a *App) setHead(seq int) {
	a.head = seq
	a.headDirty = true
}

// indexKey maps a user supplied path (absolute, or relative to the work
// tree) onto its index key.
func (a *App) indexKey(p string) string {
	if filepath.IsAbs(p) {
		if rel, err := filepath.Rel(a.WorkTree, p); err == nil {
			p = rel
		}
	}
	return index.CleanPath(p)
}
