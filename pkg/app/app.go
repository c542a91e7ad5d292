// pkg/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"snapvault/pkg/commitlog"
	"snapvault/pkg/index"
	"snapvault/pkg/meta"
	"snapvault/pkg/refs"
	"snapvault/pkg/storage"
	"snapvault/pkg/storage/cache"
	"snapvault/pkg/storage/compress"
	"snapvault/pkg/storage/disk"
	"snapvault/pkg/storage/kv"
	"snapvault/pkg/storage/s3"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	ErrNotRepository      = errors.New("not a vcs repository (run 'vcs init')")
	ErrAlreadyInitialized = errors.New("repository already initialized")
)

const (
	objectsDir  = "objects"
	indexFile   = "index.json"
	commitsFile = "commits.json"
	metaFile    = "meta.db"
)

// App is the repository handle. It owns every loaded piece of state and
// writes back whatever changed when closed.
type App struct {
	Store storage.Store
	Index *index.Index
	Log   *commitlog.Log
	Refs  *refs.Manager
	Meta  *meta.Repository // nil unless database.driver is set

	WorkTree string // absolute
	RepoPath string // WorkTree/.vcs

	head      int // -1 until the first commit or checkout
	headDirty bool

	closers []io.Closer
	closed  bool
}

// RepoDir is the name of the metadata directory inside the work tree.
func RepoDir() string {
	if dir := viper.GetString("repo.dir"); dir != "" {
		return dir
	}
	return ".vcs"
}

// Init creates an empty repository in workTree.
func Init(workTree string) (string, error) {
	repoPath := filepath.Join(workTree, RepoDir())
	if _, err := os.Stat(repoPath); err == nil {
		return repoPath, ErrAlreadyInitialized
	}

	// 1. .vcs/objects
	if err := os.MkdirAll(filepath.Join(repoPath, objectsDir), 0755); err != nil {
		return "", fmt.Errorf("failed to create repo directory: %w", err)
	}

	// 2. empty index and log, written by their own savers so the format
	// matches what later commands produce
	idx, err := index.NewIndex(filepath.Join(repoPath, indexFile))
	if err != nil {
		return "", err
	}
	if err := idx.Save(); err != nil {
		return "", err
	}
	log, err := commitlog.Load(filepath.Join(repoPath, commitsFile))
	if err != nil {
		return "", err
	}
	if err := log.Save(); err != nil {
		return "", err
	}

	zap.L().Info("initialized repository", zap.String("path", repoPath))
	return repoPath, nil
}

// Open loads the repository rooted at workTree, wiring the store selected by
// configuration.
func Open(ctx context.Context, workTree string) (_ *App, err error) {
	workTree, err = filepath.Abs(workTree)
	if err != nil {
		return nil, err
	}

	// 1. Root marker is the only precondition
	repoPath := filepath.Join(workTree, RepoDir())
	if info, statErr := os.Stat(repoPath); statErr != nil || !info.IsDir() {
		return nil, ErrNotRepository
	}

	a := &App{WorkTree: workTree, RepoPath: repoPath, head: -1}
	defer func() {
		if err != nil {
			a.closeBackends()
		}
	}()

	// 2. Storage
	a.Store, a.closers, err = initStore(ctx, repoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}

	// 3. Staging index and commit log
	if a.Index, err = index.NewIndex(filepath.Join(repoPath, indexFile)); err != nil {
		return nil, fmt.Errorf("failed to load index: %w", err)
	}
	if a.Log, err = commitlog.Load(filepath.Join(repoPath, commitsFile)); err != nil {
		return nil, fmt.Errorf("failed to load commit log: %w", err)
	}

	// 4. HEAD
	a.Refs = refs.NewManager(repoPath)
	switch head, headErr := a.Refs.GetHead(); {
	case headErr == nil:
		a.head = head
	case errors.Is(headErr, refs.ErrNoHead):
	default:
		return nil, headErr
	}

	// 5. Optional SQL mirror
	if err = a.initMeta(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// initStore assembles the object store: backend, then optional compression,
// Redis existence cache and in-process LRU, innermost first.
func initStore(ctx context.Context, repoPath string) (storage.Store, []io.Closer, error) {
	var (
		store   storage.Store
		closers []io.Closer
	)

	storageType := viper.GetString("storage.type")
	switch storageType {
	case "", "disk":
		d, err := disk.NewAdapter(filepath.Join(repoPath, objectsDir))
		if err != nil {
			return nil, nil, err
		}
		store = d

	case "badger":
		b, err := kv.NewAdapter(filepath.Join(repoPath, "badger"))
		if err != nil {
			return nil, nil, err
		}
		store = b
		closers = append(closers, b)

	case "s3":
		cfg := s3.Config{
			Endpoint:        viper.GetString("storage.s3.endpoint"),
			Region:          viper.GetString("storage.s3.region"),
			Bucket:          viper.GetString("storage.s3.bucket"),
			Prefix:          viper.GetString("storage.s3.prefix"),
			AccessKeyID:     viper.GetString("storage.s3.access_key"),
			SecretAccessKey: viper.GetString("storage.s3.secret_key"),
		}
		s, err := s3.NewAdapter(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		store = s

	default:
		return nil, nil, fmt.Errorf("unsupported storage type: %q", storageType)
	}

	switch comp := viper.GetString("storage.compression"); comp {
	case "", "none":
	case "zstd":
		c, err := compress.NewStore(store, viper.GetInt("storage.compression_level"))
		if err != nil {
			closeAll(closers)
			return nil, nil, err
		}
		store = c
		closers = append(closers, c)
	default:
		closeAll(closers)
		return nil, nil, fmt.Errorf("unsupported compression: %q", comp)
	}

	if url := viper.GetString("cache.redis_url"); url != "" {
		c, err := cache.NewCachedStore(store, cache.Config{
			RedisURL: url,
			TTL:      viper.GetDuration("cache.ttl"),
		})
		if err != nil {
			closeAll(closers)
			return nil, nil, err
		}
		store = c
		closers = append(closers, c)
	}

	if size := viper.GetInt("storage.lru_size"); size > 0 {
		l, err := cache.NewLRUStore(store, size)
		if err != nil {
			closeAll(closers)
			return nil, nil, err
		}
		store = l
	}

	zap.L().Debug("object store ready", zap.String("type", storageType))
	return store, closers, nil
}

func (a *App) initMeta(ctx context.Context) error {
	driver := viper.GetString("database.driver")
	if driver == "" {
		return nil
	}

	path := viper.GetString("database.path")
	if path == "" {
		path = filepath.Join(a.RepoPath, metaFile)
	}
	db, err := meta.NewDB(ctx, meta.Config{
		Driver:   driver,
		Path:     path,
		Host:     viper.GetString("database.host"),
		Port:     viper.GetInt("database.port"),
		User:     viper.GetString("database.user"),
		Password: viper.GetString("database.password"),
		DBName:   viper.GetString("database.name"),
		SSLMode:  viper.GetString("database.sslmode"),
	})
	if err != nil {
		return err
	}
	a.closers = append(a.closers, db)
	a.Meta = meta.NewRepository(db)

	return a.syncMeta(ctx)
}

// syncMeta backfills the mirror when it lags behind the commit log, e.g.
// after it was enabled on an existing repository.
func (a *App) syncMeta(ctx context.Context) error {
	n, err := a.Meta.CountCommits(ctx)
	if err != nil {
		return err
	}
	if int(n) == a.Log.Len() {
		return nil
	}
	for _, e := range a.Log.Entries() {
		if err := a.Meta.IndexCommit(ctx, e.Seq, e.Record); err != nil {
			return err
		}
	}
	zap.L().Info("metadata mirror backfilled", zap.Int("commits", a.Log.Len()))
	return nil
}

// Close saves whatever changed (commit log, then index, then HEAD) and
// releases the backends. If the log cannot be saved the index and HEAD are
// left as they were on disk. It is safe to call more than once.
func (a *App) Close() error {
	if a == nil || a.closed {
		return nil
	}
	a.closed = true

	var errs []error
	logSaved := true
	if a.Log.Dirty() {
		if err := a.Log.Save(); err != nil {
			errs = append(errs, err)
			logSaved = false
		}
	}
	// a commit empties the index; keep it staged on disk until the log holds
	// the commit, and never point HEAD past a log that did not make it
	if a.Index.Dirty() && logSaved {
		if err := a.Index.Save(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.headDirty && logSaved {
		if err := a.Refs.UpdateHead(a.head); err != nil {
			errs = append(errs, err)
		}
	}

	errs = append(errs, a.closeBackends())
	return errors.Join(errs...)
}

func (a *App) closeBackends() error {
	err := closeAll(a.closers)
	a.closers = nil
	return err
}

// closeAll closes in reverse order of acquisition.
func closeAll(closers []io.Closer) error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
