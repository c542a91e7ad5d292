package meta

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"

	"snapvault/pkg/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestRepo builds an isolated in-memory database per test.
func setupTestRepo(t *testing.T) *Repository {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	metaDB := NewWithConn(db)
	require.NoError(t, metaDB.AutoMigrate(Models()...))
	t.Cleanup(func() { _ = metaDB.Close() })

	return NewRepository(metaDB)
}

func TestRepository_CommitLifecycle(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	rec := newRecord(0, "Init", "a.txt", "src/b.go")
	mustIndexCommit(t, repo, 0, rec, "First index should succeed")

	stored, err := repo.GetCommit(ctx, 0)
	require.NoError(t, err)

	fp, err := rec.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Seq)
	assert.Equal(t, fp.String(), stored.Fingerprint)
	assert.Equal(t, "Init", stored.Message)
	assert.Equal(t, rec.Timestamp, stored.Timestamp)

	var snap core.Snapshot
	require.NoError(t, json.Unmarshal(stored.Snapshot, &snap))
	assert.Equal(t, rec.Snapshot, snap)
}

func TestRepository_GetCommit_NotFound(t *testing.T) {
	repo := setupTestRepo(t)
	_, err := repo.GetCommit(context.Background(), 7)
	assert.ErrorIs(t, err, ErrCommitNotFound)
}

func TestRepository_IndexCommit_Idempotency(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	rec := newRecord(0, "Update", "a.txt")
	mustIndexCommit(t, repo, 0, rec, "1st write failed")
	mustIndexCommit(t, repo, 0, rec, "2nd write (idempotency check) failed")

	// a different record under the same seq does not overwrite the first
	mustIndexCommit(t, repo, 0, newRecord(1, "Other", "z.txt"))

	n, err := repo.CountCommits(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "Should have exactly 1 record after duplicate inserts")

	stored, err := repo.GetCommit(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "Update", stored.Message)

	byPath, err := repo.FindCommitsByPath(ctx, "z.txt", 0)
	require.NoError(t, err)
	assert.Empty(t, byPath, "rejected record must not leak file entries")
}

func TestRepository_FindCommitsByMessage(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	mustIndexCommit(t, repo, 0, newRecord(0, "Fix parser", "a"))
	mustIndexCommit(t, repo, 1, newRecord(1, "add docs", "b"))
	mustIndexCommit(t, repo, 2, newRecord(2, "fix tests", "c"))

	results, err := repo.FindCommitsByMessage(ctx, "FIX", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	// newest first
	assert.Equal(t, 2, results[0].Seq)
	assert.Equal(t, 0, results[1].Seq)

	limited, err := repo.FindCommitsByMessage(ctx, "fix", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, 2, limited[0].Seq)

	none, err := repo.FindCommitsByMessage(ctx, "release", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRepository_FindCommitsByMessage_Literal(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	mustIndexCommit(t, repo, 0, newRecord(0, "plain message", "a"))
	mustIndexCommit(t, repo, 1, newRecord(1, "snake_case 100%", "b"))
	mustIndexCommit(t, repo, 2, newRecord(2, `C:\path`, "c"))
	mustIndexCommit(t, repo, 3, newRecord(3, "ÉTÉ release", "d"))

	tests := []struct {
		text string
		want []int
	}{
		{"_", []int{1}},
		{"%", []int{1}},
		{`\`, []int{2}},
		{"été", []int{3}},
		{"", []int{3, 2, 1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			results, err := repo.FindCommitsByMessage(ctx, tt.text, 0)
			require.NoError(t, err)
			got := make([]int, 0, len(results))
			for _, c := range results {
				got = append(got, c.Seq)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRepository_FindCommitsByPath(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	mustIndexCommit(t, repo, 0, newRecord(0, "one", "a.txt"))
	mustIndexCommit(t, repo, 1, newRecord(1, "two", "b.txt"))
	mustIndexCommit(t, repo, 2, newRecord(2, "three", "a.txt", "b.txt"))

	results, err := repo.FindCommitsByPath(ctx, "a.txt", 0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 2, results[0].Seq)
	assert.Equal(t, "three", results[0].Message)
	assert.Equal(t, 0, results[1].Seq)
}

func TestNewDB_SQLiteFile(t *testing.T) {
	ctx := context.Background()
	db, err := NewDB(ctx, Config{Driver: DriverSQLite, Path: filepath.Join(t.TempDir(), "meta.db")})
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	mustIndexCommit(t, repo, 0, newRecord(0, "persisted", "a"))

	n, err := repo.CountCommits(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestNewDB_BadConfig(t *testing.T) {
	_, err := NewDB(context.Background(), Config{Driver: "mysql"})
	assert.Error(t, err)

	_, err = NewDB(context.Background(), Config{Driver: DriverSQLite})
	assert.Error(t, err)
}
