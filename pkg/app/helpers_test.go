package app

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"snapvault/pkg/commitlog"
	"snapvault/pkg/config"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

// resetConfig gives each test the default configuration.
func resetConfig(t *testing.T) {
	t.Helper()
	viper.Reset()
	config.SetDefaults()
	t.Cleanup(viper.Reset)
}

// newRepo initialises a repository in a fresh work tree.
func newRepo(t *testing.T) string {
	t.Helper()
	resetConfig(t)
	workTree := t.TempDir()
	_, err := Init(workTree)
	require.NoError(t, err)
	return workTree
}

// mustOpen opens workTree and closes the handle when the test ends.
func mustOpen(t *testing.T, workTree string) *App {
	t.Helper()
	a, err := Open(context.Background(), workTree)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

// reopen closes a (saving its state) and loads the repository again.
func reopen(t *testing.T, a *App) *App {
	t.Helper()
	require.NoError(t, a.Close())
	return mustOpen(t, a.WorkTree)
}

func writeFile(t *testing.T, workTree, rel, content string) {
	t.Helper()
	full := filepath.Join(workTree, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0644))
}

func readFile(t *testing.T, workTree, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(workTree, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func mustAdd(t *testing.T, a *App, paths ...string) {
	t.Helper()
	_, err := a.Add(context.Background(), paths...)
	require.NoError(t, err)
}

func mustCommit(t *testing.T, a *App, msg string) int {
	t.Helper()
	seq, err := a.Commit(context.Background(), msg)
	require.NoError(t, err)
	return seq
}

// commitFile writes a unique content to rel, stages it and commits.
func commitFile(t *testing.T, a *App, rel, msg string) int {
	t.Helper()
	writeFile(t, a.WorkTree, rel, msg+"\n"+rel)
	mustAdd(t, a, rel)
	return mustCommit(t, a, msg)
}

func seqs(entries []commitlog.Entry) []int {
	out := make([]int, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Seq)
	}
	return out
}

// snapshotDir reads every regular file under dir, keyed by relative path.
func snapshotDir(t *testing.T, dir string) map[string]string {
	t.Helper()
	out := make(map[string]string)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(dir, path)
		out[rel] = string(data)
		return nil
	})
	require.NoError(t, err)
	return out
}
