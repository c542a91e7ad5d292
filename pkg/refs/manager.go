package refs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var ErrNoHead = errors.New("HEAD not found (no commits yet)")

// Manager tracks HEAD: the sequence number last committed or checked out.
type Manager struct {
	rootPath string
}

func NewManager(rootPath string) *Manager {
	return &Manager{rootPath: rootPath}
}

func (m *Manager) headPath() string {
	return filepath.Join(m.rootPath, "HEAD")
}

// GetHead returns the current commit number, or ErrNoHead on a fresh repo.
func (m *Manager) GetHead() (int, error) {
	data, err := os.ReadFile(m.headPath())
	if os.IsNotExist(err) {
		return 0, ErrNoHead
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read HEAD: %w", err)
	}

	// Editors like to append a newline.
	seq, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || seq < 0 {
		return 0, fmt.Errorf("malformed HEAD %q", strings.TrimSpace(string(data)))
	}
	return seq, nil
}

// UpdateHead points HEAD at seq.
func (m *Manager) UpdateHead(seq int) error {
	if seq < 0 {
		return fmt.Errorf("invalid HEAD %d", seq)
	}
	return os.WriteFile(m.headPath(), []byte(strconv.Itoa(seq)+"\n"), 0644)
}
