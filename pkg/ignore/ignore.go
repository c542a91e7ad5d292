package ignore

import (
	"os"
	"path/filepath"

	gitignore "github.com/sabhiram/go-gitignore"
)

// FileName is the per-repository ignore file, in .gitignore syntax.
const FileName = ".vcsignore"

// defaultRules always apply, whatever the ignore file says.
var defaultRules = []string{
	// Never walk into repository metadata.
	".vcs",
	".git",

	// OS droppings
	".DS_Store",
	"Thumbs.db",
}

// Matcher decides which paths a directory walk skips.
type Matcher struct {
	ignorer *gitignore.GitIgnore
}

// NewMatcher compiles the default rules, any extra rules (e.g. a custom
// repository directory name) and rootPath/.vcsignore when present.
func NewMatcher(rootPath string, extra ...string) (*Matcher, error) {
	rules := append(append([]string{}, defaultRules...), extra...)

	ignoreFilePath := filepath.Join(rootPath, FileName)
	if _, errStat := os.Stat(ignoreFilePath); errStat != nil {
		return &Matcher{ignorer: gitignore.CompileIgnoreLines(rules...)}, nil
	}

	ignorer, err := gitignore.CompileIgnoreFileAndLines(ignoreFilePath, rules...)
	if err != nil {
		return nil, err
	}
	return &Matcher{ignorer: ignorer}, nil
}

// Matches reports whether path (slash separated, relative to the working
// tree root) should be skipped.
func (m *Matcher) Matches(path string) bool {
	if m == nil || m.ignorer == nil {
		return false
	}
	return m.ignorer.MatchesPath(path)
}
