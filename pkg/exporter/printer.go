package exporter

import (
	"fmt"
	"io"
	"path"
	"strings"

	"snapvault/pkg/core"

	"github.com/disiqueira/gotree/v3"
	"github.com/fatih/color"
)

// LogSeparator closes every entry printed by PrintLogEntry.
var LogSeparator = strings.Repeat("-", 30)

// LogEntry is one commit as shown by `vcs log`.
type LogEntry struct {
	Seq    int
	Record core.CommitRecord
	IsHead bool
}

// PrintLogEntry writes a log block:
//
//	Commit #n
//	Date: <timestamp>
//	Message: <message>
//	------------------------------
func PrintLogEntry(w io.Writer, e LogEntry) {
	header := color.New(color.FgYellow).SprintFunc()
	head := color.New(color.FgCyan, color.Bold).SprintFunc()

	title := header(fmt.Sprintf("Commit #%d", e.Seq))
	if e.IsHead {
		title += " " + head("(HEAD)")
	}
	fmt.Fprintln(w, title)
	fmt.Fprintf(w, "Date: %s\n", e.Record.Timestamp)
	fmt.Fprintf(w, "Message: %s\n", e.Record.Message)
	fmt.Fprintln(w, LogSeparator)
}

// snapshotTree renders slash-separated paths as a directory tree.
type snapshotTree struct {
	tree gotree.Tree
	dirs map[string]gotree.Tree
}

func newSnapshotTree(label string) snapshotTree {
	return snapshotTree{tree: gotree.New(label), dirs: make(map[string]gotree.Tree)}
}

func (t snapshotTree) dir(dirPath string) gotree.Tree {
	if dirPath == "." {
		return t.tree
	}
	d := t.dirs[dirPath]
	if d == nil {
		d = t.dir(path.Dir(dirPath)).Add(path.Base(dirPath) + "/")
		t.dirs[dirPath] = d
	}
	return d
}

func (t snapshotTree) insert(filePath, suffix string) {
	t.dir(path.Dir(filePath)).Add(path.Base(filePath) + suffix)
}

// PrintSnapshot writes the files of a commit as a tree, each leaf followed by
// its short digest.
func PrintSnapshot(w io.Writer, e LogEntry) error {
	fp, err := e.Record.Fingerprint()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Commit:  #%d (%s)\n", e.Seq, fp.Short())
	fmt.Fprintf(w, "Date:    %s\n", e.Record.Timestamp)
	fmt.Fprintf(w, "Message: %s\n", e.Record.Message)
	fmt.Fprintf(w, "Files:   %d\n\n", len(e.Record.Snapshot))

	t := newSnapshotTree(".")
	for _, p := range e.Record.Snapshot.Paths() {
		t.insert(p, "  "+e.Record.Snapshot[p].Short())
	}
	_, err = io.WriteString(w, t.tree.Print())
	return err
}
