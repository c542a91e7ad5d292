package meta

import (
	"time"

	"gorm.io/datatypes"
)

// CommitModel is the SQL projection of one commit-log record. The file log
// stays authoritative; this table only serves queries.
type CommitModel struct {
	// Seq is the record's position in the commit log.
	Seq int `gorm:"primaryKey;autoIncrement:false"`

	Fingerprint string `gorm:"index;type:char(40);not null"`
	Message     string `gorm:"type:text"`
	// MessageFold is Message case-folded in Go, so matching does not depend
	// on the database's LOWER.
	MessageFold string `gorm:"type:text"`
	Timestamp   string `gorm:"index;type:varchar(64)"`

	// Snapshot holds the full path -> digest mapping as JSON.
	Snapshot datatypes.JSON

	CreatedAt time.Time
}

func (CommitModel) TableName() string {
	return "commits"
}

// FileEntry is one (commit, path) pair, so history can be searched by path.
type FileEntry struct {
	Seq  int    `gorm:"primaryKey;autoIncrement:false"`
	Path string `gorm:"primaryKey;type:varchar(1024)"`
	Hash string `gorm:"index;type:char(40);not null"`
}

func (FileEntry) TableName() string {
	return "file_entries"
}

// Models lists every table NewDB migrates.
func Models() []any {
	return []any{&CommitModel{}, &FileEntry{}}
}
