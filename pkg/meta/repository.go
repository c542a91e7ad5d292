package meta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"snapvault/pkg/core"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrCommitNotFound = errors.New("commit not found in metadata")

// Repository wraps every SQL operation of the mirror.
type Repository struct {
	db *DB
}

func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// IndexCommit projects the record at seq into the commits and file_entries
// tables. Re-indexing an existing seq changes nothing.
func (r *Repository) IndexCommit(ctx context.Context, seq int, rec core.CommitRecord) error {
	fp, err := rec.Fingerprint()
	if err != nil {
		return err
	}
	snapJSON, err := json.Marshal(rec.Snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	model := CommitModel{
		Seq:         seq,
		Fingerprint: fp.String(),
		Message:     rec.Message,
		MessageFold: strings.ToLower(rec.Message),
		Timestamp:   rec.Timestamp,
		Snapshot:    datatypes.JSON(snapJSON),
	}

	entries := make([]FileEntry, 0, len(rec.Snapshot))
	for _, p := range rec.Snapshot.Paths() {
		entries = append(entries, FileEntry{Seq: seq, Path: p, Hash: rec.Snapshot[p].String()})
	}

	err = r.db.GetConn().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// first write wins
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "seq"}},
			DoNothing: true,
		}).Create(&model)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 || len(entries) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "seq"}, {Name: "path"}},
			DoNothing: true,
		}).CreateInBatches(entries, 200).Error
	})
	if err != nil {
		return fmt.Errorf("failed to index commit #%d: %w", seq, err)
	}
	return nil
}

func (r *Repository) GetCommit(ctx context.Context, seq int) (*CommitModel, error) {
	var commit CommitModel
	err := r.db.GetConn().WithContext(ctx).
		Where("seq = ?", seq).
		First(&commit).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCommitNotFound
	}
	if err != nil {
		return nil, err
	}
	return &commit, nil
}

// CountCommits returns how many records the mirror holds.
func (r *Repository) CountCommits(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.GetConn().WithContext(ctx).Model(&CommitModel{}).Count(&n).Error
	return n, err
}

// likeEscaper makes LIKE wildcards in user text match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// FindCommitsByMessage returns commits whose message contains text, ignoring
// case, newest first. limit <= 0 means no limit.
func (r *Repository) FindCommitsByMessage(ctx context.Context, text string, limit int) ([]CommitModel, error) {
	var commits []CommitModel
	q := r.db.GetConn().WithContext(ctx).
		Where(`message_fold LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(strings.ToLower(text))+"%").
		Order("seq DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&commits).Error
	return commits, err
}

// FindCommitsByPath returns commits whose snapshot contains path, newest
// first.
func (r *Repository) FindCommitsByPath(ctx context.Context, path string, limit int) ([]CommitModel, error) {
	var commits []CommitModel
	q := r.db.GetConn().WithContext(ctx).
		Joins("JOIN file_entries ON file_entries.seq = commits.seq").
		Where("file_entries.path = ?", path).
		Order("commits.seq DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&commits).Error
	return commits, err
}
