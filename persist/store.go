// Package persist is the durable side of the local cache: a sqlite
// database holding the submission table and the persisted subset of the
// session state.
package persist

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/cznethub/go-catalog-client/session"
	"github.com/cznethub/go-catalog-client/submissions"
)

// Store implements submissions.Repo and session.StateStore over sqlite.
type Store struct {
	db *gorm.DB
}

var (
	_ submissions.Repo   = (*Store)(nil)
	_ session.StateStore = (*Store)(nil)
)

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "[Open] creating data directory")
		}
	}
	return open(sqlite.Open(path))
}

// OpenInMemory opens a throwaway database, primarily for tests.
func OpenInMemory() (*Store, error) {
	return open(sqlite.Open("file::memory:"))
}

func open(dialector gorm.Dialector) (*Store, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "[open] gorm.Open")
	}
	if err := db.AutoMigrate(&submissionRow{}, &sessionRow{}); err != nil {
		return nil, errors.Wrap(err, "[open] migrating schema")
	}
	return &Store{db: db}, nil
}

// submissionRow is the stored form of a Submission. Seq preserves
// insertion order across restarts; an upsert of an existing ID keeps it.
type submissionRow struct {
	ID             string `gorm:"primaryKey"`
	Seq            int64  `gorm:"index"`
	Identifier     string
	RepoIdentifier string
	Title          string
	Authors        []string `gorm:"serializer:json"`
	Date           int64
	URL            string
}

func (submissionRow) TableName() string { return "submissions" }

// sessionRow is the single persisted session record.
type sessionRow struct {
	ID          uint `gorm:"primaryKey"`
	AccessToken string
}

func (sessionRow) TableName() string { return "session" }

const sessionRowID = 1

func (s *Store) Upsert(records []submissions.Submission) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, record := range records {
			var existing submissionRow
			err := tx.Where("id = ?", record.ID).First(&existing).Error

			switch {
			case err == nil:
				row := toRow(record)
				row.Seq = existing.Seq
				if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
					return errors.Wrapf(err, "[Upsert] replacing %s", record.ID)
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				var maxSeq int64
				if err := tx.Model(&submissionRow{}).
					Select("COALESCE(MAX(seq), 0)").Scan(&maxSeq).Error; err != nil {
					return errors.Wrap(err, "[Upsert] reading max seq")
				}
				row := toRow(record)
				row.Seq = maxSeq + 1
				if err := tx.Create(&row).Error; err != nil {
					return errors.Wrapf(err, "[Upsert] inserting %s", record.ID)
				}
			default:
				return errors.Wrapf(err, "[Upsert] looking up %s", record.ID)
			}
		}
		return nil
	})
}

func (s *Store) DeleteByKey(ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.db.Delete(&submissionRow{}, "id IN ?", ids).Error; err != nil {
		return errors.Wrap(err, "[DeleteByKey] deleting rows")
	}
	return nil
}

func (s *Store) ReadAll() ([]submissions.Submission, error) {
	var rows []submissionRow
	if err := s.db.Order("seq ASC").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "[ReadAll] querying rows")
	}

	out := make([]submissions.Submission, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromRow(row))
	}
	return out, nil
}

func (s *Store) SaveToken(token string) error {
	row := sessionRow{ID: sessionRowID, AccessToken: token}
	if err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
		return errors.Wrap(err, "[SaveToken] saving session row")
	}
	return nil
}

func (s *Store) LoadToken() (string, error) {
	var row sessionRow
	err := s.db.First(&row, sessionRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "[LoadToken] reading session row")
	}
	return row.AccessToken, nil
}

func toRow(record submissions.Submission) submissionRow {
	return submissionRow{
		ID:             record.ID,
		Identifier:     record.Identifier,
		RepoIdentifier: record.RepoIdentifier,
		Title:          record.Title,
		Authors:        record.Authors,
		Date:           record.Date,
		URL:            record.URL,
	}
}

func fromRow(row submissionRow) submissions.Submission {
	return submissions.Submission{
		ID:             row.ID,
		Identifier:     row.Identifier,
		RepoIdentifier: row.RepoIdentifier,
		Title:          row.Title,
		Authors:        row.Authors,
		Date:           row.Date,
		URL:            row.URL,
	}
}
