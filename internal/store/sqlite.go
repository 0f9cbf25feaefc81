// Package store persists the master dictionary between pipeline stages.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/acuity-research/patentlink/internal/model"
)

// DictionaryStore keeps the merged dictionary and its audit trail in
// SQLite so aggregation runs do not depend on the review workbooks
// staying around.
type DictionaryStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*DictionaryStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &DictionaryStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS mappings (
	assignee   TEXT PRIMARY KEY,
	acquiror   TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS conflicts (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	assignee          TEXT NOT NULL,
	existing_acquiror TEXT NOT NULL,
	new_acquiror      TEXT NOT NULL,
	source_file       TEXT NOT NULL,
	recorded_at       DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS source_stats (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	file         TEXT NOT NULL,
	valid_rows   INTEGER NOT NULL,
	new_mappings INTEGER NOT NULL,
	duplicates   INTEGER NOT NULL,
	conflicts    INTEGER NOT NULL,
	recorded_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_mappings_acquiror ON mappings(acquiror);
CREATE INDEX IF NOT EXISTS idx_conflicts_assignee ON conflicts(assignee);
`

func (s *DictionaryStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *DictionaryStore) Close() error {
	return s.db.Close()
}

// SaveMapping replaces the stored dictionary with the given one. The
// swap is transactional so readers never observe a partial dictionary.
func (s *DictionaryStore) SaveMapping(ctx context.Context, mapping map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM mappings`); err != nil {
		return eris.Wrap(err, "sqlite: clear mappings")
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO mappings (assignee, acquiror, created_at) VALUES (?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for assignee, acquiror := range mapping {
		if _, err := stmt.ExecContext(ctx, assignee, acquiror, now); err != nil {
			return eris.Wrapf(err, "sqlite: insert mapping %s", assignee)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit mappings")
}

// LookupAll loads the full dictionary.
func (s *DictionaryStore) LookupAll(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT assignee, acquiror FROM mappings`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: select mappings")
	}
	defer rows.Close()

	mapping := make(map[string]string)
	for rows.Next() {
		var assignee, acquiror string
		if err := rows.Scan(&assignee, &acquiror); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan mapping")
		}
		mapping[assignee] = acquiror
	}
	return mapping, eris.Wrap(rows.Err(), "sqlite: iterate mappings")
}

// SaveConflicts appends the conflict log of one build run.
func (s *DictionaryStore) SaveConflicts(ctx context.Context, conflicts []model.ConflictRecord) error {
	stmt, err := s.db.PrepareContext(ctx,
		`INSERT INTO conflicts (assignee, existing_acquiror, new_acquiror, source_file) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare conflicts")
	}
	defer stmt.Close()

	for _, c := range conflicts {
		if _, err := stmt.ExecContext(ctx, c.Assignee, c.ExistingAcquiror, c.NewAcquiror, c.SourceFile); err != nil {
			return eris.Wrapf(err, "sqlite: insert conflict %s", c.Assignee)
		}
	}
	return nil
}

// ListConflicts returns the recorded conflict log, oldest first.
func (s *DictionaryStore) ListConflicts(ctx context.Context) ([]model.ConflictRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT assignee, existing_acquiror, new_acquiror, source_file FROM conflicts ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: select conflicts")
	}
	defer rows.Close()

	var conflicts []model.ConflictRecord
	for rows.Next() {
		var c model.ConflictRecord
		if err := rows.Scan(&c.Assignee, &c.ExistingAcquiror, &c.NewAcquiror, &c.SourceFile); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan conflict")
		}
		conflicts = append(conflicts, c)
	}
	return conflicts, eris.Wrap(rows.Err(), "sqlite: iterate conflicts")
}

// SaveSourceStats appends the per-source contribution rows of one build run.
func (s *DictionaryStore) SaveSourceStats(ctx context.Context, stats []model.SourceStats) error {
	stmt, err := s.db.PrepareContext(ctx,
		`INSERT INTO source_stats (file, valid_rows, new_mappings, duplicates, conflicts) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare stats")
	}
	defer stmt.Close()

	for _, st := range stats {
		if _, err := stmt.ExecContext(ctx, st.File, st.ValidRows, st.NewMappings, st.Duplicates, st.Conflicts); err != nil {
			return eris.Wrapf(err, "sqlite: insert stats %s", st.File)
		}
	}
	return nil
}

// ListSourceStats returns the recorded contribution rows, oldest first.
func (s *DictionaryStore) ListSourceStats(ctx context.Context) ([]model.SourceStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT file, valid_rows, new_mappings, duplicates, conflicts FROM source_stats ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: select stats")
	}
	defer rows.Close()

	var stats []model.SourceStats
	for rows.Next() {
		var st model.SourceStats
		if err := rows.Scan(&st.File, &st.ValidRows, &st.NewMappings, &st.Duplicates, &st.Conflicts); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan stats")
		}
		stats = append(stats, st)
	}
	return stats, eris.Wrap(rows.Err(), "sqlite: iterate stats")
}
