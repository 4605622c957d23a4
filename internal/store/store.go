// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists ingested study snapshots and small key-value
// documents (dashboard layouts) in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rotisserie/eris"

	"github.com/pdiddy/trial-engine/pkg/types"
)

const (
	dbFile          = "trials.db"
	defaultDir      = "data"
	defaultMaxLimit = 50
)

// ErrNoSnapshot is returned by Load when nothing has been saved yet.
var ErrNoSnapshot = eris.New("store: no snapshot saved; run trial-engine ingest")

// Store manages the trial-engine SQLite database.
type Store struct {
	db  *sql.DB
	dir string
}

// SnapshotInfo describes the saved snapshot.
type SnapshotInfo struct {
	TakenAt        time.Time `json:"takenAt" yaml:"takenAt"`
	Total          int       `json:"total" yaml:"total"`
	ClinicalTrials int       `json:"clinicalTrials" yaml:"clinicalTrials"`
	EudraCT        int       `json:"eudract" yaml:"eudract"`
}

// Open opens or creates the database at cfg.Dir/trials.db and creates the
// schema if it does not exist.
func Open(cfg types.StoreConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = defaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "store: create directory %s", dir)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, eris.Wrap(err, "store: open database")
	}

	s := &Store{db: db, dir: dir}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dir returns the directory holding the database and exports.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS studies (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL,
			source TEXT NOT NULL,
			title TEXT,
			url TEXT,
			summary TEXT,
			sponsor TEXT,
			status TEXT,
			collaborators TEXT,
			conditions TEXT,
			start_iso TEXT,
			enrollment INTEGER,
			search_text TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_studies_source ON studies(source)`,
		`CREATE TABLE IF NOT EXISTS snapshot (
			singleton INTEGER PRIMARY KEY CHECK (singleton = 1),
			taken_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS kv (
			bucket TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (bucket, key)
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return eris.Wrap(err, "store: create schema")
		}
	}
	return s.migrateSearchText()
}

// migrateSearchText adds the search_text column to databases created
// before it existed. Rows saved earlier stay unsearchable until the next
// snapshot.
func (s *Store) migrateSearchText() error {
	rows, err := s.db.Query(`PRAGMA table_info(studies)`)
	if err != nil {
		return eris.Wrap(err, "store: read studies columns")
	}
	found := false
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, typ        string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			rows.Close()
			return eris.Wrap(err, "store: scan studies column")
		}
		if name == "search_text" {
			found = true
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return eris.Wrap(err, "store: read studies columns")
	}
	if found {
		return nil
	}
	if _, err := s.db.Exec(`ALTER TABLE studies ADD COLUMN search_text TEXT NOT NULL DEFAULT ''`); err != nil {
		return eris.Wrap(err, "store: add search_text column")
	}
	return nil
}

// SaveSnapshot replaces the stored snapshot with records, preserving order.
func (s *Store) SaveSnapshot(ctx context.Context, records []types.StudyRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "store: begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM studies`); err != nil {
		return eris.Wrap(err, "store: clear studies")
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO studies (id, source, title, url, summary, sponsor, status,
			collaborators, conditions, start_iso, enrollment, search_text)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "store: prepare insert")
	}
	defer stmt.Close()

	for _, r := range records {
		collabJSON, _ := json.Marshal(nonNil(r.Collaborators))
		condJSON, _ := json.Marshal(nonNil(r.Conditions))
		_, err := stmt.ExecContext(ctx,
			r.ID, string(r.Source), r.Title, r.URL, r.Summary, r.Sponsor, string(r.Status),
			string(collabJSON), string(condJSON), r.StartISO, r.Enrollment, searchText(r),
		)
		if err != nil {
			return eris.Wrapf(err, "store: insert study %s", r.ID)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO snapshot (singleton, taken_at) VALUES (1, ?)
		 ON CONFLICT(singleton) DO UPDATE SET taken_at=excluded.taken_at`,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return eris.Wrap(err, "store: record snapshot time")
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "store: commit snapshot")
	}
	return nil
}

// Load returns the saved snapshot in ingestion order. It returns
// ErrNoSnapshot when nothing has been saved.
func (s *Store) Load(ctx context.Context) ([]types.StudyRecord, error) {
	if _, err := s.takenAt(ctx); err != nil {
		return nil, err
	}
	return s.query(ctx, `SELECT id, source, title, url, summary, sponsor, status,
			collaborators, conditions, start_iso, enrollment
		FROM studies ORDER BY rowid`)
}

// Search returns snapshot records whose title or any condition contains
// text, case-insensitively, up to limit rows. A limit <= 0 uses 50.
func (s *Store) Search(ctx context.Context, text string, limit int) ([]types.StudyRecord, error) {
	if limit <= 0 {
		limit = defaultMaxLimit
	}
	pattern := "%" + escapeLike(strings.ToLower(text)) + "%"
	return s.query(ctx, `SELECT id, source, title, url, summary, sponsor, status,
			collaborators, conditions, start_iso, enrollment
		FROM studies
		WHERE search_text LIKE ? ESCAPE '\'
		ORDER BY rowid
		LIMIT ?`, pattern, limit)
}

// Info describes the saved snapshot. It returns ErrNoSnapshot when nothing
// has been saved.
func (s *Store) Info(ctx context.Context) (SnapshotInfo, error) {
	taken, err := s.takenAt(ctx)
	if err != nil {
		return SnapshotInfo{}, err
	}
	info := SnapshotInfo{TakenAt: taken}

	rows, err := s.db.QueryContext(ctx, `SELECT source, count(*) FROM studies GROUP BY source`)
	if err != nil {
		return info, eris.Wrap(err, "store: count studies")
	}
	defer rows.Close()
	for rows.Next() {
		var (
			source string
			n      int
		)
		if err := rows.Scan(&source, &n); err != nil {
			return info, eris.Wrap(err, "store: scan count")
		}
		switch types.StudySource(source) {
		case types.SourceClinicalTrials:
			info.ClinicalTrials = n
		case types.SourceEudraCT:
			info.EudraCT = n
		}
		info.Total += n
	}
	return info, eris.Wrap(rows.Err(), "store: count studies")
}

func (s *Store) takenAt(ctx context.Context) (time.Time, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT taken_at FROM snapshot WHERE singleton = 1`).Scan(&raw)
	if err == sql.ErrNoRows {
		return time.Time{}, ErrNoSnapshot
	}
	if err != nil {
		return time.Time{}, eris.Wrap(err, "store: read snapshot time")
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, eris.Wrap(err, "store: parse snapshot time")
	}
	return t, nil
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]types.StudyRecord, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, eris.Wrap(err, "store: query studies")
	}
	defer rows.Close()

	out := []types.StudyRecord{}
	for rows.Next() {
		var (
			r                     types.StudyRecord
			source, status        string
			collabJSON, condsJSON string
		)
		if err := rows.Scan(&r.ID, &source, &r.Title, &r.URL, &r.Summary, &r.Sponsor, &status,
			&collabJSON, &condsJSON, &r.StartISO, &r.Enrollment); err != nil {
			return nil, eris.Wrap(err, "store: scan study")
		}
		r.Source = types.StudySource(source)
		r.Status = types.StudyStatus(status)
		r.Collaborators = decodeList(collabJSON)
		r.Conditions = decodeList(condsJSON)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "store: iterate studies")
	}
	return out, nil
}

func decodeList(s string) []string {
	out := []string{}
	if s == "" {
		return out
	}
	_ = json.Unmarshal([]byte(s), &out)
	if out == nil {
		out = []string{}
	}
	return out
}

// searchText is the lowercased title and conditions, one per line. Case is
// folded here because SQLite lower() and LIKE only fold ASCII.
func searchText(r types.StudyRecord) string {
	parts := append([]string{r.Title}, r.Conditions...)
	return strings.ToLower(strings.Join(parts, "\n"))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
