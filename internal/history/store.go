// Package history records completed and aborted upgrade runs.
//
// It uses SQLite so the record survives arbitrary process lifetimes and
// stays queryable after the staging sessions themselves are gone
// (commit and rollback both destroy the session directory; this is the
// durable trail of what happened).
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// Outcome is the terminal result of an upgrade run.
type Outcome string

const (
	OutcomeCommitted  Outcome = "committed"
	OutcomeRolledBack Outcome = "rolled-back"
	OutcomeFailed     Outcome = "failed"
)

// Run is one recorded upgrade attempt.
type Run struct {
	ID              string  `json:"id"`
	TargetVersion   string  `json:"target_version"`
	PreviousVersion *string `json:"previous_version,omitempty"`
	Outcome         Outcome `json:"outcome"`
	FilesApplied    int     `json:"files_applied"`
	ConflictsSeen   int     `json:"conflicts_seen"`
	StartedAt       string  `json:"started_at"`
	FinishedAt      string  `json:"finished_at"`
}

// Store persists upgrade runs in a SQLite database under .speck/.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the history database location for a project.
func DefaultPath(projectRoot string) string {
	return filepath.Join(projectRoot, ".speck", "history.db")
}

const schema = `
CREATE TABLE IF NOT EXISTS upgrade_runs (
	id               TEXT PRIMARY KEY,
	target_version   TEXT NOT NULL,
	previous_version TEXT,
	outcome          TEXT NOT NULL,
	files_applied    INTEGER NOT NULL DEFAULT 0,
	conflicts_seen   INTEGER NOT NULL DEFAULT 0,
	started_at       TEXT NOT NULL,
	finished_at      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_target ON upgrade_runs(target_version);
`

// Open opens (and if needed bootstraps) the history database.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts a finished run. StartedAt may be set by the caller
// (from the session's metadata); FinishedAt and ID are filled here if
// empty.
func (s *Store) Record(run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.FinishedAt == "" {
		run.FinishedAt = time.Now().UTC().Format(time.RFC3339)
	}

	_, err := s.db.Exec(
		`INSERT INTO upgrade_runs
		 (id, target_version, previous_version, outcome, files_applied, conflicts_seen, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.TargetVersion, run.PreviousVersion, string(run.Outcome),
		run.FilesApplied, run.ConflictsSeen, run.StartedAt, run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("recording upgrade run: %w", err)
	}
	return nil
}

// List returns runs newest-first, up to limit (0 means all).
func (s *Store) List(limit int) ([]Run, error) {
	query := `SELECT id, target_version, previous_version, outcome, files_applied, conflicts_seen, started_at, finished_at
	          FROM upgrade_runs ORDER BY finished_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing upgrade runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var r Run
		var outcome string
		if err := rows.Scan(&r.ID, &r.TargetVersion, &r.PreviousVersion, &outcome,
			&r.FilesApplied, &r.ConflictsSeen, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("scanning upgrade run: %w", err)
		}
		r.Outcome = Outcome(outcome)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// LastCommitted returns the most recent committed run, or nil if no
// upgrade has ever been committed.
func (s *Store) LastCommitted() (*Run, error) {
	runs, err := s.List(0)
	if err != nil {
		return nil, err
	}
	for i := range runs {
		if runs[i].Outcome == OutcomeCommitted {
			return &runs[i], nil
		}
	}
	return nil, nil
}
