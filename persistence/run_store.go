// Package persistence stores finished runs so operators can inspect what a
// strategy did after the fact.
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lexcodex/agentloop/framework"
)

// RunRecord is the stored summary of one run.
type RunRecord struct {
	ID        string
	Goal      string
	Strategy  string
	Answer    string
	Steps     int
	Error     string
	CreatedAt time.Time
}

// RunStore persists run outcomes and their step traces in SQLite.
type RunStore struct {
	db *sql.DB
}

// NewRunStore opens/creates the database at dbPath.
func NewRunStore(dbPath string) (*RunStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, err
	}
	store := &RunStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *RunStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		goal TEXT NOT NULL,
		strategy TEXT,
		answer TEXT,
		steps INTEGER,
		error TEXT,
		created_at TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS steps (
		run_id TEXT NOT NULL,
		idx INTEGER NOT NULL,
		thought TEXT,
		action TEXT,
		observation TEXT,
		PRIMARY KEY (run_id, idx),
		FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close releases the underlying database handle.
func (s *RunStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveRun upserts one finished run and its step trace.
func (s *RunStore) SaveRun(ctx context.Context, id string, goal string, outcome *framework.Outcome, runErr error) error {
	if id == "" {
		return errors.New("run id required")
	}
	strategy, answer, steps := "", "", 0
	var history []framework.Step
	if outcome != nil {
		strategy = outcome.Strategy
		answer = outcome.Answer
		steps = outcome.Steps
		history = outcome.History
	}
	errText := ""
	if runErr != nil {
		errText = runErr.Error()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	_, err = tx.ExecContext(ctx, `INSERT OR REPLACE INTO runs (id, goal, strategy, answer, steps, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, goal, strategy, answer, steps, errText, time.Now().UTC())
	if err != nil {
		return err
	}
	for _, step := range history {
		_, err = tx.ExecContext(ctx, `INSERT OR REPLACE INTO steps (run_id, idx, thought, action, observation)
			VALUES (?, ?, ?, ?, ?)`,
			id, step.Index, step.Thought, step.Action, step.Observation)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListRuns returns the most recent runs, newest first.
func (s *RunStore) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, goal, strategy, answer, steps, error, created_at
		FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		if err := rows.Scan(&rec.ID, &rec.Goal, &rec.Strategy, &rec.Answer, &rec.Steps, &rec.Error, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetRun returns one run and its recorded steps.
func (s *RunStore) GetRun(ctx context.Context, id string) (*RunRecord, []framework.Step, error) {
	var rec RunRecord
	err := s.db.QueryRowContext(ctx, `SELECT id, goal, strategy, answer, steps, error, created_at
		FROM runs WHERE id = ?`, id).
		Scan(&rec.ID, &rec.Goal, &rec.Strategy, &rec.Answer, &rec.Steps, &rec.Error, &rec.CreatedAt)
	if err != nil {
		return nil, nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT idx, thought, action, observation
		FROM steps WHERE run_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()
	var steps []framework.Step
	for rows.Next() {
		var step framework.Step
		if err := rows.Scan(&step.Index, &step.Thought, &step.Action, &step.Observation); err != nil {
			return nil, nil, err
		}
		steps = append(steps, step)
	}
	return &rec, steps, rows.Err()
}
