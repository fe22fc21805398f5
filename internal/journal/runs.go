package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Outcome classifies how a single catalog title ended up in a run.
type Outcome string

const (
	OutcomeInserted  Outcome = "inserted"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeNoMatch   Outcome = "no_match"
	OutcomeFailed    Outcome = "failed"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// RunStats aggregates per-run counters.
type RunStats struct {
	Pages      int
	Items      int
	Inserted   int
	Duplicates int
	NoMatch    int
	Failed     int
}

// Run is one recorded pipeline run.
type Run struct {
	ID         int64
	StartedAt  time.Time
	FinishedAt time.Time
	Status     string
	Stats      RunStats
}

// BeginRun records the start of a pipeline run and returns its id.
func (s *Store) BeginRun(ctx context.Context) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(ctx,
		"INSERT INTO runs (started_at, status) VALUES (?, ?)",
		now, StatusRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// RecordEntry logs the outcome of one catalog title within a run.
func (s *Store) RecordEntry(ctx context.Context, runID int64, title string, outcome Outcome, detail string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.execWithRetry(ctx,
		"INSERT INTO entries (run_id, title, outcome, detail, created_at) VALUES (?, ?, ?, ?, ?)",
		runID, title, string(outcome), nullableString(detail), now,
	)
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

// FinishRun closes the run with its final counters and status.
func (s *Store) FinishRun(ctx context.Context, runID int64, status string, stats RunStats) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.execWithRetry(ctx,
		`UPDATE runs SET finished_at = ?, status = ?, pages = ?, items = ?,
            inserted = ?, duplicates = ?, no_match = ?, failed = ?
         WHERE id = ?`,
		now, status, stats.Pages, stats.Items,
		stats.Inserted, stats.Duplicates, stats.NoMatch, stats.Failed,
		runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// LastRuns returns the most recent runs, newest first.
func (s *Store) LastRuns(ctx context.Context, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, status, pages, items,
            inserted, duplicates, no_match, failed
         FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run        Run
			startedAt  string
			finishedAt sql.NullString
		)
		if err := rows.Scan(&run.ID, &startedAt, &finishedAt, &run.Status,
			&run.Stats.Pages, &run.Stats.Items,
			&run.Stats.Inserted, &run.Stats.Duplicates,
			&run.Stats.NoMatch, &run.Stats.Failed); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt = parseTimestamp(startedAt)
		if finishedAt.Valid {
			run.FinishedAt = parseTimestamp(finishedAt.String)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// IngestedTitles returns all titles that were stored or already present in
// earlier runs. Titles that never matched or failed are excluded so a resumed
// run retries them.
func (s *Store) IngestedTitles(ctx context.Context) ([]string, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT title FROM entries WHERE outcome IN (?, ?)",
		string(OutcomeInserted), string(OutcomeDuplicate))
	if err != nil {
		return nil, fmt.Errorf("query ingested titles: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("scan title: %w", err)
		}
		titles = append(titles, title)
	}
	return titles, rows.Err()
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimestamp(value string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return ts
}
