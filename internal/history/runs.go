package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"performersync/internal/pipeline"
)

// Run is a journaled run header.
type Run struct {
	RunID      string
	Command    string
	DryRun     bool
	Status     pipeline.Status
	Native     string
	Canonical  string
	StartedAt  time.Time
	FinishedAt time.Time
	Counters   pipeline.Counters
}

// Duration is the wall time of the run.
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

const runColumns = `run_id, command, dry_run, status, native, canonical, started_at, finished_at, counters`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run               Run
		dryRun            int
		status            string
		started, finished string
		counters          string
	)
	if err := row.Scan(&run.RunID, &run.Command, &dryRun, &status, &run.Native, &run.Canonical, &started, &finished, &counters); err != nil {
		return Run{}, err
	}
	run.DryRun = dryRun != 0
	run.Status = pipeline.Status(status)
	run.StartedAt = parseTime(started)
	run.FinishedAt = parseTime(finished)
	if err := json.Unmarshal([]byte(counters), &run.Counters); err != nil {
		return Run{}, fmt.Errorf("decode counters for %s: %w", run.RunID, err)
	}
	return run, nil
}

func parseTime(value string) time.Time {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ListRuns returns the most recent runs, newest first. A limit of zero or less
// returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, run_id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun fetches one run. A missing run returns nil without error.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return &run, nil
}

// Events returns the events journaled for runID in recorded order.
func (s *Store) Events(ctx context.Context, runID string) ([]pipeline.Event, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT at, stage, kind, performer_id, name, message, fields, related
		FROM run_events WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []pipeline.Event
	for rows.Next() {
		var (
			event           pipeline.Event
			at, stage, kind string
			fields, related string
		)
		if err := rows.Scan(&at, &stage, &kind, &event.PerformerID, &event.Name, &event.Message, &fields, &related); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		event.Time = parseTime(at)
		event.Stage = pipeline.Stage(stage)
		event.Kind = pipeline.EventKind(kind)
		if err := json.Unmarshal([]byte(fields), &event.Fields); err != nil {
			return nil, fmt.Errorf("decode event fields: %w", err)
		}
		if err := json.Unmarshal([]byte(related), &event.Related); err != nil {
			return nil, fmt.Errorf("decode event related ids: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// Prune deletes all but the newest keep runs and returns how many were removed.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	var removed int64
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE run_id NOT IN
			(SELECT run_id FROM runs ORDER BY started_at DESC, run_id LIMIT ?)`, keep)
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return removed, nil
}
