package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"performersync/internal/config"
	"performersync/internal/pipeline"
)

// Store is the SQLite run journal.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond

	timeLayout = "2006-01-02T15:04:05.000000000Z"
)

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

// Open opens the journal configured in cfg.History.Path.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.History.Path)
}

// OpenPath opens or creates a journal at path.
func OpenPath(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Pragmas are per connection; one connection keeps them in force.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// SaveReport writes a finished run and its events in one transaction. Saving
// the same run id twice replaces the earlier entry.
func (s *Store) SaveReport(ctx context.Context, report *pipeline.Report) error {
	if report == nil || strings.TrimSpace(report.RunID) == "" {
		return errors.New("report requires a run id")
	}
	counters, err := json.Marshal(report.Counters)
	if err != nil {
		return fmt.Errorf("encode counters: %w", err)
	}
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin save tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, `DELETE FROM run_events WHERE run_id = ?`, report.RunID); err != nil {
			return fmt.Errorf("replace run events: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE run_id = ?`, report.RunID); err != nil {
			return fmt.Errorf("replace run: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO runs
			(run_id, command, dry_run, status, native, canonical, started_at, finished_at, updated, merged, errors, counters)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			report.RunID,
			report.Command,
			boolToInt(report.DryRun),
			string(report.Status),
			report.Native,
			report.Canonical,
			report.StartedAt.UTC().Format(timeLayout),
			report.FinishedAt.UTC().Format(timeLayout),
			report.Counters.Updated,
			report.Counters.Merged,
			report.Counters.Errors,
			string(counters),
		); err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		for i, event := range report.Events {
			fields, err := json.Marshal(nonNil(event.Fields))
			if err != nil {
				return fmt.Errorf("encode event fields: %w", err)
			}
			related, err := json.Marshal(nonNil(event.Related))
			if err != nil {
				return fmt.Errorf("encode event related ids: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO run_events
				(run_id, seq, at, stage, kind, performer_id, name, message, fields, related)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				report.RunID,
				i,
				event.Time.UTC().Format(timeLayout),
				string(event.Stage),
				string(event.Kind),
				event.PerformerID,
				event.Name,
				event.Message,
				string(fields),
				string(related),
			); err != nil {
				return fmt.Errorf("insert event %d: %w", i, err)
			}
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit run: %w", err)
		}
		return nil
	})
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
