// Package journal keeps the progress history of training sessions in SQLite.
//
// The log store only holds the latest state of a session. The journal
// appends every progress report, so a client can chart how a session got
// there. Sessions are keyed by their sanitised name, the same key the log
// store files them under.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/DuncanWalter/combobulate/internal/logstore"
	"github.com/DuncanWalter/combobulate/internal/train"
)

// Entry is one recorded progress report.
type Entry struct {
	Time int64 `json:"time"` // Unix milliseconds
	train.Progress
}

// Config holds the configuration for Open.
type Config struct {
	Path  string           // Database file (default: "progress.sqlite3")
	Clock func() time.Time // Default: time.Now
}

// DefaultConfig returns the default journal configuration.
func DefaultConfig() Config {
	return Config{
		Path:  "progress.sqlite3",
		Clock: time.Now,
	}
}

// Journal records progress reports. It is safe for concurrent use.
type Journal struct {
	db    *sql.DB
	clock func() time.Time
}

// Open opens or creates the journal database.
func Open(config Config) (*Journal, error) {
	defaults := DefaultConfig()
	if config.Path == "" {
		config.Path = defaults.Path
	}
	if config.Clock == nil {
		config.Clock = defaults.Clock
	}

	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	// one connection serialises writers and keeps ":memory:" databases whole
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure journal: %w", err)
	}
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS progress(
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts INTEGER NOT NULL,
			session TEXT NOT NULL,
			epoch INTEGER NOT NULL,
			mean_loss REAL NOT NULL,
			mean_abs_error REAL NOT NULL,
			elapsed_ms INTEGER NOT NULL
		)`)
	if err == nil {
		_, err = db.Exec("CREATE INDEX IF NOT EXISTS progress_session ON progress(session, id)")
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create journal schema: %w", err)
	}
	return &Journal{db: db, clock: config.Clock}, nil
}

func key(session string) (string, error) {
	name := logstore.SanitizeName(session)
	if name == "" {
		return "", fmt.Errorf("%w: %q", logstore.ErrInvalidName, session)
	}
	return name, nil
}

// Record appends a progress report for session.
func (j *Journal) Record(ctx context.Context, session string, p train.Progress) error {
	name, err := key(session)
	if err != nil {
		return err
	}
	_, err = j.db.ExecContext(ctx,
		`INSERT INTO progress(ts, session, epoch, mean_loss, mean_abs_error, elapsed_ms)
		 VALUES(?,?,?,?,?,?)`,
		j.clock().UnixMilli(), name, p.Epoch, p.MeanLoss, p.MeanAbsError, p.Elapsed.Milliseconds())
	if err != nil {
		return wrap("record progress", err)
	}
	return nil
}

// History returns the reports of session in the order they were recorded.
// A positive limit keeps only the latest limit reports.
func (j *Journal) History(ctx context.Context, session string, limit int) ([]Entry, error) {
	name, err := key(session)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := j.db.QueryContext(ctx,
		`SELECT ts, epoch, mean_loss, mean_abs_error, elapsed_ms FROM (
			SELECT * FROM progress WHERE session = ? ORDER BY id DESC LIMIT ?
		 ) ORDER BY id ASC`,
		name, limit)
	if err != nil {
		return nil, wrap("read progress", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var elapsed int64
		if err := rows.Scan(&e.Time, &e.Epoch, &e.MeanLoss, &e.MeanAbsError, &elapsed); err != nil {
			return nil, wrap("read progress", err)
		}
		e.Elapsed = time.Duration(elapsed) * time.Millisecond
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("read progress", err)
	}
	return entries, nil
}

// Forget removes every report of session.
func (j *Journal) Forget(ctx context.Context, session string) error {
	name, err := key(session)
	if err != nil {
		return err
	}
	if _, err := j.db.ExecContext(ctx, "DELETE FROM progress WHERE session = ?", name); err != nil {
		return wrap("forget progress", err)
	}
	return nil
}

// Recorder returns a progress callback that records into the journal and
// then calls next, if not nil. Recording failures go to onError.
func (j *Journal) Recorder(session string, next func(train.Progress), onError func(error)) func(train.Progress) {
	return func(p train.Progress) {
		if err := j.Record(context.Background(), session, p); err != nil && onError != nil {
			onError(err)
		}
		if next != nil {
			next(p)
		}
	}
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

func wrap(op string, err error) error {
	return fmt.Errorf("failed to %s: %w", op, err)
}
