// Package sqlite implements the catalog store on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dvtbooks/books-api/internal/store"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// SQLite primary result codes for lock contention.
const (
	sqliteBusy   = 5
	sqliteLocked = 6
)

// RetryPolicy bounds the retries of transactions that hit lock contention.
type RetryPolicy struct {
	MaxRetries  uint64
	MaxInterval time.Duration
}

// DefaultRetryPolicy retries up to 15 times with at most 30s between tries.
var DefaultRetryPolicy = RetryPolicy{MaxRetries: 15, MaxInterval: 30 * time.Second}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn carries every query; Store runs them on the pool, tx on a transaction.
type conn struct {
	q querier
}

// Store provides SQLite-backed persistence for the books catalog.
type Store struct {
	conn
	db     *sql.DB
	logger *slog.Logger
	retry  RetryPolicy
}

var (
	_ store.Store = (*Store)(nil)
	_ store.Tx    = (*tx)(nil)
)

// Open creates a new SQLite store at the given path.
// It configures WAL mode, sets pragmas, and runs the schema.
func Open(path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	return &Store{
		conn:   conn{q: db},
		db:     db,
		logger: logger,
		retry:  DefaultRetryPolicy,
	}, nil
}

// SetRetryPolicy replaces the lock-contention retry policy.
func (s *Store) SetRetryPolicy(p RetryPolicy) {
	s.retry = p
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// tx is a store.Tx bound to one *sql.Tx.
type tx struct {
	conn
}

// InTx runs fn inside a transaction. SQLITE_BUSY and SQLITE_LOCKED failures
// roll back and re-run fn with exponential backoff; any other error from fn
// or from commit is returned unchanged.
func (s *Store) InTx(ctx context.Context, fn func(store.Tx) error) error {
	b := backoff.NewExponentialBackOff()
	b.MaxInterval = s.retry.MaxInterval
	if b.InitialInterval > b.MaxInterval {
		b.InitialInterval = b.MaxInterval
	}
	b.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(b, s.retry.MaxRetries), ctx)

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := s.runTx(ctx, fn)
		if err == nil {
			return nil
		}
		if isBusy(err) {
			s.logger.Warn("database busy, retrying transaction", "attempt", attempt, "error", err)
			return err
		}
		return backoff.Permanent(err)
	}, policy)
}

func (s *Store) runTx(ctx context.Context, fn func(store.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer sqlTx.Rollback() //nolint:errcheck // no-op after commit

	if err := fn(&tx{conn: conn{q: sqlTx}}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// isBusy reports whether err is SQLite lock contention.
func isBusy(err error) bool {
	var coder interface{ Code() int }
	if errors.As(err, &coder) {
		code := coder.Code() & 0xff
		return code == sqliteBusy || code == sqliteLocked
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "database table is locked")
}

// uniqueViolation converts a UNIQUE constraint failure into a DuplicateError.
// Other errors are returned unchanged.
func uniqueViolation(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	const marker = "UNIQUE constraint failed: "
	i := strings.Index(msg, marker)
	if i < 0 {
		return err
	}
	col := msg[i+len(marker):]
	if j := strings.IndexAny(col, ", )"); j >= 0 {
		col = col[:j]
	}
	table, column, _ := strings.Cut(col, ".")
	return &store.DuplicateError{Table: table, Column: column, Err: err}
}

// formatTime formats a time.Time to RFC3339Nano for storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime parses a RFC3339Nano string back to time.Time.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// parseNullableTime parses an optional time string.
func parseNullableTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// nullString returns a sql.NullString, NULL for the empty string.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullTimeString returns a sql.NullString from a *time.Time.
func nullTimeString(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

// int64Args converts ids to query arguments.
func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// uniqueIDs drops duplicate and zero ids, keeping first-seen order.
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
