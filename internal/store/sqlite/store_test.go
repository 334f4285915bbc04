package sqlite

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dvtbooks/books-api/internal/domain"
	"github.com/dvtbooks/books-api/internal/store"
	"github.com/google/uuid"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// seedAuthor inserts an author in its own transaction.
func seedAuthor(t *testing.T, s *Store, first, last string) *domain.Author {
	t.Helper()
	a := &domain.Author{GUID: uuid.New()}
	a.Rename(first, "", last)
	err := s.InTx(context.Background(), func(tx store.Tx) error {
		return tx.InsertAuthor(context.Background(), a)
	})
	if err != nil {
		t.Fatalf("insert author: %v", err)
	}
	return a
}

// seedBook inserts a book by author in its own transaction.
func seedBook(t *testing.T, s *Store, author *domain.Author, isbn13, title string) *domain.Book {
	t.Helper()
	b := &domain.Book{ISBN13: isbn13, Title: title, AuthorID: author.ID}
	err := s.InTx(context.Background(), func(tx store.Tx) error {
		return tx.InsertBook(context.Background(), b)
	})
	if err != nil {
		t.Fatalf("insert book: %v", err)
	}
	return b
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	var journalMode string
	if err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("expected wal, got %s", journalMode)
	}

	var fk int
	if err := s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("expected foreign_keys=1, got %d", fk)
	}

	for _, table := range []string{"authors", "books", "tags", "book_tags", "blobs", "book_images"} {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestOpen_Reopen(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "books.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	seedAuthor(t, s, "Rob", "Pike")
	s.Close()

	s, err = Open(dbPath, logger)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	authors, err := s.SearchAuthors(context.Background(), "Pike", searchAll)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(authors) != 1 {
		t.Fatalf("expected 1 author after reopen, got %d", len(authors))
	}
}

func TestInTx_RollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.InTx(ctx, func(tx store.Tx) error {
		a := &domain.Author{GUID: uuid.New(), Name: "Ghost"}
		if err := tx.InsertAuthor(ctx, a); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	authors, err := s.SearchAuthors(ctx, "", searchAll)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(authors) != 0 {
		t.Errorf("expected rollback, found %d authors", len(authors))
	}
}

func TestInTx_RetriesBusy(t *testing.T) {
	s := newTestStore(t)
	s.SetRetryPolicy(RetryPolicy{MaxRetries: 3, MaxInterval: time.Millisecond})
	ctx := context.Background()

	attempts := 0
	err := s.InTx(ctx, func(tx store.Tx) error {
		attempts++
		if attempts < 3 {
			return errors.New("database is locked (5) (SQLITE_BUSY)")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("InTx: %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestInTx_DoesNotRetryConflicts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	attempts := 0
	err := s.InTx(ctx, func(tx store.Tx) error {
		attempts++
		return store.ErrConflict
	})
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected a single attempt, got %d", attempts)
	}
}

func TestUniqueViolation(t *testing.T) {
	err := uniqueViolation(errors.New("constraint failed: UNIQUE constraint failed: books.isbn10 (2067)"))
	var dup *store.DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateError, got %v", err)
	}
	if dup.Table != "books" || dup.Column != "isbn10" {
		t.Errorf("got %s.%s", dup.Table, dup.Column)
	}

	other := errors.New("no such table")
	if uniqueViolation(other) != other {
		t.Errorf("non-unique errors must pass through")
	}
}
