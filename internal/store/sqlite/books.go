package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dvtbooks/books-api/internal/domain"
	"github.com/dvtbooks/books-api/internal/search"
	"github.com/dvtbooks/books-api/internal/store"
)

// bookColumns is the ordered list of columns selected in book queries.
// Must match the scan order in scanBook.
const bookColumns = `id, isbn13, isbn10, title, about, abstract, publisher, date_published, author_id, version, created_at, updated_at`

var bookRelevance = search.Relevance{
	Columns:  []string{"title"},
	Tiebreak: "title",
	Key:      "id",
}

func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var (
		b             domain.Book
		isbn10        sql.NullString
		datePublished sql.NullString
		createdAt     string
		updatedAt     string
	)

	err := scanner.Scan(
		&b.ID,
		&b.ISBN13,
		&isbn10,
		&b.Title,
		&b.About,
		&b.Abstract,
		&b.Publisher,
		&datePublished,
		&b.AuthorID,
		&b.Version,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.ISBN10 = isbn10.String
	if b.DatePublished, err = parseNullableTime(datePublished); err != nil {
		return nil, err
	}
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c conn) collectBooks(rows *sql.Rows) ([]*domain.Book, error) {
	defer rows.Close()
	var books []*domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

func (c conn) bookWhere(ctx context.Context, where string, args ...any) (*domain.Book, error) {
	row := c.q.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE `+where, args...)
	b, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	return b, nil
}

// BookByISBN13 retrieves a book by its normalized ISBN-13.
// Returns store.ErrNotFound if the book does not exist.
func (c conn) BookByISBN13(ctx context.Context, isbn13 string) (*domain.Book, error) {
	return c.bookWhere(ctx, `isbn13 = ?`, isbn13)
}

// BookByISBN retrieves a book whose normalized ISBN-13 or ISBN-10 equals isbn.
func (c conn) BookByISBN(ctx context.Context, isbn string) (*domain.Book, error) {
	return c.bookWhere(ctx, `isbn13 = ? OR isbn10 = ? ORDER BY id LIMIT 1`, isbn, isbn)
}

// BooksForAuthors returns each author's books ordered by title.
func (c conn) BooksForAuthors(ctx context.Context, authorIDs []int64) (map[int64][]*domain.Book, error) {
	authorIDs = uniqueIDs(authorIDs)
	out := make(map[int64][]*domain.Book, len(authorIDs))
	if len(authorIDs) == 0 {
		return out, nil
	}

	rows, err := c.q.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE author_id IN (`+placeholders(len(authorIDs))+`)
		 ORDER BY title COLLATE NOCASE, id`,
		int64Args(authorIDs)...)
	if err != nil {
		return nil, fmt.Errorf("get author books: %w", err)
	}
	books, err := c.collectBooks(rows)
	if err != nil {
		return nil, fmt.Errorf("scan books: %w", err)
	}
	for _, b := range books {
		out[b.AuthorID] = append(out[b.AuthorID], b)
	}
	return out, nil
}

// SearchBooks returns books ranked against query by title.
func (c conn) SearchBooks(ctx context.Context, query string, page search.Page) ([]*domain.Book, error) {
	clause := bookRelevance.Build(query, page)
	rows, err := c.q.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM books`+clause.SQL(), clause.Args...)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	books, err := c.collectBooks(rows)
	if err != nil {
		return nil, fmt.Errorf("scan books: %w", err)
	}
	return books, nil
}

// InsertBook inserts a new book and sets its ID and initial version.
// Duplicate ISBNs surface as *store.DuplicateError.
func (c conn) InsertBook(ctx context.Context, b *domain.Book) error {
	if b.CreatedAt.IsZero() {
		b.InitTimestamps()
	}
	b.Version = 1

	res, err := c.q.ExecContext(ctx, `
		INSERT INTO books (isbn13, isbn10, title, about, abstract, publisher, date_published, author_id, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ISBN13,
		nullString(b.ISBN10),
		b.Title,
		b.About,
		b.Abstract,
		b.Publisher,
		nullTimeString(b.DatePublished),
		b.AuthorID,
		b.Version,
		formatTime(b.CreatedAt),
		formatTime(b.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert book: %w", uniqueViolation(err))
	}
	if b.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	return nil
}

// UpdateBook saves b, bumping its version.
// Returns store.ErrConflict when expected is set and stale.
func (c conn) UpdateBook(ctx context.Context, b *domain.Book, expected *domain.Version) error {
	b.Touch()
	res, err := c.q.ExecContext(ctx, `
		UPDATE books SET
			isbn10 = ?, title = ?, about = ?, abstract = ?, publisher = ?, date_published = ?,
			author_id = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND (? IS NULL OR version = ?)`,
		nullString(b.ISBN10),
		b.Title,
		b.About,
		b.Abstract,
		b.Publisher,
		nullTimeString(b.DatePublished),
		b.AuthorID,
		formatTime(b.UpdatedAt),
		b.ID,
		versionArg(expected),
		versionArg(expected),
	)
	if err != nil {
		return fmt.Errorf("update book: %w", uniqueViolation(err))
	}
	return c.afterUpdate(ctx, res, "books", b.ID, expected, &b.Version)
}
