package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dvtbooks/books-api/internal/domain"
	"github.com/dvtbooks/books-api/internal/search"
	"github.com/dvtbooks/books-api/internal/store"
	"github.com/google/uuid"
)

// authorColumns is the ordered list of columns selected in author queries.
// Must match the scan order in scanAuthor.
const authorColumns = `id, guid, first_name, middle_names, last_name, name, about, version, created_at, updated_at`

// authorRelevance ranks authors by the better of the stored display name
// and the recomputed "first last" form.
var authorRelevance = search.Relevance{
	Columns:  []string{"name", "trim(first_name || ' ' || last_name)"},
	Tiebreak: "name",
	Key:      "id",
}

func scanAuthor(scanner interface{ Scan(dest ...any) error }) (*domain.Author, error) {
	var (
		a         domain.Author
		guid      string
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&a.ID,
		&guid,
		&a.FirstName,
		&a.MiddleNames,
		&a.LastName,
		&a.Name,
		&a.About,
		&a.Version,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if a.GUID, err = uuid.Parse(guid); err != nil {
		return nil, fmt.Errorf("parse author guid: %w", err)
	}
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if a.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c conn) collectAuthors(rows *sql.Rows) ([]*domain.Author, error) {
	defer rows.Close()
	var authors []*domain.Author
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, err
		}
		authors = append(authors, a)
	}
	return authors, rows.Err()
}

// AuthorByGUID retrieves an author by external identifier.
// Returns store.ErrNotFound if the author does not exist.
func (c conn) AuthorByGUID(ctx context.Context, id uuid.UUID) (*domain.Author, error) {
	row := c.q.QueryRowContext(ctx,
		`SELECT `+authorColumns+` FROM authors WHERE guid = ?`, id.String())

	a, err := scanAuthor(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get author %s: %w", id, err)
	}
	return a, nil
}

// AuthorsByIDs fetches authors by surrogate key in one query.
func (c conn) AuthorsByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Author, error) {
	ids = uniqueIDs(ids)
	out := make(map[int64]*domain.Author, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := c.q.QueryContext(ctx,
		`SELECT `+authorColumns+` FROM authors WHERE id IN (`+placeholders(len(ids))+`)`,
		int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("get authors: %w", err)
	}
	authors, err := c.collectAuthors(rows)
	if err != nil {
		return nil, fmt.Errorf("scan authors: %w", err)
	}
	for _, a := range authors {
		out[a.ID] = a
	}
	return out, nil
}

// SearchAuthors returns authors ranked against query.
func (c conn) SearchAuthors(ctx context.Context, query string, page search.Page) ([]*domain.Author, error) {
	clause := authorRelevance.Build(query, page)
	rows, err := c.q.QueryContext(ctx,
		`SELECT `+authorColumns+` FROM authors`+clause.SQL(), clause.Args...)
	if err != nil {
		return nil, fmt.Errorf("search authors: %w", err)
	}
	authors, err := c.collectAuthors(rows)
	if err != nil {
		return nil, fmt.Errorf("scan authors: %w", err)
	}
	return authors, nil
}

// InsertAuthor inserts a new author and sets its ID and initial version.
func (c conn) InsertAuthor(ctx context.Context, a *domain.Author) error {
	if a.CreatedAt.IsZero() {
		a.InitTimestamps()
	}
	a.Version = 1

	res, err := c.q.ExecContext(ctx, `
		INSERT INTO authors (guid, first_name, middle_names, last_name, name, about, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.GUID.String(),
		a.FirstName,
		a.MiddleNames,
		a.LastName,
		a.Name,
		a.About,
		a.Version,
		formatTime(a.CreatedAt),
		formatTime(a.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert author: %w", uniqueViolation(err))
	}
	if a.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("insert author: %w", err)
	}
	return nil
}

// UpdateAuthor saves a, bumping its version.
// Returns store.ErrConflict when expected is set and stale.
func (c conn) UpdateAuthor(ctx context.Context, a *domain.Author, expected *domain.Version) error {
	a.Touch()
	res, err := c.q.ExecContext(ctx, `
		UPDATE authors SET
			first_name = ?, middle_names = ?, last_name = ?, name = ?, about = ?,
			version = version + 1, updated_at = ?
		WHERE id = ? AND (? IS NULL OR version = ?)`,
		a.FirstName,
		a.MiddleNames,
		a.LastName,
		a.Name,
		a.About,
		formatTime(a.UpdatedAt),
		a.ID,
		versionArg(expected),
		versionArg(expected),
	)
	if err != nil {
		return fmt.Errorf("update author: %w", err)
	}
	return c.afterUpdate(ctx, res, "authors", a.ID, expected, &a.Version)
}

// afterUpdate turns a zero-row update into ErrConflict or ErrNotFound and
// refreshes the in-memory version from storage.
func (c conn) afterUpdate(ctx context.Context, res sql.Result, table string, id int64, expected *domain.Version, version *domain.Version) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	if n == 0 {
		if expected != nil {
			return store.ErrConflict
		}
		return store.ErrNotFound
	}
	// table is one of our own constants, never user input.
	err = c.q.QueryRowContext(ctx, `SELECT version FROM `+table+` WHERE id = ?`, id).Scan(version)
	if err != nil {
		return fmt.Errorf("read %s version: %w", table, err)
	}
	return nil
}

func versionArg(v *domain.Version) any {
	if v == nil {
		return nil
	}
	return int64(*v)
}
