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

// tagColumns is the ordered list of columns selected in tag queries.
// Must match the scan order in scanTag.
const tagColumns = `id, description`

var tagRelevance = search.Relevance{
	Columns:  []string{"description"},
	Tiebreak: "description",
	Key:      "id",
}

func scanTag(scanner interface{ Scan(dest ...any) error }) (*domain.Tag, error) {
	var t domain.Tag
	if err := scanner.Scan(&t.ID, &t.Description); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c conn) collectTags(rows *sql.Rows) ([]*domain.Tag, error) {
	defer rows.Close()
	var tags []*domain.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// TagByDescription retrieves a tag by its exact, case-sensitive description.
// Returns store.ErrNotFound if the tag does not exist.
func (c conn) TagByDescription(ctx context.Context, description string) (*domain.Tag, error) {
	row := c.q.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE description = ?`, description)

	t, err := scanTag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get tag: %w", err)
	}
	return t, nil
}

// TagByFoldKey retrieves a tag whose description matches case-insensitively.
// When several descriptions fold alike the oldest tag wins.
func (c conn) TagByFoldKey(ctx context.Context, description string) (*domain.Tag, error) {
	row := c.q.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE fold_key = ? ORDER BY id LIMIT 1`, domain.FoldKey(description))

	t, err := scanTag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get tag: %w", err)
	}
	return t, nil
}

// TagsForBooks returns tag descriptions per book, ordered by description.
func (c conn) TagsForBooks(ctx context.Context, bookIDs []int64) (map[int64][]string, error) {
	bookIDs = uniqueIDs(bookIDs)
	out := make(map[int64][]string, len(bookIDs))
	if len(bookIDs) == 0 {
		return out, nil
	}

	rows, err := c.q.QueryContext(ctx, `
		SELECT bt.book_id, t.description
		FROM book_tags bt
		JOIN tags t ON t.id = bt.tag_id
		WHERE bt.book_id IN (`+placeholders(len(bookIDs))+`)
		ORDER BY bt.book_id, t.description`,
		int64Args(bookIDs)...)
	if err != nil {
		return nil, fmt.Errorf("get book tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			bookID int64
			desc   string
		)
		if err := rows.Scan(&bookID, &desc); err != nil {
			return nil, fmt.Errorf("scan book tag: %w", err)
		}
		out[bookID] = append(out[bookID], desc)
	}
	return out, rows.Err()
}

// BookTags returns the tags currently linked to a book.
func (c conn) BookTags(ctx context.Context, bookID int64) ([]*domain.Tag, error) {
	rows, err := c.q.QueryContext(ctx, `
		SELECT t.id, t.description
		FROM tags t
		JOIN book_tags bt ON bt.tag_id = t.id
		WHERE bt.book_id = ?
		ORDER BY t.description`, bookID)
	if err != nil {
		return nil, fmt.Errorf("get book tags: %w", err)
	}
	tags, err := c.collectTags(rows)
	if err != nil {
		return nil, fmt.Errorf("scan tags: %w", err)
	}
	return tags, nil
}

// SearchTags returns tags ranked against query by description.
func (c conn) SearchTags(ctx context.Context, query string, page search.Page) ([]*domain.Tag, error) {
	clause := tagRelevance.Build(query, page)
	rows, err := c.q.QueryContext(ctx,
		`SELECT `+tagColumns+` FROM tags`+clause.SQL(), clause.Args...)
	if err != nil {
		return nil, fmt.Errorf("search tags: %w", err)
	}
	tags, err := c.collectTags(rows)
	if err != nil {
		return nil, fmt.Errorf("scan tags: %w", err)
	}
	return tags, nil
}

// CountTags returns the number of tags.
func (c conn) CountTags(ctx context.Context) (int, error) {
	var n int
	if err := c.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM tags`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tags: %w", err)
	}
	return n, nil
}

// InsertTag inserts a new tag and sets its ID.
// Returns a *store.DuplicateError on an existing description.
func (c conn) InsertTag(ctx context.Context, t *domain.Tag) error {
	res, err := c.q.ExecContext(ctx,
		`INSERT INTO tags (description, fold_key) VALUES (?, ?)`,
		t.Description, domain.FoldKey(t.Description))
	if err != nil {
		return fmt.Errorf("insert tag: %w", uniqueViolation(err))
	}
	if t.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("insert tag: %w", err)
	}
	return nil
}

// AddBookTag links a tag to a book. Adding an existing link is a no-op.
func (c conn) AddBookTag(ctx context.Context, bookID, tagID int64) error {
	_, err := c.q.ExecContext(ctx,
		`INSERT OR IGNORE INTO book_tags (book_id, tag_id) VALUES (?, ?)`, bookID, tagID)
	if err != nil {
		return fmt.Errorf("add book tag: %w", err)
	}
	return nil
}

// RemoveBookTag unlinks a tag from a book.
func (c conn) RemoveBookTag(ctx context.Context, bookID, tagID int64) error {
	_, err := c.q.ExecContext(ctx,
		`DELETE FROM book_tags WHERE book_id = ? AND tag_id = ?`, bookID, tagID)
	if err != nil {
		return fmt.Errorf("remove book tag: %w", err)
	}
	return nil
}
