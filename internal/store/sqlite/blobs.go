package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dvtbooks/books-api/internal/domain"
	"github.com/dvtbooks/books-api/internal/store"
	"github.com/google/uuid"
)

// InsertBlob stores an immutable payload and sets its ID.
func (c conn) InsertBlob(ctx context.Context, b *domain.Blob) error {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	res, err := c.q.ExecContext(ctx, `
		INSERT INTO blobs (guid, content_type, content, blur_hash, width, height, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.GUID.String(),
		b.ContentType,
		b.Content,
		b.BlurHash,
		b.Width,
		b.Height,
		formatTime(b.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert blob: %w", uniqueViolation(err))
	}
	if b.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("insert blob: %w", err)
	}
	return nil
}

// SetBookImage points the book at blobID. The previous blob, if any, stays
// in storage unreferenced.
func (c conn) SetBookImage(ctx context.Context, bookID, blobID int64) error {
	_, err := c.q.ExecContext(ctx, `
		INSERT INTO book_images (book_id, blob_id) VALUES (?, ?)
		ON CONFLICT(book_id) DO UPDATE SET blob_id = excluded.blob_id`,
		bookID, blobID)
	if err != nil {
		return fmt.Errorf("set book image: %w", err)
	}
	return nil
}

// BookImage returns the blob linked to a book, payload included.
// Returns store.ErrNotFound if the book has no picture.
func (c conn) BookImage(ctx context.Context, bookID int64) (*domain.Blob, error) {
	var (
		b         domain.Blob
		guid      string
		createdAt string
	)
	err := c.q.QueryRowContext(ctx, `
		SELECT b.id, b.guid, b.content_type, b.content, b.blur_hash, b.width, b.height, b.created_at
		FROM book_images bi
		JOIN blobs b ON b.id = bi.blob_id
		WHERE bi.book_id = ?`, bookID).Scan(
		&b.ID, &guid, &b.ContentType, &b.Content, &b.BlurHash, &b.Width, &b.Height, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get book image: %w", err)
	}
	if b.GUID, err = uuid.Parse(guid); err != nil {
		return nil, fmt.Errorf("parse blob guid: %w", err)
	}
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &b, nil
}

// ImagesForBooks returns the picture reference of each book that has one.
func (c conn) ImagesForBooks(ctx context.Context, bookIDs []int64) (map[int64]*domain.ImageRef, error) {
	bookIDs = uniqueIDs(bookIDs)
	out := make(map[int64]*domain.ImageRef, len(bookIDs))
	if len(bookIDs) == 0 {
		return out, nil
	}

	rows, err := c.q.QueryContext(ctx, `
		SELECT bi.book_id, b.guid, b.content_type, b.blur_hash
		FROM book_images bi
		JOIN blobs b ON b.id = bi.blob_id
		WHERE bi.book_id IN (`+placeholders(len(bookIDs))+`)`,
		int64Args(bookIDs)...)
	if err != nil {
		return nil, fmt.Errorf("get book images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			bookID int64
			guid   string
			ref    domain.ImageRef
		)
		if err := rows.Scan(&bookID, &guid, &ref.ContentType, &ref.BlurHash); err != nil {
			return nil, fmt.Errorf("scan book image: %w", err)
		}
		if ref.GUID, err = uuid.Parse(guid); err != nil {
			return nil, fmt.Errorf("parse blob guid: %w", err)
		}
		out[bookID] = &ref
	}
	return out, rows.Err()
}
