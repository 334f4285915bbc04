// Package store defines the persistence contract of the books catalog.
//
// The contract is a transactional store keyed by stable identifiers:
// lookups by external id, inserts, association add/remove, and updates that
// carry the expected concurrency token. Update methods are the only place
// version semantics are enforced.
package store

import (
	"context"

	"github.com/dvtbooks/books-api/internal/domain"
	"github.com/dvtbooks/books-api/internal/search"
	"github.com/google/uuid"
)

// Reader exposes the read side of the catalog.
type Reader interface {
	// Authors
	AuthorByGUID(ctx context.Context, id uuid.UUID) (*domain.Author, error)
	AuthorsByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Author, error)
	SearchAuthors(ctx context.Context, query string, page search.Page) ([]*domain.Author, error)

	// Books
	BookByISBN13(ctx context.Context, isbn13 string) (*domain.Book, error)
	BookByISBN(ctx context.Context, isbn string) (*domain.Book, error)
	BooksForAuthors(ctx context.Context, authorIDs []int64) (map[int64][]*domain.Book, error)
	SearchBooks(ctx context.Context, query string, page search.Page) ([]*domain.Book, error)

	// Tags
	TagByDescription(ctx context.Context, description string) (*domain.Tag, error)
	TagByFoldKey(ctx context.Context, description string) (*domain.Tag, error)
	TagsForBooks(ctx context.Context, bookIDs []int64) (map[int64][]string, error)
	BookTags(ctx context.Context, bookID int64) ([]*domain.Tag, error)
	SearchTags(ctx context.Context, query string, page search.Page) ([]*domain.Tag, error)
	CountTags(ctx context.Context) (int, error)

	// Pictures
	ImagesForBooks(ctx context.Context, bookIDs []int64) (map[int64]*domain.ImageRef, error)
	BookImage(ctx context.Context, bookID int64) (*domain.Blob, error)
}

// Tx is a unit of work. Everything written through a Tx commits together or
// not at all.
type Tx interface {
	Reader

	InsertAuthor(ctx context.Context, a *domain.Author) error
	// UpdateAuthor saves a and bumps its version. A non-nil expected version
	// that differs from the stored one yields ErrConflict.
	UpdateAuthor(ctx context.Context, a *domain.Author, expected *domain.Version) error

	InsertBook(ctx context.Context, b *domain.Book) error
	// UpdateBook saves b and bumps its version, with the same conflict rule
	// as UpdateAuthor.
	UpdateBook(ctx context.Context, b *domain.Book, expected *domain.Version) error

	InsertTag(ctx context.Context, t *domain.Tag) error
	AddBookTag(ctx context.Context, bookID, tagID int64) error
	RemoveBookTag(ctx context.Context, bookID, tagID int64) error

	InsertBlob(ctx context.Context, b *domain.Blob) error
	// SetBookImage links blobID to the book, replacing any previous link.
	SetBookImage(ctx context.Context, bookID, blobID int64) error
}

// Store is the catalog persistence contract.
type Store interface {
	Reader

	// InTx runs fn in a transaction, committing when fn returns nil.
	// Transient lock errors are retried by re-running fn from the start.
	InTx(ctx context.Context, fn func(tx Tx) error) error
	Close() error
}
