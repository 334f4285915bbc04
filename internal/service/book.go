package service

import (
	"context"
	"log/slog"

	"github.com/dvtbooks/books-api/internal/domain"
	"github.com/dvtbooks/books-api/internal/dto"
	"github.com/dvtbooks/books-api/internal/errors"
	"github.com/dvtbooks/books-api/internal/isbn"
	"github.com/dvtbooks/books-api/internal/mapper"
	"github.com/dvtbooks/books-api/internal/patch"
	"github.com/dvtbooks/books-api/internal/search"
	"github.com/dvtbooks/books-api/internal/store"
	"github.com/dvtbooks/books-api/internal/validation"
)

// BookService manages books and their author and tag links.
type BookService struct {
	store     store.Store
	enricher  *dto.Enricher
	validator *validation.Validator
	mapper    *mapper.BookMapper
	logger    *slog.Logger
}

// NewBookService creates a new book service.
func NewBookService(
	store store.Store,
	enricher *dto.Enricher,
	validator *validation.Validator,
	mapper *mapper.BookMapper,
	logger *slog.Logger,
) *BookService {
	return &BookService{
		store:     store,
		enricher:  enricher,
		validator: validator,
		mapper:    mapper,
		logger:    logger,
	}
}

// Get returns the book whose ISBN-13 or ISBN-10 is key.
func (s *BookService) Get(ctx context.Context, key string) (*dto.Book, error) {
	b, err := s.store.BookByISBN(ctx, isbn.Normalize(key))
	if err != nil {
		return nil, translate(err, "book "+key)
	}
	return s.enricher.Book(ctx, b)
}

// Search returns books ranked by where query occurs in their title.
func (s *BookService) Search(ctx context.Context, query string, page search.Page) ([]dto.Book, error) {
	books, err := s.store.SearchBooks(ctx, query, page)
	if err != nil {
		return nil, translate(err, "search books")
	}
	return s.enricher.Books(ctx, books)
}

// Create adds a new book. An ISBN already in the catalog is a field error.
func (s *BookService) Create(ctx context.Context, src *dto.Book) (*Created, error) {
	if err := s.validator.Validate(src); err != nil {
		return nil, err
	}

	var b *domain.Book
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		b = &domain.Book{}
		_, err := tx.BookByISBN13(ctx, isbn.Normalize13(src.ISBN13))
		switch {
		case err == nil:
			return fieldError("isbn13", "The value must be unique.")
		case !errors.Is(err, store.ErrNotFound):
			return err
		}
		return s.save(ctx, tx, src, b)
	})
	if err != nil {
		return nil, translate(err, "book")
	}

	s.logger.Info("book created", "isbn13", b.ISBN13, "title", b.Title)
	return s.created(b, true), nil
}

// Replace updates the book with ISBN-13 key, or creates it when it does not
// exist. The body's ISBN-13 must match key. A stale version yields a
// conflict.
func (s *BookService) Replace(ctx context.Context, key string, src *dto.Book) (*Created, error) {
	isbn13 := isbn.Normalize13(key)
	if !isbn.Valid13(isbn13) || isbn13 == "" {
		return nil, fieldError("isbn13", "The ISBN-13 %q in the URL is invalid.", key)
	}
	if isbn.Normalize13(src.ISBN13) != isbn13 {
		return nil, fieldError("isbn13", "The isbn13 field does not match the URL.")
	}
	if err := s.validator.Validate(src); err != nil {
		return nil, err
	}

	var (
		b     *domain.Book
		isNew bool
	)
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		existing, err := tx.BookByISBN13(ctx, isbn13)
		switch {
		case errors.Is(err, store.ErrNotFound):
			b, isNew = &domain.Book{}, true
		case err != nil:
			return err
		default:
			b, isNew = existing, false
		}
		return s.save(ctx, tx, src, b)
	})
	if err != nil {
		return nil, translate(err, "book "+isbn13)
	}

	s.logger.Info("book saved", "isbn13", b.ISBN13, "created", isNew)
	return s.created(b, isNew), nil
}

// Patch applies doc to the book's current representation, or to a skeleton
// carrying key when the book does not exist, and saves it like Replace.
func (s *BookService) Patch(ctx context.Context, key string, doc patch.Document) (*Created, error) {
	current, err := s.Get(ctx, key)
	switch {
	case errors.Is(err, errors.ErrNotFound):
		current = &dto.Book{ISBN13: key}
	case err != nil:
		return nil, err
	}

	target := current.ISBN13
	if err := doc.Apply(current); err != nil {
		return nil, err
	}
	return s.Replace(ctx, target, current)
}

// save maps src onto b and applies the plan inside tx.
func (s *BookService) save(ctx context.Context, tx store.Tx, src *dto.Book, b *domain.Book) error {
	plan, fe, err := s.mapper.Map(ctx, tx, src, b)
	if err != nil {
		return err
	}
	if err := fe.Err(); err != nil {
		return err
	}

	diff, err := plan.Apply(ctx, tx)
	if err != nil {
		return err
	}
	if plan.Author != nil {
		s.logger.Debug("placeholder author created", "isbn13", b.ISBN13, "author", plan.Author.GUID)
	}
	if len(diff.Added) > 0 || len(diff.Removed) > 0 {
		s.logger.Debug("book tags reconciled", "isbn13", b.ISBN13, "added", diff.Added, "removed", diff.Removed)
	}
	return nil
}

func (s *BookService) created(b *domain.Book, isNew bool) *Created {
	return &Created{
		Href:  s.enricher.Links().Book(b.ISBN13),
		ID:    b.ISBN13,
		Title: b.Title,
		New:   isNew,
	}
}
