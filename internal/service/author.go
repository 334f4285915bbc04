package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dvtbooks/books-api/internal/domain"
	"github.com/dvtbooks/books-api/internal/dto"
	"github.com/dvtbooks/books-api/internal/errors"
	"github.com/dvtbooks/books-api/internal/mapper"
	"github.com/dvtbooks/books-api/internal/patch"
	"github.com/dvtbooks/books-api/internal/search"
	"github.com/dvtbooks/books-api/internal/store"
	"github.com/dvtbooks/books-api/internal/validation"
)

// AuthorService manages authors.
type AuthorService struct {
	store     store.Store
	enricher  *dto.Enricher
	validator *validation.Validator
	logger    *slog.Logger
}

// NewAuthorService creates a new author service.
func NewAuthorService(store store.Store, enricher *dto.Enricher, validator *validation.Validator, logger *slog.Logger) *AuthorService {
	return &AuthorService{
		store:     store,
		enricher:  enricher,
		validator: validator,
		logger:    logger,
	}
}

// Get returns the author with external identifier id.
func (s *AuthorService) Get(ctx context.Context, id string) (*dto.Author, error) {
	guid, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.NotFoundf("author %s not found", id)
	}
	a, err := s.store.AuthorByGUID(ctx, guid)
	if err != nil {
		return nil, translate(err, "author "+id)
	}
	return s.enricher.Author(ctx, a)
}

// Search returns authors ranked by where query occurs in their name.
func (s *AuthorService) Search(ctx context.Context, query string, page search.Page) ([]dto.Author, error) {
	authors, err := s.store.SearchAuthors(ctx, query, page)
	if err != nil {
		return nil, translate(err, "search authors")
	}
	return s.enricher.Authors(ctx, authors)
}

// Create adds a new author under a fresh identifier.
func (s *AuthorService) Create(ctx context.Context, src *dto.Author) (*Created, error) {
	if err := s.validator.Validate(src); err != nil {
		return nil, err
	}

	a := &domain.Author{GUID: uuid.New()}
	if _, fe := mapper.Author(src, a); fe.Err() != nil {
		return nil, fe.Err()
	}

	err := s.store.InTx(ctx, func(tx store.Tx) error {
		return tx.InsertAuthor(ctx, a)
	})
	if err != nil {
		return nil, translate(err, "author")
	}

	s.logger.Info("author created", "id", a.GUID, "name", a.Name)
	return s.created(a, true), nil
}

// Replace updates the author with identifier id, or creates it under that
// identifier when it does not exist. A stale version yields a conflict.
func (s *AuthorService) Replace(ctx context.Context, id string, src *dto.Author) (*Created, error) {
	guid, err := uuid.Parse(id)
	if err != nil {
		return nil, fieldError("id", "The author identifier %q is malformed.", id)
	}
	if src.ID != "" && src.ID != guid.String() {
		return nil, fieldError("id", "The author identifier does not match the URL.")
	}
	if err := s.validator.Validate(src); err != nil {
		return nil, err
	}

	var (
		a     *domain.Author
		isNew bool
	)
	err = s.store.InTx(ctx, func(tx store.Tx) error {
		existing, err := tx.AuthorByGUID(ctx, guid)
		switch {
		case errors.Is(err, store.ErrNotFound):
			a, isNew = &domain.Author{GUID: guid}, true
		case err != nil:
			return err
		default:
			a, isNew = existing, false
		}

		expected, fe := mapper.Author(src, a)
		if err := fe.Err(); err != nil {
			return err
		}
		if isNew {
			return tx.InsertAuthor(ctx, a)
		}
		return tx.UpdateAuthor(ctx, a, expected)
	})
	if err != nil {
		return nil, translate(err, "author "+id)
	}

	s.logger.Info("author saved", "id", a.GUID, "created", isNew)
	return s.created(a, isNew), nil
}

// Patch applies doc to the author's current representation, or to an empty
// one when the author does not exist, and saves it like Replace.
func (s *AuthorService) Patch(ctx context.Context, id string, doc patch.Document) (*Created, error) {
	current, err := s.Get(ctx, id)
	switch {
	case errors.Is(err, errors.ErrNotFound):
		current = &dto.Author{ID: id}
	case err != nil:
		return nil, err
	}

	current.Books = nil
	if err := doc.Apply(current); err != nil {
		return nil, err
	}
	return s.Replace(ctx, id, current)
}

func (s *AuthorService) created(a *domain.Author, isNew bool) *Created {
	return &Created{
		Href: s.enricher.Links().Author(a.GUID),
		ID:   a.GUID.String(),
		Name: a.Name,
		New:  isNew,
	}
}
