package service

import (
	"context"
	"log/slog"

	"github.com/dvtbooks/books-api/internal/domain"
	"github.com/dvtbooks/books-api/internal/dto"
	"github.com/dvtbooks/books-api/internal/errors"
	"github.com/dvtbooks/books-api/internal/search"
	"github.com/dvtbooks/books-api/internal/store"
)

// TagService reads tags and seeds the defaults.
// Tags are created as a side effect of book writes, never directly.
type TagService struct {
	store    store.Store
	enricher *dto.Enricher
	relaxed  bool
	logger   *slog.Logger
}

// NewTagService creates a new tag service. In relaxed mode lookups ignore case.
func NewTagService(store store.Store, enricher *dto.Enricher, relaxed bool, logger *slog.Logger) *TagService {
	return &TagService{
		store:    store,
		enricher: enricher,
		relaxed:  relaxed,
		logger:   logger,
	}
}

// List returns tags ranked by where query occurs in their description.
func (s *TagService) List(ctx context.Context, query string, page search.Page) ([]dto.Tag, error) {
	tags, err := s.store.SearchTags(ctx, query, page)
	if err != nil {
		return nil, translate(err, "search tags")
	}
	out := make([]dto.Tag, len(tags))
	for i, t := range tags {
		out[i] = s.enricher.Tag(t.Description)
	}
	return out, nil
}

// Get returns the tag with the given description.
func (s *TagService) Get(ctx context.Context, description string) (*dto.Tag, error) {
	var (
		t   *domain.Tag
		err error
	)
	if s.relaxed {
		t, err = s.store.TagByFoldKey(ctx, description)
	} else {
		t, err = s.store.TagByDescription(ctx, description)
	}
	if err != nil {
		return nil, translate(err, "tag "+description)
	}
	out := s.enricher.Tag(t.Description)
	return &out, nil
}

// Seed inserts the default tags when the catalog has none.
// It returns how many tags were inserted.
func (s *TagService) Seed(ctx context.Context) (int, error) {
	inserted := 0
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		inserted = 0
		n, err := tx.CountTags(ctx)
		if err != nil || n > 0 {
			return err
		}
		for _, desc := range domain.DefaultTags {
			err := tx.InsertTag(ctx, &domain.Tag{Description: desc})
			if errors.Is(err, store.ErrAlreadyExists) {
				continue
			}
			if err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, translate(err, "seed tags")
	}
	if inserted > 0 {
		s.logger.Info("seeded default tags", "count", inserted)
	}
	return inserted, nil
}
