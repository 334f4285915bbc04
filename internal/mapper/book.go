package mapper

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dvtbooks/books-api/internal/domain"
	"github.com/dvtbooks/books-api/internal/dto"
	"github.com/dvtbooks/books-api/internal/errors"
	"github.com/dvtbooks/books-api/internal/isbn"
	"github.com/dvtbooks/books-api/internal/store"
)

// BookMapper maps book representations. In relaxed mode tag references are
// matched ignoring case.
type BookMapper struct {
	relaxed bool
	logger  *slog.Logger
}

// NewBookMapper creates a book mapper.
func NewBookMapper(relaxedTags bool, logger *slog.Logger) *BookMapper {
	if logger == nil {
		logger = slog.Default()
	}
	return &BookMapper{relaxed: relaxedTags, logger: logger}
}

// BookPlan holds the writes staged by Map.
type BookPlan struct {
	Book     *domain.Book
	Expected *domain.Version

	// Author is a placeholder to insert before the book, when the book had
	// no author and the request named none.
	Author *domain.Author

	tagsTouched bool
	tags        []*domain.Tag
}

// TagDiff reports how Apply changed a book's tag membership.
type TagDiff struct {
	Added   []string
	Removed []string
}

// Map copies src into dst, resolving the author and tag references through
// r. Field problems come back in the FieldErrors; the error is reserved for
// store failures.
func (m *BookMapper) Map(ctx context.Context, r store.Reader, src *dto.Book, dst *domain.Book) (*BookPlan, errors.FieldErrors, error) {
	var fe errors.FieldErrors
	plan := &BookPlan{Book: dst}

	m.mapISBNs(ctx, src, dst, &fe)

	dst.Title = src.Title
	dst.About = src.About
	dst.Abstract = src.Abstract
	dst.Publisher = src.Publisher
	dst.DatePublished = src.DatePublished

	plan.Expected = expectedVersion(src.Version, &fe)

	if err := m.mapAuthor(ctx, r, src, plan, &fe); err != nil {
		return nil, nil, err
	}
	if err := m.mapTags(ctx, r, src, plan, &fe); err != nil {
		return nil, nil, err
	}

	return plan, fe, nil
}

func (m *BookMapper) mapISBNs(ctx context.Context, src *dto.Book, dst *domain.Book, fe *errors.FieldErrors) {
	if isbn.Normalize13(src.ISBN13) == "" {
		fe.Add("isbn13", "The isbn13 field is required.")
	} else if err := isbn.Validate13Context(ctx, "isbn13", src.ISBN13); err != nil {
		fe.Add("isbn13", err.Error())
	}
	if err := isbn.Validate10Context(ctx, "isbn10", src.ISBN10); err != nil {
		fe.Add("isbn10", err.Error())
	}
	dst.ISBN13 = isbn.Normalize13(src.ISBN13)
	dst.ISBN10 = isbn.Normalize10(src.ISBN10)
}

func (m *BookMapper) mapAuthor(ctx context.Context, r store.Reader, src *dto.Book, plan *BookPlan, fe *errors.FieldErrors) error {
	if src.Author == nil || src.Author.Href == "" {
		if plan.Book.AuthorID == 0 {
			plan.Author = domain.PlaceholderAuthor()
			m.logger.Debug("book has no author, staging placeholder", "isbn13", plan.Book.ISBN13)
		}
		return nil
	}

	seg, err := dto.LastSegment(src.Author.Href)
	if err != nil {
		fe.Add("author.href", "The author reference is not a valid URL.")
		return nil
	}
	id, err := uuid.Parse(seg)
	if err != nil {
		fe.Addf("author.href", "The author reference %q is malformed.", src.Author.Href)
		return nil
	}

	author, err := r.AuthorByGUID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		fe.Addf("author.href", "The author %s does not exist.", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("resolve author %s: %w", id, err)
	}

	plan.Book.AuthorID = author.ID
	return nil
}

func (m *BookMapper) mapTags(ctx context.Context, r store.Reader, src *dto.Book, plan *BookPlan, fe *errors.FieldErrors) error {
	if src.Tags == nil {
		return nil
	}
	plan.tagsTouched = true

	seen := make(map[string]bool, len(src.Tags))
	for i, ref := range src.Tags {
		desc, ok := tagDescription(ref)
		if !ok {
			fe.Addf("tags", "Tag reference %d is empty or malformed.", i)
			continue
		}

		key := m.key(desc)
		if seen[key] {
			continue
		}
		seen[key] = true

		tag, err := m.lookupTag(ctx, r, desc)
		if errors.Is(err, store.ErrNotFound) {
			m.logger.Debug("staging new tag", "description", desc)
			plan.tags = append(plan.tags, &domain.Tag{Description: desc})
			continue
		}
		if err != nil {
			return fmt.Errorf("resolve tag %q: %w", desc, err)
		}
		plan.tags = append(plan.tags, tag)
	}
	return nil
}

// tagDescription reads the description from a tag reference: the trailing
// segment of its href, or its description when no href was given.
func tagDescription(ref dto.Tag) (string, bool) {
	if ref.Href == "" {
		return ref.Description, ref.Description != ""
	}
	seg, err := dto.LastSegment(ref.Href)
	if err != nil || seg == "" {
		return "", false
	}
	return seg, true
}

func (m *BookMapper) key(desc string) string {
	if m.relaxed {
		return domain.FoldKey(desc)
	}
	return desc
}

func (m *BookMapper) lookupTag(ctx context.Context, r store.Reader, desc string) (*domain.Tag, error) {
	if m.relaxed {
		return r.TagByFoldKey(ctx, desc)
	}
	return r.TagByDescription(ctx, desc)
}

// Apply performs the staged writes: the placeholder author, the book insert
// or concurrency-checked update, new tags, and the membership diff.
func (p *BookPlan) Apply(ctx context.Context, tx store.Tx) (*TagDiff, error) {
	if p.Author != nil {
		if err := tx.InsertAuthor(ctx, p.Author); err != nil {
			return nil, fmt.Errorf("insert placeholder author: %w", err)
		}
		p.Book.AuthorID = p.Author.ID
	}

	if p.Book.IsNew() {
		if err := tx.InsertBook(ctx, p.Book); err != nil {
			return nil, err
		}
	} else if err := tx.UpdateBook(ctx, p.Book, p.Expected); err != nil {
		return nil, err
	}

	diff := &TagDiff{}
	if !p.tagsTouched {
		return diff, nil
	}

	desired := make(map[int64]*domain.Tag, len(p.tags))
	for _, tag := range p.tags {
		if tag.ID == 0 {
			if err := createTag(ctx, tx, tag); err != nil {
				return nil, err
			}
		}
		desired[tag.ID] = tag
	}

	current, err := tx.BookTags(ctx, p.Book.ID)
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}
	have := make(map[int64]bool, len(current))
	for _, tag := range current {
		have[tag.ID] = true
		if _, keep := desired[tag.ID]; keep {
			continue
		}
		if err := tx.RemoveBookTag(ctx, p.Book.ID, tag.ID); err != nil {
			return nil, fmt.Errorf("remove tag %q: %w", tag.Description, err)
		}
		diff.Removed = append(diff.Removed, tag.Description)
	}
	for _, tag := range p.tags {
		if have[tag.ID] {
			continue
		}
		if err := tx.AddBookTag(ctx, p.Book.ID, tag.ID); err != nil {
			return nil, fmt.Errorf("add tag %q: %w", tag.Description, err)
		}
		have[tag.ID] = true
		diff.Added = append(diff.Added, tag.Description)
	}
	return diff, nil
}

// createTag inserts tag, reusing a row another writer created first.
func createTag(ctx context.Context, tx store.Tx, tag *domain.Tag) error {
	err := tx.InsertTag(ctx, tag)
	if !errors.Is(err, store.ErrAlreadyExists) {
		return err
	}
	existing, err := tx.TagByDescription(ctx, tag.Description)
	if err != nil {
		return fmt.Errorf("reload tag %q: %w", tag.Description, err)
	}
	tag.ID = existing.ID
	return nil
}
