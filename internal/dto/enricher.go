package dto

import (
	"context"
	"fmt"

	"github.com/dvtbooks/books-api/internal/domain"
)

// Store defines the batch lookups used to project entities.
// Each method issues one query per call regardless of how many ids it gets.
type Store interface {
	AuthorsByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Author, error)
	TagsForBooks(ctx context.Context, bookIDs []int64) (map[int64][]string, error)
	ImagesForBooks(ctx context.Context, bookIDs []int64) (map[int64]*domain.ImageRef, error)
	BooksForAuthors(ctx context.Context, authorIDs []int64) (map[int64][]*domain.Book, error)
}

// Enricher projects domain entities to their external representations,
// fetching the rows they reference in batches.
type Enricher struct {
	store Store
	links Links
}

// NewEnricher creates a new enricher.
func NewEnricher(store Store, links Links) *Enricher {
	return &Enricher{store: store, links: links}
}

// Links returns the link builder used for projections.
func (e *Enricher) Links() Links {
	return e.links
}

// Books projects a page of books, preserving order.
func (e *Enricher) Books(ctx context.Context, books []*domain.Book) ([]Book, error) {
	if len(books) == 0 {
		return []Book{}, nil
	}

	bookIDs := make([]int64, len(books))
	authorIDs := make([]int64, 0, len(books))
	for i, b := range books {
		bookIDs[i] = b.ID
		authorIDs = append(authorIDs, b.AuthorID)
	}

	authors, err := e.store.AuthorsByIDs(ctx, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch authors: %w", err)
	}
	tags, err := e.store.TagsForBooks(ctx, bookIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch tags: %w", err)
	}
	images, err := e.store.ImagesForBooks(ctx, bookIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch images: %w", err)
	}

	out := make([]Book, len(books))
	for i, b := range books {
		out[i] = e.BookView(&domain.BookView{
			Book:   *b,
			Author: authors[b.AuthorID],
			Image:  images[b.ID],
			Tags:   tags[b.ID],
		})
	}
	return out, nil
}

// Book projects a single book.
func (e *Enricher) Book(ctx context.Context, book *domain.Book) (*Book, error) {
	out, err := e.Books(ctx, []*domain.Book{book})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// BookView projects an already-assembled view without touching the store.
func (e *Enricher) BookView(v *domain.BookView) Book {
	b := Book{
		Href:          e.links.Book(v.ISBN13),
		ISBN10:        v.ISBN10,
		ISBN13:        v.ISBN13,
		Title:         v.Title,
		About:         v.About,
		Abstract:      v.Abstract,
		Publisher:     v.Publisher,
		DatePublished: v.DatePublished,
		Version:       v.Version.String(),
		Tags:          make([]Tag, 0, len(v.Tags)),
	}
	if v.Author != nil {
		b.Author = &AuthorRef{
			Href: e.links.Author(v.Author.GUID),
			ID:   v.Author.GUID.String(),
			Name: v.Author.Name,
		}
	}
	if v.Image != nil {
		b.Image = e.links.Picture(v.ISBN13, v.Image.GUID)
		b.ImageBlurHash = v.Image.BlurHash
	}
	for _, desc := range v.Tags {
		b.Tags = append(b.Tags, e.Tag(desc))
	}
	return b
}

// Authors projects a page of authors with their book references.
func (e *Enricher) Authors(ctx context.Context, authors []*domain.Author) ([]Author, error) {
	if len(authors) == 0 {
		return []Author{}, nil
	}

	ids := make([]int64, len(authors))
	for i, a := range authors {
		ids[i] = a.ID
	}
	books, err := e.store.BooksForAuthors(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch books: %w", err)
	}

	out := make([]Author, len(authors))
	for i, a := range authors {
		out[i] = e.AuthorWithBooks(a, books[a.ID])
	}
	return out, nil
}

// Author projects a single author.
func (e *Enricher) Author(ctx context.Context, author *domain.Author) (*Author, error) {
	out, err := e.Authors(ctx, []*domain.Author{author})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// AuthorWithBooks projects an author whose books are already known.
func (e *Enricher) AuthorWithBooks(a *domain.Author, books []*domain.Book) Author {
	out := Author{
		Href:        e.links.Author(a.GUID),
		ID:          a.GUID.String(),
		FirstName:   a.FirstName,
		MiddleNames: a.MiddleNames,
		LastName:    a.LastName,
		Name:        a.Name,
		About:       a.About,
		Version:     a.Version.String(),
		Books:       make([]BookRef, 0, len(books)),
	}
	for _, b := range books {
		out.Books = append(out.Books, BookRef{
			Href:   e.links.Book(b.ISBN13),
			ID:     b.ISBN13,
			ISBN10: b.ISBN10,
			ISBN13: b.ISBN13,
			Title:  b.Title,
		})
	}
	return out
}

// Tag projects a tag description.
func (e *Enricher) Tag(description string) Tag {
	return Tag{
		ID:          description,
		Href:        e.links.Tag(description),
		Description: description,
	}
}
