package dto

import (
	"context"
	"testing"

	"github.com/dvtbooks/books-api/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	authors map[int64]*domain.Author
	tags    map[int64][]string
	images  map[int64]*domain.ImageRef
	books   map[int64][]*domain.Book
	calls   int
}

func (f *fakeStore) AuthorsByIDs(_ context.Context, _ []int64) (map[int64]*domain.Author, error) {
	f.calls++
	return f.authors, nil
}

func (f *fakeStore) TagsForBooks(_ context.Context, _ []int64) (map[int64][]string, error) {
	f.calls++
	return f.tags, nil
}

func (f *fakeStore) ImagesForBooks(_ context.Context, _ []int64) (map[int64]*domain.ImageRef, error) {
	f.calls++
	return f.images, nil
}

func (f *fakeStore) BooksForAuthors(_ context.Context, _ []int64) (map[int64][]*domain.Book, error) {
	f.calls++
	return f.books, nil
}

func TestEnricher_Books(t *testing.T) {
	authorGUID := uuid.New()
	blobGUID := uuid.New()
	store := &fakeStore{
		authors: map[int64]*domain.Author{7: {ID: 7, GUID: authorGUID, Name: "Alan A. A. Donovan"}},
		tags:    map[int64][]string{1: {"Design", "Linux"}},
		images:  map[int64]*domain.ImageRef{1: {GUID: blobGUID, ContentType: "image/png", BlurHash: "LEHV6nWB2yk8"}},
	}
	e := NewEnricher(store, NewLinks("http://api.test"))

	books := []*domain.Book{
		{ID: 1, ISBN13: "9780134190440", Title: "The Go Programming Language", AuthorID: 7},
		{ID: 2, ISBN13: "9781617291784", Title: "Go in Action", AuthorID: 9},
	}
	books[0].Version = 3

	out, err := e.Books(context.Background(), books)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 3, store.calls, "one batch query per association")

	first := out[0]
	assert.Equal(t, "http://api.test/books/9780134190440", first.Href)
	require.NotNil(t, first.Author)
	assert.Equal(t, authorGUID.String(), first.Author.ID)
	assert.Equal(t, "http://api.test/authors/"+authorGUID.String(), first.Author.Href)
	assert.Equal(t, domain.Version(3).String(), first.Version)
	assert.Equal(t, "http://api.test/books/9780134190440/"+PictureStamp(blobGUID)+".picture", first.Image)
	assert.Equal(t, "LEHV6nWB2yk8", first.ImageBlurHash)
	require.Len(t, first.Tags, 2)
	assert.Equal(t, Tag{ID: "Design", Href: "http://api.test/tags/Design", Description: "Design"}, first.Tags[0])

	second := out[1]
	assert.Nil(t, second.Author)
	assert.Empty(t, second.Image)
	assert.NotNil(t, second.Tags)
	assert.Empty(t, second.Tags)
}

func TestEnricher_Authors(t *testing.T) {
	a := &domain.Author{ID: 4, GUID: uuid.New(), FirstName: "Brian", LastName: "Kernighan", Name: "Brian Kernighan"}
	store := &fakeStore{
		books: map[int64][]*domain.Book{4: {{ISBN13: "9780134190440", ISBN10: "0134190440", Title: "The Go Programming Language"}}},
	}
	e := NewEnricher(store, NewLinks(""))

	out, err := e.Author(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, "/authors/"+a.GUID.String(), out.Href)
	require.Len(t, out.Books, 1)
	assert.Equal(t, BookRef{
		Href:   "/books/9780134190440",
		ID:     "9780134190440",
		ISBN10: "0134190440",
		ISBN13: "9780134190440",
		Title:  "The Go Programming Language",
	}, out.Books[0])
}

func TestEnricher_Empty(t *testing.T) {
	store := &fakeStore{}
	e := NewEnricher(store, NewLinks(""))

	books, err := e.Books(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, books)
	assert.Zero(t, store.calls)
}
