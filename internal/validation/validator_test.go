package validation_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvtbooks/books-api/internal/dto"
	domainerrors "github.com/dvtbooks/books-api/internal/errors"
	"github.com/dvtbooks/books-api/internal/validation"
)

func validBook() dto.Book {
	return dto.Book{
		ISBN13: "978-0-13-419044-0",
		ISBN10: "0134190440",
		Title:  "The Go Programming Language",
		Author: &dto.AuthorRef{Href: "/authors/0d6c1a9e-3f3c-4b8e-9d1a-5f1f3e8a2b11"},
	}
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Validate(validBook()))
	assert.NoError(t, v.Validate(dto.Author{FirstName: "Rob", LastName: "Pike"}))
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		mutate    func(b *dto.Book)
		wantField string
	}{
		{
			name:      "missing isbn13",
			mutate:    func(b *dto.Book) { b.ISBN13 = "" },
			wantField: "isbn13",
		},
		{
			name:      "bad isbn13 checksum",
			mutate:    func(b *dto.Book) { b.ISBN13 = "9780134190441" },
			wantField: "isbn13",
		},
		{
			name:      "bad isbn10 checksum",
			mutate:    func(b *dto.Book) { b.ISBN10 = "0134190441" },
			wantField: "isbn10",
		},
		{
			name:      "missing title",
			mutate:    func(b *dto.Book) { b.Title = "" },
			wantField: "title",
		},
		{
			name:      "title too long",
			mutate:    func(b *dto.Book) { b.Title = strings.Repeat("x", 256) },
			wantField: "title",
		},
		{
			name:      "author without href",
			mutate:    func(b *dto.Book) { b.Author = &dto.AuthorRef{} },
			wantField: "author.href",
		},
		{
			name:      "malformed author href",
			mutate:    func(b *dto.Book) { b.Author = &dto.AuthorRef{Href: "http://[::1"} },
			wantField: "author.href",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := validBook()
			tt.mutate(&b)

			err := v.Validate(b)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.True(t, domainerrors.As(err, &domainErr))
			assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())

			details, ok := domainErr.Details.(map[string][]string)
			require.True(t, ok)
			assert.Contains(t, details, tt.wantField)
		})
	}
}

func TestValidator_ReportsEveryField(t *testing.T) {
	v := validation.New()

	fe, err := v.Fields(dto.Book{ISBN10: "123"})
	require.NoError(t, err)

	assert.Equal(t, []string{"isbn10", "isbn13", "title"}, fe.Fields())
	assert.Equal(t, []string{"The isbn13 field is required."}, fe["isbn13"])
}

func TestValidator_JSONFieldNames(t *testing.T) {
	v := validation.New()

	fe, err := v.Fields(dto.Author{LastName: "Pike"})
	require.NoError(t, err)

	// Should use JSON tag name "first_name", not struct field name "FirstName"
	assert.True(t, fe.Has("first_name"))
	assert.False(t, fe.Has("FirstName"))
}
