package store_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/dvtbooks/books-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestError_ErrorWithCause(t *testing.T) {
	cause := errors.New("underlying error")
	err := store.ErrNotFound.WithCause(cause)

	assert.Contains(t, err.Error(), "resource not found")
	assert.Contains(t, err.Error(), "underlying error")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusNotFound, err.HTTPCode())
}

func TestError_SentinelsAreDistinct(t *testing.T) {
	wrapped := fmt.Errorf("update book: %w", store.ErrConflict)

	assert.ErrorIs(t, wrapped, store.ErrConflict)
	assert.NotErrorIs(t, wrapped, store.ErrAlreadyExists)
	assert.Equal(t, "custom", store.ErrConflict.WithMessage("custom").Message)
}

func TestDuplicateError(t *testing.T) {
	err := fmt.Errorf("insert: %w", &store.DuplicateError{Table: "books", Column: "isbn13"})

	assert.ErrorIs(t, err, store.ErrAlreadyExists)
	var dup *store.DuplicateError
	assert.ErrorAs(t, err, &dup)
	assert.Equal(t, "isbn13", dup.Column)
}
