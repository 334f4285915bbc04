package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodeValidation, http.StatusBadRequest},
		{CodeConflict, http.StatusConflict},
		{CodeUnsupportedMedia, http.StatusUnsupportedMediaType},
		{CodeTooLarge, http.StatusRequestEntityTooLarge},
		{CodeRateLimited, http.StatusTooManyRequests},
		{CodeInternal, http.StatusInternalServerError},
		{Code("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
			assert.Equal(t, tt.want, (&Error{Code: tt.code}).GetStatus())
		})
	}
}

func TestError_IsMatchesByCode(t *testing.T) {
	err := Conflictf("book %s was modified", "9780134190440")

	assert.True(t, Is(err, ErrConflict))
	assert.False(t, Is(err, ErrNotFound))

	wrapped := fmt.Errorf("replace book: %w", err)
	assert.True(t, Is(wrapped, ErrConflict))
}

func TestError_WrapKeepsCause(t *testing.T) {
	cause := New("disk full")
	err := Wrap(cause, CodeInternal, "store blob")

	assert.Equal(t, "store blob: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestFieldErrors(t *testing.T) {
	var fe FieldErrors
	require.NoError(t, fe.Err())

	fe.Add("isbn13", "The isbn13 field is required.")
	fe.Addf("tags", "Tag reference %d is empty.", 2)

	other := FieldErrors{"author.href": {"Author not found."}}
	fe.Merge(other)

	assert.True(t, fe.Has("tags"))
	assert.False(t, fe.Has("title"))
	assert.Equal(t, []string{"author.href", "isbn13", "tags"}, fe.Fields())

	err := fe.Err()
	require.Error(t, err)

	var domainErr *Error
	require.True(t, As(err, &domainErr))
	assert.Equal(t, CodeValidation, domainErr.Code)
	details, ok := domainErr.Details.(map[string][]string)
	require.True(t, ok)
	assert.Equal(t, []string{"Author not found."}, details["author.href"])
}
