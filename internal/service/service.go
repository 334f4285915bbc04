// Package service orchestrates catalog reads and writes: boundary
// validation, mapping inside one store transaction, and translation of
// store errors into domain errors.
package service

import (
	"fmt"

	"github.com/dvtbooks/books-api/internal/errors"
	"github.com/dvtbooks/books-api/internal/store"
)

// Created is the outcome of a replace-by-key write.
type Created struct {
	Href  string
	ID    string
	Name  string
	Title string
	// New is set when the write created the resource.
	New bool
}

// uniqueFields maps unique columns to the wire field reported on violation.
var uniqueFields = map[string]string{
	"books.isbn13": "isbn13",
	"books.isbn10": "isbn10",
	"authors.guid": "id",
}

// translate converts store errors into domain errors. what names the
// resource for messages.
func translate(err error, what string) error {
	if err == nil {
		return nil
	}

	var domainErr *errors.Error
	if errors.As(err, &domainErr) {
		return err
	}

	var dup *store.DuplicateError
	if errors.As(err, &dup) {
		field, ok := uniqueFields[dup.Table+"."+dup.Column]
		if !ok {
			field = dup.Column
		}
		var fe errors.FieldErrors
		fe.Add(field, "The value must be unique.")
		return fe.Err()
	}

	switch {
	case errors.Is(err, store.ErrConflict):
		return errors.Conflictf("%s was modified by another request", what).WithCause(err)
	case errors.Is(err, store.ErrNotFound):
		return errors.NotFoundf("%s not found", what).WithCause(err)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}

// fieldError returns a validation error with one message.
func fieldError(field, format string, args ...any) error {
	var fe errors.FieldErrors
	fe.Addf(field, format, args...)
	return fe.Err()
}
