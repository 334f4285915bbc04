// Package mapper reconciles external representations into catalog entities.
//
// Mapping only reads from the store. Field problems are accumulated into an
// errors.FieldErrors so one response can report all of them, and the writes
// are staged for the caller to apply inside its transaction.
package mapper

import (
	"github.com/dvtbooks/books-api/internal/domain"
	"github.com/dvtbooks/books-api/internal/dto"
	"github.com/dvtbooks/books-api/internal/errors"
)

// Author copies src into dst and recomputes the display name. It returns
// the client's concurrency token, if one was sent.
func Author(src *dto.Author, dst *domain.Author) (*domain.Version, errors.FieldErrors) {
	var fe errors.FieldErrors

	dst.Rename(src.FirstName, src.MiddleNames, src.LastName)
	dst.About = src.About

	expected := expectedVersion(src.Version, &fe)
	return expected, fe
}

// expectedVersion parses an optional wire token.
func expectedVersion(token string, fe *errors.FieldErrors) *domain.Version {
	if token == "" {
		return nil
	}
	v, err := domain.ParseVersion(token)
	if err != nil {
		fe.Add("version", "The field version is not a valid concurrency token.")
		return nil
	}
	return &v
}
