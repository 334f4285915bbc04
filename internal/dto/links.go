package dto

import (
	"encoding/binary"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ErrEmptySegment is returned when a reference has no trailing path segment.
var ErrEmptySegment = errors.New("reference has no trailing segment")

// Links builds hypermedia references under a base URL. An empty base
// yields relative references.
type Links struct {
	base string
}

// NewLinks creates a link builder rooted at base.
func NewLinks(base string) Links {
	return Links{base: strings.TrimRight(base, "/")}
}

// Author returns the URL of an author.
func (l Links) Author(id uuid.UUID) string {
	return l.base + "/authors/" + id.String()
}

// Book returns the URL of a book.
func (l Links) Book(isbn13 string) string {
	return l.base + "/books/" + url.PathEscape(isbn13)
}

// Tag returns the URL of a tag.
func (l Links) Tag(description string) string {
	return l.base + "/tags/" + url.PathEscape(description)
}

// Picture returns the cacheable URL of the picture stored in blob id.
// The stamp changes whenever a new picture is uploaded.
func (l Links) Picture(isbn13 string, blob uuid.UUID) string {
	return l.Book(isbn13) + "/" + PictureStamp(blob) + ".picture"
}

// PictureStamp renders the first eight bytes of a blob identifier as an
// unsigned decimal.
func PictureStamp(blob uuid.UUID) string {
	return strconv.FormatUint(binary.LittleEndian.Uint64(blob[:8]), 10)
}

// LastSegment returns the URL-decoded trailing path segment of href.
// Both absolute and relative references are accepted.
func LastSegment(href string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", err
	}
	p := u.EscapedPath()
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		p = p[i+1:]
	}
	if p == "" {
		return "", ErrEmptySegment
	}
	return url.PathUnescape(p)
}

// IsHref reports whether s parses as a relative or absolute URL.
func IsHref(s string) bool {
	_, err := url.Parse(s)
	return err == nil
}
