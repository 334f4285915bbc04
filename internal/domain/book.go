package domain

import (
	"time"

	"github.com/google/uuid"
)

// Book is a catalog entry keyed by its normalized ISBN-13.
type Book struct {
	Tracked
	ID            int64      `json:"-"`
	ISBN13        string     `json:"isbn13"`
	ISBN10        string     `json:"isbn10,omitempty"`
	Title         string     `json:"title"`
	About         string     `json:"about,omitempty"`
	Abstract      string     `json:"abstract,omitempty"`
	Publisher     string     `json:"publisher,omitempty"`
	DatePublished *time.Time `json:"date_published,omitempty"`
	AuthorID      int64      `json:"-"`
}

// IsNew reports whether the book has not been persisted yet.
func (b *Book) IsNew() bool {
	return b.ID == 0
}

// BookView is a book together with the rows it references, fetched by
// explicit lookups for projection.
type BookView struct {
	Book
	Author *Author
	Image  *ImageRef
	Tags   []string
}

// ImageRef identifies the blob currently linked to a book.
type ImageRef struct {
	GUID        uuid.UUID
	ContentType string
	BlurHash    string
}
