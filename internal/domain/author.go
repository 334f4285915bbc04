package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Author is a person credited with one or more books.
// GUID is the only identifier that leaves the service.
type Author struct {
	Tracked
	ID          int64     `json:"-"`
	GUID        uuid.UUID `json:"id"`
	FirstName   string    `json:"first_name"`
	MiddleNames string    `json:"middle_names,omitempty"`
	LastName    string    `json:"last_name"`
	Name        string    `json:"name"`
	About       string    `json:"about,omitempty"`
}

// DisplayName joins first, middle and last names with single spaces.
func DisplayName(first, middle, last string) string {
	return strings.Join(strings.Fields(first+" "+middle+" "+last), " ")
}

// FirstLast is the short name form used when ranking search results.
func (a *Author) FirstLast() string {
	return strings.Join(strings.Fields(a.FirstName+" "+a.LastName), " ")
}

// Rename sets the name parts and recomputes the display name.
func (a *Author) Rename(first, middle, last string) {
	a.FirstName = first
	a.MiddleNames = middle
	a.LastName = last
	a.Name = DisplayName(first, middle, last)
}

// PlaceholderAuthor returns a minimal author used when a book is created
// without an author reference.
func PlaceholderAuthor() *Author {
	a := &Author{GUID: uuid.New()}
	a.InitTimestamps()
	return a
}
