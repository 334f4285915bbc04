// Package dto provides the external representations of catalog resources.
//
// Field names on the wire are the underscore form of the Go field names
// (see naming.Underscore); every json tag in this package follows that rule.
// Cross-resource links are hypermedia references, never surrogate keys.
package dto

import "time"

// AuthorRef is a by-reference link to an author.
type AuthorRef struct {
	Href string `json:"href" validate:"required,href" doc:"Author URL"`
	ID   string `json:"id,omitempty" doc:"Author identifier"`
	Name string `json:"name,omitempty" validate:"max=255" doc:"Author display name"`
}

// BookRef is a by-reference link to a book.
type BookRef struct {
	Href   string `json:"href" doc:"Book URL"`
	ID     string `json:"id" doc:"Book ISBN-13"`
	ISBN10 string `json:"isbn10,omitempty" doc:"ISBN-10"`
	ISBN13 string `json:"isbn13" doc:"ISBN-13"`
	Title  string `json:"title,omitempty" doc:"Book title"`
}

// Tag is a tag representation; inside a book it acts as a reference.
type Tag struct {
	ID          string `json:"id,omitempty" doc:"Tag identifier (its description)"`
	Href        string `json:"href,omitempty" doc:"Tag URL"`
	Description string `json:"description,omitempty" doc:"Tag description"`
}

// Book is the external representation of a book.
//
// Tags distinguishes absent from empty: a nil slice leaves membership
// untouched on write, an empty one clears it.
type Book struct {
	Href          string     `json:"href,omitempty" doc:"Book URL"`
	ISBN10        string     `json:"isbn10,omitempty" validate:"omitempty,max=255,isbn10" doc:"ISBN-10"`
	ISBN13        string     `json:"isbn13" validate:"required,max=255,isbn13" doc:"ISBN-13"`
	Title         string     `json:"title" validate:"required,max=255" doc:"Book title"`
	About         string     `json:"about,omitempty" doc:"Description of the book"`
	Abstract      string     `json:"abstract,omitempty" doc:"Short abstract"`
	Publisher     string     `json:"publisher,omitempty" validate:"max=255" doc:"Publisher"`
	DatePublished *time.Time `json:"date_published,omitempty" doc:"Publication date"`
	Author        *AuthorRef `json:"author,omitempty" doc:"Author reference"`
	Image         string     `json:"image,omitempty" validate:"omitempty,href" doc:"Cover picture URL"`
	ImageBlurHash string     `json:"image_blur_hash,omitempty" doc:"BlurHash placeholder of the cover"`
	Tags          []Tag      `json:"tags,omitempty" doc:"Tag references"`
	Version       string     `json:"version,omitempty" doc:"Concurrency token"`
}

// Author is the external representation of an author.
type Author struct {
	Href        string    `json:"href,omitempty" doc:"Author URL"`
	ID          string    `json:"id,omitempty" doc:"Author identifier"`
	FirstName   string    `json:"first_name" validate:"required,max=255" doc:"First name"`
	MiddleNames string    `json:"middle_names,omitempty" validate:"max=255" doc:"Middle names"`
	LastName    string    `json:"last_name" validate:"required,max=255" doc:"Last name"`
	Name        string    `json:"name,omitempty" doc:"Display name"`
	About       string    `json:"about,omitempty" doc:"Biography"`
	Version     string    `json:"version,omitempty" doc:"Concurrency token"`
	Books       []BookRef `json:"books,omitempty" doc:"Books by this author"`
}

// Created is returned by a successful create.
type Created struct {
	Href  string `json:"href" doc:"URL of the new resource"`
	ID    string `json:"id" doc:"Identifier of the new resource"`
	Name  string `json:"name,omitempty" doc:"Display name or title"`
	Title string `json:"title,omitempty" doc:"Title, for books"`
}
