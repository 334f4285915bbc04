package api

import (
	"github.com/dvtbooks/books-api/internal/service"
)

// Services groups the business logic services used by the API server.
type Services struct {
	Author  *service.AuthorService
	Book    *service.BookService
	Tag     *service.TagService
	Picture *service.PictureService
}
