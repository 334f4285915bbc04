package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/dvtbooks/books-api/internal/dto"
	"github.com/dvtbooks/books-api/internal/http/response"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/books",
		Summary:     "List books",
		Description: "Returns books whose title contains the query, best matches first",
		Tags:        []string{"Books"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/books/{isbn}",
		Summary:     "Get book",
		Description: "Returns a book by ISBN-13 or ISBN-10",
		Tags:        []string{"Books"},
	}, s.handleGetBook)

	w := s.writes()
	w.Post("/books", s.handleCreateBook)
	w.Put("/books/{isbn}", s.handleReplaceBook)
	w.Patch("/books/{isbn}", s.handlePatchBook)
}

// === DTOs ===

// ListBooksOutput contains the ranked books.
type ListBooksOutput struct {
	Body []dto.Book
}

// GetBookInput contains parameters for getting a book.
type GetBookInput struct {
	ISBN string `path:"isbn" doc:"ISBN-13 or ISBN-10, hyphens allowed"`
}

// BookOutput wraps a book for Huma.
type BookOutput struct {
	Body dto.Book
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, input *ListInput) (*ListBooksOutput, error) {
	books, err := s.services.Book.Search(ctx, input.Query, input.Page())
	if err != nil {
		return nil, err
	}
	return &ListBooksOutput{Body: books}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *GetBookInput) (*BookOutput, error) {
	book, err := s.services.Book.Get(ctx, input.ISBN)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: *book}, nil
}

func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	var body dto.Book
	if err := s.decodeJSON(w, r, &body); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	created, err := s.services.Book.Create(r.Context(), &body)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	s.writeSaved(w, created)
}

func (s *Server) handleReplaceBook(w http.ResponseWriter, r *http.Request) {
	var body dto.Book
	if err := s.decodeJSON(w, r, &body); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	saved, err := s.services.Book.Replace(r.Context(), chi.URLParam(r, "isbn"), &body)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	s.writeSaved(w, saved)
}

func (s *Server) handlePatchBook(w http.ResponseWriter, r *http.Request) {
	doc, err := s.decodePatch(w, r)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	saved, err := s.services.Book.Patch(r.Context(), chi.URLParam(r, "isbn"), doc)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	s.writeSaved(w, saved)
}
