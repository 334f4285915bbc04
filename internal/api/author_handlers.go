package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/dvtbooks/books-api/internal/dto"
	"github.com/dvtbooks/books-api/internal/http/response"
)

func (s *Server) registerAuthorRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listAuthors",
		Method:      http.MethodGet,
		Path:        "/authors",
		Summary:     "List authors",
		Description: "Returns authors whose name contains the query, best matches first",
		Tags:        []string{"Authors"},
	}, s.handleListAuthors)

	huma.Register(s.api, huma.Operation{
		OperationID: "getAuthor",
		Method:      http.MethodGet,
		Path:        "/authors/{id}",
		Summary:     "Get author",
		Description: "Returns an author and references to their books",
		Tags:        []string{"Authors"},
	}, s.handleGetAuthor)

	w := s.writes()
	w.Post("/authors", s.handleCreateAuthor)
	w.Put("/authors/{id}", s.handleReplaceAuthor)
	w.Patch("/authors/{id}", s.handlePatchAuthor)
}

// === DTOs ===

// ListAuthorsOutput contains the ranked authors.
type ListAuthorsOutput struct {
	Body []dto.Author
}

// GetAuthorInput contains parameters for getting an author.
type GetAuthorInput struct {
	ID string `path:"id" doc:"Author identifier"`
}

// AuthorOutput wraps an author for Huma.
type AuthorOutput struct {
	Body dto.Author
}

// === Handlers ===

func (s *Server) handleListAuthors(ctx context.Context, input *ListInput) (*ListAuthorsOutput, error) {
	authors, err := s.services.Author.Search(ctx, input.Query, input.Page())
	if err != nil {
		return nil, err
	}
	return &ListAuthorsOutput{Body: authors}, nil
}

func (s *Server) handleGetAuthor(ctx context.Context, input *GetAuthorInput) (*AuthorOutput, error) {
	author, err := s.services.Author.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &AuthorOutput{Body: *author}, nil
}

func (s *Server) handleCreateAuthor(w http.ResponseWriter, r *http.Request) {
	var body dto.Author
	if err := s.decodeJSON(w, r, &body); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	created, err := s.services.Author.Create(r.Context(), &body)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	s.writeSaved(w, created)
}

func (s *Server) handleReplaceAuthor(w http.ResponseWriter, r *http.Request) {
	var body dto.Author
	if err := s.decodeJSON(w, r, &body); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	saved, err := s.services.Author.Replace(r.Context(), chi.URLParam(r, "id"), &body)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	s.writeSaved(w, saved)
}

func (s *Server) handlePatchAuthor(w http.ResponseWriter, r *http.Request) {
	doc, err := s.decodePatch(w, r)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	saved, err := s.services.Author.Patch(r.Context(), chi.URLParam(r, "id"), doc)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	s.writeSaved(w, saved)
}
