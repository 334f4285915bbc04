package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dvtbooks/books-api/internal/dto"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/tags",
		Summary:     "List tags",
		Description: "Returns tags whose description contains the query, best matches first",
		Tags:        []string{"Tags"},
	}, s.handleListTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTag",
		Method:      http.MethodGet,
		Path:        "/tags/{name}",
		Summary:     "Get tag",
		Description: "Returns a tag by description",
		Tags:        []string{"Tags"},
	}, s.handleGetTag)
}

// === DTOs ===

// ListTagsOutput contains the ranked tags.
type ListTagsOutput struct {
	Body []dto.Tag
}

// GetTagInput contains parameters for getting a tag.
type GetTagInput struct {
	Name string `path:"name" doc:"Tag description, URL-escaped"`
}

// TagOutput wraps a tag for Huma.
type TagOutput struct {
	Body dto.Tag
}

// === Handlers ===

func (s *Server) handleListTags(ctx context.Context, input *ListInput) (*ListTagsOutput, error) {
	tags, err := s.services.Tag.List(ctx, input.Query, input.Page())
	if err != nil {
		return nil, err
	}
	return &ListTagsOutput{Body: tags}, nil
}

func (s *Server) handleGetTag(ctx context.Context, input *GetTagInput) (*TagOutput, error) {
	// chi routes on the escaped path, so "UI%2FUX" arrives still escaped.
	name, err := url.PathUnescape(input.Name)
	if err != nil {
		name = input.Name
	}
	tag, err := s.services.Tag.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	return &TagOutput{Body: *tag}, nil
}
