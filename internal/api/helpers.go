package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/dvtbooks/books-api/internal/dto"
	domainerrors "github.com/dvtbooks/books-api/internal/errors"
	"github.com/dvtbooks/books-api/internal/http/response"
	"github.com/dvtbooks/books-api/internal/patch"
	"github.com/dvtbooks/books-api/internal/search"
	"github.com/dvtbooks/books-api/internal/service"
)

// ListInput carries the paging and search parameters shared by list routes.
type ListInput struct {
	Query string `query:"query" doc:"Search text; results are ranked by where it occurs"`
	Skip  int    `query:"skip" minimum:"0" doc:"Number of results to skip"`
	Top   int    `query:"top" minimum:"0" doc:"Maximum number of results; 0 for all"`
}

// Page returns the requested result window.
func (in *ListInput) Page() search.Page {
	return search.Page{Skip: in.Skip, Limit: in.Top}.Normalize()
}

// mediaType returns the media type of the request body without parameters.
func mediaType(r *http.Request) string {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return ""
	}
	return mt
}

// readBody reads the request body, bounded by the server's body limit.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, domainerrors.TooLarge("request body exceeds the size limit")
		}
		return nil, domainerrors.Validationf("read request body: %v", err)
	}
	return body, nil
}

// decodeJSON reads a JSON request body into dst. Unknown fields are
// reported against the "body" key.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if mediaType(r) != contentTypeJSON {
		return domainerrors.UnsupportedMedia("request body must be application/json")
	}
	body, err := s.readBody(w, r)
	if err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var fe domainerrors.FieldErrors
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			fe.Addf(typeErr.Field, "The %s field has the wrong type.", typeErr.Field)
		} else {
			fe.Addf("body", "The request body is malformed: %v", err)
		}
		return fe.Err()
	}
	return nil
}

// decodePatch reads a JSON Patch request body. Plain application/json is
// accepted for clients that cannot set the patch media type.
func (s *Server) decodePatch(w http.ResponseWriter, r *http.Request) (patch.Document, error) {
	switch mediaType(r) {
	case patch.ContentType, contentTypeJSON:
	default:
		return nil, domainerrors.UnsupportedMedia(fmt.Sprintf("request body must be %s", patch.ContentType))
	}
	body, err := s.readBody(w, r)
	if err != nil {
		return nil, err
	}
	return patch.Decode(body)
}

// writeSaved answers a write: 201 with the new resource's location when it
// was created, 204 otherwise.
func (s *Server) writeSaved(w http.ResponseWriter, c *service.Created) {
	if !c.New {
		w.Header().Set("Location", c.Href)
		response.NoContent(w)
		return
	}
	response.Created(w, c.Href, dto.Created{
		Href:  c.Href,
		ID:    c.ID,
		Name:  c.Name,
		Title: c.Title,
	}, s.logger)
}
