package api

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dvtbooks/books-api/internal/domain"
	"github.com/dvtbooks/books-api/internal/http/response"
)

// Picture routes move raw bytes, so they are plain chi handlers rather than
// typed operations.
func (s *Server) registerPictureRoutes() {
	s.router.Get("/books/{isbn}/picture", s.handleGetPicture)
	s.router.Get("/books/{isbn}/{stamp:[0-9]+}.picture", s.handleGetStampedPicture)
	s.writes().Put("/books/{isbn}/picture", s.handlePutPicture)
}

func (s *Server) handleGetPicture(w http.ResponseWriter, r *http.Request) {
	blob, err := s.services.Picture.Get(r.Context(), chi.URLParam(r, "isbn"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	w.Header().Set("Cache-Control", CacheNoStore)
	serveBlob(w, r, blob)
}

// handleGetStampedPicture serves the current picture under a URL that
// changes with every upload. The stamp itself is not checked; a stale
// stamp still yields the current picture.
func (s *Server) handleGetStampedPicture(w http.ResponseWriter, r *http.Request) {
	blob, err := s.services.Picture.Get(r.Context(), chi.URLParam(r, "isbn"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	w.Header().Set("Cache-Control", CacheOneDay)
	serveBlob(w, r, blob)
}

// handlePutPicture stores a new picture and answers 204 with Location set to
// its stamped URL.
func (s *Server) handlePutPicture(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "isbn")
	r.Body = http.MaxBytesReader(w, r.Body, s.services.Picture.MaxUploadSize()+1)

	if _, err := s.services.Picture.Put(r.Context(), key, mediaType(r), r.Body); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	book, err := s.services.Book.Get(r.Context(), key)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	w.Header().Set("Location", book.Image)
	response.NoContent(w)
}

// serveBlob writes blob with an ETag derived from its identifier, so
// conditional requests are answered with 304.
func serveBlob(w http.ResponseWriter, r *http.Request, blob *domain.Blob) {
	w.Header().Set("Content-Type", blob.ContentType)
	w.Header().Set("ETag", `"`+blob.GUID.String()+`"`)
	http.ServeContent(w, r, "", blob.CreatedAt, bytes.NewReader(blob.Content))
}
