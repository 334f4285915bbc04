package api

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvtbooks/books-api/internal/dto"
	"github.com/dvtbooks/books-api/internal/mapper"
	"github.com/dvtbooks/books-api/internal/service"
	"github.com/dvtbooks/books-api/internal/store/sqlite"
	"github.com/dvtbooks/books-api/internal/validation"
)

type testServer struct {
	t      *testing.T
	server *Server
}

// setupTestServer creates a server backed by a fresh database.
func setupTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()

	// Create a no-op logger for tests (discards all logs).
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := sqlite.Open(filepath.Join(t.TempDir(), "books.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	enricher := dto.NewEnricher(s, dto.NewLinks(""))
	v := validation.New()
	services := &Services{
		Author:  service.NewAuthorService(s, enricher, v, logger),
		Book:    service.NewBookService(s, enricher, v, mapper.NewBookMapper(false, logger), logger),
		Tag:     service.NewTagService(s, enricher, false, logger),
		Picture: service.NewPictureService(s, service.PictureOptions{MaxUploadSize: 1 << 20}, logger),
	}
	_, err = services.Tag.Seed(context.Background())
	require.NoError(t, err)

	server := NewServer(s, services, opts, logger)
	t.Cleanup(func() { _ = server.Shutdown() })
	return &testServer{t: t, server: server}
}

func (ts *testServer) do(method, path, contentType string, body []byte, headers ...string) *httptest.ResponseRecorder {
	ts.t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	ts.server.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) get(path string, headers ...string) *httptest.ResponseRecorder {
	ts.t.Helper()
	return ts.do(http.MethodGet, path, "", nil, headers...)
}

func (ts *testServer) sendJSON(method, path string, v any) *httptest.ResponseRecorder {
	ts.t.Helper()
	body, err := json.Marshal(v)
	require.NoError(ts.t, err)
	return ts.do(method, path, "application/json", body)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (ts *testServer) createAuthor(first, last string) dto.Created {
	ts.t.Helper()
	rec := ts.sendJSON(http.MethodPost, "/authors", dto.Author{FirstName: first, LastName: last})
	require.Equal(ts.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[dto.Created](ts.t, rec)
}

func TestHealthCheck_Success(t *testing.T) {
	ts := setupTestServer(t, Options{})

	rec := ts.get("/health")
	assert.Equal(t, http.StatusOK, rec.Code)

	health := decode[HealthResponse](t, rec)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "healthy", health.Components["database"].Status)
}

func TestAuthorRoutes_CreateReplaceConflict(t *testing.T) {
	ts := setupTestServer(t, Options{})

	created := ts.createAuthor("Jon", "Bodner")
	assert.Equal(t, "/authors/"+created.ID, created.Href)
	assert.Equal(t, "Jon Bodner", created.Name)

	rec := ts.get(created.Href)
	require.Equal(t, http.StatusOK, rec.Code)
	author := decode[dto.Author](t, rec)
	assert.NotEmpty(t, author.Version)

	stale := author.Version
	author.About = "Writes about Go."
	rec = ts.sendJSON(http.MethodPut, created.Href, author)
	assert.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	author.Version = stale
	rec = ts.sendJSON(http.MethodPut, created.Href, author)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestAuthorRoutes_ReplaceCreatesUnderPathID(t *testing.T) {
	ts := setupTestServer(t, Options{})

	path := "/authors/6f1c8a9e-3b5d-4c7a-9e21-0d4f5b6a7c8d"
	rec := ts.sendJSON(http.MethodPut, path, dto.Author{FirstName: "Ada", LastName: "Lovelace"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, path, rec.Header().Get("Location"))
}

func TestAuthorRoutes_NotFound(t *testing.T) {
	ts := setupTestServer(t, Options{})

	rec := ts.get("/authors/6f1c8a9e-3b5d-4c7a-9e21-0d4f5b6a7c8d")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	body := decode[APIError](t, rec)
	assert.Equal(t, "NOT_FOUND", body.Code)
}

func TestWriteRoutes_RequireJSON(t *testing.T) {
	ts := setupTestServer(t, Options{})

	rec := ts.do(http.MethodPost, "/authors", "text/plain", []byte(`{"first_name":"A","last_name":"B"}`))
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	rec = ts.do(http.MethodPost, "/authors", "application/json", []byte(`{"first_name":`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookRoutes_ValidationReportsEveryField(t *testing.T) {
	ts := setupTestServer(t, Options{})

	rec := ts.sendJSON(http.MethodPost, "/books", map[string]any{"isbn10": "123"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode[map[string][]string](t, rec)
	assert.Contains(t, body, "isbn13")
	assert.Contains(t, body, "title")
	assert.Contains(t, body, "isbn10")
	assert.NotContains(t, body, "code")
}

func TestBookRoutes_CreateGetPatchList(t *testing.T) {
	ts := setupTestServer(t, Options{})

	author := ts.createAuthor("Jon", "Bodner")
	rec := ts.sendJSON(http.MethodPost, "/books", dto.Book{
		ISBN13: "978-1-4920-7721-3",
		ISBN10: "1492077216",
		Title:  "Learning Go",
		Author: &dto.AuthorRef{Href: author.Href},
		Tags:   []dto.Tag{{Href: "/tags/Linux"}, {Description: "Go"}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "/books/9781492077213", rec.Header().Get("Location"))

	rec = ts.get("/books/1492077216")
	require.Equal(t, http.StatusOK, rec.Code)
	book := decode[dto.Book](t, rec)
	assert.Equal(t, "9781492077213", book.ISBN13)
	assert.Equal(t, author.Href, book.Author.Href)
	require.Len(t, book.Tags, 2)

	patchDoc := `[{"op":"replace","path":"/Title","value":"Learning Go, 2nd Edition"}]`
	rec = ts.do(http.MethodPatch, "/books/9781492077213", "application/json-patch+json", []byte(patchDoc))
	assert.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = ts.get("/books?query=learning&top=10")
	require.Equal(t, http.StatusOK, rec.Code)
	books := decode[[]dto.Book](t, rec)
	require.Len(t, books, 1)
	assert.Equal(t, "Learning Go, 2nd Edition", books[0].Title)

	rec = ts.do(http.MethodPatch, "/books/9781492077213", "text/plain", []byte(patchDoc))
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestListRoutes_RejectNegativePaging(t *testing.T) {
	ts := setupTestServer(t, Options{})

	rec := ts.get("/books?top=-1")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[map[string][]string](t, rec), "top")
}

func TestTagRoutes(t *testing.T) {
	ts := setupTestServer(t, Options{})

	rec := ts.get("/tags/UI%2FUX")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "UI/UX", decode[dto.Tag](t, rec).Description)

	rec = ts.get("/tags?query=re")
	require.Equal(t, http.StatusOK, rec.Code)
	tags := decode[[]dto.Tag](t, rec)
	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = tag.Description
	}
	assert.Equal(t, []string{"React", "Redux"}, names)

	rec = ts.get("/tags/linux")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPictureRoutes(t *testing.T) {
	ts := setupTestServer(t, Options{})

	rec := ts.sendJSON(http.MethodPost, "/books", dto.Book{ISBN13: "9781492077213", Title: "Learning Go"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.get("/books/9781492077213/picture")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(http.MethodPut, "/books/9781492077213/picture", "image/webp", []byte("RIFF"))
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	rec = ts.do(http.MethodPut, "/books/9781492077213/picture", "image/png", testPNG(t, 400, 300))
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	assert.Empty(t, rec.Body.Bytes())
	location := rec.Header().Get("Location")
	assert.True(t, strings.HasPrefix(location, "/books/9781492077213/"))
	assert.True(t, strings.HasSuffix(location, ".picture"))

	rec = ts.get("/books/9781492077213")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, location, decode[dto.Book](t, rec).Image)

	rec = ts.get(location)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, CacheOneDay, rec.Header().Get("Cache-Control"))
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	rec = ts.get("/books/9781492077213/picture", "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, rec.Code)
}

func TestWriteRoutes_RateLimited(t *testing.T) {
	ts := setupTestServer(t, Options{WriteRate: 1, WriteBurst: 1})

	ts.createAuthor("Ada", "Lovelace")

	rec := ts.sendJSON(http.MethodPost, "/authors", dto.Author{FirstName: "Alan", LastName: "Turing"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	// Reads are not limited.
	assert.Equal(t, http.StatusOK, ts.get("/authors").Code)
}
