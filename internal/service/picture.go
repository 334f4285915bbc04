package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dvtbooks/books-api/internal/domain"
	"github.com/dvtbooks/books-api/internal/errors"
	"github.com/dvtbooks/books-api/internal/isbn"
	"github.com/dvtbooks/books-api/internal/media/images"
	"github.com/dvtbooks/books-api/internal/store"
)

// DefaultMaxUploadSize bounds picture uploads when no limit is configured.
const DefaultMaxUploadSize = 10 << 20

// PictureOptions configures the picture pipeline.
type PictureOptions struct {
	Resize        images.Options
	MaxUploadSize int64
}

// PictureService stores and serves book pictures.
type PictureService struct {
	store  store.Store
	opts   PictureOptions
	logger *slog.Logger
}

// NewPictureService creates a new picture service.
func NewPictureService(store store.Store, opts PictureOptions, logger *slog.Logger) *PictureService {
	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = DefaultMaxUploadSize
	}
	return &PictureService{store: store, opts: opts, logger: logger}
}

// Get returns the picture currently linked to the book with ISBN key.
func (s *PictureService) Get(ctx context.Context, key string) (*domain.Blob, error) {
	b, err := s.store.BookByISBN(ctx, isbn.Normalize(key))
	if err != nil {
		return nil, translate(err, "book "+key)
	}
	blob, err := s.store.BookImage(ctx, b.ID)
	if err != nil {
		return nil, translate(err, "picture of book "+key)
	}
	return blob, nil
}

// Put resizes the picture read from body and links it to the book,
// replacing any previous picture. The previous blob is left in place.
func (s *PictureService) Put(ctx context.Context, key, contentType string, body io.Reader) (*domain.Blob, error) {
	if !images.IsSupported(contentType) {
		return nil, errors.UnsupportedMedia("pictures must be BMP, GIF, JPEG or PNG")
	}

	data, err := io.ReadAll(io.LimitReader(body, s.opts.MaxUploadSize+1))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "read picture")
	}
	if int64(len(data)) > s.opts.MaxUploadSize {
		return nil, errors.TooLarge("picture exceeds the upload size limit")
	}

	key = isbn.Normalize(key)
	if _, err := s.store.BookByISBN(ctx, key); err != nil {
		return nil, translate(err, "book "+key)
	}

	res, err := images.Resize(data, contentType, s.opts.Resize)
	switch {
	case errors.Is(err, images.ErrUnsupported), errors.Is(err, images.ErrFormatMismatch):
		return nil, errors.UnsupportedMedia(err.Error())
	case errors.Is(err, images.ErrTooManyPixels):
		return nil, errors.TooLarge(err.Error())
	case err != nil:
		return nil, errors.Wrap(err, errors.CodeInternal, "process picture")
	}

	blob := &domain.Blob{
		GUID:        uuid.New(),
		ContentType: res.ContentType,
		Content:     res.Content,
		BlurHash:    res.BlurHash,
		Width:       res.Width,
		Height:      res.Height,
	}
	err = s.store.InTx(ctx, func(tx store.Tx) error {
		b, err := tx.BookByISBN(ctx, key)
		if err != nil {
			return err
		}
		if err := tx.InsertBlob(ctx, blob); err != nil {
			return err
		}
		return tx.SetBookImage(ctx, b.ID, blob.ID)
	})
	if err != nil {
		return nil, translate(err, "picture of book "+key)
	}

	s.logger.Info("picture stored",
		"book", key,
		"blob", blob.GUID,
		"width", blob.Width,
		"height", blob.Height,
		"size", len(blob.Content),
	)
	return blob, nil
}

// MaxUploadSize returns the largest picture Put accepts, in bytes.
func (s *PictureService) MaxUploadSize() int64 {
	return s.opts.MaxUploadSize
}
