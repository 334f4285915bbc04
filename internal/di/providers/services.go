package providers

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"

	"github.com/dvtbooks/books-api/internal/config"
	"github.com/dvtbooks/books-api/internal/dto"
	"github.com/dvtbooks/books-api/internal/logger"
	"github.com/dvtbooks/books-api/internal/mapper"
	"github.com/dvtbooks/books-api/internal/media/images"
	"github.com/dvtbooks/books-api/internal/service"
	"github.com/dvtbooks/books-api/internal/validation"
)

// ProvideEnricher provides the DTO builder, rooted at the configured base URL.
func ProvideEnricher(i do.Injector) (*dto.Enricher, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	return dto.NewEnricher(storeHandle.Store, dto.NewLinks(cfg.Server.BaseURL)), nil
}

// ProvideValidator provides the request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideAuthorService provides the author service.
func ProvideAuthorService(i do.Injector) (*service.AuthorService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	enricher := do.MustInvoke[*dto.Enricher](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthorService(storeHandle.Store, enricher, validator, log.Logger), nil
}

// ProvideBookService provides the book service.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	enricher := do.MustInvoke[*dto.Enricher](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBookService(
		storeHandle.Store,
		enricher,
		validator,
		mapper.NewBookMapper(cfg.Tags.RelaxedMatching, log.Logger),
		log.Logger,
	), nil
}

// ProvideTagService provides the tag service.
func ProvideTagService(i do.Injector) (*service.TagService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	enricher := do.MustInvoke[*dto.Enricher](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTagService(storeHandle.Store, enricher, cfg.Tags.RelaxedMatching, log.Logger), nil
}

// ProvidePictureService provides the picture service.
func ProvidePictureService(i do.Injector) (*service.PictureService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewPictureService(storeHandle.Store, service.PictureOptions{
		Resize: images.Options{
			MinWidth:  cfg.Pictures.MinWidth,
			MinHeight: cfg.Pictures.MinHeight,
			Quality:   cfg.Pictures.Quality,
		},
		MaxUploadSize: cfg.Pictures.MaxUploadSize,
	}, log.Logger), nil
}

// SeedTags inserts the default tags into an empty catalog when enabled.
func SeedTags(i do.Injector) error {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Tags.Seed {
		return nil
	}

	tags := do.MustInvoke[*service.TagService](i)
	n, err := tags.Seed(context.Background())
	if err != nil {
		return fmt.Errorf("seed tags: %w", err)
	}
	if n > 0 {
		log.Info("Default tags seeded", "count", n)
	}
	return nil
}
