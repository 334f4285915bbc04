// Package di provides dependency injection configuration for the books API.
package di

import (
	"github.com/samber/do/v2"

	"github.com/dvtbooks/books-api/internal/config"
	"github.com/dvtbooks/books-api/internal/di/providers"
	"github.com/dvtbooks/books-api/internal/dto"
	"github.com/dvtbooks/books-api/internal/logger"
	"github.com/dvtbooks/books-api/internal/service"
	"github.com/dvtbooks/books-api/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Business services
	do.Provide(injector, providers.ProvideEnricher)
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideAuthorService)
	do.Provide(injector, providers.ProvideBookService)
	do.Provide(injector, providers.ProvideTagService)
	do.Provide(injector, providers.ProvidePictureService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)

	_ = do.MustInvoke[*dto.Enricher](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*service.AuthorService](injector)
	_ = do.MustInvoke[*service.BookService](injector)
	_ = do.MustInvoke[*service.TagService](injector)
	_ = do.MustInvoke[*service.PictureService](injector)

	if err := providers.SeedTags(injector); err != nil {
		return err
	}

	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
