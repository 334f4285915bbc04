package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/dvtbooks/books-api/internal/api"
	"github.com/dvtbooks/books-api/internal/config"
	"github.com/dvtbooks/books-api/internal/logger"
	"github.com/dvtbooks/books-api/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	api *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	return errors.Join(err, h.api.Shutdown())
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Author:  do.MustInvoke[*service.AuthorService](i),
		Book:    do.MustInvoke[*service.BookService](i),
		Tag:     do.MustInvoke[*service.TagService](i),
		Picture: do.MustInvoke[*service.PictureService](i),
	}

	handler := api.NewServer(storeHandle.Store, services, api.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		WriteRate:      cfg.RateLimit.WritesPerMinute,
		WriteBurst:     cfg.RateLimit.WriteBurst,
	}, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv, api: handler}, nil
}
