// Package main provides the entry point for the books API server.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/dvtbooks/books-api/internal/di"
	"github.com/dvtbooks/books-api/internal/logger"
)

func main() {
	// Create DI container
	injector := di.NewContainer()

	// Bootstrap all services
	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap server: %v\n", err)
		os.Exit(1)
	}

	log := do.MustInvoke[*logger.Logger](injector)

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	// The container shuts services down in reverse dependency order, so the
	// HTTP server drains before the database closes.
	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
		os.Exit(1)
	}

	log.Info("Shutdown complete")
}
