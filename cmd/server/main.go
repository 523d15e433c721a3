package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pagecms/pagecms/pkg/pagecms"
	"github.com/pagecms/pagecms/pkg/pagecms/api"
	"github.com/pagecms/pagecms/pkg/pagecms/config"
	"github.com/pagecms/pagecms/pkg/pagecms/imaging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to read configuration", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()

	repository, cleanup, err := cfg.BuildRepository(ctx)
	if err != nil {
		slog.Error("Failed to initialize repository", "err", err)
		os.Exit(1)
	}
	defer cleanup()

	store, err := cfg.BuildBlobStore()
	if err != nil {
		slog.Error("Failed to initialize storage backend", "err", err)
		os.Exit(1)
	}

	svc, err := pagecms.New(pagecms.WithRepository(repository))
	if err != nil {
		slog.Error("Failed to initialize page service", "err", err)
		os.Exit(1)
	}

	images, err := cfg.BuildImageService(store)
	if err != nil {
		slog.Error("Failed to initialize image service", "err", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: newRouter(svc, images),
	}

	go func() {
		slog.Info("server listening",
			"port", cfg.Port,
			"database", cfg.DatabaseType,
			"storage", cfg.StorageType,
			"environment", cfg.Environment)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "err", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "err", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}

func newRouter(svc pagecms.Service, images *imaging.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	pageHandler := api.NewPageHandler(svc)
	imageHandler := api.NewImageHandler(images)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/collections", pageHandler.ListCollections)
		r.Mount("/pages", pageHandler.Routes())
	})
	r.Mount("/images", imageHandler.Routes())

	return r
}
