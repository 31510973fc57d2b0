// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the tutorial site server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tutorialsite/internal/cache"
	"tutorialsite/internal/catalog"
	"tutorialsite/internal/config"
	"tutorialsite/internal/database"
	"tutorialsite/internal/handlers"
	"tutorialsite/internal/importer"
	"tutorialsite/internal/logging"
	"tutorialsite/internal/middleware"
	"tutorialsite/internal/render"
	"tutorialsite/internal/router"
	"tutorialsite/internal/session"
	"tutorialsite/internal/store"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		logging.Fatal("failed to read .env", "error", err)
	}

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("failed to load configuration", "error", err)
	}

	// Structured logger: text in development, JSON elsewhere.
	logCloser, err := logging.Setup(cfg)
	if err != nil {
		logging.Fatal("failed to set up logging", "error", err)
	}
	defer logCloser.Close()

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		logging.Fatal("failed to connect to database", "error", err)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		logging.Fatal("failed to run migrations", "error", err)
	}

	catalogStore := store.NewCatalog(db)

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			logging.Fatal("failed to seed database", "error", err)
		}
		if err := importer.New(catalogStore).SeedDevelopment(context.Background()); err != nil {
			logging.Fatal("failed to import sample catalog", "error", err)
		}
	}

	// Connect to Valkey (sessions + page cache).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword, cfg.ValkeyDB)
	if err != nil {
		logging.Fatal("failed to connect to valkey", "error", err)
	}
	defer valkeyClient.Close()

	sessionStore := session.NewStore(valkeyClient, cfg.SecureCookies)

	renderer, err := render.New(sessionStore, cfg.SiteName)
	if err != nil {
		logging.Fatal("failed to initialize template renderer", "error", err)
	}

	// Anonymous catalog pages are cached; any member or flash cookie bypasses it.
	var pageCache *cache.PageCache
	if cfg.PageCacheTTL > 0 {
		pageCache = cache.NewPageCache(valkeyClient, cfg.PageCacheTTL, session.CookieName, session.FlashCookieName)
	} else {
		slog.Warn("page cache disabled")
	}

	limiter := middleware.NewRateLimiter(cfg.ContactRateLimit, cfg.ContactRateWindow)
	defer limiter.Stop()

	userStore := store.NewUserStore(db)
	contactStore := store.NewContactStore(db)

	// Create handler groups with their dependencies.
	publicHandlers := handlers.NewPublic(renderer, sessionStore, catalog.New(catalogStore), catalogStore.Categories, contactStore)
	authHandlers := handlers.NewAuth(renderer, sessionStore, userStore, cfg.SiteName)
	adminHandlers := handlers.NewAdmin(renderer, sessionStore, catalogStore, contactStore, userStore, pageCache)

	r := router.New(router.Deps{
		Sessions:      sessionStore,
		Renderer:      renderer,
		PageCache:     pageCache,
		RateLimiter:   limiter,
		SecureCookies: cfg.SecureCookies,
		Public:        publicHandlers,
		Auth:          authHandlers,
		Admin:         adminHandlers,
	})

	// Create the HTTP server with sensible timeouts.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatal("server failed to start", "error", err)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		return
	}

	slog.Info("server stopped gracefully")
}
