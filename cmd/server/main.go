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

	"github.com/lysyi3m/blog-comb/app/adapter"
	"github.com/lysyi3m/blog-comb/app/api"
	"github.com/lysyi3m/blog-comb/app/cfg"
	"github.com/lysyi3m/blog-comb/app/feed"
	"github.com/lysyi3m/blog-comb/app/site"
	"github.com/lysyi3m/blog-comb/app/source"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown
		return
	}

	setupLogger(appCfg.Debug)

	slog.Info("Starting Blog Comb server", "version", appCfg.Version, "timezone", appCfg.Timezone)

	configCache := site.NewConfigCache(appCfg.SitesDir)
	if err := configCache.Run(); err != nil {
		slog.Error("Failed to load site configurations", "sites_dir", appCfg.SitesDir, "error", err)
		os.Exit(1)
	}
	slog.Info("Site configurations loaded",
		"sites_dir", appCfg.SitesDir,
		"total", configCache.GetConfigCount(),
		"enabled", len(configCache.GetEnabledConfigs()))

	// Upstream deadlines come from each site's timeout; the client has no global one.
	fetcher := source.NewFetcher(&http.Client{}, appCfg.UserAgent)
	factory := adapter.NewFactory(fetcher, feed.NewContentExtractor(), appCfg.ExcerptWords)

	handler := api.NewHandler(configCache, factory)
	router := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Blog Comb server shutdown complete")
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
}
