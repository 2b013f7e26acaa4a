package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/owens3364/coe332midterm/internal/api"
	"github.com/owens3364/coe332midterm/internal/config"
	"github.com/owens3364/coe332midterm/internal/geocode"
	"github.com/owens3364/coe332midterm/internal/metrics"
	"github.com/owens3364/coe332midterm/internal/oem"
)

func main() {
	configPath := flag.String("config", os.Getenv("ISSTRACK_CONFIG"), "path to YAML config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Logging.SlogLevel(),
	}))

	clock := clockwork.NewRealClock()
	fetcher := oem.NewFetcher(cfg.Source.URL, cfg.Source.Timeout)
	diskCache := oem.NewCache(cfg.Source.CacheDir, cfg.Source.CacheMaxFiles)
	store := oem.NewStore(fetcher, cfg.Source.StaleAfter, clock, diskCache, logger)

	// Attempt to recover a dataset from the disk cache on startup; a stale
	// one still seeds readiness and is refreshed on first request.
	if raw, ts, err := diskCache.LoadLatest(); err != nil {
		logger.Info("no OEM cache found, starting without dataset", "error", err)
	} else if ds, err := oem.Parse(bytes.NewReader(raw)); err != nil {
		logger.Warn("failed to parse cached OEM document", "error", err)
	} else {
		ds.FetchedAt = ts
		store.Seed(ds)
		logger.Info("loaded OEM dataset from cache",
			"epochs", len(ds.Epochs),
			"cached_at", ts.UTC().Format(time.RFC3339),
		)
	}

	var geocoder geocode.Geocoder
	if cfg.Geocoder.Enabled {
		client := geocode.NewClient(cfg.Geocoder.BaseURL, cfg.Geocoder.UserAgent, cfg.Geocoder.Timeout, logger)
		geocoder = geocode.NewCached(client, cfg.Geocoder.CacheSize)
		logger.Info("reverse geocoding enabled", "base_url", cfg.Geocoder.BaseURL)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := api.NewServer(addr, store, logger, api.Options{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		TrustProxy:   cfg.Server.TrustProxy,
		Geocoder:     geocoder,
	})

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Warm the dataset so the first request doesn't pay the fetch. A failure
	// here is logged, not fatal: requests surface their own errors.
	warmCtx, cancelWarm := context.WithTimeout(ctx, cfg.Source.Timeout)
	if _, err := store.Current(warmCtx); err != nil {
		logger.Warn("startup dataset fetch failed", "error", err)
	}
	cancelWarm()

	// Background goroutine to keep the dataset age gauge current.
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if age := store.AgeSeconds(); age >= 0 {
					metrics.SetDatasetAge(age)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		logger.Info("starting server",
			"addr", addr,
			"source_url", fetcher.SourceURL(),
			"stale_after", cfg.Source.StaleAfter.String(),
			"geocoder_enabled", cfg.Geocoder.Enabled,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server listen error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.HTTPServer().Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
