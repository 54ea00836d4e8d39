package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/ExplosionScreener/internal/api/binance"
	"github.com/Alias1177/ExplosionScreener/internal/cache"
	"github.com/Alias1177/ExplosionScreener/internal/config"
	"github.com/Alias1177/ExplosionScreener/internal/screener"
	"github.com/Alias1177/ExplosionScreener/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl)

	market := binance.NewClient(binance.ClientOptions{
		BaseURL:        cfg.UpstreamBaseURL,
		APIKey:         cfg.UpstreamAPIKey,
		RequestTimeout: cfg.RequestTimeout,
		RequestsPerSec: cfg.UpstreamRPS,
		Burst:          cfg.UpstreamBurst,
		MaxRetries:     cfg.MaxRetries,
		RetryDelay:     cfg.RetryDelay,
	})

	popular := screener.DefaultPopularTokens
	if len(cfg.PopularTokens) > 0 {
		popular = cfg.PopularTokens
	}

	s := screener.New(market, cache.NewTiered(cfg.CacheShortTTL, cfg.CacheLongTTL), screener.NewTokenSet(popular), cfg)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.New(s, cfg).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		// A cold pipeline run fans out to hundreds of upstream requests
		WriteTimeout: 2 * time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().
			Str("addr", cfg.HTTPAddr).
			Str("upstream", cfg.UpstreamBaseURL).
			Int("popular_tokens", len(popular)).
			Msg("Screener API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
