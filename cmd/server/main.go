package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/voltpath/stationfinder/internal/cache"
	"github.com/voltpath/stationfinder/internal/config"
	"github.com/voltpath/stationfinder/internal/overpass"
	"github.com/voltpath/stationfinder/internal/server"
	"github.com/voltpath/stationfinder/internal/station"
	"github.com/voltpath/stationfinder/pkg/http/client"
)

func main() {
	// A missing .env is fine outside local development
	_ = godotenv.Load()

	cfg := config.LoadFromEnv()
	cfg.InitializeLogging()

	srv, err := newServer(context.Background(), cfg, config.GetCacheConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize server")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info().Msg("Shutting down")
		if err := srv.Shutdown(); err != nil {
			log.Error().Err(err).Msg("Error during shutdown")
		}
	}()

	log.Info().
		Str("port", cfg.Port).
		Str("overpass_url", cfg.OverpassURL).
		Msg("Station finder listening")
	if err := srv.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

func newServer(ctx context.Context, cfg *config.Config, cacheCfg *config.CacheConfig) (*server.Server, error) {
	httpClient := client.New(client.Options{
		Timeout: cfg.OverpassHTTPTimeout,
	})

	source, err := cache.NewSource(ctx, overpass.NewClient(httpClient, cfg.OverpassURL), cacheCfg)
	if err != nil {
		return nil, err
	}

	var opts []server.Option
	if cached, ok := source.(server.CacheControl); ok {
		opts = append(opts, server.WithCache(cached))
	}
	return server.New(cfg, station.NewFinderFactory(cfg, source), opts...), nil
}
