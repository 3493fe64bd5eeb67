package main

import (
	"context"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"
	"github.com/voltpath/stationfinder/internal/cache"
	"github.com/voltpath/stationfinder/internal/config"
	"github.com/voltpath/stationfinder/internal/handler"
	"github.com/voltpath/stationfinder/internal/overpass"
	"github.com/voltpath/stationfinder/internal/station"
	"github.com/voltpath/stationfinder/pkg/http/client"
)

var (
	lambdaStart     = lambda.Start // Allow mocking of lambda.Start in tests
	stationsHandler *handler.StationsHandler
	setupOnce       sync.Once
)

func init() {
	setupOnce.Do(func() {
		cfg := config.LoadFromEnv()
		cfg.InitializeLogging()

		httpClient := client.New(client.Options{
			Timeout: cfg.OverpassHTTPTimeout,
		})

		// Warm containers keep the LRU between invocations
		var source overpass.ElementSource = overpass.NewClient(httpClient, cfg.OverpassURL)
		cached, err := cache.NewSource(context.Background(), source, config.GetCacheConfig())
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize element cache, continuing without it")
		} else {
			source = cached
		}

		stationsHandler = handler.NewStationsHandler(station.NewFinderFactory(cfg, source))
	})
}

func handleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return stationsHandler.HandleRequest(ctx, request)
}

func main() {
	lambdaStart(handleRequest)
}
