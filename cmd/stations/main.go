package main

import (
	"context"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/npsdash/backend-go/internal/cdo"
	"github.com/npsdash/backend-go/internal/config"
	"github.com/npsdash/backend-go/internal/handler"
	"github.com/npsdash/backend-go/internal/station"
	"github.com/npsdash/backend-go/internal/tables"
	"github.com/rs/zerolog/log"
)

var (
	lambdaStart     = lambda.Start // Allow mocking of lambda.Start in tests
	stationsHandler *handler.StationsHandler
	setupOnce       sync.Once
	locatorFactory  station.LocatorFactory = &station.DefaultLocatorFactory{}
)

func init() {
	setupOnce.Do(func() {
		cfg := config.LoadFromEnv()
		cfg.InitializeLogging()

		locator, err := locatorFactory.NewLocator(cdo.NewFromConfig(cfg), cfg, config.GetCacheConfig())
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize station locator")
		}

		stationsHandler = handler.NewStationsHandler(locator, loadParks(context.Background(), cfg))
	})
}

// loadParks returns nil when the tables are unavailable; coordinate lookups
// still work without them.
func loadParks(ctx context.Context, cfg *config.Config) handler.ParkSource {
	storage, err := tables.OpenStorage(ctx, cfg)
	if err != nil {
		log.Warn().Err(err).Msg("Table storage unavailable")
		return nil
	}
	repo, err := tables.Load(ctx, storage)
	if err != nil {
		log.Warn().Err(err).Msg("Park tables not loaded")
		return nil
	}
	return repo
}

func handleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return stationsHandler.HandleRequest(ctx, request)
}

func main() {
	lambdaStart(handleRequest)
}
