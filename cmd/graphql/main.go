package main

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/npsdash/backend-go/graph"
	"github.com/npsdash/backend-go/internal/cdo"
	"github.com/npsdash/backend-go/internal/config"
	"github.com/npsdash/backend-go/internal/station"
	"github.com/npsdash/backend-go/internal/tables"
	"github.com/rs/zerolog/log"
)

var (
	handler        *graph.Handler
	setupOnce      sync.Once
	locatorFactory station.LocatorFactory = &station.DefaultLocatorFactory{}
	initHandler                           = defaultInitHandler
)

func defaultInitHandler(ctx context.Context) (*graph.Handler, error) {
	cfg := config.LoadFromEnv()
	cfg.InitializeLogging()

	locator, err := locatorFactory.NewLocator(cdo.NewFromConfig(cfg), cfg, config.GetCacheConfig())
	if err != nil {
		return nil, fmt.Errorf("initializing station locator: %w", err)
	}

	resolver := &graph.Resolver{
		Store:   loadStore(ctx, cfg),
		Locator: locator,
	}

	return graph.NewHandler(resolver)
}

// loadStore falls back to an empty store so live station lookups keep
// working without the tables.
func loadStore(ctx context.Context, cfg *config.Config) graph.ParkStore {
	storage, err := tables.OpenStorage(ctx, cfg)
	if err == nil {
		var repo *tables.Repository
		if repo, err = tables.Load(ctx, storage); err == nil {
			return repo
		}
	}
	log.Warn().Err(err).Msg("Serving without park tables")
	return tables.NewRepository(nil, nil, nil, nil)
}

func handleRequest(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if handler == nil {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Body:       `{"errors": ["Handler not initialized"]}`,
		}, fmt.Errorf("handler not initialized")
	}
	return handler.HandleRequest(ctx, event)
}

func InitializeService() error {
	var initError error
	setupOnce.Do(func() {
		if locatorFactory == nil {
			locatorFactory = &station.DefaultLocatorFactory{}
		}
		log.Debug().Msg("Initializing GraphQL service...")
		var err error
		handler, err = initHandler(context.Background())
		if err != nil {
			initError = fmt.Errorf("failed to initialize handler: %v", err)
			log.Error().Err(err).Msg("Failed to initialize handler")
			return
		}
		log.Debug().Msg("GraphQL service initialized successfully")
	})
	return initError
}

func init() {
	if err := InitializeService(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize service")
	}
}

func main() {
	lambda.Start(handleRequest)
}
