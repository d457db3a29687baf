package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/npsdash/backend-go/internal/config"
	"github.com/npsdash/backend-go/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Globals are shared by every subcommand. Unset flags fall back to the same
// environment variables the Lambda handlers read.
type Globals struct {
	DataDir     string  `help:"Directory holding the CSV tables." env:"DATA_DIR" default:"data"`
	Bucket      string  `help:"S3 bucket holding the CSV tables; overrides --data-dir." env:"TABLE_BUCKET"`
	Prefix      string  `help:"Key prefix for tables in the bucket." env:"TABLE_PREFIX"`
	Workers     int     `help:"Concurrent lookups or fetches." env:"WORKERS" default:"1"`
	RPS         float64 `name:"rps" help:"Maximum CDO requests per second, shared by all workers." env:"CDO_REQUESTS_PER_SECOND" default:"4"`
	Token       string  `help:"NOAA CDO API token." env:"CDO_TOKEN"`
	LogLevel    string  `help:"Log level." env:"LOG_LEVEL" default:"info"`
	Env         string  `help:"Environment; local and development log to the console." env:"ENV" default:"local"`
	MetricsAddr string  `help:"Serve Prometheus metrics on this address while running."`
}

func (g Globals) config() *config.Config {
	return config.LoadFromEnv(
		config.WithEnvironment(g.Env),
		config.WithLogLevel(g.LogLevel),
		config.WithCDOToken(g.Token),
		config.WithWorkers(g.Workers),
		config.WithRequestsPerSecond(g.RPS),
		config.WithDataDir(g.DataDir),
		config.WithTableBucket(g.Bucket),
		config.WithTablePrefix(g.Prefix),
	)
}

type CLI struct {
	Globals `embed:""`

	Parks    ParksCmd    `cmd:"" help:"Build the park directory table from raw infobox cells."`
	Stations StationsCmd `cmd:"" help:"Resolve the nearest station for every park and write the assignment table."`
	Retry    RetryCmd    `cmd:"" help:"Re-run lookups whose recorded status is retryable."`
	Temps    TempsCmd    `cmd:"" help:"Fetch monthly temperature means for every resolved station."`
	Locate   LocateCmd   `cmd:"" help:"Look up the nearest station for one point."`
}

func main() {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("parkweather"),
		kong.Description("Nearest weather stations and monthly temperatures for national parks."),
		kong.UsageOnError(),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := cli.config()
	cfg.InitializeLogging()

	if cli.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cli.MetricsAddr); err != nil {
				log.Error().Err(err).Msg("Metrics server failed")
			}
		}()
	}

	a, err := newApp(ctx, cfg)
	kctx.FatalIfErrorf(err)
	kctx.FatalIfErrorf(kctx.Run(a))
}
