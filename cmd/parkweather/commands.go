package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/npsdash/backend-go/internal/cdo"
	"github.com/npsdash/backend-go/internal/climate"
	"github.com/npsdash/backend-go/internal/config"
	"github.com/npsdash/backend-go/internal/models"
	"github.com/npsdash/backend-go/internal/parks"
	"github.com/npsdash/backend-go/internal/resolve"
	"github.com/npsdash/backend-go/internal/station"
	"github.com/npsdash/backend-go/internal/tables"
	"github.com/rs/zerolog/log"
)

var locatorFactory station.LocatorFactory = &station.DefaultLocatorFactory{}

// app is bound into every subcommand's Run.
type app struct {
	ctx     context.Context
	storage tables.Storage
	locator models.StationLocator
	driver  *resolve.Driver
	out     io.Writer
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	client := cdo.NewFromConfig(cfg)
	cacheCfg := config.GetCacheConfig()

	locator, err := locatorFactory.NewLocator(client, cfg, cacheCfg)
	if err != nil {
		return nil, fmt.Errorf("initializing station locator: %w", err)
	}
	fetcher, err := climate.NewFetcher(ctx, client, cacheCfg)
	if err != nil {
		return nil, fmt.Errorf("initializing monthly fetcher: %w", err)
	}
	storage, err := tables.OpenStorage(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("opening table storage: %w", err)
	}

	return &app{
		ctx:     ctx,
		storage: storage,
		locator: locator,
		driver:  resolve.NewDriver(locator, fetcher, cfg.Workers),
		out:     os.Stdout,
	}, nil
}

type ParksCmd struct {
	Source string `help:"Raw infobox table with park_code, park_name, Coordinates and Area columns." default:"park_infobox.csv"`
}

func (c *ParksCmd) Run(a *app) error {
	rows, err := tables.ReadInfobox(a.ctx, a.storage, c.Source)
	if err != nil {
		return err
	}

	directory := parks.Directory(rows)
	located := 0
	for _, p := range directory {
		if p.Location.Defined() {
			located++
		}
	}
	log.Info().
		Int("rows", len(rows)).
		Int("parks", len(directory)).
		Int("located", located).
		Msg("Built park directory")

	return tables.WriteParks(a.ctx, a.storage, directory)
}

type StationsCmd struct {
	Retries int `help:"Extra passes over retryable lookups after the first run." default:"1"`
}

func (c *StationsCmd) Run(a *app) error {
	parks, err := tables.ReadParks(a.ctx, a.storage)
	if err != nil {
		return err
	}

	assignments, err := a.driver.ResolveStations(a.ctx, parks)
	if err != nil {
		return err
	}
	if assignments, err = retryPasses(a, assignments, c.Retries); err != nil {
		return err
	}

	return tables.WriteAssignments(a.ctx, a.storage, assignments)
}

type RetryCmd struct {
	Passes int `help:"Passes over retryable lookups." default:"1"`
}

func (c *RetryCmd) Run(a *app) error {
	assignments, err := tables.ReadAssignments(a.ctx, a.storage)
	if err != nil {
		return err
	}
	if assignments, err = retryPasses(a, assignments, c.Passes); err != nil {
		return err
	}
	return tables.WriteAssignments(a.ctx, a.storage, assignments)
}

func retryPasses(a *app, assignments []models.Assignment, passes int) ([]models.Assignment, error) {
	for i := 0; i < passes && countRetryable(assignments) > 0; i++ {
		var err error
		if assignments, err = a.driver.RetryFailed(a.ctx, assignments); err != nil {
			return nil, err
		}
	}
	return assignments, nil
}

func countRetryable(assignments []models.Assignment) int {
	n := 0
	for _, as := range assignments {
		if as.Status.Retryable() {
			n++
		}
	}
	return n
}

type TempsCmd struct {
	Start time.Time `help:"First day of the window." format:"2006-01-02" default:"2024-03-01"`
	End   time.Time `help:"Last day of the window." format:"2006-01-02" default:"2025-03-01"`
	Types []string  `help:"CDO data types to average." default:"TMAX,TMIN"`
}

func (c *TempsCmd) Run(a *app) error {
	if c.End.Before(c.Start) {
		return fmt.Errorf("end %s is before start %s", c.End.Format(time.DateOnly), c.Start.Format(time.DateOnly))
	}

	assignments, err := tables.ReadAssignments(a.ctx, a.storage)
	if err != nil {
		return err
	}

	report, err := a.driver.FetchTemperatures(a.ctx, assignments, c.Start, c.End, c.Types)
	if err != nil {
		return err
	}
	for id, ferr := range report.Failed {
		log.Warn().Err(ferr).Str("station_id", id).Msg("No temperatures written for station")
	}

	return tables.WriteTemperatures(a.ctx, a.storage, report.Means)
}

type LocateCmd struct {
	Lat float64 `help:"Latitude in decimal degrees." required:""`
	Lon float64 `help:"Longitude in decimal degrees." required:""`
}

func (c *LocateCmd) Run(a *app) error {
	res, err := a.locator.Locate(a.ctx, models.Point{Latitude: c.Lat, Longitude: c.Lon})
	if err != nil {
		var lookupErr *station.LookupError
		if !errors.As(err, &lookupErr) {
			return err
		}
		if res == nil {
			res = &models.Resolution{Status: lookupErr.Status, Attempts: lookupErr.Attempts}
		}
	}

	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(res); encErr != nil {
		return encErr
	}
	return err
}
