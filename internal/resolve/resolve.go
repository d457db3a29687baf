// Package resolve drives station lookups and monthly fetches over every park.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/npsdash/backend-go/internal/models"
	"github.com/npsdash/backend-go/internal/station"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type Driver struct {
	locator models.StationLocator
	fetcher models.MonthlyFetcher
	workers int
}

func NewDriver(locator models.StationLocator, fetcher models.MonthlyFetcher, workers int) *Driver {
	if workers <= 0 {
		workers = 1
	}
	return &Driver{locator: locator, fetcher: fetcher, workers: workers}
}

// ResolveStations returns one assignment per park, in park order. Failed
// lookups are recorded on their entry; only cancellation stops the run.
func (d *Driver) ResolveStations(ctx context.Context, parks []models.Park) ([]models.Assignment, error) {
	out := make([]models.Assignment, len(parks))
	for i, p := range parks {
		out[i] = models.Assignment{ParkCode: p.Code, Location: p.Location}
	}

	if err := d.resolve(ctx, out, func(models.Assignment) bool { return true }); err != nil {
		return nil, err
	}

	logSummary("Resolved stations", out)
	return out, nil
}

// RetryFailed re-runs every entry whose status is retryable. Resolved and
// skipped entries are left untouched. The input slice is not modified.
func (d *Driver) RetryFailed(ctx context.Context, assignments []models.Assignment) ([]models.Assignment, error) {
	out := make([]models.Assignment, len(assignments))
	copy(out, assignments)

	if err := d.resolve(ctx, out, func(a models.Assignment) bool { return a.Status.Retryable() }); err != nil {
		return nil, err
	}

	logSummary("Retried failed lookups", out)
	return out, nil
}

func (d *Driver) resolve(ctx context.Context, entries []models.Assignment, want func(models.Assignment) bool) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)

	for i := range entries {
		if !want(entries[i]) {
			continue
		}
		i := i
		g.Go(func() error {
			a, err := d.lookup(gctx, entries[i])
			if err != nil {
				return err
			}
			entries[i] = a
			return nil
		})
	}

	return g.Wait()
}

// lookup returns an error only when the lookup was aborted rather than failed.
func (d *Driver) lookup(ctx context.Context, a models.Assignment) (models.Assignment, error) {
	res, err := d.locator.Locate(ctx, a.Location)
	if err != nil {
		var lookupErr *station.LookupError
		if !errors.As(err, &lookupErr) {
			return a, fmt.Errorf("locating station for %s: %w", a.ParkCode, err)
		}
		a.StationID = ""
		a.Status = lookupErr.Status
		a.Attempts = lookupErr.Attempts
		a.Error = err.Error()
		return a, nil
	}

	a.Status = res.Status
	a.StationID = res.StationID
	a.Attempts = res.Attempts
	a.Error = ""
	return a, nil
}

// TemperatureReport holds the monthly means of every station fetched, plus
// the stations that still failed after the retry pass.
type TemperatureReport struct {
	Means  []models.MonthlyMean
	Failed map[string]error
}

// FetchTemperatures fetches monthly means once per distinct resolved station,
// then retries failed stations a single time.
func (d *Driver) FetchTemperatures(ctx context.Context, assignments []models.Assignment, start, end time.Time, dataTypes []string) (*TemperatureReport, error) {
	var stations []string
	seen := make(map[string]bool)
	for _, a := range assignments {
		if a.Status != models.StatusResolved || a.StationID == "" || seen[a.StationID] {
			continue
		}
		seen[a.StationID] = true
		stations = append(stations, a.StationID)
	}

	means := make([]models.MonthlyMeans, len(stations))
	errs := make([]error, len(stations))
	all := func(int) bool { return true }

	if err := d.fetchAll(ctx, stations, start, end, dataTypes, means, errs, all); err != nil {
		return nil, err
	}
	failed := func(i int) bool { return errs[i] != nil }
	if err := d.fetchAll(ctx, stations, start, end, dataTypes, means, errs, failed); err != nil {
		return nil, err
	}

	report := &TemperatureReport{Failed: make(map[string]error)}
	for i, id := range stations {
		if errs[i] != nil {
			report.Failed[id] = errs[i]
			continue
		}
		report.Means = append(report.Means, means[i].Rows(id)...)
	}

	log.Info().
		Int("stations", len(stations)).
		Int("rows", len(report.Means)).
		Int("failed", len(report.Failed)).
		Msg("Fetched monthly temperatures")

	return report, nil
}

func (d *Driver) fetchAll(ctx context.Context, stations []string, start, end time.Time, dataTypes []string,
	means []models.MonthlyMeans, errs []error, want func(int) bool) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)

	for i := range stations {
		if !want(i) {
			continue
		}
		i := i
		g.Go(func() error {
			m, err := d.fetcher.FetchMonthlyMeans(gctx, stations[i], start, end, dataTypes)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.Warn().Err(err).Str("station_id", stations[i]).Msg("Monthly fetch failed")
				errs[i] = err
				return nil
			}
			means[i] = m
			errs[i] = nil
			return nil
		})
	}

	return g.Wait()
}

// Summarize counts assignments per status.
func Summarize(assignments []models.Assignment) map[models.Status]int {
	counts := make(map[models.Status]int)
	for _, a := range assignments {
		counts[a.Status]++
	}
	return counts
}

func logSummary(msg string, assignments []models.Assignment) {
	event := log.Info().Int("total", len(assignments))
	for status, n := range Summarize(assignments) {
		event = event.Int(string(status), n)
	}
	event.Msg(msg)
}
