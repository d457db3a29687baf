package graph

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/npsdash/backend-go/internal/models"
	"github.com/npsdash/backend-go/internal/parks"
	"github.com/npsdash/backend-go/internal/station"
)

// ParkStore is the read-only table view the resolvers query.
type ParkStore interface {
	Park(code string) (models.Park, bool)
	Parks() []models.Park
	Assignment(parkCode string) (models.Assignment, bool)
	MonthlyTemps(stationID string) []models.MonthlyMean
	Visits(parkCode string) []models.Visit
}

type Resolver struct {
	Store   ParkStore
	Locator models.StationLocator
}

// StationResult is a lookup outcome as exposed to clients; Error is set for
// failed lookups.
type StationResult struct {
	models.Resolution
	Error string
}

type YearlyVisits struct {
	Year   int
	Visits float64
}

type MonthlyVisits struct {
	Month  int
	Visits float64
}

func (r *Resolver) Park(_ context.Context, code string) (*models.Park, error) {
	p, ok := r.Store.Park(code)
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *Resolver) Parks(_ context.Context) []models.Park {
	return r.Store.Parks()
}

func (r *Resolver) ParksNear(_ context.Context, lat, lon float64, limit int) ([]parks.Ranked, error) {
	p := models.Point{Latitude: lat, Longitude: lon}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, fmt.Errorf("invalid coordinates %s", p)
	}
	return parks.Nearest(r.Store.Parks(), p, limit), nil
}

func (r *Resolver) MonthlyTemps(_ context.Context, stationID string) []models.MonthlyMean {
	return r.Store.MonthlyTemps(stationID)
}

func (r *Resolver) Assignment(_ context.Context, parkCode string) (*models.Assignment, error) {
	a, ok := r.Store.Assignment(parkCode)
	if !ok {
		return nil, nil
	}
	return &a, nil
}

// NearestStation runs a live lookup. Failed lookups are returned as results
// carrying their status; only aborted lookups are errors.
func (r *Resolver) NearestStation(ctx context.Context, lat, lon float64) (*StationResult, error) {
	if r.Locator == nil {
		return nil, errors.New("station lookups are not configured")
	}
	res, err := r.Locator.Locate(ctx, models.Point{Latitude: lat, Longitude: lon})
	if err != nil {
		var lookupErr *station.LookupError
		if !errors.As(err, &lookupErr) {
			return nil, err
		}
		out := &StationResult{Error: err.Error()}
		if res != nil {
			out.Resolution = *res
		}
		out.Status = lookupErr.Status
		out.Attempts = lookupErr.Attempts
		return out, nil
	}
	return &StationResult{Resolution: *res}, nil
}

// AnnualVisits is the park's mean yearly visitation over [from, to).
func (r *Resolver) AnnualVisits(code string, from, to int) (float64, bool) {
	avg, ok := parks.AnnualAverages(r.Store.Visits(code), from, to)[code]
	return avg, ok
}

// YearlyVisits is the park's total visitation per calendar year, oldest first.
func (r *Resolver) YearlyVisits(code string) []YearlyVisits {
	totals := parks.YearlyTotals(r.Store.Visits(code))
	out := make([]YearlyVisits, 0, len(totals))
	for y, v := range totals {
		out = append(out, YearlyVisits{Year: y, Visits: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

func (r *Resolver) MonthlyVisits(code string) []MonthlyVisits {
	avgs := parks.MonthlyAverages(r.Store.Visits(code))
	out := make([]MonthlyVisits, 0, len(avgs))
	for m := 1; m <= 12; m++ {
		if v, ok := avgs[time.Month(m)]; ok {
			out = append(out, MonthlyVisits{Month: m, Visits: v})
		}
	}
	return out
}
