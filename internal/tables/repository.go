package tables

import (
	"context"
	"fmt"

	"github.com/npsdash/backend-go/internal/models"
	"github.com/rs/zerolog/log"
)

// Repository is a read-only, in-memory view of every table, loaded once and
// shared by handlers and resolvers.
type Repository struct {
	parks       []models.Park
	parkIndex   map[string]int
	visits      map[string][]models.Visit
	assignments map[string]models.Assignment
	temps       map[string][]models.MonthlyMean
}

// Load reads all tables. The park directory is required; the others are
// optional and load as empty when missing.
func Load(ctx context.Context, s Storage) (*Repository, error) {
	parks, err := ReadParks(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("loading parks: %w", err)
	}

	visits, err := ReadVisits(ctx, s)
	if err != nil && !IsNotExist(err) {
		return nil, fmt.Errorf("loading visits: %w", err)
	}
	assignments, err := ReadAssignments(ctx, s)
	if err != nil && !IsNotExist(err) {
		return nil, fmt.Errorf("loading assignments: %w", err)
	}
	temps, err := ReadTemperatures(ctx, s)
	if err != nil && !IsNotExist(err) {
		return nil, fmt.Errorf("loading temperatures: %w", err)
	}

	repo := NewRepository(parks, visits, assignments, temps)

	log.Info().
		Int("parks", len(parks)).
		Int("visits", len(visits)).
		Int("assignments", len(assignments)).
		Int("temperatures", len(temps)).
		Msg("Loaded tables")

	return repo, nil
}

func NewRepository(parks []models.Park, visits []models.Visit, assignments []models.Assignment, temps []models.MonthlyMean) *Repository {
	r := &Repository{
		parks:       parks,
		parkIndex:   make(map[string]int, len(parks)),
		visits:      make(map[string][]models.Visit),
		assignments: make(map[string]models.Assignment, len(assignments)),
		temps:       make(map[string][]models.MonthlyMean),
	}
	for i, p := range parks {
		r.parkIndex[p.Code] = i
	}
	for _, v := range visits {
		r.visits[v.ParkCode] = append(r.visits[v.ParkCode], v)
	}
	for _, a := range assignments {
		r.assignments[a.ParkCode] = a
	}
	for _, t := range temps {
		r.temps[t.StationID] = append(r.temps[t.StationID], t)
	}
	return r
}

func (r *Repository) Park(code string) (models.Park, bool) {
	i, ok := r.parkIndex[code]
	if !ok {
		return models.Park{}, false
	}
	return r.parks[i], true
}

// Parks returns every park in table order.
func (r *Repository) Parks() []models.Park {
	return r.parks
}

func (r *Repository) Visits(parkCode string) []models.Visit {
	return r.visits[parkCode]
}

func (r *Repository) Assignment(parkCode string) (models.Assignment, bool) {
	a, ok := r.assignments[parkCode]
	return a, ok
}

func (r *Repository) MonthlyTemps(stationID string) []models.MonthlyMean {
	return r.temps[stationID]
}
