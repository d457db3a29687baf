// Package tables reads and writes the persisted CSV tables.
package tables

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/gocarina/gocsv"
	"github.com/npsdash/backend-go/internal/models"
)

func readRows[T any](ctx context.Context, s Storage, name string) ([]T, error) {
	data, err := s.Read(ctx, name)
	if err != nil {
		return nil, err
	}

	var rows []T
	if len(bytes.TrimSpace(data)) == 0 {
		return rows, nil
	}
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return rows, nil
}

func writeRows[T any](ctx context.Context, s Storage, name string, rows []T) error {
	data, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	return s.Write(ctx, name, data)
}

// ReadInfobox loads a raw infobox table; name defaults to InfoboxTable.
func ReadInfobox(ctx context.Context, s Storage, name string) ([]models.ParkInfobox, error) {
	if name == "" {
		name = InfoboxTable
	}
	rows, err := readRows[infoboxRow](ctx, s, name)
	if err != nil {
		return nil, err
	}
	out := make([]models.ParkInfobox, len(rows))
	for i, r := range rows {
		out[i] = models.ParkInfobox{
			Code:        r.ParkCode,
			Name:        r.ParkName,
			Coordinates: r.Coordinates,
			Area:        r.Area,
		}
	}
	return out, nil
}

// ReadParks loads the park directory. Rows without a park code are dropped.
func ReadParks(ctx context.Context, s Storage) ([]models.Park, error) {
	rows, err := readRows[parkRow](ctx, s, ParksTable)
	if err != nil {
		return nil, err
	}
	parks := make([]models.Park, 0, len(rows))
	for _, r := range rows {
		p := r.park()
		if p.Validate() != nil {
			continue
		}
		parks = append(parks, p)
	}
	return parks, nil
}

func WriteParks(ctx context.Context, s Storage, parks []models.Park) error {
	rows := make([]parkRow, len(parks))
	for i, p := range parks {
		rows[i] = newParkRow(p)
	}
	return writeRows(ctx, s, ParksTable, rows)
}

// ReadVisits loads monthly visitation. Rows with an empty visits cell are dropped.
func ReadVisits(ctx context.Context, s Storage) ([]models.Visit, error) {
	rows, err := readRows[visitRow](ctx, s, VisitsTable)
	if err != nil {
		return nil, err
	}
	visits := make([]models.Visit, 0, len(rows))
	for _, r := range rows {
		if !r.Visits.Valid || r.ParkCode == "" {
			continue
		}
		visits = append(visits, models.Visit{
			ParkCode: r.ParkCode,
			ParkName: r.ParkName,
			Date:     r.Date.Time,
			Visits:   r.Visits.Float64,
		})
	}
	return visits, nil
}

func ReadAssignments(ctx context.Context, s Storage) ([]models.Assignment, error) {
	rows, err := readRows[assignmentRow](ctx, s, AssignmentsTable)
	if err != nil {
		return nil, err
	}
	out := make([]models.Assignment, len(rows))
	for i, r := range rows {
		out[i] = r.assignment()
	}
	return out, nil
}

func WriteAssignments(ctx context.Context, s Storage, assignments []models.Assignment) error {
	rows := make([]assignmentRow, len(assignments))
	for i, a := range assignments {
		rows[i] = newAssignmentRow(a)
	}
	return writeRows(ctx, s, AssignmentsTable, rows)
}

func ReadTemperatures(ctx context.Context, s Storage) ([]models.MonthlyMean, error) {
	rows, err := readRows[temperatureRow](ctx, s, TemperaturesTable)
	if err != nil {
		return nil, err
	}
	out := make([]models.MonthlyMean, len(rows))
	for i, r := range rows {
		out[i] = r.monthlyMean()
	}
	return out, nil
}

func WriteTemperatures(ctx context.Context, s Storage, means []models.MonthlyMean) error {
	rows := make([]temperatureRow, len(means))
	for i, m := range means {
		if m.Month < 1 || m.Month > 12 {
			return fmt.Errorf("invalid month %d for station %s", m.Month, m.StationID)
		}
		rows[i] = newTemperatureRow(m)
	}
	return writeRows(ctx, s, TemperaturesTable, rows)
}

// IsNotExist reports whether err means the table is absent.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
