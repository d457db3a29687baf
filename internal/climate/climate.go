// Package climate aggregates monthly summary readings into per-month means.
package climate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/npsdash/backend-go/internal/cdo"
	"github.com/npsdash/backend-go/internal/metrics"
	"github.com/npsdash/backend-go/internal/models"
	"github.com/rs/zerolog/log"
)

const (
	DatasetMonthlySummaries = "GSOM"
	UnitsStandard           = "standard"
	DefaultPageLimit        = 100
)

var (
	// DefaultDataTypes are the monthly mean daily high and low.
	DefaultDataTypes = []string{"TMAX", "TMIN"}
	DefaultStart     = time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	DefaultEnd       = time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
)

// ErrNoStation is returned when asked for readings without a station id.
var ErrNoStation = errors.New("no station id")

// DataSource returns one page of readings.
type DataSource interface {
	Data(ctx context.Context, q cdo.DataQuery) (*cdo.DataPage, error)
}

type Service struct {
	source    DataSource
	pageLimit int
}

var _ models.MonthlyFetcher = (*Service)(nil)

func NewService(source DataSource, pageLimit int) *Service {
	if pageLimit <= 0 {
		pageLimit = DefaultPageLimit
	}
	return &Service{source: source, pageLimit: pageLimit}
}

// FetchMonthlyMeans pages through every reading for the station in
// [start, end] and averages them per (calendar month, data type). An empty
// result is not an error; the returned map is simply empty.
func (s *Service) FetchMonthlyMeans(ctx context.Context, stationID string, start, end time.Time, dataTypes []string) (models.MonthlyMeans, error) {
	if stationID == "" {
		return nil, ErrNoStation
	}
	if len(dataTypes) == 0 {
		dataTypes = DefaultDataTypes
	}

	var readings []models.Reading
	offset := 1
	for {
		page, err := s.source.Data(ctx, cdo.DataQuery{
			DatasetID: DatasetMonthlySummaries,
			StationID: stationID,
			Start:     start,
			End:       end,
			DataTypes: dataTypes,
			Units:     UnitsStandard,
			Limit:     s.pageLimit,
			Offset:    offset,
		})
		if err != nil {
			metrics.MonthlyFetchesTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("fetching readings for %s: %w", stationID, err)
		}

		readings = append(readings, page.Readings...)
		offset += len(page.Readings)
		if len(page.Readings) == 0 || offset > page.Count {
			break
		}
	}

	means := Aggregate(readings)
	outcome := "ok"
	if len(means) == 0 {
		outcome = "empty"
	}
	metrics.MonthlyFetchesTotal.WithLabelValues(outcome).Inc()

	log.Debug().
		Str("station_id", stationID).
		Int("readings", len(readings)).
		Int("buckets", len(means)).
		Msg("Fetched monthly readings")

	return means, nil
}

// Aggregate groups readings by calendar month and data type and returns the
// arithmetic mean of each group.
func Aggregate(readings []models.Reading) models.MonthlyMeans {
	type acc struct {
		sum float64
		n   int
	}
	groups := make(map[models.MonthKey]*acc)
	for _, r := range readings {
		k := models.MonthKey{Month: r.Date.Month(), DataType: r.DataType}
		a, ok := groups[k]
		if !ok {
			a = &acc{}
			groups[k] = a
		}
		a.sum += r.Value
		a.n++
	}

	means := make(models.MonthlyMeans, len(groups))
	for k, a := range groups {
		means[k] = a.sum / float64(a.n)
	}
	return means
}
