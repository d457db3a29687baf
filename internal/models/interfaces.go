package models

import (
	"context"
	"time"
)

// StationLocator resolves the nearest station for a point.
type StationLocator interface {
	Locate(ctx context.Context, p Point) (*Resolution, error)
}

// MonthlyFetcher returns per-month means of the given reading types.
type MonthlyFetcher interface {
	FetchMonthlyMeans(ctx context.Context, stationID string, start, end time.Time, dataTypes []string) (MonthlyMeans, error)
}
