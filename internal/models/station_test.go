package models

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPointDefined(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		point Point
		want  bool
	}{
		{name: "regular point", point: Point{Latitude: 46.8, Longitude: -121.7}, want: true},
		{name: "origin is defined", point: Point{}, want: true},
		{name: "NaN latitude", point: Point{Latitude: math.NaN(), Longitude: -121.7}, want: false},
		{name: "NaN longitude", point: Point{Latitude: 46.8, Longitude: math.NaN()}, want: false},
		{name: "undefined constructor", point: UndefinedPoint(), want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.point.Defined())
		})
	}
}

func TestNewBoundingBox(t *testing.T) {
	box := NewBoundingBox(Point{Latitude: 46.8, Longitude: -121.7}, 0.5)

	assert.InDelta(t, 46.3, box.MinLat, 1e-9)
	assert.InDelta(t, -122.2, box.MinLon, 1e-9)
	assert.InDelta(t, 47.3, box.MaxLat, 1e-9)
	assert.InDelta(t, -121.2, box.MaxLon, 1e-9)
}

func TestBoundingBoxExtent(t *testing.T) {
	box := BoundingBox{MinLat: 40, MinLon: -112.25, MaxLat: 41, MaxLon: -111.25}
	assert.Equal(t, "40,-112.25,41,-111.25", box.Extent())
}

func TestPlanarDistance(t *testing.T) {
	a := Point{Latitude: 0, Longitude: 0}
	b := Point{Latitude: 3, Longitude: 4}

	assert.InDelta(t, 5.0, PlanarDistance(a, b), 1e-12)
	assert.InDelta(t, 0.0, PlanarDistance(a, a), 1e-12)
}

func TestCandidateValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		candidate Candidate
		wantErr   bool
	}{
		{
			name:      "valid candidate",
			candidate: Candidate{ID: "GHCND:USC00455110", Latitude: 46.75, Longitude: -121.81},
		},
		{
			name:      "missing id",
			candidate: Candidate{Latitude: 46.75, Longitude: -121.81},
			wantErr:   true,
		},
		{
			name:      "latitude out of range",
			candidate: Candidate{ID: "X", Latitude: 91, Longitude: 0},
			wantErr:   true,
		},
		{
			name:      "longitude out of range",
			candidate: Candidate{ID: "X", Latitude: 0, Longitude: -181},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.candidate.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestStatusRetryable(t *testing.T) {
	retryable := []Status{StatusNotFound, StatusTooManyAttempts, StatusTimeout, StatusInvalidResponse, StatusUnavailable}
	for _, s := range retryable {
		assert.True(t, s.Retryable(), string(s))
		assert.True(t, s.Valid(), string(s))
	}

	assert.False(t, StatusResolved.Retryable())
	assert.False(t, StatusSkipped.Retryable())
	assert.False(t, Status("").Valid())
}

func TestMonthlyMeansRows(t *testing.T) {
	means := MonthlyMeans{
		{Month: time.April, DataType: "TMIN"}: 30,
		{Month: time.March, DataType: "TMIN"}: 25,
		{Month: time.March, DataType: "TMAX"}: 55,
	}

	rows := means.Rows("GHCND:TEST")

	assert.Equal(t, []MonthlyMean{
		{StationID: "GHCND:TEST", Month: time.March, DataType: "TMAX", Value: 55},
		{StationID: "GHCND:TEST", Month: time.March, DataType: "TMIN", Value: 25},
		{StationID: "GHCND:TEST", Month: time.April, DataType: "TMIN", Value: 30},
	}, rows)
}
