package api

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"testing"

	"github.com/npsdash/backend-go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		params  map[string]string
		want    models.Point
		wantErr error
	}{
		{
			name:   "valid coordinates",
			params: map[string]string{"lat": "46.8", "lon": "-121.7"},
			want:   models.Point{Latitude: 46.8, Longitude: -121.7},
		},
		{
			name:    "missing lon",
			params:  map[string]string{"lat": "46.8"},
			wantErr: MissingParameterError{Name: "lat/lon"},
		},
		{
			name:    "not a number",
			params:  map[string]string{"lat": "north", "lon": "-121.7"},
			wantErr: InvalidCoordinatesError{},
		},
		{
			name:    "out of range",
			params:  map[string]string{"lat": "91", "lon": "0"},
			wantErr: InvalidCoordinatesError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCoordinates(tt.params)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
				assert.True(t, math.IsNaN(got.Latitude))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResponses(t *testing.T) {
	resp, err := Success(NewStationResponse(&models.Resolution{Status: models.StatusResolved, StationID: "GHCND:A", Attempts: 1}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])
	assert.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
	assert.Equal(t, "station", body["responseType"])

	resp, err = ErrorWithStatus("no station", models.StatusNotFound, http.StatusNotFound)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"responseType":"error","error":"no station","status":"not_found"}`, resp.Body)

	resp, err = Error("bad", http.StatusBadRequest)
	require.NoError(t, err)
	assert.JSONEq(t, `{"responseType":"error","error":"bad"}`, resp.Body)
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusCode(models.StatusNotFound))
	assert.Equal(t, http.StatusNotFound, StatusCode(models.StatusTooManyAttempts))
	assert.Equal(t, http.StatusGatewayTimeout, StatusCode(models.StatusTimeout))
	assert.Equal(t, http.StatusBadGateway, StatusCode(models.StatusInvalidResponse))
	assert.Equal(t, http.StatusBadGateway, StatusCode(models.StatusUnavailable))
}
