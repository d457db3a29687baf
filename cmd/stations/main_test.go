package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/npsdash/backend-go/internal/config"
	"github.com/npsdash/backend-go/internal/handler"
	"github.com/npsdash/backend-go/internal/models"
	"github.com/npsdash/backend-go/internal/station"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLocator struct {
	locateFn func(ctx context.Context, p models.Point) (*models.Resolution, error)
}

func (m *mockLocator) Locate(ctx context.Context, p models.Point) (*models.Resolution, error) {
	if m.locateFn != nil {
		return m.locateFn(ctx, p)
	}
	return &models.Resolution{
		Status:    models.StatusResolved,
		StationID: "GHCND:USW00024233",
		Attempts:  1,
	}, nil
}

var (
	mu sync.Mutex // Protect lambdaStart in tests
)

func TestMain(m *testing.M) {
	_ = os.Setenv("LOG_LEVEL", "debug")
	_ = os.Setenv("ENV", "test")

	os.Exit(m.Run())
}

func TestLambdaInit(t *testing.T) {
	mu.Lock()
	originalStartFn := lambdaStart
	var startCalled bool
	lambdaStart = func(handler interface{}) {
		mu.Lock()
		startCalled = true
		mu.Unlock()

		handlerType := reflect.TypeOf(handler)
		if handlerType.Kind() != reflect.Func {
			t.Error("Handler is not a function")
			return
		}

		contextInterface := reflect.TypeOf((*context.Context)(nil)).Elem()
		proxyRequest := reflect.TypeOf(events.APIGatewayProxyRequest{})
		proxyResponse := reflect.TypeOf(events.APIGatewayProxyResponse{})
		errorInterface := reflect.TypeOf((*error)(nil)).Elem()

		if handlerType.NumIn() != 2 || handlerType.NumOut() != 2 ||
			!handlerType.In(0).Implements(contextInterface) ||
			handlerType.In(1) != proxyRequest ||
			handlerType.Out(0) != proxyResponse ||
			!handlerType.Out(1).Implements(errorInterface) {
			t.Error("Handler does not match expected signature")
		}
	}
	mu.Unlock()

	defer func() {
		mu.Lock()
		lambdaStart = originalStartFn
		mu.Unlock()
	}()

	go main()

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	wasStartCalled := startCalled
	mu.Unlock()

	assert.True(t, wasStartCalled, "Lambda start was not called")
	assert.NotNil(t, stationsHandler)
}

func TestLoadParks(t *testing.T) {
	t.Run("missing tables leave park lookups disabled", func(t *testing.T) {
		cfg := config.New(config.WithDataDir(t.TempDir()))
		assert.Nil(t, loadParks(context.Background(), cfg))
	})

	t.Run("tables in the data directory are loaded", func(t *testing.T) {
		dir := t.TempDir()
		parks := "park_code,park_name,wiki_url,nps_url,area_acres,lat,lon\nmora,Mount Rainier,,,236381,46.85,-121.75\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, "wiki_data.csv"), []byte(parks), 0o644))

		source := loadParks(context.Background(), config.New(config.WithDataDir(dir)))
		require.NotNil(t, source)
		park, ok := source.Park("mora")
		require.True(t, ok)
		assert.Equal(t, 46.85, park.Location.Latitude)
	})
}

func TestHandleRequest(t *testing.T) {
	tests := []struct {
		name           string
		params         map[string]string
		locator        *mockLocator
		expectedStatus int
		expectedType   string
		expectedError  string
	}{
		{
			name:           "successful lookup by coordinates",
			params:         map[string]string{"lat": "47.6062", "lon": "-122.3321"},
			locator:        &mockLocator{},
			expectedStatus: http.StatusOK,
			expectedType:   "station",
		},
		{
			name:           "invalid latitude",
			params:         map[string]string{"lat": "91", "lon": "0"},
			locator:        &mockLocator{},
			expectedStatus: http.StatusBadRequest,
			expectedType:   "error",
			expectedError:  "Invalid coordinates",
		},
		{
			name:           "non-numeric coordinates",
			params:         map[string]string{"lat": "invalid", "lon": "-122.3321"},
			locator:        &mockLocator{},
			expectedStatus: http.StatusBadRequest,
			expectedType:   "error",
			expectedError:  "Invalid coordinates",
		},
		{
			name:           "park code without tables",
			params:         map[string]string{"parkCode": "mora"},
			locator:        &mockLocator{},
			expectedStatus: http.StatusServiceUnavailable,
			expectedType:   "error",
			expectedError:  "Park tables not loaded",
		},
		{
			name:   "lookup that never converges",
			params: map[string]string{"lat": "40.7", "lon": "-74.0"},
			locator: &mockLocator{
				locateFn: func(ctx context.Context, p models.Point) (*models.Resolution, error) {
					return nil, &station.LookupError{
						Status:   models.StatusTooManyAttempts,
						Point:    p,
						Attempts: 10,
						Err:      station.ErrTooManyAttempts,
					}
				},
			},
			expectedStatus: http.StatusNotFound,
			expectedType:   "error",
		},
		{
			name:   "internal error during lookup",
			params: map[string]string{"lat": "47.6062", "lon": "-122.3321"},
			locator: &mockLocator{
				locateFn: func(ctx context.Context, p models.Point) (*models.Resolution, error) {
					return nil, assert.AnError
				},
			},
			expectedStatus: http.StatusInternalServerError,
			expectedType:   "error",
			expectedError:  "Error finding station",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stationsHandler = handler.NewStationsHandler(tt.locator, nil)

			response, err := handleRequest(context.Background(), events.APIGatewayProxyRequest{
				QueryStringParameters: tt.params,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, response.StatusCode)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal([]byte(response.Body), &body))
			assert.Equal(t, tt.expectedType, body["responseType"])
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, body["error"])
			}
		})
	}
}
