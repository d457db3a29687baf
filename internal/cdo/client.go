// Package cdo talks to the NOAA Climate Data Online v2 web services.
package cdo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/npsdash/backend-go/internal/config"
	"github.com/npsdash/backend-go/internal/metrics"
	"github.com/npsdash/backend-go/internal/models"
	"github.com/npsdash/backend-go/pkg/http/client"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	stationsEndpoint = "/stations"
	dataEndpoint     = "/data"

	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04:05"

	// TokenHeader carries the CDO access token.
	TokenHeader = "token"
)

type Client struct {
	httpClient client.Interface
}

func NewClient(httpClient client.Interface) *Client {
	return &Client{httpClient: httpClient}
}

type resultSet struct {
	Offset int `json:"offset"`
	Count  int `json:"count"`
	Limit  int `json:"limit"`
}

type metadata struct {
	ResultSet resultSet `json:"resultset"`
}

// StationQuery selects stations inside a bounding box.
type StationQuery struct {
	Box          models.BoundingBox
	DataCategory string
	StartDate    string
	Limit        int
}

// Stations returns the stations whose location falls inside the query box.
// The directory truncates the page at q.Limit.
func (c *Client) Stations(ctx context.Context, q StationQuery) ([]models.Candidate, error) {
	params := url.Values{}
	params.Set("extent", q.Box.Extent())
	if q.DataCategory != "" {
		params.Set("datacategoryid", q.DataCategory)
	}
	if q.StartDate != "" {
		params.Set("startdate", q.StartDate)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	var resp struct {
		Metadata metadata `json:"metadata"`
		Results  []struct {
			ID        string   `json:"id"`
			Name      string   `json:"name"`
			Latitude  *float64 `json:"latitude"`
			Longitude *float64 `json:"longitude"`
		} `json:"results"`
	}
	if err := c.get(ctx, stationsEndpoint, params, &resp); err != nil {
		return nil, err
	}

	candidates := make([]models.Candidate, 0, len(resp.Results))
	for i, r := range resp.Results {
		if r.ID == "" || r.Latitude == nil || r.Longitude == nil {
			return nil, NewAPIError(KindInvalidResponse, stationsEndpoint,
				fmt.Sprintf("station at index %d is missing id or coordinates", i), nil)
		}
		c := models.Candidate{
			ID:        r.ID,
			Name:      r.Name,
			Latitude:  *r.Latitude,
			Longitude: *r.Longitude,
			Source:    models.SourceCDO,
		}
		if err := c.Validate(); err != nil {
			return nil, NewAPIError(KindInvalidResponse, stationsEndpoint,
				fmt.Sprintf("station at index %d: %v", i, err), nil)
		}
		candidates = append(candidates, c)
	}

	log.Debug().
		Str("extent", q.Box.Extent()).
		Int("count", len(candidates)).
		Msg("Fetched stations from CDO")

	return candidates, nil
}

// DataQuery selects readings for one station.
type DataQuery struct {
	DatasetID string
	StationID string
	Start     time.Time
	End       time.Time
	DataTypes []string
	Units     string
	Limit     int
	Offset    int
}

// DataPage is one page of readings plus the total size of the result set.
type DataPage struct {
	Readings []models.Reading
	Offset   int
	Count    int
}

func (c *Client) Data(ctx context.Context, q DataQuery) (*DataPage, error) {
	params := url.Values{}
	params.Set("datasetid", q.DatasetID)
	params.Set("stationid", q.StationID)
	params.Set("startdate", q.Start.Format(dateLayout))
	params.Set("enddate", q.End.Format(dateLayout))
	for _, dt := range q.DataTypes {
		params.Add("datatypeid", dt)
	}
	if q.Units != "" {
		params.Set("units", q.Units)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		params.Set("offset", strconv.Itoa(q.Offset))
	}

	var resp struct {
		Metadata metadata `json:"metadata"`
		Results  []struct {
			Date     string   `json:"date"`
			DataType string   `json:"datatype"`
			Station  string   `json:"station"`
			Value    *float64 `json:"value"`
		} `json:"results"`
	}
	if err := c.get(ctx, dataEndpoint, params, &resp); err != nil {
		return nil, err
	}

	page := &DataPage{
		Readings: make([]models.Reading, 0, len(resp.Results)),
		Offset:   resp.Metadata.ResultSet.Offset,
		Count:    resp.Metadata.ResultSet.Count,
	}
	for i, r := range resp.Results {
		if r.Value == nil || r.DataType == "" {
			return nil, NewAPIError(KindInvalidResponse, dataEndpoint,
				fmt.Sprintf("reading at index %d is missing datatype or value", i), nil)
		}
		date, err := time.Parse(dateTimeLayout, r.Date)
		if err != nil {
			return nil, NewAPIError(KindInvalidResponse, dataEndpoint,
				fmt.Sprintf("reading at index %d has bad date %q", i, r.Date), err)
		}
		page.Readings = append(page.Readings, models.Reading{
			Date:     date,
			DataType: r.DataType,
			Value:    *r.Value,
		})
	}

	return page, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	start := time.Now()
	resp, err := c.httpClient.Get(ctx, endpoint, params)
	metrics.CDORequestLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	if err != nil {
		kind := KindUnavailable
		if client.IsTimeout(err) {
			kind = KindTimeout
		}
		metrics.CDORequestsTotal.WithLabelValues(endpoint, string(kind)).Inc()
		return NewAPIError(kind, endpoint, "request failed", err)
	}
	if resp == nil {
		metrics.CDORequestsTotal.WithLabelValues(endpoint, string(KindUnavailable)).Inc()
		return NewAPIError(KindUnavailable, endpoint, "no response from CDO API", nil)
	}

	if resp.StatusCode != http.StatusOK {
		kind := KindInvalidResponse
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			kind = KindUnavailable
		}
		metrics.CDORequestsTotal.WithLabelValues(endpoint, string(kind)).Inc()
		return NewAPIError(kind, endpoint,
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, truncate(resp.Body, 200)), nil)
	}

	if err := json.Unmarshal(resp.Body, out); err != nil {
		metrics.CDORequestsTotal.WithLabelValues(endpoint, string(KindInvalidResponse)).Inc()
		return NewAPIError(KindInvalidResponse, endpoint,
			fmt.Sprintf("response was not valid JSON, raw text: %s", truncate(resp.Body, 200)), err)
	}

	metrics.CDORequestsTotal.WithLabelValues(endpoint, "ok").Inc()
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n])
	}
	return string(b)
}

// NewFromConfig builds a client whose requests share one rate limiter.
func NewFromConfig(cfg *config.Config) *Client {
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	if cfg.CDOToken == "" {
		log.Warn().Msg("CDO_TOKEN is not set; CDO requests will be rejected")
	}

	return NewClient(client.New(client.Options{
		BaseURL:    cfg.CDOBaseURL,
		Timeout:    cfg.HTTPTimeout,
		MaxRetries: cfg.MaxRetries,
		Headers:    map[string]string{TokenHeader: cfg.CDOToken},
		Limiter:    limiter,
	}))
}
