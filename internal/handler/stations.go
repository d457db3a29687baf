package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/npsdash/backend-go/internal/api"
	"github.com/npsdash/backend-go/internal/models"
	"github.com/npsdash/backend-go/internal/station"
	"github.com/rs/zerolog/log"
)

// ParkSource is the read side of the persisted tables.
type ParkSource interface {
	Park(code string) (models.Park, bool)
	Assignment(parkCode string) (models.Assignment, bool)
}

type StationsHandler struct {
	locator models.StationLocator
	parks   ParkSource
}

func NewStationsHandler(locator models.StationLocator, parks ParkSource) *StationsHandler {
	return &StationsHandler{
		locator: locator,
		parks:   parks,
	}
}

func (h *StationsHandler) HandleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	params := request.QueryStringParameters

	// Persisted assignment by park code, falling back to a live lookup
	if parkCode, ok := params["parkCode"]; ok {
		if h.parks == nil {
			return api.Error("Park tables not loaded", http.StatusServiceUnavailable)
		}
		if a, ok := h.parks.Assignment(parkCode); ok {
			return api.Success(api.NewAssignmentResponse(a))
		}
		park, ok := h.parks.Park(parkCode)
		if !ok {
			return api.Error("Park not found", http.StatusNotFound)
		}
		return h.locate(ctx, park.Location)
	}

	point, err := api.ParseCoordinates(params)
	if err != nil {
		var invalidCoordErr api.InvalidCoordinatesError
		if errors.As(err, &invalidCoordErr) {
			return api.Error(err.Error(), http.StatusBadRequest)
		}
		return api.Error("Invalid parameters", http.StatusBadRequest)
	}

	return h.locate(ctx, point)
}

func (h *StationsHandler) locate(ctx context.Context, p models.Point) (events.APIGatewayProxyResponse, error) {
	res, err := h.locator.Locate(ctx, p)
	if err != nil {
		status, ok := station.StatusOf(err)
		if !ok {
			log.Error().Err(err).Str("point", p.String()).Msg("Station lookup aborted")
			return api.Error("Error finding station", http.StatusInternalServerError)
		}
		return api.ErrorWithStatus(err.Error(), status, api.StatusCode(status))
	}
	return api.Success(api.NewStationResponse(res))
}
