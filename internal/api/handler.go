package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
	"github.com/npsdash/backend-go/internal/models"
)

type APIResponse struct {
	ResponseType string `json:"responseType"`
}

type StationResponse struct {
	APIResponse
	Resolution *models.Resolution `json:"resolution"`
}

type AssignmentResponse struct {
	APIResponse
	Assignment models.Assignment `json:"assignment"`
}

type ErrorResponse struct {
	APIResponse
	Error  string        `json:"error"`
	Status models.Status `json:"status,omitempty"`
}

func NewStationResponse(res *models.Resolution) *StationResponse {
	return &StationResponse{
		APIResponse: APIResponse{ResponseType: "station"},
		Resolution:  res,
	}
}

func NewAssignmentResponse(a models.Assignment) *AssignmentResponse {
	return &AssignmentResponse{
		APIResponse: APIResponse{ResponseType: "assignment"},
		Assignment:  a,
	}
}

func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{
		APIResponse: APIResponse{ResponseType: "error"},
		Error:       message,
	}
}

var defaultHeaders = map[string]string{
	"Content-Type":                "application/json",
	"Access-Control-Allow-Origin": "*",
}

// Response helpers
func Success(body interface{}) (events.APIGatewayProxyResponse, error) {
	return JSON(http.StatusOK, body)
}

func JSON(statusCode int, body interface{}) (events.APIGatewayProxyResponse, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return Error("Internal Server Error", http.StatusInternalServerError)
	}

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    defaultHeaders,
		Body:       string(jsonBody),
	}, nil
}

func Error(message string, statusCode int) (events.APIGatewayProxyResponse, error) {
	return ErrorWithStatus(message, "", statusCode)
}

// ErrorWithStatus also reports the lookup status that caused the error.
func ErrorWithStatus(message string, status models.Status, statusCode int) (events.APIGatewayProxyResponse, error) {
	resp := NewErrorResponse(message)
	resp.Status = status
	body, _ := json.Marshal(resp)

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    defaultHeaders,
		Body:       string(body),
	}, nil
}

// Parameter parsing helpers

// ParseCoordinates reads the lat and lon query parameters.
func ParseCoordinates(params map[string]string) (models.Point, error) {
	latStr, hasLat := params["lat"]
	lonStr, hasLon := params["lon"]

	if !hasLat || !hasLon {
		return models.UndefinedPoint(), MissingParameterError{Name: "lat/lon"}
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return models.UndefinedPoint(), InvalidCoordinatesError{}
	}

	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return models.UndefinedPoint(), InvalidCoordinatesError{}
	}

	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return models.UndefinedPoint(), InvalidCoordinatesError{}
	}

	return models.Point{Latitude: lat, Longitude: lon}, nil
}

type InvalidCoordinatesError struct{}

func (e InvalidCoordinatesError) Error() string {
	return "Invalid coordinates"
}

type MissingParameterError struct {
	Name string
}

func (e MissingParameterError) Error() string {
	return fmt.Sprintf("Missing parameter: %s", e.Name)
}

// StatusCode maps a failed lookup status onto an HTTP status.
func StatusCode(status models.Status) int {
	switch status {
	case models.StatusNotFound, models.StatusTooManyAttempts:
		return http.StatusNotFound
	case models.StatusTimeout:
		return http.StatusGatewayTimeout
	case models.StatusInvalidResponse, models.StatusUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
