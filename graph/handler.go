package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/graphql-go/graphql"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	schema graphql.Schema
}

type request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

func NewHandler(resolver *Resolver) (*Handler, error) {
	schema, err := NewSchema(resolver)
	if err != nil {
		return nil, fmt.Errorf("building GraphQL schema: %w", err)
	}
	return &Handler{schema: schema}, nil
}

// Execute runs one GraphQL operation.
func (h *Handler) Execute(ctx context.Context, query, operationName string, variables map[string]interface{}) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  query,
		OperationName:  operationName,
		VariableValues: variables,
		Context:        ctx,
	})
}

func (h *Handler) HandleRequest(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if event.HTTPMethod == "" {
		event.HTTPMethod = http.MethodPost
	}
	if event.HTTPMethod != http.MethodPost {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusMethodNotAllowed,
			Body:       "Only POST method is allowed",
		}, nil
	}

	var req request
	if err := json.Unmarshal([]byte(event.Body), &req); err != nil || req.Query == "" {
		return jsonResponse(http.StatusBadRequest, map[string]interface{}{
			"errors": []map[string]string{{"message": "Request body must be a JSON object with a query"}},
		}), nil
	}

	result := h.Execute(ctx, req.Query, req.OperationName, req.Variables)
	if result.HasErrors() {
		log.Debug().Interface("errors", result.Errors).Msg("GraphQL request returned errors")
	}

	return jsonResponse(http.StatusOK, result), nil
}

func jsonResponse(statusCode int, body interface{}) events.APIGatewayProxyResponse {
	b, err := json.Marshal(body)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode GraphQL response")
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Body:       `{"errors": [{"message": "Failed to encode response"}]}`,
		}
	}
	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers: map[string]string{
			"Content-Type":                "application/json",
			"Access-Control-Allow-Origin": "*",
		},
		Body: string(b),
	}
}
