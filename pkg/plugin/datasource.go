// Package plugin implements the GraphQL Grafana datasource plugin. It
// routes data queries and health checks from Grafana to the query handler
// and the health checker.
package plugin

import (
	"context"
	"fmt"

	"graphql-grafana-plugin/pkg/graphql"
	"graphql-grafana-plugin/pkg/handler"
	"graphql-grafana-plugin/pkg/health"
	"graphql-grafana-plugin/pkg/models"
	"graphql-grafana-plugin/pkg/validator"

	"github.com/grafana/grafana-plugin-sdk-go/backend"
	"github.com/grafana/grafana-plugin-sdk-go/backend/instancemgmt"
	"github.com/grafana/grafana-plugin-sdk-go/backend/log"
)

var (
	_ backend.QueryDataHandler      = (*Datasource)(nil)
	_ backend.CheckHealthHandler    = (*Datasource)(nil)
	_ instancemgmt.InstanceDisposer = (*Datasource)(nil)
)

// Datasource implements the GraphQL datasource plugin.
type Datasource struct{}

// NewDatasource creates a new datasource instance. It is called by the
// Grafana plugin SDK when a new instance is needed.
func NewDatasource(ctx context.Context, settings backend.DataSourceInstanceSettings) (instancemgmt.Instance, error) {
	return &Datasource{}, nil
}

// Dispose cleans up resources when a datasource instance is no longer
// needed.
func (d *Datasource) Dispose() {
	log.DefaultLogger.Debug("GraphQL datasource instance disposed")
}

// QueryData handles incoming data queries from Grafana. Queries are
// processed concurrently and collected into one response.
func (d *Datasource) QueryData(ctx context.Context, req *backend.QueryDataRequest) (*backend.QueryDataResponse, error) {
	logger := log.DefaultLogger.FromContext(ctx)
	response := backend.NewQueryDataResponse()

	settings, err := models.LoadSettings(*req.PluginContext.DataSourceInstanceSettings)
	if err != nil {
		logger.Error("Failed to load datasource settings", "error", err, "datasourceID", req.PluginContext.DataSourceInstanceSettings.ID)
		return nil, fmt.Errorf("failed to load datasource settings: %w", err)
	}

	if err := validator.ValidateSettings(settings); err != nil {
		logger.Error("Invalid datasource configuration", "error", err, "datasourceID", req.PluginContext.DataSourceInstanceSettings.ID)
		return nil, fmt.Errorf("invalid datasource configuration: %w", err)
	}

	client, err := graphql.NewClient(settings)
	if err != nil {
		logger.Error("Failed to create GraphQL client", "error", err, "datasourceID", req.PluginContext.DataSourceInstanceSettings.ID)
		return nil, fmt.Errorf("failed to create GraphQL client: %w", err)
	}

	queryResults := make(chan struct {
		refID string
		res   backend.DataResponse
	}, len(req.Queries))

	for _, q := range req.Queries {
		go func(query backend.DataQuery) {
			res := handler.HandleQuery(ctx, client, query)
			queryResults <- struct {
				refID string
				res   backend.DataResponse
			}{query.RefID, *res}
		}(q)
	}

	for i := 0; i < len(req.Queries); i++ {
		result := <-queryResults
		response.Responses[result.refID] = result.res
	}

	return response, nil
}

// CheckHealth performs a health check of the datasource.
func (d *Datasource) CheckHealth(ctx context.Context, req *backend.CheckHealthRequest) (*backend.CheckHealthResult, error) {
	log.DefaultLogger.Debug("Datasource.CheckHealth: initiating health check")

	healthResult, err := health.ExecuteHealthCheck(ctx, *req.PluginContext.DataSourceInstanceSettings)
	if err != nil {
		log.DefaultLogger.Error("Datasource.CheckHealth: health check failed internally", "error", err)
		return &backend.CheckHealthResult{
			Status:  backend.HealthStatusError,
			Message: fmt.Sprintf("Health check encountered an internal error: %s", err.Error()),
		}, nil
	}

	return healthResult, nil
}
