// Package health performs the datasource health check: it validates the
// configuration, builds a client, and probes the GraphQL endpoint.
package health

import (
	"context"
	"fmt"

	"graphql-grafana-plugin/pkg/graphql"
	"graphql-grafana-plugin/pkg/models"
	"graphql-grafana-plugin/pkg/validator"

	"github.com/grafana/grafana-plugin-sdk-go/backend"
	"github.com/grafana/grafana-plugin-sdk-go/backend/log"
)

// probeQuery is the minimal document any conforming GraphQL endpoint can
// answer.
const probeQuery = `query { __typename }`

// PerformHealthCheck validates the datasource settings and runs a probe
// query against the endpoint. It returns a CheckHealthResult for Grafana;
// a Go error is only returned for unexpected internal failures.
func PerformHealthCheck(ctx context.Context, dsSettings backend.DataSourceInstanceSettings) (*backend.CheckHealthResult, error) {
	log.DefaultLogger.Debug("health.PerformHealthCheck: starting health check")

	settings, err := models.LoadSettings(dsSettings)
	if err != nil {
		log.DefaultLogger.Error("health.PerformHealthCheck: failed to load settings", "error", err)
		return &backend.CheckHealthResult{
			Status:  backend.HealthStatusError,
			Message: fmt.Sprintf("Failed to load datasource configuration: %s", err.Error()),
		}, nil
	}

	if err := validator.ValidateSettings(settings); err != nil {
		return &backend.CheckHealthResult{
			Status:  backend.HealthStatusError,
			Message: fmt.Sprintf("Datasource configuration is invalid: %s", err.Error()),
		}, nil
	}

	client, err := graphql.NewClient(settings)
	if err != nil {
		log.DefaultLogger.Error("health.PerformHealthCheck: failed to create client", "error", err)
		return &backend.CheckHealthResult{
			Status:  backend.HealthStatusError,
			Message: fmt.Sprintf("Failed to initialize GraphQL client: %s", err.Error()),
		}, nil
	}

	return Probe(ctx, client, settings)
}

// Probe sends the probe query through the given executor and maps the
// outcome to a health result.
func Probe(ctx context.Context, executor graphql.Executor, settings *models.Settings) (*backend.CheckHealthResult, error) {
	result, err := executor.Execute(ctx, graphql.Request{Query: probeQuery})
	if err != nil {
		return &backend.CheckHealthResult{
			Status:  backend.HealthStatusError,
			Message: fmt.Sprintf("Could not reach GraphQL endpoint %s: %s", settings.Endpoint(), err.Error()),
		}, nil
	}
	if result.HasErrors() {
		return &backend.CheckHealthResult{
			Status:  backend.HealthStatusError,
			Message: fmt.Sprintf("GraphQL endpoint rejected the probe query: %s", result.Errors[0].Message),
		}, nil
	}

	return &backend.CheckHealthResult{
		Status:  backend.HealthStatusOk,
		Message: fmt.Sprintf("Successfully connected to GraphQL endpoint %s.", settings.Endpoint()),
	}, nil
}

// ExecuteHealthCheck is the entry point used by the plugin layer. It is a
// variable to allow mocking in tests.
var ExecuteHealthCheck = func(ctx context.Context, dsSettings backend.DataSourceInstanceSettings) (*backend.CheckHealthResult, error) {
	return PerformHealthCheck(ctx, dsSettings)
}
