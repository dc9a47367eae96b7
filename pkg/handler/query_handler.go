// Package handler processes incoming data queries from Grafana and
// executes them against the configured GraphQL endpoint. It handles query
// parsing, variable interpolation, execution, and frame extraction with
// proper error handling.
package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"graphql-grafana-plugin/pkg/extract"
	"graphql-grafana-plugin/pkg/graphql"
	"graphql-grafana-plugin/pkg/interpolate"
	"graphql-grafana-plugin/pkg/metrics"
	"graphql-grafana-plugin/pkg/models"
	"graphql-grafana-plugin/pkg/validator"

	"github.com/grafana/grafana-plugin-sdk-go/backend"
	"github.com/grafana/grafana-plugin-sdk-go/backend/log"
)

// HandleQuery processes a single Grafana data query: it unmarshals the
// persisted query model, interpolates variables, executes the GraphQL
// request through the injected executor, and extracts data frames using
// the query's parsing options.
func HandleQuery(ctx context.Context, executor graphql.Executor, query backend.DataQuery) *backend.DataResponse {
	resp := &backend.DataResponse{}
	logger := log.DefaultLogger.FromContext(ctx)

	started := time.Now()
	var handleErr error
	defer func() {
		metrics.RecordQuery(time.Since(started), handleErr)
	}()

	qm, err := models.LoadQuery(query.JSON)
	if err != nil {
		handleErr = err
		resp.Error = fmt.Errorf("error parsing query JSON: %w", err)
		logger.Error("Error parsing query JSON", "refId", query.RefID, "error", err)
		return resp
	}

	if err := validator.ValidateQuery(qm); err != nil {
		handleErr = err
		resp.Error = fmt.Errorf("invalid query configuration: %w", err)
		logger.Error("Invalid query configuration", "refId", query.RefID, "error", err)
		return resp
	}

	operationName, err := graphql.EffectiveOperationName(qm.QueryText, qm.OperationName)
	if err != nil {
		handleErr = err
		resp.Error = fmt.Errorf("could not resolve operation: %w", err)
		logger.Error("Could not resolve operation", "refId", query.RefID, "error", err)
		return resp
	}

	source := interpolate.RangeSource{Range: query.TimeRange}
	variables, err := interpolate.Interpolate(qm.Variables, source, qm.AdvancedVariables)
	if err != nil {
		handleErr = err
		resp.Error = fmt.Errorf("error interpolating variables: %w", err)
		logger.Error("Error interpolating variables", "refId", query.RefID, "error", err)
		return resp
	}

	logger.Debug("Executing GraphQL query", "refId", query.RefID, "operationName", operationName)

	result, err := executor.Execute(ctx, graphql.Request{
		Query:         qm.QueryText,
		Variables:     variables,
		OperationName: operationName,
	})
	if err != nil {
		handleErr = err
		resp.Error = fmt.Errorf("GraphQL query execution failed: %w", err)
		logger.Error("GraphQL query execution failed", "refId", query.RefID, "error", err)
		return resp
	}

	if result.HasErrors() {
		handleErr = fmt.Errorf("GraphQL execution returned errors: %s", joinErrorMessages(result.Errors))
		resp.Error = handleErr
		logger.Error("GraphQL execution returned errors", "refId", query.RefID, "errors", len(result.Errors))
		return resp
	}

	frames, err := extract.Frames(result.Data, qm.ParsingOptions, query)
	if err != nil {
		handleErr = err
		resp.Error = fmt.Errorf("error extracting data frames: %w", err)
		logger.Error("Error extracting data frames", "refId", query.RefID, "error", err)
		return resp
	}

	resp.Frames = frames
	return resp
}

func joinErrorMessages(errs []graphql.Error) string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}
