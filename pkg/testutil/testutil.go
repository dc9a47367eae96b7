// Package testutil provides shared fixtures for the plugin's tests.
package testutil

import (
	"encoding/json"
	"testing"
	"time"

	"graphql-grafana-plugin/pkg/models"

	"github.com/grafana/grafana-plugin-sdk-go/backend"
	"github.com/grafana/grafana-plugin-sdk-go/data"
	"github.com/stretchr/testify/require"
)

// TimeRange returns a fixed one-hour range so test output is
// deterministic.
func TimeRange() backend.TimeRange {
	return backend.TimeRange{
		From: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC),
	}
}

// CreateTestQuery wraps a query model into a backend.DataQuery with the
// fixed test time range.
func CreateTestQuery(t *testing.T, refID string, qm models.QueryModel) backend.DataQuery {
	t.Helper()

	jsonBytes, err := json.Marshal(qm)
	require.NoError(t, err)

	return backend.DataQuery{
		RefID:     refID,
		QueryType: "graphql",
		JSON:      jsonBytes,
		TimeRange: TimeRange(),
	}
}

// CreateTestSettings creates datasource instance settings pointing at the
// given endpoint URL.
func CreateTestSettings(t *testing.T, url string) *backend.DataSourceInstanceSettings {
	t.Helper()
	return &backend.DataSourceInstanceSettings{
		URL:      url,
		JSONData: []byte(`{}`),
		DecryptedSecureJSONData: map[string]string{
			"apiToken": "test-token",
		},
	}
}

// CreateTestPluginContext wraps instance settings into a plugin context.
func CreateTestPluginContext(t *testing.T, settings *backend.DataSourceInstanceSettings) backend.PluginContext {
	t.Helper()
	return backend.PluginContext{
		DataSourceInstanceSettings: settings,
	}
}

// AssertFrameFields checks that a data frame has exactly the expected
// field names in order.
func AssertFrameFields(t *testing.T, frame *data.Frame, expectedFields []string) {
	t.Helper()

	require.Equal(t, len(expectedFields), len(frame.Fields), "number of fields")
	for i, field := range frame.Fields {
		require.Equal(t, expectedFields[i], field.Name, "field name")
	}
}
