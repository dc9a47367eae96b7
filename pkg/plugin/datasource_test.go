package plugin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"graphql-grafana-plugin/pkg/health"
	"graphql-grafana-plugin/pkg/models"
	"graphql-grafana-plugin/pkg/testutil"

	"github.com/grafana/grafana-plugin-sdk-go/backend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": {"points": [{"ts": 1704067200000, "v": 1.0}]}}`))
	}))
	defer server.Close()

	ds := &Datasource{}
	qm := models.QueryModel{
		QueryText:      "query { points { ts v } }",
		ParsingOptions: []models.ParsingOption{{DataPath: "points", TimePath: "ts"}},
	}

	resp, err := ds.QueryData(context.Background(), &backend.QueryDataRequest{
		PluginContext: testutil.CreateTestPluginContext(t, testutil.CreateTestSettings(t, server.URL)),
		Queries: []backend.DataQuery{
			testutil.CreateTestQuery(t, "A", qm),
			testutil.CreateTestQuery(t, "B", qm),
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Responses, 2)

	for _, refID := range []string{"A", "B"} {
		res := resp.Responses[refID]
		require.NoError(t, res.Error, "refID %s", refID)
		require.Len(t, res.Frames, 1)
		assert.Equal(t, 1, res.Frames[0].Fields[0].Len())
	}
}

func TestQueryData_PerQueryErrorsDoNotFailTheRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": {"points": []}}`))
	}))
	defer server.Close()

	ds := &Datasource{}
	good := models.QueryModel{
		QueryText:      "query { points { ts v } }",
		ParsingOptions: []models.ParsingOption{{DataPath: "points", TimePath: "ts"}},
	}
	bad := models.QueryModel{QueryText: ""}

	resp, err := ds.QueryData(context.Background(), &backend.QueryDataRequest{
		PluginContext: testutil.CreateTestPluginContext(t, testutil.CreateTestSettings(t, server.URL)),
		Queries: []backend.DataQuery{
			testutil.CreateTestQuery(t, "good", good),
			testutil.CreateTestQuery(t, "bad", bad),
		},
	})
	require.NoError(t, err)

	assert.NoError(t, resp.Responses["good"].Error)
	assert.Error(t, resp.Responses["bad"].Error)
}

func TestQueryData_MissingEndpoint(t *testing.T) {
	ds := &Datasource{}

	_, err := ds.QueryData(context.Background(), &backend.QueryDataRequest{
		PluginContext: testutil.CreateTestPluginContext(t, &backend.DataSourceInstanceSettings{
			JSONData: []byte(`{}`),
		}),
		Queries: []backend.DataQuery{},
	})
	assert.Error(t, err)
}

func TestCheckHealth(t *testing.T) {
	original := health.ExecuteHealthCheck
	defer func() { health.ExecuteHealthCheck = original }()

	health.ExecuteHealthCheck = func(ctx context.Context, dsSettings backend.DataSourceInstanceSettings) (*backend.CheckHealthResult, error) {
		return &backend.CheckHealthResult{Status: backend.HealthStatusOk, Message: "ok"}, nil
	}

	ds := &Datasource{}
	result, err := ds.CheckHealth(context.Background(), &backend.CheckHealthRequest{
		PluginContext: testutil.CreateTestPluginContext(t, testutil.CreateTestSettings(t, "https://api.example.com")),
	})
	require.NoError(t, err)
	assert.Equal(t, backend.HealthStatusOk, result.Status)
}

func TestNewDatasource(t *testing.T) {
	instance, err := NewDatasource(context.Background(), backend.DataSourceInstanceSettings{})
	require.NoError(t, err)
	assert.NotNil(t, instance)
}
