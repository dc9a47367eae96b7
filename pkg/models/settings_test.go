package models

import (
	"testing"

	"github.com/grafana/grafana-plugin-sdk-go/backend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings_Success(t *testing.T) {
	source := backend.DataSourceInstanceSettings{
		URL:      "https://api.example.com",
		JSONData: []byte(`{"path": "/graphql", "timeout": 10, "maxQueriesPerSecond": 5}`),
		DecryptedSecureJSONData: map[string]string{
			"apiToken": "secret-token",
		},
	}

	settings, err := LoadSettings(source)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", settings.URL)
	assert.Equal(t, "/graphql", settings.Path)
	assert.Equal(t, 10, settings.TimeoutSeconds)
	assert.Equal(t, float64(5), settings.MaxQueriesPerSecond)
	assert.Equal(t, "secret-token", settings.Secrets.APIToken)
	assert.Equal(t, "https://api.example.com/graphql", settings.Endpoint())
}

func TestLoadSettings_Defaults(t *testing.T) {
	source := backend.DataSourceInstanceSettings{
		URL:      "https://api.example.com/graphql",
		JSONData: []byte(`{}`),
	}

	settings, err := LoadSettings(source)
	require.NoError(t, err)

	assert.Equal(t, 30, settings.TimeoutSeconds)
	assert.Empty(t, settings.Path)
	assert.Empty(t, settings.Secrets.APIToken, "token is optional")
	assert.Equal(t, "https://api.example.com/graphql", settings.Endpoint())
}

func TestLoadSettings_InvalidJSON(t *testing.T) {
	source := backend.DataSourceInstanceSettings{
		URL:      "https://api.example.com",
		JSONData: []byte(`invalid json`),
	}

	_, err := LoadSettings(source)
	require.Error(t, err)

	var serr *SettingsError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "could not unmarshal Settings JSON", serr.Msg)
	assert.NotNil(t, serr.Unwrap())
}
