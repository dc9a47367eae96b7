package models

import (
	"encoding/json"
	"fmt"

	"github.com/grafana/grafana-plugin-sdk-go/backend"
)

// SettingsError represents an error specifically related to datasource
// settings.
type SettingsError struct {
	Msg string
	Err error // Wrapped error
}

func (e *SettingsError) Error() string {
	if e.Err != nil {
		if e.Msg != "" {
			return fmt.Sprintf("%s: %v", e.Msg, e.Err)
		}
		return fmt.Sprintf("%v", e.Err)
	}
	return e.Msg
}

func (e *SettingsError) Unwrap() error {
	return e.Err
}

// Settings holds the configuration for one GraphQL datasource instance.
type Settings struct {
	// URL is the GraphQL endpoint, taken from the datasource URL field.
	URL string `json:"-"`
	// Path is an optional path appended to URL (e.g. "/graphql").
	Path string `json:"path"`
	// TimeoutSeconds bounds a single query execution. Zero means the
	// default of 30 seconds.
	TimeoutSeconds int `json:"timeout"`
	// MaxQueriesPerSecond caps outbound GraphQL calls. Zero disables the
	// limiter.
	MaxQueriesPerSecond float64 `json:"maxQueriesPerSecond"`

	Secrets *SecretSettings `json:"-"`
}

// SecretSettings holds sensitive data for the datasource.
type SecretSettings struct {
	// APIToken is sent as a bearer token when non-empty. Endpoints without
	// authentication leave it blank.
	APIToken string `json:"apiToken"`
}

// Endpoint returns the full GraphQL endpoint URL.
func (s *Settings) Endpoint() string {
	return s.URL + s.Path
}

// LoadSettings unmarshals the JSON data and decrypted secure JSON data
// from Grafana's DataSourceInstanceSettings into a Settings struct.
func LoadSettings(source backend.DataSourceInstanceSettings) (*Settings, error) {
	settings := Settings{}
	if len(source.JSONData) > 0 {
		if err := json.Unmarshal(source.JSONData, &settings); err != nil {
			return nil, &SettingsError{Msg: "could not unmarshal Settings JSON", Err: err}
		}
	}

	settings.URL = source.URL
	if settings.TimeoutSeconds == 0 {
		settings.TimeoutSeconds = 30
	}
	settings.Secrets = &SecretSettings{
		APIToken: source.DecryptedSecureJSONData["apiToken"],
	}

	return &settings, nil
}
