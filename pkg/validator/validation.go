// Package validator provides validation functions for datasource settings
// and persisted queries. It ensures configuration is usable before a
// query is sent to the GraphQL endpoint.
package validator

import (
	"fmt"
	"strings"

	"graphql-grafana-plugin/pkg/models"
)

// ValidateSettings validates the datasource settings.
func ValidateSettings(settings *models.Settings) error {
	if settings == nil {
		return &models.SettingsError{Msg: "datasource settings cannot be nil"}
	}
	if settings.URL == "" {
		return &models.SettingsError{Msg: "GraphQL endpoint URL cannot be empty"}
	}
	if settings.TimeoutSeconds < 0 {
		return &models.SettingsError{Msg: "query timeout cannot be negative"}
	}
	if settings.MaxQueriesPerSecond < 0 {
		return &models.SettingsError{Msg: "max queries per second cannot be negative"}
	}
	return nil
}

// ValidateQuery validates a persisted query before execution.
func ValidateQuery(qm *models.QueryModel) error {
	if qm == nil {
		return &models.QueryError{Msg: "query cannot be nil"}
	}
	if strings.TrimSpace(qm.QueryText) == "" {
		return &models.QueryError{Msg: "query text cannot be empty"}
	}
	if len(qm.ParsingOptions) == 0 {
		return &models.QueryError{Msg: "query must have at least one parsing option"}
	}
	for i, p := range qm.ParsingOptions {
		if strings.TrimSpace(p.DataPath) == "" {
			return &models.QueryError{Msg: fmt.Sprintf("parsing option %d: data path cannot be blank", i)}
		}
		if strings.TrimSpace(p.TimePath) == "" {
			return &models.QueryError{Msg: fmt.Sprintf("parsing option %d: time path cannot be blank", i)}
		}
		seen := map[string]struct{}{}
		for j, l := range p.LabelOptions {
			if strings.TrimSpace(l.Name) == "" {
				return &models.QueryError{Msg: fmt.Sprintf("parsing option %d: label %d has a blank name", i, j)}
			}
			if _, dup := seen[l.Name]; dup {
				return &models.QueryError{Msg: fmt.Sprintf("parsing option %d: duplicate label name %q", i, l.Name)}
			}
			seen[l.Name] = struct{}{}
			if l.Type != models.LabelTypeConstant && l.Type != models.LabelTypeField {
				return &models.QueryError{Msg: fmt.Sprintf("parsing option %d: label %q has unknown type %q", i, l.Name, l.Type)}
			}
		}
	}
	return nil
}
