// Package graphql provides the GraphQL request envelope, the HTTP client
// used to execute queries, and operation discovery over a GraphQL
// document.
package graphql

import (
	"encoding/json"
)

// Request is the wire envelope sent to a GraphQL endpoint.
type Request struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
	// OperationName is omitted for unnamed operations; empty string and
	// absent are equivalent.
	OperationName string `json:"operationName,omitempty"`
}

// Response is a GraphQL execution result.
type Response struct {
	Data   json.RawMessage `json:"data,omitempty"`
	Errors []Error         `json:"errors,omitempty"`
}

// Error is a single GraphQL execution error. Path segments mix field
// names and list indices, so they stay untyped.
type Error struct {
	Message string        `json:"message"`
	Path    []interface{} `json:"path,omitempty"`
}

// HasErrors reports whether the execution result carries errors.
func (r *Response) HasErrors() bool {
	return len(r.Errors) > 0
}
