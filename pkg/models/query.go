package models

import (
	"encoding/json"
	"fmt"
)

// Placeholder paths seeded into a fresh ParsingOption. The query editor
// shows these verbatim, so they are part of the persisted-query surface.
const (
	DefaultDataPath = "data.path"
	DefaultTimePath = "time.path"
)

// LabelType distinguishes how a LabelOption derives its value. The wire
// strings round-trip unchanged through persisted queries.
type LabelType string

const (
	// LabelTypeConstant means the label value is the literal Value string.
	LabelTypeConstant LabelType = "CONSTANT"
	// LabelTypeField means Value is a dot-delimited field path resolved
	// against each extracted record.
	LabelTypeField LabelType = "FIELD"
)

// UnmarshalJSON rejects unknown label types so a corrupted persisted query
// fails loudly instead of silently extracting nothing.
func (t *LabelType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch LabelType(s) {
	case LabelTypeConstant, LabelTypeField:
		*t = LabelType(s)
		return nil
	default:
		return &QueryError{Msg: fmt.Sprintf("unknown label option type %q", s)}
	}
}

// LabelOption describes one derived label for a ParsingOption. Name is
// unique within the owning ParsingOption's LabelOptions.
type LabelOption struct {
	Name  string    `json:"name"`
	Type  LabelType `json:"type"`
	Value string    `json:"value"`
}

// ParsingOption is one data-extraction rule: DataPath locates an array of
// records within the response JSON root, TimePath locates the timestamp
// field relative to each record.
type ParsingOption struct {
	DataPath     string        `json:"dataPath"`
	TimePath     string        `json:"timePath"`
	LabelOptions []LabelOption `json:"labelOptions,omitempty"`
}

// HasLabel reports whether a label with the given name already exists in
// this ParsingOption.
func (p ParsingOption) HasLabel(name string) bool {
	for _, l := range p.LabelOptions {
		if l.Name == name {
			return true
		}
	}
	return false
}

// QueryModel represents the structure of a single query sent from Grafana.
// This struct will be unmarshaled from the JSON data in backend.DataQuery.
type QueryModel struct {
	QueryText string `json:"queryText"`
	// OperationName selects which operation in QueryText to execute.
	// Empty and absent are equivalent (unnamed operation).
	OperationName string `json:"operationName,omitempty"`
	// Variables is JSON text declaring GraphQL variables; it may contain
	// template-variable references for interpolation.
	Variables string `json:"variables,omitempty"`
	// AdvancedVariables switches interpolation from string-leaf mode to
	// whole-text mode, allowing variables that expand into JSON fragments.
	AdvancedVariables bool            `json:"advancedVariables,omitempty"`
	ParsingOptions    []ParsingOption `json:"parsingOptions"`
}

// QueryError represents an error in the persisted query configuration.
type QueryError struct {
	Msg string
	Err error // Wrapped error
}

func (e *QueryError) Error() string {
	if e.Err != nil {
		if e.Msg != "" {
			return fmt.Sprintf("%s: %v", e.Msg, e.Err)
		}
		return fmt.Sprintf("%v", e.Err)
	}
	return e.Msg
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// DefaultParsingOption returns the seed entry every editable query starts
// with.
func DefaultParsingOption() ParsingOption {
	return ParsingOption{
		DataPath: DefaultDataPath,
		TimePath: DefaultTimePath,
	}
}

// LoadQuery unmarshals the raw query JSON from Grafana into a QueryModel
// and establishes the parsing-option invariant: ParsingOptions is never
// empty after loading.
func LoadQuery(raw []byte) (*QueryModel, error) {
	var qm QueryModel
	if err := json.Unmarshal(raw, &qm); err != nil {
		return nil, &QueryError{Msg: "could not unmarshal query JSON", Err: err}
	}
	if len(qm.ParsingOptions) == 0 {
		qm.ParsingOptions = []ParsingOption{DefaultParsingOption()}
	}
	return &qm, nil
}
