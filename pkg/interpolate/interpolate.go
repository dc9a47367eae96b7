// Package interpolate merges host-provided template variables into a
// user-declared GraphQL variables document and injects the auto-populated
// variables every query execution carries.
package interpolate

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/grafana/grafana-plugin-sdk-go/backend"
)

// Names of the auto-populated variables. They are always present in the
// final payload and always override user-declared entries of the same
// name, so manual and scheduled executions stay consistent.
const (
	AutoVarTimeFrom = "timeFrom"
	AutoVarTimeTo   = "timeTo"
)

// VariableSource supplies template-variable substitution and the current
// requested time range. The host platform provides one per execution.
type VariableSource interface {
	// Replace substitutes template-variable references in s. Unresolvable
	// references are left in place.
	Replace(s string) string
	// TimeRange returns the requested time range for the execution.
	TimeRange() backend.TimeRange
}

// VariablesError represents malformed user variables JSON.
type VariablesError struct {
	Msg string
	Err error // Wrapped error
}

func (e *VariablesError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *VariablesError) Unwrap() error {
	return e.Err
}

// Interpolate produces the variables object to send with a query.
//
// In standard mode the variables text is parsed first and substitution is
// applied to string leaf values only; structural keys are never touched
// and interpolated substrings are never re-parsed as JSON. In advanced
// mode substitution is applied to the whole raw text before parsing, so a
// variable may expand into a JSON fragment.
//
// The auto-populated variables (the requested time range in epoch
// milliseconds) are merged last and deliberately override user-declared
// entries of the same name; a per-query opt-out would belong in the
// persisted model, not here.
func Interpolate(variablesText string, source VariableSource, advanced bool) (map[string]interface{}, error) {
	variables := map[string]interface{}{}

	text := strings.TrimSpace(variablesText)
	if text != "" {
		if advanced {
			text = source.Replace(text)
		}
		if err := json.Unmarshal([]byte(text), &variables); err != nil {
			return nil, &VariablesError{Msg: "could not parse variables as JSON", Err: err}
		}
		if !advanced {
			for name, value := range variables {
				variables[name] = replaceLeaves(value, source)
			}
		}
	}

	tr := source.TimeRange()
	variables[AutoVarTimeFrom] = tr.From.UnixMilli()
	variables[AutoVarTimeTo] = tr.To.UnixMilli()
	return variables, nil
}

// replaceLeaves walks a decoded JSON value and applies substitution to
// string leaves only.
func replaceLeaves(value interface{}, source VariableSource) interface{} {
	switch v := value.(type) {
	case string:
		return source.Replace(v)
	case map[string]interface{}:
		for key, nested := range v {
			v[key] = replaceLeaves(nested, source)
		}
		return v
	case []interface{}:
		for i, nested := range v {
			v[i] = replaceLeaves(nested, source)
		}
		return v
	default:
		return v
	}
}

// referencePattern matches $name and ${name} template-variable references.
var referencePattern = regexp.MustCompile(`\$\{(\w+)\}|\$(\w+)`)

// RangeSource is the VariableSource used for backend-driven executions
// (scheduled refresh, alerting), where only dashboard-level variable
// values and the request time range are available. Multi-value variables
// are joined with commas. The builtin $__from and $__to range tokens are
// resolved from the time range.
type RangeSource struct {
	Range backend.TimeRange
	Vars  map[string][]string
}

// TimeRange implements VariableSource.
func (s RangeSource) TimeRange() backend.TimeRange {
	return s.Range
}

// Replace implements VariableSource.
func (s RangeSource) Replace(text string) string {
	return referencePattern.ReplaceAllStringFunc(text, func(ref string) string {
		name := strings.TrimPrefix(ref, "$")
		name = strings.TrimPrefix(strings.TrimSuffix(name, "}"), "{")

		switch name {
		case "__from":
			return strconv.FormatInt(s.Range.From.UnixMilli(), 10)
		case "__to":
			return strconv.FormatInt(s.Range.To.UnixMilli(), 10)
		}
		if values, ok := s.Vars[name]; ok {
			return strings.Join(values, ",")
		}
		return ref
	})
}
