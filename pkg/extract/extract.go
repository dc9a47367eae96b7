// Package extract applies a query's parsing options to a GraphQL JSON
// response and builds Grafana data frames from the matched records.
package extract

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"graphql-grafana-plugin/pkg/models"

	"github.com/grafana/grafana-plugin-sdk-go/backend"
	"github.com/grafana/grafana-plugin-sdk-go/data"
	"github.com/ohler55/ojg/jp"
)

// ExtractError represents a parsing option that cannot be applied to the
// response payload.
type ExtractError struct {
	Path string
	Msg  string
	Err  error // Wrapped error
}

func (e *ExtractError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction error at %q: %s: %v", e.Path, e.Msg, e.Err)
	}
	return fmt.Sprintf("extraction error at %q: %s", e.Path, e.Msg)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}

// Frames applies every parsing option to the response data and returns one
// frame per distinct label set per option. Records missing a timestamp
// fall back to the query range start.
func Frames(raw json.RawMessage, options []models.ParsingOption, query backend.DataQuery) (data.Frames, error) {
	var root interface{}
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, &ExtractError{Path: "$", Msg: "response data is not valid JSON", Err: err}
	}

	var frames data.Frames
	for _, option := range options {
		optionFrames, err := framesForOption(root, option, query)
		if err != nil {
			return nil, err
		}
		frames = append(frames, optionFrames...)
	}
	return frames, nil
}

// series accumulates the records sharing one label set.
type series struct {
	labels  data.Labels
	records []map[string]interface{}
	times   []time.Time
}

func framesForOption(root interface{}, option models.ParsingOption, query backend.DataQuery) (data.Frames, error) {
	records, err := recordsAt(root, option.DataPath)
	if err != nil {
		return nil, err
	}

	// Dot paths consumed by the time field and FIELD labels are excluded
	// from the value fields.
	consumed := map[string]struct{}{option.TimePath: {}}
	for _, l := range option.LabelOptions {
		if l.Type == models.LabelTypeField {
			consumed[l.Value] = struct{}{}
		}
	}

	groups := map[string]*series{}
	var order []string
	for _, rec := range records {
		flat := map[string]interface{}{}
		flatten("", rec, flat)

		labels, err := recordLabels(rec, option.LabelOptions)
		if err != nil {
			return nil, err
		}

		key := labelKey(labels)
		g, ok := groups[key]
		if !ok {
			g = &series{labels: labels}
			groups[key] = g
			order = append(order, key)
		}
		g.records = append(g.records, flat)
		g.times = append(g.times, recordTime(flat[option.TimePath], query))
	}

	var frames data.Frames
	for _, key := range order {
		frames = append(frames, buildFrame(option, groups[key], consumed))
	}
	return frames, nil
}

// recordsAt resolves the data path to an array of records.
func recordsAt(root interface{}, path string) ([]map[string]interface{}, error) {
	expr, err := jp.ParseString(path)
	if err != nil {
		return nil, &ExtractError{Path: path, Msg: "invalid data path", Err: err}
	}
	matches := expr.Get(root)
	if len(matches) == 0 {
		return nil, &ExtractError{Path: path, Msg: "data path matched nothing in the response"}
	}
	list, ok := matches[0].([]interface{})
	if !ok {
		return nil, &ExtractError{Path: path, Msg: "data path does not point to an array"}
	}
	records := make([]map[string]interface{}, 0, len(list))
	for _, item := range list {
		if rec, ok := item.(map[string]interface{}); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

// recordLabels derives the label set for one record.
func recordLabels(rec map[string]interface{}, options []models.LabelOption) (data.Labels, error) {
	if len(options) == 0 {
		return nil, nil
	}
	labels := data.Labels{}
	for _, l := range options {
		switch l.Type {
		case models.LabelTypeConstant:
			labels[l.Name] = l.Value
		case models.LabelTypeField:
			expr, err := jp.ParseString(l.Value)
			if err != nil {
				return nil, &ExtractError{Path: l.Value, Msg: fmt.Sprintf("invalid field path for label %q", l.Name), Err: err}
			}
			if matches := expr.Get(rec); len(matches) > 0 {
				labels[l.Name] = fmt.Sprintf("%v", matches[0])
			} else {
				labels[l.Name] = ""
			}
		}
	}
	return labels, nil
}

// recordTime interprets a timestamp value: epoch milliseconds or an
// RFC3339 string. Anything else falls back to the query range start.
func recordTime(value interface{}, query backend.DataQuery) time.Time {
	switch ts := value.(type) {
	case float64:
		return time.UnixMilli(int64(ts)).UTC()
	case string:
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			return t
		}
	}
	return query.TimeRange.From
}

// labelKey produces a canonical grouping key for a label set.
func labelKey(labels data.Labels) string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	key := ""
	for _, k := range keys {
		key += k + "=" + labels[k] + ";"
	}
	return key
}

// buildFrame creates one frame for a label group: a time field plus one
// field per remaining record key, typed from the first record.
func buildFrame(option models.ParsingOption, g *series, consumed map[string]struct{}) *data.Frame {
	frame := data.NewFrame(option.DataPath)
	frame.Fields = append(frame.Fields, data.NewField("time", nil, g.times))

	// Union of record keys, sorted for stable field order.
	nameSet := map[string]struct{}{}
	for _, rec := range g.records {
		for k := range rec {
			if _, skip := consumed[k]; !skip {
				nameSet[k] = struct{}{}
			}
		}
	}
	names := make([]string, 0, len(nameSet))
	for k := range nameSet {
		names = append(names, k)
	}
	sort.Strings(names)

	for _, name := range names {
		frame.Fields = append(frame.Fields, valueField(name, g))
	}
	return frame
}

// valueField builds one typed value field across the group's records,
// keyed off the first record's type.
func valueField(name string, g *series) *data.Field {
	var sample interface{}
	if len(g.records) > 0 {
		sample = g.records[0][name]
	}

	switch sample.(type) {
	case float64:
		values := make([]float64, len(g.records))
		for i, rec := range g.records {
			if v, ok := rec[name].(float64); ok {
				values[i] = v
			}
		}
		return data.NewField(name, g.labels, values)
	case bool:
		values := make([]bool, len(g.records))
		for i, rec := range g.records {
			if v, ok := rec[name].(bool); ok {
				values[i] = v
			}
		}
		return data.NewField(name, g.labels, values)
	default:
		values := make([]string, len(g.records))
		for i, rec := range g.records {
			if rec[name] != nil {
				values[i] = fmt.Sprintf("%v", rec[name])
			}
		}
		return data.NewField(name, g.labels, values)
	}
}

// flatten turns nested objects into dot-delimited keys, matching the dot
// paths used by timePath and FIELD label values.
func flatten(prefix string, value interface{}, out map[string]interface{}) {
	obj, ok := value.(map[string]interface{})
	if !ok {
		out[prefix] = value
		return
	}
	for k, v := range obj {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		flatten(key, v, out)
	}
}
