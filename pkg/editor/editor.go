// Package editor implements the pure edit operations over a query's
// parsing options and label options. Every operation returns a new
// QueryModel value and leaves its input untouched; untouched parsing
// options are carried over unchanged so callers can rely on value
// equality to detect no-ops.
package editor

import (
	"fmt"
	"strings"

	"graphql-grafana-plugin/pkg/models"
)

// EditError represents a contract violation by the caller of an edit
// operation, such as an out-of-range index or a blank label name.
type EditError struct {
	Op  string
	Msg string
}

func (e *EditError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

func indexError(op string, i, n int) *EditError {
	return &EditError{Op: op, Msg: fmt.Sprintf("index %d out of range (len %d)", i, n)}
}

// clone returns q with a fresh ParsingOptions slice so the caller's value
// is never written through. Label slices are shared until an operation
// touches them.
func clone(q models.QueryModel) models.QueryModel {
	out := q
	out.ParsingOptions = make([]models.ParsingOption, len(q.ParsingOptions))
	copy(out.ParsingOptions, q.ParsingOptions)
	return out
}

// SetParsingOption replaces the parsing option at index i.
func SetParsingOption(q models.QueryModel, i int, v models.ParsingOption) (models.QueryModel, error) {
	if i < 0 || i >= len(q.ParsingOptions) {
		return q, indexError("set parsing option", i, len(q.ParsingOptions))
	}
	out := clone(q)
	out.ParsingOptions[i] = v
	return out, nil
}

// SetLabelOption replaces label option j within parsing option i.
func SetLabelOption(q models.QueryModel, i, j int, v models.LabelOption) (models.QueryModel, error) {
	if i < 0 || i >= len(q.ParsingOptions) {
		return q, indexError("set label option", i, len(q.ParsingOptions))
	}
	labels := q.ParsingOptions[i].LabelOptions
	if j < 0 || j >= len(labels) {
		return q, indexError("set label option", j, len(labels))
	}
	out := clone(q)
	newLabels := make([]models.LabelOption, len(labels))
	copy(newLabels, labels)
	newLabels[j] = v
	out.ParsingOptions[i].LabelOptions = newLabels
	return out, nil
}

// DeleteParsingOption removes the parsing option at index i, preserving
// the order of the remaining entries. The minimum-one invariant is not
// enforced here; callers gate deletion with CanDeleteParsingOption.
func DeleteParsingOption(q models.QueryModel, i int) (models.QueryModel, error) {
	if i < 0 || i >= len(q.ParsingOptions) {
		return q, indexError("delete parsing option", i, len(q.ParsingOptions))
	}
	out := q
	out.ParsingOptions = make([]models.ParsingOption, 0, len(q.ParsingOptions)-1)
	out.ParsingOptions = append(out.ParsingOptions, q.ParsingOptions[:i]...)
	out.ParsingOptions = append(out.ParsingOptions, q.ParsingOptions[i+1:]...)
	return out, nil
}

// CanDeleteParsingOption reports whether a parsing option may be deleted:
// the editor always keeps at least one entry.
func CanDeleteParsingOption(q models.QueryModel) bool {
	return len(q.ParsingOptions) > 1
}

// SwapParsingOptions exchanges the parsing options at i1 and i2. Applying
// it twice with the same indices restores the original order.
func SwapParsingOptions(q models.QueryModel, i1, i2 int) (models.QueryModel, error) {
	n := len(q.ParsingOptions)
	if i1 < 0 || i1 >= n {
		return q, indexError("swap parsing options", i1, n)
	}
	if i2 < 0 || i2 >= n {
		return q, indexError("swap parsing options", i2, n)
	}
	out := clone(q)
	out.ParsingOptions[i1], out.ParsingOptions[i2] = out.ParsingOptions[i2], out.ParsingOptions[i1]
	return out, nil
}

// DeleteLabelOption removes label option j from parsing option i. Other
// parsing options are untouched.
func DeleteLabelOption(q models.QueryModel, i, j int) (models.QueryModel, error) {
	if i < 0 || i >= len(q.ParsingOptions) {
		return q, indexError("delete label option", i, len(q.ParsingOptions))
	}
	labels := q.ParsingOptions[i].LabelOptions
	if j < 0 || j >= len(labels) {
		return q, indexError("delete label option", j, len(labels))
	}
	out := clone(q)
	newLabels := make([]models.LabelOption, 0, len(labels)-1)
	newLabels = append(newLabels, labels[:j]...)
	newLabels = append(newLabels, labels[j+1:]...)
	out.ParsingOptions[i].LabelOptions = newLabels
	return out, nil
}

// AddNewParsingOption appends a new parsing option seeded from the current
// last entry: the time path is carried forward, the data path resets to
// the placeholder default, and label options keep their names but reset to
// empty constants. With no prior entry the placeholder defaults are used.
func AddNewParsingOption(q models.QueryModel) models.QueryModel {
	next := models.DefaultParsingOption()
	if n := len(q.ParsingOptions); n > 0 {
		last := q.ParsingOptions[n-1]
		next.TimePath = last.TimePath
		if len(last.LabelOptions) > 0 {
			next.LabelOptions = make([]models.LabelOption, len(last.LabelOptions))
			for k, l := range last.LabelOptions {
				next.LabelOptions[k] = models.LabelOption{
					Name: l.Name,
					Type: models.LabelTypeConstant,
				}
			}
		}
	}
	out := clone(q)
	out.ParsingOptions = append(out.ParsingOptions, next)
	return out
}

// AddNewLabel appends an empty constant label with the given name to every
// parsing option that does not already have one. Parsing options that
// already carry the name are returned value-equal. Adding the same name
// twice is therefore idempotent.
func AddNewLabel(q models.QueryModel, name string) (models.QueryModel, error) {
	if strings.TrimSpace(name) == "" {
		return q, &EditError{Op: "add label", Msg: "label name cannot be blank"}
	}
	out := clone(q)
	for i, p := range out.ParsingOptions {
		if p.HasLabel(name) {
			continue
		}
		labels := make([]models.LabelOption, 0, len(p.LabelOptions)+1)
		labels = append(labels, p.LabelOptions...)
		labels = append(labels, models.LabelOption{Name: name, Type: models.LabelTypeConstant})
		out.ParsingOptions[i].LabelOptions = labels
	}
	return out, nil
}
