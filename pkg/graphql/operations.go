package graphql

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// OperationNames parses a GraphQL document and returns the names of its
// operations in document order. Unnamed operations contribute an empty
// string.
func OperationNames(doc string) ([]string, error) {
	parsed, err := parser.ParseQuery(&ast.Source{Name: "query", Input: doc})
	if err != nil {
		return nil, fmt.Errorf("could not parse GraphQL document: %w", err)
	}
	names := make([]string, 0, len(parsed.Operations))
	for _, op := range parsed.Operations {
		names = append(names, op.Name)
	}
	return names, nil
}

// EffectiveOperationName resolves which operation of the document will be
// executed. A requested name must exist in the document. When no name is
// requested a single operation is selected by its own name (empty for an
// unnamed operation), but a document with several operations needs an
// explicit selection.
func EffectiveOperationName(doc, requested string) (string, error) {
	names, err := OperationNames(doc)
	if err != nil {
		return "", err
	}
	if requested != "" {
		for _, name := range names {
			if name == requested {
				return requested, nil
			}
		}
		return "", fmt.Errorf("operation %q not found in query document", requested)
	}
	if len(names) > 1 {
		return "", fmt.Errorf("document defines %d operations, an operation name is required", len(names))
	}
	if len(names) == 1 {
		return names[0], nil
	}
	return "", nil
}
