// Package opbuilder synthesizes printable GraphQL operation documents from
// a schema point of interest or list field, without ever executing them.
package opbuilder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roomkangali/gqlbola/internal/model"
)

const baseSelection = "id __typename"

// BuildBolaOperation constructs a single-operation document targeting
// point.FieldName with one argument point.IDArgName set to objectID. The
// selection set always includes id and __typename, plus up to three
// distinct scalar fields of the resolved return type when schema is
// available.
func BuildBolaOperation(point model.BolaPointOfInterest, objectID string, s *model.Schema) string {
	selection := extraSelection(s, point.ReturnTypeName)
	kw := "query"
	if point.Operation == model.OperationMutation {
		kw = "mutation"
	}
	return fmt.Sprintf(
		"%s { %s(%s: %s) { %s%s } }",
		kw, point.FieldName, point.IDArgName, quoteArg(objectID), baseSelection, selection,
	)
}

// BuildListQuery builds a no-argument query for fieldName.
func BuildListQuery(fieldName string, s *model.Schema, itemType string) string {
	selection := extraSelection(s, itemType)
	return fmt.Sprintf("query { %s { %s%s } }", fieldName, baseSelection, selection)
}

// BuildDeepQuery emits nested selection sets along path, terminating with
// id/__typename. When path is empty it falls back to a synthetic
// node { child0 { child1 { ... } } } document of the requested depth.
func BuildDeepQuery(depth int, path []string) string {
	if len(path) > 0 {
		return "query { " + nestPath(path, 0) + " }"
	}
	return "query { " + syntheticNest(depth) + " }"
}

func nestPath(path []string, i int) string {
	if i == len(path) {
		return baseSelection
	}
	return fmt.Sprintf("%s { %s }", path[i], nestPath(path, i+1))
}

func syntheticNest(depth int) string {
	if depth <= 0 {
		return baseSelection
	}
	return fmt.Sprintf("node { %s }", syntheticNestChild(0, depth-1))
}

func syntheticNestChild(index, remaining int) string {
	if remaining <= 0 {
		return baseSelection
	}
	return fmt.Sprintf("child%d { %s }", index, syntheticNestChild(index+1, remaining-1))
}

// extraSelection picks up to three distinct scalar fields of typeName,
// beyond id/__typename, when the schema can resolve it.
func extraSelection(s *model.Schema, typeName string) string {
	if s == nil || typeName == "" {
		return ""
	}
	def := s.LookupType(typeName)
	if def == nil {
		return ""
	}
	seen := map[string]bool{"id": true, "__typename": true}
	var extras []string
	for _, f := range def.Fields {
		if len(extras) >= 3 {
			break
		}
		if seen[f.Name] {
			continue
		}
		if !isScalarKind(f.Type) {
			continue
		}
		seen[f.Name] = true
		extras = append(extras, f.Name)
	}
	if len(extras) == 0 {
		return ""
	}
	return " " + strings.Join(extras, " ")
}

func isScalarKind(t model.TypeRef) bool {
	name, _ := t.UnwrapName()
	cur := &t
	for cur != nil {
		if cur.Kind == "SCALAR" || cur.Kind == "ENUM" {
			return true
		}
		cur = cur.OfType
	}
	switch name {
	case "String", "Int", "Float", "Boolean", "ID":
		return true
	}
	return false
}

func quoteArg(v string) string {
	if _, err := strconv.Atoi(v); err == nil {
		return v
	}
	return strconv.Quote(v)
}
