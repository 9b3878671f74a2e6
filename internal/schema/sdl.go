package schema

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/roomkangali/gqlbola/internal/model"
)

// parseMinimalSDL supports the subset of GraphQL SDL that matters for BOLA
// and DoS probing: `type Name { field(arg: Type): ReturnType }` blocks.
// "input" blocks are not parsed, since probers only walk query/object
// fields. Directives, unions, and interfaces are not resolved; a field
// referencing one of those still parses, it simply produces no further
// nested lookups. This keeps the parser small and dependency-free rather
// than pulling in a full SDL/AST library for a rarely-used inline path (see
// DESIGN.md).
var (
	typeBlockRE = regexp.MustCompile(`(?s)type\s+(\w+)\s*\{(.*?)\}`)
	fieldRE     = regexp.MustCompile(`(\w+)\s*(\(([^)]*)\))?\s*:\s*([\[\]\w!]+)`)
	argRE       = regexp.MustCompile(`(\w+)\s*:\s*([\[\]\w!]+)`)
)

func parseMinimalSDL(sdl string) (*model.Schema, error) {
	s := &model.Schema{Types: make(map[string]*model.TypeDefinition)}

	matches := typeBlockRE.FindAllStringSubmatch(sdl, -1)
	if len(matches) == 0 {
		return nil, fmt.Errorf("no type definitions found in inline schema")
	}

	for _, m := range matches {
		typeName, body := m[1], m[2]
		def := &model.TypeDefinition{Kind: "OBJECT", Name: typeName}

		for _, line := range strings.Split(body, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			fm := fieldRE.FindStringSubmatch(line)
			if fm == nil {
				continue
			}
			fieldName, argsRaw, retRaw := fm[1], fm[3], fm[4]
			fd := model.FieldDefinition{Name: fieldName, Type: parseTypeRef(retRaw)}
			for _, am := range argRE.FindAllStringSubmatch(argsRaw, -1) {
				fd.Args = append(fd.Args, model.InputValue{Name: am[1], Type: parseTypeRef(am[2])})
			}
			def.Fields = append(def.Fields, fd)
		}

		s.Types[typeName] = def
		if typeName == "Query" {
			s.QueryType = typeName
		}
		if typeName == "Mutation" {
			s.MutationType = typeName
		}
	}

	if s.QueryType == "" {
		return nil, fmt.Errorf("inline schema has no Query type")
	}
	return s, nil
}

// parseTypeRef turns a raw SDL type token like "[User!]!" into the same
// nested TypeRef shape introspection produces, so downstream analyzer code
// never needs to know which source the schema came from.
func parseTypeRef(raw string) model.TypeRef {
	raw = strings.TrimSpace(raw)
	if strings.HasSuffix(raw, "!") {
		inner := parseTypeRef(strings.TrimSuffix(raw, "!"))
		return model.TypeRef{Kind: "NON_NULL", OfType: &inner}
	}
	if strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]") {
		inner := parseTypeRef(raw[1 : len(raw)-1])
		return model.TypeRef{Kind: "LIST", OfType: &inner}
	}
	kind := "SCALAR"
	switch raw {
	case "Int", "Float", "String", "Boolean", "ID":
	default:
		if raw != "" && strings.ToUpper(raw[:1]) == raw[:1] {
			kind = "OBJECT"
		}
	}
	return model.TypeRef{Kind: kind, Name: raw}
}
