package schema

import (
	"strings"

	"github.com/roomkangali/gqlbola/internal/model"
)

// FindBolaPointsOfInterest walks the root query and mutation fields looking
// for ones with an argument whose named type is "ID" or whose (lowercased)
// name contains "id". When allowedTypes is non-empty, only fields whose
// resolved return type appears in it are kept.
func FindBolaPointsOfInterest(s *model.Schema, allowedTypes []string) []model.BolaPointOfInterest {
	if s == nil {
		return nil
	}
	allow := toSet(allowedTypes)

	var points []model.BolaPointOfInterest
	points = append(points, scanRootForBola(s, s.QueryType, model.OperationQuery, allow)...)
	points = append(points, scanRootForBola(s, s.MutationType, model.OperationMutation, allow)...)
	return points
}

func scanRootForBola(s *model.Schema, rootType string, op model.Operation, allow map[string]bool) []model.BolaPointOfInterest {
	def := s.LookupType(rootType)
	if def == nil {
		return nil
	}
	var points []model.BolaPointOfInterest
	for _, f := range def.Fields {
		argName, ok := firstIDArg(f)
		if !ok {
			continue
		}
		returnType, _ := f.Type.UnwrapName()
		if len(allow) > 0 && !allow[returnType] {
			continue
		}
		points = append(points, model.BolaPointOfInterest{
			FieldName:      f.Name,
			Operation:      op,
			IDArgName:      argName,
			ReturnTypeName: returnType,
		})
	}
	return points
}

func firstIDArg(f model.FieldDefinition) (string, bool) {
	for _, arg := range f.Args {
		typeName, _ := arg.Type.UnwrapName()
		if typeName == "ID" || strings.Contains(strings.ToLower(arg.Name), "id") {
			return arg.Name, true
		}
	}
	return "", false
}

// paginationAllowlist is the set of argument names that do not disqualify a
// list field from being treated as an unbounded, unpaginated candidate.
var paginationAllowlist = map[string]bool{
	"first": true, "last": true, "before": true, "after": true,
	"limit": true, "offset": true,
}

// fallbackListFields is used when the schema is unavailable or no field
// qualifies structurally.
var fallbackListFields = []string{
	"users", "posts", "items", "orders", "products",
	"nodes", "edges", "connections", "list", "all", "get",
}

// FindListFields returns the names of root query fields that return a list
// and have no required argument outside the pagination allowlist. Falls
// back to a fixed guess list when the schema is null or nothing qualifies.
func FindListFields(s *model.Schema) []string {
	if s == nil {
		return fallbackListFields
	}

	var out []string
	for _, f := range s.QueryFields() {
		_, isList := f.Type.UnwrapName()
		if !isList {
			continue
		}
		if hasDisallowedRequiredArg(f) {
			continue
		}
		out = append(out, f.Name)
	}
	if len(out) == 0 {
		return fallbackListFields
	}
	return out
}

func hasDisallowedRequiredArg(f model.FieldDefinition) bool {
	for _, arg := range f.Args {
		if arg.Type.Kind != "NON_NULL" {
			continue
		}
		if !paginationAllowlist[strings.ToLower(arg.Name)] {
			return true
		}
	}
	return false
}

// FindDeepPath greedily selects a chain of root/nested fields that are not
// lists, take no required arguments, and each return an Object type
// different from its parent, up to depth steps.
func FindDeepPath(s *model.Schema, depth int) []string {
	if s == nil || depth <= 0 {
		return nil
	}

	rootDef := s.LookupType(s.QueryType)
	if rootDef == nil {
		return nil
	}

	var path []string
	currentFields := rootDef.Fields
	currentType := s.QueryType

	for step := 0; step < depth; step++ {
		next := pickDeepCandidate(s, currentFields, currentType)
		if next == nil {
			break
		}
		path = append(path, next.Name)
		nextType, _ := next.Type.UnwrapName()
		nextDef := s.LookupType(nextType)
		if nextDef == nil {
			break
		}
		currentFields = nextDef.Fields
		currentType = nextType
	}
	return path
}

func pickDeepCandidate(s *model.Schema, fields []model.FieldDefinition, currentType string) *model.FieldDefinition {
	for i := range fields {
		f := fields[i]
		objType, isList := f.Type.UnwrapName()
		if isList || objType == "" || objType == currentType {
			continue
		}
		if hasAnyRequiredArg(f) {
			continue
		}
		def := s.LookupType(objType)
		if def == nil || def.Kind != "OBJECT" {
			continue
		}
		return &f
	}
	return nil
}

func hasAnyRequiredArg(f model.FieldDefinition) bool {
	for _, arg := range f.Args {
		if arg.Type.Kind == "NON_NULL" {
			return true
		}
	}
	return false
}

var leadingVerbs = []string{"get", "find", "list", "all"}
var trailingSuffixes = []string{"ById", "Connection", "Edge", "s"}

// InferObjectTypeFromFieldName strips a leading get/find/list/all verb and
// a trailing ById/Connection/Edge/s suffix, then upper-cases the first
// character. Used only as a BOLA fallback when returnTypeName is empty.
func InferObjectTypeFromFieldName(name string) string {
	remainder := name
	for _, v := range leadingVerbs {
		if strings.HasPrefix(remainder, v) && len(remainder) > len(v) {
			remainder = remainder[len(v):]
			break
		}
	}
	for _, suf := range trailingSuffixes {
		if strings.HasSuffix(remainder, suf) && len(remainder) > len(suf) {
			remainder = strings.TrimSuffix(remainder, suf)
			break
		}
	}
	if remainder == "" {
		return "Object"
	}
	return strings.ToUpper(remainder[:1]) + remainder[1:]
}

func toSet(items []string) map[string]bool {
	if len(items) == 0 {
		return nil
	}
	m := make(map[string]bool, len(items))
	for _, i := range items {
		m[i] = true
	}
	return m
}
