package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roomkangali/gqlbola/internal/model"
)

func sampleSchema() *model.Schema {
	s := &model.Schema{
		QueryType:    "Query",
		MutationType: "Mutation",
		Types:        map[string]*model.TypeDefinition{},
	}
	s.Types["Query"] = &model.TypeDefinition{
		Kind: "OBJECT", Name: "Query",
		Fields: []model.FieldDefinition{
			{
				Name: "order",
				Type: model.TypeRef{Kind: "OBJECT", Name: "Order"},
				Args: []model.InputValue{{Name: "id", Type: model.TypeRef{Kind: "SCALAR", Name: "ID"}}},
			},
			{
				Name: "orders",
				Type: model.TypeRef{Kind: "LIST", OfType: &model.TypeRef{Kind: "OBJECT", Name: "Order"}},
			},
		},
	}
	s.Types["Mutation"] = &model.TypeDefinition{
		Kind: "OBJECT", Name: "Mutation",
		Fields: []model.FieldDefinition{
			{
				Name: "deleteOrder",
				Type: model.TypeRef{Kind: "SCALAR", Name: "Boolean"},
				Args: []model.InputValue{{Name: "orderId", Type: model.TypeRef{Kind: "SCALAR", Name: "String"}}},
			},
		},
	}
	s.Types["Order"] = &model.TypeDefinition{
		Kind: "OBJECT", Name: "Order",
		Fields: []model.FieldDefinition{
			{Name: "id", Type: model.TypeRef{Kind: "SCALAR", Name: "ID"}},
			{Name: "total", Type: model.TypeRef{Kind: "SCALAR", Name: "Float"}},
		},
	}
	return s
}

func TestFindBolaPointsOfInterest(t *testing.T) {
	s := sampleSchema()
	points := FindBolaPointsOfInterest(s, nil)
	assert.Len(t, points, 2)
}

func TestFindBolaPointsOfInterestFilteredByType(t *testing.T) {
	s := sampleSchema()
	points := FindBolaPointsOfInterest(s, []string{"NoSuchType"})
	for _, p := range points {
		assert.NotEqual(t, "Order", p.ReturnTypeName)
	}
}

func TestFindListFieldsFallback(t *testing.T) {
	assert.Len(t, FindListFields(nil), len(fallbackListFields))
}

func TestFindListFieldsStructural(t *testing.T) {
	s := sampleSchema()
	got := FindListFields(s)
	assert.Equal(t, []string{"orders"}, got)
}

func TestInferObjectTypeFromFieldName(t *testing.T) {
	cases := map[string]string{
		"getOrder":      "Order",
		"orders":        "Order",
		"listUsersById": "Users",
		"":              "Object",
	}
	for in, want := range cases {
		assert.Equal(t, want, InferObjectTypeFromFieldName(in), "input %q", in)
	}
}
