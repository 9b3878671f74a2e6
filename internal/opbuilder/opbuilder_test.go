package opbuilder

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roomkangali/gqlbola/internal/model"
)

func TestBuildBolaOperationQuery(t *testing.T) {
	point := model.BolaPointOfInterest{
		FieldName: "order", Operation: model.OperationQuery,
		IDArgName: "id", ReturnTypeName: "Order",
	}
	doc := BuildBolaOperation(point, "42", nil)
	assert.True(t, strings.HasPrefix(doc, "query {"), "expected query keyword, got %s", doc)
	assert.Contains(t, doc, "order(id: 42)")
	assert.Contains(t, doc, "id __typename")
}

func TestBuildBolaOperationMutationQuotesStringID(t *testing.T) {
	point := model.BolaPointOfInterest{
		FieldName: "deleteOrder", Operation: model.OperationMutation,
		IDArgName: "orderId", ReturnTypeName: "",
	}
	doc := BuildBolaOperation(point, "abc-123", nil)
	assert.True(t, strings.HasPrefix(doc, "mutation {"), "expected mutation keyword, got %s", doc)
	assert.Contains(t, doc, `orderId: "abc-123"`)
}

func TestBuildDeepQueryFallsBackToSynthetic(t *testing.T) {
	doc := BuildDeepQuery(3, nil)
	assert.Contains(t, doc, "node {")
	assert.Contains(t, doc, "id __typename")
}

func TestBuildDeepQueryFollowsPath(t *testing.T) {
	doc := BuildDeepQuery(2, []string{"self", "self"})
	assert.Contains(t, doc, "self { self { id __typename } }")
}
