package graphql

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomkangali/gqlbola/internal/httpclient"
	"github.com/roomkangali/gqlbola/internal/logger"
	"github.com/roomkangali/gqlbola/internal/model"
	"github.com/roomkangali/gqlbola/internal/scanner"
)

func testDeps() scanner.Deps {
	log := logger.NewLogger(logger.ERROR)
	client := httpclient.New(log, httpclient.Options{MaxRetries: 0})
	return scanner.Deps{Client: client, Logger: log, Config: model.DefaultRuntimeConfig()}
}

func bodyOf(r *http.Request) string {
	raw, _ := io.ReadAll(r.Body)
	return string(raw)
}

// TestDepthCheckAcceptedProducesMediumFinding covers scenario S2.
func TestDepthCheckAcceptedProducesMediumFinding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(bodyOf(r), "users") {
			json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"users": []any{}}})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"node": map[string]any{}}})
	}))
	defer server.Close()

	deps := testDeps()
	p := New()
	findings := p.Run(context.Background(), model.ScanTarget{URL: server.URL}, nil, deps)

	var found bool
	for _, f := range findings {
		if f.Title == "Potencial DoS por Profundidad" {
			found = true
			assert.Equal(t, model.SeverityMedium, f.Severity)
		}
	}
	require.True(t, found, "expected a depth finding, got %v", findings)
}

// TestPaginationOver100ProducesHighFinding covers scenario S3.
func TestPaginationOver100ProducesHighFinding(t *testing.T) {
	items := make([]map[string]any, 150)
	for i := range items {
		items[i] = map[string]any{"id": i}
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := bodyOf(r)
		if strings.Contains(body, "node {") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"users": items}})
	}))
	defer server.Close()

	sch := &model.Schema{
		QueryType: "Query",
		Types: map[string]*model.TypeDefinition{
			"Query": {
				Kind: "OBJECT", Name: "Query",
				Fields: []model.FieldDefinition{
					{Name: "users", Type: model.TypeRef{Kind: "LIST", OfType: &model.TypeRef{Kind: "OBJECT", Name: "User"}}},
				},
			},
			"User": {Kind: "OBJECT", Name: "User", Fields: []model.FieldDefinition{{Name: "id", Type: model.TypeRef{Kind: "SCALAR", Name: "ID"}}}},
		},
	}

	deps := testDeps()
	p := New()
	findings := p.Run(context.Background(), model.ScanTarget{URL: server.URL}, sch, deps)

	var found bool
	for _, f := range findings {
		if f.Title == "Potencial DoS por Falta de Paginación" {
			found = true
			assert.Equal(t, model.SeverityHigh, f.Severity)
			assert.Contains(t, f.Description, "150")
		}
	}
	require.True(t, found, "expected a pagination finding, got %v", findings)
}

// TestDepthCheckDataWithLimitErrorProducesNoFinding covers a response that
// carries data alongside a depth-limit GraphQL error: httpclient returns
// err == nil in that case, so the depth check must not treat err == nil
// alone as acceptance.
func TestDepthCheckDataWithLimitErrorProducesNoFinding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data":   map[string]any{"node": map[string]any{}},
			"errors": []map[string]any{{"message": "query depth limit exceeded"}},
		})
	}))
	defer server.Close()

	deps := testDeps()
	p := New()
	findings := p.Run(context.Background(), model.ScanTarget{URL: server.URL}, nil, deps)

	for _, f := range findings {
		assert.NotEqual(t, "Potencial DoS por Profundidad", f.Title)
	}
}

// TestPaginationDataWithLimitErrorProducesNoFinding covers a response that
// carries a large data array alongside a pagination-limit GraphQL error: the
// limit-marker check must run before the array-length check regardless of
// err being nil.
func TestPaginationDataWithLimitErrorProducesNoFinding(t *testing.T) {
	items := make([]map[string]any, 150)
	for i := range items {
		items[i] = map[string]any{"id": i}
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := bodyOf(r)
		if strings.Contains(body, "node {") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data":   map[string]any{"users": items},
			"errors": []map[string]any{{"message": "pagination limit reached"}},
		})
	}))
	defer server.Close()

	sch := &model.Schema{
		QueryType: "Query",
		Types: map[string]*model.TypeDefinition{
			"Query": {
				Kind: "OBJECT", Name: "Query",
				Fields: []model.FieldDefinition{
					{Name: "users", Type: model.TypeRef{Kind: "LIST", OfType: &model.TypeRef{Kind: "OBJECT", Name: "User"}}},
				},
			},
			"User": {Kind: "OBJECT", Name: "User", Fields: []model.FieldDefinition{{Name: "id", Type: model.TypeRef{Kind: "SCALAR", Name: "ID"}}}},
		},
	}

	deps := testDeps()
	p := New()
	findings := p.Run(context.Background(), model.ScanTarget{URL: server.URL}, sch, deps)

	for _, f := range findings {
		assert.NotEqual(t, "Potencial DoS por Falta de Paginación", f.Title)
	}
}

func TestPaginationUnder100ProducesNoFinding(t *testing.T) {
	items := make([]map[string]any, 5)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := bodyOf(r)
		if strings.Contains(body, "node {") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"users": items}})
	}))
	defer server.Close()

	deps := testDeps()
	p := New()
	findings := p.Run(context.Background(), model.ScanTarget{URL: server.URL}, nil, deps)

	for _, f := range findings {
		assert.NotEqual(t, "Potencial DoS por Falta de Paginación", f.Title)
	}
}
