package orchestrator

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

func newTestClient() *httpclient.Client {
	log := logger.NewLogger(logger.ERROR)
	return httpclient.New(log, httpclient.Options{MaxRetries: 0})
}

// TestConnectivityFailureProducesNoFindings covers scenario S6: an
// unreachable target must fail with an empty finding set and an error
// string beginning with the canonical connectivity-failure marker.
func TestConnectivityFailureProducesNoFindings(t *testing.T) {
	client := newTestClient()
	orch := New(client, logger.NewLogger(logger.ERROR), model.DefaultRuntimeConfig())

	target := model.ScanTarget{
		URL:          "http://127.0.0.1:1", // nothing listens here
		UserContexts: []model.UserContext{{ID: "a", AuthToken: "t"}},
	}

	result := orch.RunScan(context.Background(), target)

	assert.Equal(t, model.StatusFailed, result.Status)
	assert.Empty(t, result.Findings)
	assert.True(t, strings.HasPrefix(result.Error, "No se pudo conectar a "), "got %q", result.Error)
}

// TestIntrospectionFailureStillCompletes covers scenario S1: introspection
// fails but connectivity succeeds, so the scan still completes with a
// single Low introspection finding and falls back to the null-schema path.
func TestIntrospectionFailureStillCompletes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := readBody(r)
		if strings.Contains(body, "__typename") && !strings.Contains(body, "__schema") {
			json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"__typename": "Query"}})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient()
	orch := New(client, logger.NewLogger(logger.ERROR), model.DefaultRuntimeConfig())

	target := model.ScanTarget{
		URL:          server.URL,
		UserContexts: []model.UserContext{{ID: "a", AuthToken: "t"}},
	}

	result := orch.RunScan(context.Background(), target)

	require.Equal(t, model.StatusCompleted, result.Status, "error: %s", result.Error)

	var lowIntrospectionFindings int
	for _, f := range result.Findings {
		if f.Title == "Introspection Deshabilitada o Fallida" {
			lowIntrospectionFindings++
			assert.Equal(t, model.SeverityLow, f.Severity)
		}
	}
	assert.Equal(t, 1, lowIntrospectionFindings, "findings: %v", result.Findings)
}

func readBody(r *http.Request) (string, error) {
	raw, err := io.ReadAll(r.Body)
	return string(raw), err
}

type panickingProber struct{}

func (panickingProber) Name() string { return "panic" }
func (panickingProber) Run(ctx context.Context, target model.ScanTarget, sch *model.Schema, deps scanner.Deps) []model.VulnerabilityFinding {
	panic("boom")
}

// TestPanicPreservesFindingsGatheredSoFar covers §4.8/§7: a panic inside a
// prober must append the fatal finding to whatever schema-fetch/prober
// findings were already collected, not discard them.
func TestPanicPreservesFindingsGatheredSoFar(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := readBody(r)
		if strings.Contains(body, "__typename") && !strings.Contains(body, "__schema") {
			json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"__typename": "Query"}})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	orch := &Orchestrator{
		client:  newTestClient(),
		logger:  logger.NewLogger(logger.ERROR),
		config:  model.DefaultRuntimeConfig(),
		probers: []scanner.Prober{panickingProber{}},
	}

	target := model.ScanTarget{
		URL:          server.URL,
		UserContexts: []model.UserContext{{ID: "a", AuthToken: "t"}},
	}

	result := orch.RunScan(context.Background(), target)

	require.Equal(t, model.StatusFailed, result.Status)

	var sawIntrospectionFinding, sawFatalFinding bool
	for _, f := range result.Findings {
		if f.Title == "Introspection Deshabilitada o Fallida" {
			sawIntrospectionFinding = true
		}
		if f.Title == "Error Fatal Durante el Escaneo" {
			sawFatalFinding = true
		}
	}
	assert.True(t, sawIntrospectionFinding, "expected the pre-panic schema-fetch finding to survive, got %v", result.Findings)
	assert.True(t, sawFatalFinding, "expected the fatal finding to be appended, got %v", result.Findings)
}
