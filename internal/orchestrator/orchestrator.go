// Package orchestrator implements the single scan entry point, sequencing
// connectivity check, schema fetch, and the DoS/BOLA probers into one
// sealed ScanResult.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/roomkangali/gqlbola/internal/httpclient"
	"github.com/roomkangali/gqlbola/internal/logger"
	"github.com/roomkangali/gqlbola/internal/model"
	"github.com/roomkangali/gqlbola/internal/scanner"
	"github.com/roomkangali/gqlbola/internal/scanner/bola"
	"github.com/roomkangali/gqlbola/internal/scanner/graphql"
	gqlschema "github.com/roomkangali/gqlbola/internal/schema"
)

const connectivityTimeout = 5 * time.Second

// Orchestrator sequences a single scan. It is a stateless value type,
// constructed fresh per scan so that concurrent RunScan calls against
// different targets never share mutable state.
type Orchestrator struct {
	client  *httpclient.Client
	logger  *logger.Logger
	config  model.RuntimeConfig
	probers []scanner.Prober
}

// New builds an Orchestrator wired with the DoS and BOLA probers, run in
// that fixed order.
func New(client *httpclient.Client, log *logger.Logger, cfg model.RuntimeConfig) *Orchestrator {
	return &Orchestrator{
		client: client,
		logger: log,
		config: cfg,
		probers: []scanner.Prober{
			graphql.New(),
			bola.New(),
		},
	}
}

// RunScan executes the full state machine of §4.8 and always returns a
// well-formed ScanResult; it never lets a panic escape, mirroring the
// teacher's defensive recover-at-the-boundary idiom.
func (o *Orchestrator) RunScan(ctx context.Context, target model.ScanTarget) model.ScanResult {
	return o.RunScanWithID(ctx, uuid.NewString(), target)
}

// RunScanWithID behaves like RunScan but lets the caller supply the scan id
// up front, so a persistence adapter can write the initial 'Queued' row
// under the same id before connectivity is attempted.
func (o *Orchestrator) RunScanWithID(ctx context.Context, scanID string, target model.ScanTarget) (result model.ScanResult) {
	result = model.ScanResult{
		ScanID:    scanID,
		Target:    target.URL,
		StartedAt: time.Now(),
	}

	var findings []model.VulnerabilityFinding
	var findingsMu sync.Mutex
	appendFindings := func(fs ...model.VulnerabilityFinding) {
		findingsMu.Lock()
		defer findingsMu.Unlock()
		findings = append(findings, fs...)
		for _, f := range fs {
			if f.Severity == model.SeverityCritical || f.Severity == model.SeverityHigh {
				o.logger.Success("%s: %s", f.Severity, f.Title)
			}
		}
	}

	defer func() {
		if r := recover(); r != nil {
			appendFindings(model.NewFinding(
				"Error Fatal Durante el Escaneo",
				model.SeverityCritical,
				fmt.Sprintf("%v", r),
			))
			result.Status = model.StatusFailed
			result.Error = fmt.Sprintf("Error Fatal Durante el Escaneo: %v", r)
			result.Findings = findings
		}
		result.CompletedAt = time.Now()
	}()

	if err := o.checkConnectivity(ctx, target); err != nil {
		result.Status = model.StatusFailed
		result.Error = fmt.Sprintf("No se pudo conectar a %s. Verifique la URL y la conectividad de red: %v", target.URL, err)
		return result
	}

	sch, fetchFindings := o.fetchSchema(ctx, target)
	appendFindings(fetchFindings...)

	for _, p := range o.probers {
		if ctx.Err() != nil {
			result.Status = model.StatusFailed
			result.Error = ctx.Err().Error()
			result.Findings = findings
			return result
		}
		deps := scanner.Deps{Client: o.client, Logger: o.logger, Config: o.config}
		appendFindings(p.Run(ctx, target, sch, deps)...)
	}

	result.Status = model.StatusCompleted
	result.Findings = findings
	return result
}

func (o *Orchestrator) checkConnectivity(ctx context.Context, target model.ScanTarget) error {
	user := target.FirstUserContext()
	headers := map[string]string{}
	if user.AuthToken != "" {
		headers["Authorization"] = "Bearer " + user.AuthToken
	}
	_, err := o.client.Post(ctx, target.URL, "{ __typename }", nil, headers, connectivityTimeout)
	return err
}

func (o *Orchestrator) fetchSchema(ctx context.Context, target model.ScanTarget) (*model.Schema, []model.VulnerabilityFinding) {
	if target.Schema != "" {
		sch, err := gqlschema.FromSDL(target.Schema)
		if err != nil {
			o.logger.Warn("inline schema could not be parsed, falling back to null-schema path: %v", err)
			return nil, []model.VulnerabilityFinding{
				model.NewFinding("Introspection Deshabilitada o Fallida", model.SeverityLow, err.Error()),
			}
		}
		return sch, nil
	}

	user := target.FirstUserContext()
	sch, hadErrors, err := gqlschema.Fetch(ctx, o.client, target.URL, user, 15*time.Second)
	if err != nil {
		return nil, []model.VulnerabilityFinding{
			model.NewFinding("Introspection Deshabilitada o Fallida", model.SeverityLow, err.Error()),
		}
	}

	findings := []model.VulnerabilityFinding{
		model.NewFinding("Introspection Habilitada", model.SeverityInfo, "El endpoint respondió a una consulta de introspección completa."),
	}
	if hadErrors {
		findings = append(findings, model.NewFinding(
			"Introspection Query con Errores",
			model.SeverityInfo,
			"La respuesta de introspección incluyó datos junto con errores de GraphQL.",
		))
	}
	return sch, findings
}
