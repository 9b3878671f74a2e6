// Package bola implements the schema-driven BOLA prober: cross-principal
// object access probing over the points of interest the analyzer derives
// from the introspected schema.
package bola

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/roomkangali/gqlbola/internal/classifier"
	"github.com/roomkangali/gqlbola/internal/httpclient"
	"github.com/roomkangali/gqlbola/internal/model"
	"github.com/roomkangali/gqlbola/internal/opbuilder"
	gqlschema "github.com/roomkangali/gqlbola/internal/schema"
	"github.com/roomkangali/gqlbola/internal/scanner"
)

const (
	probeTimeout    = 15 * time.Second
	interProbeDelay = 50 * time.Millisecond
)

// Prober runs the cross-principal object-access checks of §4.7.
type Prober struct{}

// New returns a fresh BOLA prober.
func New() *Prober { return &Prober{} }

func (p *Prober) Name() string { return "bola" }

type probeCase struct {
	attacker model.UserContext
	victim   model.UserContext
	point    model.BolaPointOfInterest
	objectID string
}

func (p *Prober) Run(ctx context.Context, target model.ScanTarget, sch *model.Schema, deps scanner.Deps) []model.VulnerabilityFinding {
	if !target.HasBolaContext() || sch == nil {
		deps.Logger.Debug("BOLA prober: skipped (need >=2 userContexts and a resolved schema)")
		return nil
	}

	points := gqlschema.FindBolaPointsOfInterest(sch, target.BolaConfig.TargetObjectTypes)
	if len(points) == 0 {
		if len(target.BolaConfig.TargetObjectTypes) == 0 {
			return []model.VulnerabilityFinding{
				model.NewFinding("No se encontraron puntos de prueba BOLA", model.SeverityInfo, "El esquema no expone campos con argumentos de tipo id adecuados para pruebas BOLA."),
			}
		}
		return []model.VulnerabilityFinding{
			model.NewFinding(
				"No se encontraron puntos de prueba BOLA para los tipos especificados",
				model.SeverityInfo,
				fmt.Sprintf("Tipos especificados: %v", target.BolaConfig.TargetObjectTypes),
			),
		}
	}

	cases := buildProbeCases(target.UserContexts, points)
	if len(cases) == 0 {
		return nil
	}

	concurrency := deps.Config.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > 5 {
		concurrency = 5
	}

	tasks := make([]func() []model.VulnerabilityFinding, len(cases))
	for i, c := range cases {
		c := c
		tasks[i] = func() []model.VulnerabilityFinding {
			f := p.executeCase(ctx, target.URL, sch, c, deps)
			if f == nil {
				return nil
			}
			return []model.VulnerabilityFinding{*f}
		}
	}

	return scanner.RunPool(concurrency, interProbeDelay, tasks)
}

// buildProbeCases forms every (attacker, victim, point) triple with
// attacker != victim, resolving each point's return type against the
// victim's owned object ids and deduplicating by probe key.
func buildProbeCases(users []model.UserContext, points []model.BolaPointOfInterest) []probeCase {
	seen := make(map[string]bool)
	var cases []probeCase

	for _, attacker := range users {
		for _, victim := range users {
			if attacker.ID == victim.ID {
				continue
			}
			for _, point := range points {
				objType := point.ReturnTypeName
				if objType == "" {
					objType = gqlschema.InferObjectTypeFromFieldName(point.FieldName)
				}
				for _, objectID := range victim.OwnedObjectIDs[objType] {
					key := fmt.Sprintf("%s-%s-%s-%s", attacker.ID, point.Operation, point.FieldName, objectID)
					if seen[key] {
						continue
					}
					seen[key] = true
					cases = append(cases, probeCase{attacker: attacker, victim: victim, point: point, objectID: objectID})
				}
			}
		}
	}
	return cases
}

func (p *Prober) executeCase(ctx context.Context, url string, sch *model.Schema, c probeCase, deps scanner.Deps) *model.VulnerabilityFinding {
	doc := opbuilder.BuildBolaOperation(c.point, c.objectID, sch)
	headers := map[string]string{"Authorization": "Bearer " + c.attacker.AuthToken}

	resp, err := deps.Client.Post(ctx, url, doc, nil, headers, probeTimeout)

	// Classify before ever looking at the payload: a response can carry
	// data alongside a Forbidden/limit error (err == nil in that case,
	// since httpclient surfaces data whenever it is present), and AuthDenied
	// must suppress the finding regardless of what data also came back.
	cat := classify(err, resp)
	if cat == classifier.AuthDenied || cat == classifier.LimitEnforced {
		return nil
	}

	if err != nil {
		f := model.NewFinding(
			fmt.Sprintf("Error Inesperado en Prueba BOLA (%s)", c.point.FieldName),
			model.SeverityLow,
			err.Error(),
		).WithEvidence(map[string]any{"query": doc})
		return &f
	}

	data, hasContent := extractFieldContent(resp, c.point.FieldName)
	if !hasContent {
		deps.Logger.Debug("BOLA probe inconclusive: attacker=%s victim=%s field=%s", c.attacker.ID, c.victim.ID, c.point.FieldName)
		return nil
	}

	severity := model.SeverityHigh
	if c.point.Operation == model.OperationMutation {
		severity = model.SeverityCritical
	}

	f := model.NewFinding(
		"Acceso No Autorizado a Objeto (BOLA)",
		severity,
		fmt.Sprintf(
			"El principal '%s' pudo acceder al objeto '%s' propiedad de '%s' mediante %s.%s(%s: %s).",
			c.attacker.ID, c.objectID, c.victim.ID, c.point.Operation, c.point.FieldName, c.point.IDArgName, c.objectID,
		),
	).WithEvidence(map[string]any{"query": doc, "response": string(data)})
	return &f
}

// extractFieldContent inspects data[fieldName] and reports whether it is a
// non-null object with at least one non-__typename key, or a non-empty
// array.
func extractFieldContent(resp *httpclient.GraphQLResponse, fieldName string) (json.RawMessage, bool) {
	if resp == nil || !resp.HasData() {
		return nil, false
	}
	var data map[string]json.RawMessage
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, false
	}
	raw, ok := data[fieldName]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return nil, false
	}

	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err == nil {
		return raw, len(arr) > 0
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err == nil {
		for k := range obj {
			if k != "__typename" {
				return raw, true
			}
		}
		return nil, false
	}

	return nil, false
}

func classify(err error, resp *httpclient.GraphQLResponse) classifier.Category {
	var status int
	var transportMsg string
	if err != nil {
		transportMsg = err.Error()
		if te, ok := err.(*httpclient.TransportError); ok {
			status = te.StatusCode
		}
	}
	var graphqlErrs []string
	var hasData bool
	if resp != nil {
		for _, e := range resp.Errors {
			graphqlErrs = append(graphqlErrs, e.Message)
		}
		hasData = resp.HasData()
	}
	return classifier.Classify(classifier.Outcome{
		TransportMessage: transportMsg,
		GraphQLErrors:    graphqlErrs,
		HTTPStatus:       status,
		HasData:          hasData,
		NetworkOnly:      err != nil && status == 0,
	})
}
