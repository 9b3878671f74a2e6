// Package graphql implements the DoS prober: the depth-limit and
// list-pagination checks run against a target's schema.
package graphql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/roomkangali/gqlbola/internal/classifier"
	"github.com/roomkangali/gqlbola/internal/httpclient"
	"github.com/roomkangali/gqlbola/internal/model"
	"github.com/roomkangali/gqlbola/internal/opbuilder"
	gqlschema "github.com/roomkangali/gqlbola/internal/schema"
	"github.com/roomkangali/gqlbola/internal/scanner"
)

const (
	depthCheckDepth   = 7
	depthTimeout      = 15 * time.Second
	paginationTimeout = 20 * time.Second
	paginationLimit   = 100
	interProbeDelay   = 50 * time.Millisecond
)

// Prober runs the DoS checks of §4.6: query-depth acceptance and
// list-pagination absence.
type Prober struct{}

// New returns a fresh DoS prober. Probers are stateless value types,
// constructed per scan.
func New() *Prober { return &Prober{} }

func (p *Prober) Name() string { return "dos" }

func (p *Prober) Run(ctx context.Context, target model.ScanTarget, sch *model.Schema, deps scanner.Deps) []model.VulnerabilityFinding {
	var findings []model.VulnerabilityFinding
	headers := authHeaders(target)

	if f := p.depthCheck(ctx, target.URL, sch, headers, deps); f != nil {
		findings = append(findings, *f)
	}
	time.Sleep(interProbeDelay)

	findings = append(findings, p.paginationChecks(ctx, target.URL, sch, headers, deps)...)
	return findings
}

func authHeaders(target model.ScanTarget) map[string]string {
	user := target.FirstUserContext()
	if user.AuthToken == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + user.AuthToken}
}

func (p *Prober) depthCheck(ctx context.Context, url string, sch *model.Schema, headers map[string]string, deps scanner.Deps) *model.VulnerabilityFinding {
	var path []string
	if sch != nil {
		path = gqlschema.FindDeepPath(sch, depthCheckDepth)
	}
	doc := opbuilder.BuildDeepQuery(depthCheckDepth, path)

	resp, err := deps.Client.Post(ctx, url, doc, nil, headers, depthTimeout)
	if err == nil && !hasGraphQLErrors(resp) {
		f := model.NewFinding(
			"Potencial DoS por Profundidad",
			model.SeverityMedium,
			fmt.Sprintf("El servidor aceptó una consulta anidada a profundidad %d sin rechazarla.", depthCheckDepth),
		).WithEvidence(map[string]any{"query": doc})
		return &f
	}

	cat := classify(err, resp)
	switch cat {
	case classifier.LimitEnforced:
		return nil
	case classifier.Timeout:
		f := model.NewFinding(
			"Timeout en Chequeo DoS (profundidad)",
			model.SeverityMedium,
			"La consulta de profundidad excedió el tiempo de espera configurado.",
		).WithEvidence(map[string]any{"query": doc, "error": errOrGraphQLMessage(err, resp)})
		return &f
	default:
		f := model.NewFinding(
			"Error Inesperado en Chequeo DoS (profundidad)",
			model.SeverityLow,
			errOrGraphQLMessage(err, resp),
		).WithEvidence(map[string]any{"query": doc})
		return &f
	}
}

func (p *Prober) paginationChecks(ctx context.Context, url string, sch *model.Schema, headers map[string]string, deps scanner.Deps) []model.VulnerabilityFinding {
	fieldNames := gqlschema.FindListFields(sch)

	var findings []model.VulnerabilityFinding
	for _, name := range fieldNames {
		time.Sleep(interProbeDelay)
		if f := p.paginationCheckOne(ctx, url, name, sch, headers, deps); f != nil {
			findings = append(findings, *f)
		}
	}
	return findings
}

func (p *Prober) paginationCheckOne(ctx context.Context, url, fieldName string, sch *model.Schema, headers map[string]string, deps scanner.Deps) *model.VulnerabilityFinding {
	doc := opbuilder.BuildListQuery(fieldName, sch, listItemType(sch, fieldName))

	resp, err := deps.Client.Post(ctx, url, doc, nil, headers, paginationTimeout)
	checkLabel := fmt.Sprintf("lista %s", fieldName)

	// A response carrying data alongside a pagination/limit error still has
	// err == nil (httpclient exposes data whenever it is present), so this
	// check must run before the array-length check, not only when err != nil.
	if mentionsLimitOrPagination(resp) {
		return nil
	}

	if length, ok := arrayLength(resp, fieldName); ok {
		if length > paginationLimit {
			f := model.NewFinding(
				"Potencial DoS por Falta de Paginación",
				model.SeverityHigh,
				fmt.Sprintf("El campo %s devolvió %d elementos sin paginación aplicada.", fieldName, length),
			).WithEvidence(map[string]any{"query": doc, "length": length})
			return &f
		}
		return nil
	}

	cat := classify(err, resp)
	switch cat {
	case classifier.LimitEnforced:
		return nil
	case classifier.Timeout:
		f := model.NewFinding(
			fmt.Sprintf("Timeout en Chequeo DoS (%s)", checkLabel),
			model.SeverityMedium,
			"La consulta de lista excedió el tiempo de espera configurado.",
		).WithEvidence(map[string]any{"query": doc, "error": errOrGraphQLMessage(err, resp)})
		return &f
	default:
		f := model.NewFinding(
			fmt.Sprintf("Error Inesperado en Chequeo DoS (%s)", checkLabel),
			model.SeverityLow,
			errOrGraphQLMessage(err, resp),
		).WithEvidence(map[string]any{"query": doc})
		return &f
	}
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

func hasGraphQLErrors(resp *httpclient.GraphQLResponse) bool {
	return resp != nil && len(resp.Errors) > 0
}

// errOrGraphQLMessage prefers the transport error string, falling back to
// the joined GraphQL error messages for the err == nil, data-plus-errors
// case (data present alongside errors never produces a transport error).
func errOrGraphQLMessage(err error, resp *httpclient.GraphQLResponse) string {
	if err != nil {
		return err.Error()
	}
	if resp == nil || len(resp.Errors) == 0 {
		return "unexpected response"
	}
	msgs := make([]string, len(resp.Errors))
	for i, e := range resp.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

func mentionsLimitOrPagination(resp *httpclient.GraphQLResponse) bool {
	if resp == nil {
		return false
	}
	for _, e := range resp.Errors {
		msg := strings.ToLower(e.Message)
		if strings.Contains(msg, "pagination") || strings.Contains(msg, "limit") {
			return true
		}
	}
	return false
}

func arrayLength(resp *httpclient.GraphQLResponse, fieldName string) (int, bool) {
	if resp == nil || !resp.HasData() {
		return 0, false
	}
	var data map[string]json.RawMessage
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return 0, false
	}
	raw, ok := data[fieldName]
	if !ok {
		return 0, false
	}
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err != nil {
		return 0, false
	}
	return len(arr), true
}

// listItemType resolves the element type of a root list field directly
// from the schema's query fields, without introducing a separate exported
// lookup in the analyzer package.
func listItemType(sch *model.Schema, fieldName string) string {
	if sch == nil {
		return ""
	}
	for _, f := range sch.QueryFields() {
		if f.Name != fieldName {
			continue
		}
		itemType, _ := f.Type.UnwrapName()
		return itemType
	}
	return ""
}
