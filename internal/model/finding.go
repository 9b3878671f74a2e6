package model

import (
	"strings"

	"github.com/google/uuid"
)

// Severity is the graded impact of a finding. Values form a total order,
// Critical being the most severe.
type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"
	SeverityInfo     Severity = "Info"
)

var severityRank = map[Severity]int{
	SeverityCritical: 5,
	SeverityHigh:     4,
	SeverityMedium:   3,
	SeverityLow:      2,
	SeverityInfo:     1,
}

// MoreSevereThan reports whether s outranks other in the Critical > High >
// Medium > Low > Info ordering. Unknown severities rank below Info.
func (s Severity) MoreSevereThan(other Severity) bool {
	return severityRank[s] > severityRank[other]
}

// VulnerabilityFinding is a single graded observation produced by a prober.
// Evidence is a free-form map (typically {"query": ..., "response": ...})
// serialized as-is to JSON at the reporting boundary.
type VulnerabilityFinding struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Severity       Severity       `json:"severity"`
	Description    string         `json:"description"`
	Recommendation string         `json:"recommendation,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty"`
}

// NewFinding stamps a fresh random id onto a finding, mirroring the
// pack's use of google/uuid for identifying dynamically generated records.
// Recommendation is filled from the fixed per-title text below; call
// WithRecommendation afterward to override it for a one-off finding.
func NewFinding(title string, severity Severity, description string) VulnerabilityFinding {
	return VulnerabilityFinding{
		ID:             uuid.NewString(),
		Title:          title,
		Severity:       severity,
		Description:    description,
		Recommendation: recommendationFor(title),
	}
}

// staticRecommendations maps a finding's exact title to fixed remediation
// text tied to its category, per the fixed titled-category grading table.
var staticRecommendations = map[string]string{
	"Potencial DoS por Profundidad": "Aplique un límite de profundidad de consulta " +
		"(p. ej. graphql-depth-limit) y rechace consultas que lo excedan antes de resolverlas.",
	"Timeout en Chequeo DoS (profundidad)": "Investigue por qué la consulta anidada " +
		"tardó en exceso; agregue análisis de costo/complejidad para detectarla antes del timeout.",
	"Error Inesperado en Chequeo DoS (profundidad)": "Revise el error reportado y confirme " +
		"que el endpoint maneja consultas anidadas de forma predecible.",
	"Potencial DoS por Falta de Paginación": "Exponga argumentos first/limit y after/offset " +
		"en el campo de lista y aplique un tope de tamaño de página en el servidor.",
	"No se encontraron puntos de prueba BOLA": "No se requiere acción; el esquema no expuso " +
		"campos con argumentos de tipo id adecuados para esta prueba.",
	"No se encontraron puntos de prueba BOLA para los tipos especificados": "Verifique que " +
		"los tipos de objeto especificados existan en el esquema y expongan campos de búsqueda por id.",
	"Acceso No Autorizado a Objeto (BOLA)": "Verifique la propiedad del objeto solicitado " +
		"contra el principal autenticado antes de resolver el campo, para cada tipo de objeto expuesto.",
	"Introspection Deshabilitada o Fallida": "Si la introspección está deshabilitada " +
		"intencionalmente en producción no se requiere acción; de lo contrario revise el error reportado.",
	"Introspection Habilitada": "Considere deshabilitar la introspección en producción o " +
		"restringirla a clientes autenticados.",
	"Introspection Query con Errores": "Revise los errores de GraphQL acompañantes; pueden " +
		"indicar una introspección parcialmente restringida.",
	"Error Fatal Durante el Escaneo": "Investigue la traza del pánico reportado; " +
		"probablemente indica una respuesta del objetivo con una forma inesperada.",
}

// recommendationPrefixes covers titles carrying a dynamic field/list-name
// suffix that still share one fixed recommendation per category.
var recommendationPrefixes = []struct {
	prefix string
	text   string
}{
	{"Timeout en Chequeo DoS (", "Investigue por qué la consulta de lista tardó en exceso; " +
		"agregue análisis de costo/complejidad para detectarla antes del timeout."},
	{"Error Inesperado en Chequeo DoS (", "Revise el error reportado y confirme que el " +
		"endpoint maneja consultas de lista de forma predecible."},
	{"Error Inesperado en Prueba BOLA (", "Revise el error reportado; puede indicar un " +
		"comportamiento inesperado del endpoint frente a la prueba BOLA."},
}

func recommendationFor(title string) string {
	if r, ok := staticRecommendations[title]; ok {
		return r
	}
	for _, p := range recommendationPrefixes {
		if strings.HasPrefix(title, p.prefix) {
			return p.text
		}
	}
	return ""
}

// WithRecommendation returns f with Recommendation set, for chaining at the
// call site.
func (f VulnerabilityFinding) WithRecommendation(r string) VulnerabilityFinding {
	f.Recommendation = r
	return f
}

// WithEvidence returns f with Evidence set, for chaining at the call site.
func (f VulnerabilityFinding) WithEvidence(e map[string]any) VulnerabilityFinding {
	f.Evidence = e
	return f
}
