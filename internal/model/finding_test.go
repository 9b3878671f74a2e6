package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeverityTotalOrder(t *testing.T) {
	order := []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo}
	for i := 0; i < len(order); i++ {
		for j := i + 1; j < len(order); j++ {
			assert.True(t, order[i].MoreSevereThan(order[j]), "%s should be more severe than %s", order[i], order[j])
			assert.False(t, order[j].MoreSevereThan(order[i]), "%s should not be more severe than %s", order[j], order[i])
		}
	}
}

func TestNewFindingAssignsUniqueID(t *testing.T) {
	a := NewFinding("t", SeverityLow, "d")
	b := NewFinding("t", SeverityLow, "d")
	assert.NotEmpty(t, a.ID)
	assert.NotEmpty(t, b.ID)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestNewFindingFillsStaticRecommendation(t *testing.T) {
	f := NewFinding("Potencial DoS por Profundidad", SeverityMedium, "d")
	assert.NotEmpty(t, f.Recommendation)

	dyn := NewFinding("Timeout en Chequeo DoS (lista users)", SeverityMedium, "d")
	assert.NotEmpty(t, dyn.Recommendation)

	unknown := NewFinding("Título sin categoría fija", SeverityLow, "d")
	assert.Empty(t, unknown.Recommendation)
}

func TestWithRecommendationAndEvidence(t *testing.T) {
	f := NewFinding("t", SeverityHigh, "d").
		WithRecommendation("fix it").
		WithEvidence(map[string]any{"field": "order"})
	assert.Equal(t, "fix it", f.Recommendation)
	assert.Equal(t, "order", f.Evidence["field"])
}
