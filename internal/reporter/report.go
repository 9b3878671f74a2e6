// Package reporter prints a ScanResult's findings sorted by severity and
// optionally writes the full result out as JSON, mirroring the teacher's
// Report/NewReport/Finalize shell around scan output.
package reporter

import (
	"fmt"
	"io"
	"sort"

	"github.com/roomkangali/gqlbola/internal/model"
)

var severityOrder = map[model.Severity]int{
	model.SeverityCritical: 0,
	model.SeverityHigh:     1,
	model.SeverityMedium:   2,
	model.SeverityLow:      3,
	model.SeverityInfo:     4,
}

// SortFindings returns a copy of findings sorted by severity descending,
// with ties broken by original emission order (a stable sort is sufficient
// since no finding of equal severity is ever reordered relative to
// another).
func SortFindings(findings []model.VulnerabilityFinding) []model.VulnerabilityFinding {
	sorted := make([]model.VulnerabilityFinding, len(findings))
	copy(sorted, findings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return severityOrder[sorted[i].Severity] < severityOrder[sorted[j].Severity]
	})
	return sorted
}

// PrintSummary writes a human-readable report of result to w, findings
// sorted by severity descending.
func PrintSummary(w io.Writer, result model.ScanResult) {
	fmt.Fprintf(w, "Scan %s — target %s — status %s\n", result.ScanID, result.Target, result.Status)
	if result.Error != "" {
		fmt.Fprintf(w, "  error: %s\n", result.Error)
	}
	fmt.Fprintf(w, "  duration: %s\n", result.CompletedAt.Sub(result.StartedAt))

	sorted := SortFindings(result.Findings)
	if len(sorted) == 0 {
		fmt.Fprintln(w, "  no findings")
		return
	}
	for _, f := range sorted {
		fmt.Fprintf(w, "  [%s] %s — %s\n", f.Severity, f.Title, f.Description)
	}
}

// HasCriticalOrHigh reports whether findings contains at least one Critical
// or High severity entry, the exit-code decision of §4.10.
func HasCriticalOrHigh(findings []model.VulnerabilityFinding) bool {
	for _, f := range findings {
		if f.Severity == model.SeverityCritical || f.Severity == model.SeverityHigh {
			return true
		}
	}
	return false
}
