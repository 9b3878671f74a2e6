// Package scanner holds the shared prober abstraction and bounded
// worker-pool executor used by the DoS and BOLA probers to run their
// independent probes with pacing and mutex-guarded finding aggregation.
package scanner

import (
	"context"

	"github.com/roomkangali/gqlbola/internal/httpclient"
	"github.com/roomkangali/gqlbola/internal/logger"
	"github.com/roomkangali/gqlbola/internal/model"
)

// Deps bundles what every prober needs from its environment.
type Deps struct {
	Client *httpclient.Client
	Logger *logger.Logger
	Config model.RuntimeConfig
}

// Prober runs one class of checks against a target and its (possibly nil)
// schema, returning the findings it produced. A Prober must never let a
// transport or parsing error escape -- every outcome is routed through the
// classifier before reaching this boundary.
type Prober interface {
	Name() string
	Run(ctx context.Context, target model.ScanTarget, sch *model.Schema, deps Deps) []model.VulnerabilityFinding
}
