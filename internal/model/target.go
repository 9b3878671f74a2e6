// Package model holds the wire-level and in-memory data types shared across
// the scan pipeline: the target description supplied by the caller, the
// schema-derived points of interest, and the findings/result produced by a
// scan.
package model

// UserContext is a single authenticated principal under test. Two or more
// UserContexts are required before the BOLA prober will run.
type UserContext struct {
	ID             string              `json:"id"`
	AuthToken      string              `json:"authToken"`
	OwnedObjectIDs map[string][]string `json:"ownedObjectIds"`
}

// BolaConfig narrows which return types the BOLA prober will consider.
type BolaConfig struct {
	TargetObjectTypes []string `json:"targetObjectTypes,omitempty"`
}

// ScanTarget is the immutable input to RunScan. It is decoded directly from
// the JSON configuration document described in the external interfaces.
type ScanTarget struct {
	URL          string        `json:"url"`
	Schema       string        `json:"schema,omitempty"`
	UserContexts []UserContext `json:"userContexts"`
	BolaConfig   BolaConfig    `json:"bolaConfig,omitempty"`
}

// FirstUserContext returns the first configured principal, used for the
// connectivity check that precedes schema introspection. When no principal
// is configured it returns the zero UserContext (empty token, no headers).
func (t ScanTarget) FirstUserContext() UserContext {
	if len(t.UserContexts) == 0 {
		return UserContext{}
	}
	return t.UserContexts[0]
}

// HasBolaContext reports whether there are enough principals configured for
// the BOLA prober to be meaningful.
func (t ScanTarget) HasBolaContext() bool {
	return len(t.UserContexts) >= 2
}
