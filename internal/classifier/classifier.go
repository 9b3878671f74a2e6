// Package classifier turns a raw transport outcome into one of a small,
// closed set of categories the probers use to grade findings. It is a pure
// function over its inputs: no I/O, no state, so it can be exercised with
// table-driven tests without a live target.
package classifier

import "strings"

// Category is the outcome bucket assigned to a single probe attempt.
type Category string

const (
	LimitEnforced Category = "LimitEnforced"
	AuthDenied    Category = "AuthDenied"
	Timeout       Category = "Timeout"
	Network       Category = "Network"
	Other         Category = "Other"
)

// Outcome is the minimal set of transport-layer facts the classifier needs.
type Outcome struct {
	TransportMessage string
	GraphQLErrors    []string
	HTTPStatus       int
	HasData          bool
	NetworkOnly      bool // transport-layer failure with no HTTP response at all
}

var limitMarkers = []string{"limit", "complexity", "depth", "pagination"}
var authMarkers = []string{"unauthorized", "forbidden", "access denied"}

// Classify assigns a Category to an Outcome, in the precedence order fixed
// by the classification rules: a limit/complexity defense is recognized
// first, then authorization denial, then timeout, then a bare network
// failure, with Other as the catch-all.
func Classify(o Outcome) Category {
	if containsAnyIn(o.GraphQLErrors, limitMarkers) {
		return LimitEnforced
	}
	if o.HTTPStatus == 401 || o.HTTPStatus == 403 {
		return AuthDenied
	}
	if containsAnyIn(o.GraphQLErrors, authMarkers) {
		return AuthDenied
	}
	if !o.HasData && containsAnyIn(o.GraphQLErrors, []string{"not found"}) {
		return AuthDenied
	}
	if containsAny(o.TransportMessage, []string{"timeout"}) {
		return Timeout
	}
	if o.NetworkOnly {
		return Network
	}
	return Other
}

func containsAny(haystack string, needles []string) bool {
	h := strings.ToLower(haystack)
	for _, n := range needles {
		if strings.Contains(h, n) {
			return true
		}
	}
	return false
}

func containsAnyIn(haystacks []string, needles []string) bool {
	for _, h := range haystacks {
		if containsAny(h, needles) {
			return true
		}
	}
	return false
}
