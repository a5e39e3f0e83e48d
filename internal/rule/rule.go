package rule

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupported marks a rule whose kind the executor does not know.
	ErrUnsupported = errors.New("unsupported rule")
	// ErrBadInput marks a supported rule applied to inputs it cannot use
	// (missing dependency, non-numeric value for scale, and so on).
	ErrBadInput = errors.New("rule input invalid")
)

// Spec is a parsed rule string. Rules are encoded as "kind:parameter",
// split on the first colon.
type Spec struct {
	Kind      string `json:"kind"`
	Parameter string `json:"parameter"`
}

// Parse splits a raw rule string into its kind and parameter.
func Parse(raw string) (Spec, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Spec{}, fmt.Errorf("%w: empty rule", ErrBadInput)
	}
	kind, param, _ := strings.Cut(s, ":")
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind == "" {
		return Spec{}, fmt.Errorf("%w: rule %q has no kind", ErrBadInput, raw)
	}
	return Spec{Kind: kind, Parameter: strings.TrimSpace(param)}, nil
}

// Metadata describes how a result was derived.
type Metadata struct {
	RuleType  string `json:"ruleType"`
	Reasoning string `json:"reasoning"`
}

// Result is the outcome of one rule execution. Confidence is a
// deterministic heuristic in [0, 1]; treat it as a qualitative signal.
type Result struct {
	Result     string   `json:"result"`
	Confidence float64  `json:"confidence"`
	Metadata   Metadata `json:"metadata"`
}
