package impact

import (
	"math"

	"rafters/internal/depgraph"
	"rafters/internal/rule"
	"rafters/internal/token"
)

// RiskAssessment buckets the aggregate risk of a proposed change on a
// 0-10 scale per axis.
type RiskAssessment struct {
	BreakingChanges     float64 `json:"breakingChanges"`
	VisualImpact        float64 `json:"visualImpact"`
	AccessibilityImpact float64 `json:"accessibilityImpact"`
}

// AffectedToken is one token reached by the cascade, with its derived
// value before and after the hypothetical change.
type AffectedToken struct {
	Name     string  `json:"name"`
	Rule     string  `json:"rule"`
	OldValue string  `json:"oldValue,omitempty"`
	NewValue string  `json:"newValue,omitempty"`
	Severity float64 `json:"severity"`
	Breaking bool    `json:"breaking,omitempty"`
}

// Report is the outcome of one cascade-impact prediction. It is a pure
// function of the graph snapshot plus the proposed value; nothing is
// mutated.
type Report struct {
	Token           string          `json:"token"`
	ProposedValue   string          `json:"proposedValue"`
	AffectedTokens  []AffectedToken `json:"affectedTokens"`
	TotalImpact     float64         `json:"totalImpact"`
	RiskAssessment  RiskAssessment  `json:"riskAssessment"`
	Recommendations []string        `json:"recommendations"`
}

// Predictor walks the dependency graph forward from a changed token and
// scores the affected tokens.
type Predictor struct {
	store *token.Store
	graph *depgraph.Graph
	exec  *rule.Executor
}

func New(store *token.Store, graph *depgraph.Graph, exec *rule.Executor) *Predictor {
	return &Predictor{store: store, graph: graph, exec: exec}
}

// PredictCascadeImpact reports what would happen if the named token took
// newValue. Affected tokens are re-derived in dependency order with the
// hypothetical value substituted, so multi-level cascades see the
// propagated values of their upstream tokens.
func (p *Predictor) PredictCascadeImpact(name, newValue string) (Report, error) {
	changed, err := p.store.Get(name)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		Token:          changed.Name,
		ProposedValue:  newValue,
		AffectedTokens: []AffectedToken{},
	}

	cascade := p.graph.CascadeFrom(changed.Name)
	if len(cascade) == 0 {
		report.Recommendations = []string{"No dependent tokens are affected."}
		return report, nil
	}

	overrides := map[string]string{changed.Name: newValue}
	var (
		severitySum   float64
		visualSum     float64
		accessibility float64
		breakingCount int
	)

	for _, tokName := range orderByDependencies(p.graph, cascade) {
		edge, ok := p.graph.DependenciesOf(tokName)
		if !ok {
			continue
		}
		tok, err := p.store.Get(tokName)
		if err != nil {
			continue
		}

		oldRes, oldErr := p.exec.Execute(edge.Rule, tok, p.depTokens(edge, nil))
		newRes, newErr := p.exec.Execute(edge.Rule, tok, p.depTokens(edge, overrides))

		affected := AffectedToken{Name: tokName, Rule: edge.Rule}
		switch {
		case oldErr == nil && newErr == nil:
			affected.OldValue = oldRes.Result
			affected.NewValue = newRes.Result
			affected.Severity = valueDelta(oldRes.Result, newRes.Result)
			overrides[tokName] = newRes.Result
			visualSum += affected.Severity
			accessibility = math.Max(accessibility, p.contrastDelta(edge, oldRes.Result, newRes.Result, overrides))
		case oldErr == nil || newErr == nil:
			// The change flips the rule between evaluable and not:
			// qualitatively a breaking change.
			if oldErr == nil {
				affected.OldValue = oldRes.Result
			} else {
				affected.NewValue = newRes.Result
			}
			affected.Breaking = true
			affected.Severity = 1
			breakingCount++
		default:
			// Rule fails either way; the change does not alter that.
			affected.Severity = 0
		}
		severitySum += affected.Severity
		report.AffectedTokens = append(report.AffectedTokens, affected)
	}

	n := float64(len(report.AffectedTokens))
	report.TotalImpact = round2(math.Min(10, severitySum))
	report.RiskAssessment = RiskAssessment{
		BreakingChanges:     round2(10 * float64(breakingCount) / n),
		VisualImpact:        round2(10 * visualSum / n),
		AccessibilityImpact: round2(10 * accessibility),
	}
	report.Recommendations = recommend(report.RiskAssessment, len(report.AffectedTokens))
	return report, nil
}

// depTokens materializes the dependency values for an edge, substituting
// overridden values when present.
func (p *Predictor) depTokens(edge depgraph.Edge, overrides map[string]string) []token.Token {
	out := make([]token.Token, 0, len(edge.DependsOn))
	for _, dep := range edge.DependsOn {
		t, err := p.store.Get(dep)
		if err != nil {
			continue
		}
		if v, ok := overrides[dep]; ok {
			t.Value = v
		}
		out = append(out, t)
	}
	return out
}

// contrastDelta measures how much the derived value's contrast against
// its first dependency moves, normalized to [0, 1] over the 1-21 WCAG
// range. The old ratio is taken against the stored dependency value and
// the new ratio against the overridden one, so a background flip that a
// contrast rule fully compensates for scores zero.
func (p *Predictor) contrastDelta(edge depgraph.Edge, oldVal, newVal string, overrides map[string]string) float64 {
	oldC, ok1 := token.ParseColor(oldVal)
	newC, ok2 := token.ParseColor(newVal)
	if !ok1 || !ok2 || len(edge.DependsOn) == 0 {
		return 0
	}
	bgTok, err := p.store.Get(edge.DependsOn[0])
	if err != nil {
		return 0
	}
	oldBG, ok := token.ParseColor(bgTok.Value)
	if !ok {
		return 0
	}
	newBG := oldBG
	if v, hasOverride := overrides[bgTok.Name]; hasOverride {
		c, ok := token.ParseColor(v)
		if !ok {
			return 0
		}
		newBG = c
	}
	return math.Abs(token.ContrastRatio(newC, newBG)-token.ContrastRatio(oldC, oldBG)) / 20
}

// valueDelta scores how far a derived value moved, in [0, 1].
func valueDelta(oldVal, newVal string) float64 {
	if oldVal == newVal {
		return 0
	}
	if oc, ok1 := token.ParseColor(oldVal); ok1 {
		if nc, ok2 := token.ParseColor(newVal); ok2 {
			return token.Distance(oc, nc)
		}
		return 1 // color became non-color
	}
	if ov, _, ok1 := rule.SplitNumeric(oldVal); ok1 {
		if nv, _, ok2 := rule.SplitNumeric(newVal); ok2 {
			denom := math.Max(math.Abs(ov), 1)
			return math.Min(1, math.Abs(nv-ov)/denom)
		}
		return 1
	}
	return 0.5
}

func recommend(risk RiskAssessment, affected int) []string {
	var out []string
	if risk.BreakingChanges > 7 {
		out = append(out, "Review dependent components before applying.")
	}
	if risk.VisualImpact > 5 {
		out = append(out, "Capture visual regression snapshots for the affected tokens.")
	}
	if risk.AccessibilityImpact > 3 {
		out = append(out, "Re-check WCAG contrast for the affected color pairs.")
	}
	if len(out) == 0 && affected > 0 {
		out = append(out, "Change is low risk; safe to apply.")
	}
	return out
}

// orderByDependencies sorts the affected set so every token comes after
// the affected tokens it depends on (Kahn over the affected subgraph,
// cascade order as the tie-break).
func orderByDependencies(g *depgraph.Graph, cascade []string) []string {
	inSet := make(map[string]struct{}, len(cascade))
	for _, n := range cascade {
		inSet[n] = struct{}{}
	}
	indeg := make(map[string]int, len(cascade))
	for _, n := range cascade {
		edge, ok := g.DependenciesOf(n)
		if !ok {
			continue
		}
		for _, dep := range edge.DependsOn {
			if _, ok := inSet[dep]; ok {
				indeg[n]++
			}
		}
	}

	queue := make([]string, 0, len(cascade))
	for _, n := range cascade {
		if indeg[n] == 0 {
			queue = append(queue, n)
		}
	}
	out := make([]string, 0, len(cascade))
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		out = append(out, cur)
		for _, dep := range g.DependentsOf(cur) {
			if _, ok := inSet[dep]; !ok {
				continue
			}
			indeg[dep]--
			if indeg[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
