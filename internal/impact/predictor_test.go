package impact

import (
	"errors"
	"testing"

	"rafters/internal/depgraph"
	"rafters/internal/rule"
	"rafters/internal/token"
)

type fixture struct {
	store *token.Store
	graph *depgraph.Graph
	pred  *Predictor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := token.NewStore()
	graph := depgraph.New(store)
	exec := rule.NewExecutor()
	return &fixture{store: store, graph: graph, pred: New(store, graph, exec)}
}

func (f *fixture) token(t *testing.T, name string, cat token.Category, value string) {
	t.Helper()
	if err := f.store.Put(token.Token{Name: name, Category: cat, Value: value}); err != nil {
		t.Fatalf("Put(%q) error = %v", name, err)
	}
}

func (f *fixture) edge(t *testing.T, name string, deps []string, ruleStr string) {
	t.Helper()
	if err := f.graph.AddDependency(name, deps, ruleStr); err != nil {
		t.Fatalf("AddDependency(%q) error = %v", name, err)
	}
}

func TestPredictUnknownToken(t *testing.T) {
	f := newFixture(t)
	if _, err := f.pred.PredictCascadeImpact("ghost", "4px"); !errors.Is(err, token.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestPredictNoDependents(t *testing.T) {
	f := newFixture(t)
	f.token(t, "spacing.base", token.CategorySpacing, "4px")

	report, err := f.pred.PredictCascadeImpact("spacing.base", "8px")
	if err != nil {
		t.Fatalf("PredictCascadeImpact() error = %v", err)
	}
	if report.AffectedTokens == nil || len(report.AffectedTokens) != 0 {
		t.Fatalf("AffectedTokens = %v, want empty non-nil", report.AffectedTokens)
	}
	if report.TotalImpact != 0 {
		t.Fatalf("TotalImpact = %v, want 0", report.TotalImpact)
	}
	if len(report.Recommendations) != 1 || report.Recommendations[0] != "No dependent tokens are affected." {
		t.Fatalf("Recommendations = %v", report.Recommendations)
	}
}

func TestPredictChainPropagatesValues(t *testing.T) {
	f := newFixture(t)
	f.token(t, "spacing.base", token.CategorySpacing, "4px")
	f.token(t, "spacing.md", token.CategorySpacing, "8px")
	f.token(t, "spacing.lg", token.CategorySpacing, "12px")
	f.edge(t, "spacing.md", []string{"spacing.base"}, "scale:2")
	f.edge(t, "spacing.lg", []string{"spacing.md"}, "scale:1.5")

	report, err := f.pred.PredictCascadeImpact("spacing.base", "8px")
	if err != nil {
		t.Fatalf("PredictCascadeImpact() error = %v", err)
	}
	if len(report.AffectedTokens) != 2 {
		t.Fatalf("AffectedTokens = %+v, want 2", report.AffectedTokens)
	}

	byName := map[string]AffectedToken{}
	for _, a := range report.AffectedTokens {
		byName[a.Name] = a
	}

	md := byName["spacing.md"]
	if md.OldValue != "8px" || md.NewValue != "16px" {
		t.Fatalf("spacing.md = %+v", md)
	}
	// The second level re-derives from md's hypothetical value, not its
	// stored one.
	lg := byName["spacing.lg"]
	if lg.OldValue != "12px" || lg.NewValue != "24px" {
		t.Fatalf("spacing.lg = %+v", lg)
	}

	for _, a := range report.AffectedTokens {
		if a.Breaking {
			t.Fatalf("%s marked breaking", a.Name)
		}
	}
	if report.TotalImpact != 2 {
		t.Fatalf("TotalImpact = %v, want 2", report.TotalImpact)
	}
	if report.RiskAssessment.BreakingChanges != 0 {
		t.Fatalf("BreakingChanges = %v, want 0", report.RiskAssessment.BreakingChanges)
	}
	if report.RiskAssessment.VisualImpact != 10 {
		t.Fatalf("VisualImpact = %v, want 10", report.RiskAssessment.VisualImpact)
	}
}

func TestPredictDiamondCountsOnce(t *testing.T) {
	f := newFixture(t)
	f.token(t, "a", token.CategorySpacing, "4px")
	f.token(t, "b", token.CategorySpacing, "8px")
	f.token(t, "c", token.CategorySpacing, "12px")
	f.token(t, "d", token.CategorySpacing, "16px")
	f.edge(t, "b", []string{"a"}, "scale:2")
	f.edge(t, "c", []string{"a"}, "scale:3")
	f.edge(t, "d", []string{"b"}, "scale:1")

	report, err := f.pred.PredictCascadeImpact("a", "8px")
	if err != nil {
		t.Fatalf("PredictCascadeImpact() error = %v", err)
	}
	if len(report.AffectedTokens) != 3 {
		t.Fatalf("AffectedTokens = %+v, want 3", report.AffectedTokens)
	}
	seen := map[string]int{}
	for _, a := range report.AffectedTokens {
		seen[a.Name]++
	}
	for name, n := range seen {
		if n != 1 {
			t.Fatalf("%s appears %d times", name, n)
		}
	}
}

func TestPredictBreakingChange(t *testing.T) {
	f := newFixture(t)
	f.token(t, "brand", token.CategoryColor, "#3366ff")
	f.token(t, "brand.hover", token.CategoryColor, "#2e5ce6")
	f.edge(t, "brand.hover", []string{"brand"}, "state:hover")

	report, err := f.pred.PredictCascadeImpact("brand", "not-a-color")
	if err != nil {
		t.Fatalf("PredictCascadeImpact() error = %v", err)
	}
	if len(report.AffectedTokens) != 1 {
		t.Fatalf("AffectedTokens = %+v", report.AffectedTokens)
	}
	a := report.AffectedTokens[0]
	if !a.Breaking || a.Severity != 1 {
		t.Fatalf("affected = %+v, want breaking with severity 1", a)
	}
	if report.RiskAssessment.BreakingChanges != 10 {
		t.Fatalf("BreakingChanges = %v, want 10", report.RiskAssessment.BreakingChanges)
	}
	found := false
	for _, r := range report.Recommendations {
		if r == "Review dependent components before applying." {
			found = true
		}
	}
	if !found {
		t.Fatalf("Recommendations = %v, want review warning", report.Recommendations)
	}
}

func TestPredictColorMoveScoresDistance(t *testing.T) {
	f := newFixture(t)
	f.token(t, "brand", token.CategoryColor, "#ffffff")
	f.token(t, "brand.hover", token.CategoryColor, "#e6e6e6")
	f.edge(t, "brand.hover", []string{"brand"}, "state:hover")

	report, err := f.pred.PredictCascadeImpact("brand", "#000000")
	if err != nil {
		t.Fatalf("PredictCascadeImpact() error = %v", err)
	}
	a := report.AffectedTokens[0]
	if a.Breaking {
		t.Fatalf("affected = %+v, want non-breaking", a)
	}
	// hover(white) = #e6e6e6, hover(black) = #000000; nearly the full
	// color range apart.
	if a.Severity < 0.8 || a.Severity > 1 {
		t.Fatalf("Severity = %v, want near 1", a.Severity)
	}
	if report.TotalImpact != round2(a.Severity) {
		t.Fatalf("TotalImpact = %v, severity = %v", report.TotalImpact, a.Severity)
	}
}

func TestPredictAccessibilityCompensatedBackgroundFlip(t *testing.T) {
	f := newFixture(t)
	f.token(t, "surface", token.CategoryColor, "#ffffff")
	f.token(t, "text", token.CategoryColor, "#000000")
	f.edge(t, "text", []string{"surface"}, "contrast:high")

	// Flipping the surface white to black swaps the derived text black
	// to white; the contrast ratio is 21 on both sides, so the change
	// carries no accessibility risk.
	report, err := f.pred.PredictCascadeImpact("surface", "#000000")
	if err != nil {
		t.Fatalf("PredictCascadeImpact() error = %v", err)
	}
	a := report.AffectedTokens[0]
	if a.OldValue != "#000000" || a.NewValue != "#ffffff" {
		t.Fatalf("affected = %+v", a)
	}
	if report.RiskAssessment.AccessibilityImpact != 0 {
		t.Fatalf("AccessibilityImpact = %v, want 0 (ratio unchanged)", report.RiskAssessment.AccessibilityImpact)
	}
}

func TestPredictAccessibilityContrastLoss(t *testing.T) {
	f := newFixture(t)
	f.token(t, "surface", token.CategoryColor, "#ffffff")
	f.token(t, "text", token.CategoryColor, "#000000")
	f.edge(t, "text", []string{"surface"}, "contrast:high")

	// Mid gray caps the reachable ratio well below the old 21:1, so the
	// lost contrast lands in the accessibility bucket.
	report, err := f.pred.PredictCascadeImpact("surface", "#777777")
	if err != nil {
		t.Fatalf("PredictCascadeImpact() error = %v", err)
	}
	got := report.RiskAssessment.AccessibilityImpact
	if got <= 3 || got > 10 {
		t.Fatalf("AccessibilityImpact = %v, want in (3, 10]", got)
	}
	found := false
	for _, r := range report.Recommendations {
		if r == "Re-check WCAG contrast for the affected color pairs." {
			found = true
		}
	}
	if !found {
		t.Fatalf("Recommendations = %v, want WCAG warning", report.Recommendations)
	}
}

func TestTotalImpactCapped(t *testing.T) {
	f := newFixture(t)
	f.token(t, "base", token.CategorySpacing, "1px")
	deps := []string{"base"}
	names := []string{"s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8", "s9", "s10", "s11", "s12"}
	for _, n := range names {
		f.token(t, n, token.CategorySpacing, "2px")
		f.edge(t, n, deps, "scale:2")
	}

	// Each dependent moves from 2px to 200px, severity 1 apiece; the
	// total saturates at 10.
	report, err := f.pred.PredictCascadeImpact("base", "100px")
	if err != nil {
		t.Fatalf("PredictCascadeImpact() error = %v", err)
	}
	if report.TotalImpact != 10 {
		t.Fatalf("TotalImpact = %v, want 10", report.TotalImpact)
	}
}
