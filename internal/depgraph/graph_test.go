package depgraph

import (
	"errors"
	"strings"
	"testing"

	"rafters/internal/token"
)

func storeWith(t *testing.T, names ...string) *token.Store {
	t.Helper()
	s := token.NewStore()
	for _, n := range names {
		if err := s.Put(token.Token{Name: n, Category: token.CategorySpacing, Value: "4px"}); err != nil {
			t.Fatalf("Put(%q) error = %v", n, err)
		}
	}
	return s
}

func TestAddDependencyAndLookup(t *testing.T) {
	g := New(storeWith(t, "base", "md", "lg"))

	if err := g.AddDependency("md", []string{"base"}, "scale:2"); err != nil {
		t.Fatalf("AddDependency(md) error = %v", err)
	}
	if err := g.AddDependency("lg", []string{"md"}, "scale:2"); err != nil {
		t.Fatalf("AddDependency(lg) error = %v", err)
	}

	edge, ok := g.DependenciesOf("md")
	if !ok {
		t.Fatal("DependenciesOf(md) missing")
	}
	if edge.Rule != "scale:2" || len(edge.DependsOn) != 1 || edge.DependsOn[0] != "base" {
		t.Fatalf("DependenciesOf(md) = %+v", edge)
	}

	// Returned edges are copies.
	edge.DependsOn[0] = "mutated"
	again, _ := g.DependenciesOf("md")
	if again.DependsOn[0] != "base" {
		t.Fatalf("graph aliased: %v", again.DependsOn)
	}
}

func TestDependentsInsertionOrder(t *testing.T) {
	g := New(storeWith(t, "base", "c", "a", "b"))
	for _, n := range []string{"c", "a", "b"} {
		if err := g.AddDependency(n, []string{"base"}, "scale:2"); err != nil {
			t.Fatalf("AddDependency(%q) error = %v", n, err)
		}
	}

	got := g.DependentsOf("base")
	want := []string{"c", "a", "b"}
	if len(got) != len(want) {
		t.Fatalf("DependentsOf(base) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("DependentsOf(base)[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCascadeChain(t *testing.T) {
	g := New(storeWith(t, "a", "b", "c"))
	mustAdd(t, g, "b", []string{"a"}, "scale:2")
	mustAdd(t, g, "c", []string{"b"}, "scale:2")

	got := g.CascadeFrom("a")
	if len(got) != 2 || got[0] != "b" || got[1] != "c" {
		t.Fatalf("CascadeFrom(a) = %v, want [b c]", got)
	}
}

func TestCascadeDiamondVisitsOnce(t *testing.T) {
	g := New(storeWith(t, "a", "b", "c", "d"))
	mustAdd(t, g, "b", []string{"a"}, "scale:2")
	mustAdd(t, g, "c", []string{"a"}, "scale:3")
	mustAdd(t, g, "d", []string{"b", "c"}, "scale:1")

	got := g.CascadeFrom("a")
	if len(got) != 3 {
		t.Fatalf("CascadeFrom(a) = %v, want 3 unique tokens", got)
	}
	seen := map[string]int{}
	for _, n := range got {
		seen[n]++
	}
	for _, n := range []string{"b", "c", "d"} {
		if seen[n] != 1 {
			t.Fatalf("CascadeFrom(a) visits %q %d times: %v", n, seen[n], got)
		}
	}
}

func TestAddDependencyValidation(t *testing.T) {
	g := New(storeWith(t, "a", "b"))

	cases := []struct {
		name string
		tok  string
		deps []string
		rule string
	}{
		{"empty token", "", []string{"a"}, "scale:2"},
		{"unknown token", "ghost", []string{"a"}, "scale:2"},
		{"no deps", "b", nil, "scale:2"},
		{"empty dep", "b", []string{" "}, "scale:2"},
		{"unknown dep", "b", []string{"ghost"}, "scale:2"},
		{"duplicate dep", "b", []string{"a", "a"}, "scale:2"},
		{"no rule", "b", []string{"a"}, "  "},
	}
	for _, tc := range cases {
		err := g.AddDependency(tc.tok, tc.deps, tc.rule)
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("%s: error = %v, want ErrValidation", tc.name, err)
		}
	}
	if g.Len() != 0 {
		t.Fatalf("graph modified by rejected edges: %d edges", g.Len())
	}
}

func TestDuplicateEdgeRejected(t *testing.T) {
	g := New(storeWith(t, "a", "b"))
	mustAdd(t, g, "b", []string{"a"}, "scale:2")

	if err := g.AddDependency("b", []string{"a"}, "scale:3"); !errors.Is(err, ErrValidation) {
		t.Fatalf("duplicate edge error = %v, want ErrValidation", err)
	}
	edge, _ := g.DependenciesOf("b")
	if edge.Rule != "scale:2" {
		t.Fatalf("original edge replaced: %+v", edge)
	}
}

func TestSelfLoopRejected(t *testing.T) {
	g := New(storeWith(t, "a"))
	err := g.AddDependency("a", []string{"a"}, "scale:2")
	if !errors.Is(err, ErrCycle) {
		t.Fatalf("self loop error = %v, want ErrCycle", err)
	}
	if g.Len() != 0 {
		t.Fatal("graph modified by rejected self loop")
	}
}

func TestCycleRejectedWithWitnessPath(t *testing.T) {
	g := New(storeWith(t, "a", "b", "c"))
	mustAdd(t, g, "b", []string{"a"}, "scale:2")
	mustAdd(t, g, "c", []string{"b"}, "scale:2")

	err := g.AddDependency("a", []string{"c"}, "scale:2")
	if !errors.Is(err, ErrCycle) {
		t.Fatalf("cycle error = %v, want ErrCycle", err)
	}
	// The witness names the full loop back to the start token.
	msg := err.Error()
	if !strings.Contains(msg, "a -> c -> b -> a") {
		t.Fatalf("cycle witness missing from error: %q", msg)
	}
	if g.Len() != 2 {
		t.Fatalf("graph modified by rejected cycle: %d edges", g.Len())
	}
}

func mustAdd(t *testing.T, g *Graph, name string, deps []string, rule string) {
	t.Helper()
	if err := g.AddDependency(name, deps, rule); err != nil {
		t.Fatalf("AddDependency(%q) error = %v", name, err)
	}
}
