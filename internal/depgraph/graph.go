package depgraph

import (
	"strings"

	"rafters/internal/token"
)

// Edge declares that a token's value is derived from one or more other
// tokens via a named rule.
type Edge struct {
	TokenName string   `json:"token"`
	DependsOn []string `json:"dependsOn"`
	Rule      string   `json:"rule"`
}

// Graph holds directed token-to-token dependency edges over a token
// store.
//
// The graph is acyclic by construction: AddDependency rejects any edge
// that would close a cycle. Once populated it is read-only and safe for
// concurrent readers.
type Graph struct {
	store *token.Store

	edges map[string]Edge // at most one edge per derived token
	order []string        // edge insertion order

	dependents map[string][]string // dependency -> direct dependents, insertion order
}

func New(store *token.Store) *Graph {
	return &Graph{
		store:      store,
		edges:      make(map[string]Edge),
		dependents: make(map[string][]string),
	}
}

// AddDependency records that tokenName is derived from dependsOn via
// rule. It fails with ErrValidation when any referenced token is unknown
// to the store, and with ErrCycle when the edge would make tokenName
// transitively depend on itself. On failure the graph is unmodified.
func (g *Graph) AddDependency(tokenName string, dependsOn []string, rule string) error {
	name := strings.TrimSpace(tokenName)
	if name == "" {
		return invalidf("token name is required")
	}
	if !g.store.Has(name) {
		return invalidf("unknown token: %q", name)
	}
	if _, exists := g.edges[name]; exists {
		return invalidf("duplicate edge for token: %q", name)
	}
	if len(dependsOn) == 0 {
		return invalidf("edge for %q has no dependencies", name)
	}
	if strings.TrimSpace(rule) == "" {
		return invalidf("edge for %q has no rule", name)
	}

	deps := make([]string, 0, len(dependsOn))
	seen := make(map[string]struct{}, len(dependsOn))
	for _, raw := range dependsOn {
		dep := strings.TrimSpace(raw)
		if dep == "" {
			return invalidf("edge for %q has an empty dependency", name)
		}
		if !g.store.Has(dep) {
			return invalidf("unknown dependency %q for token %q", dep, name)
		}
		if dep == name {
			return cycleError([]string{name, name})
		}
		if _, dup := seen[dep]; dup {
			return invalidf("duplicate dependency %q for token %q", dep, name)
		}
		seen[dep] = struct{}{}
		deps = append(deps, dep)
	}

	if path := g.findCyclePath(name, deps); path != nil {
		return cycleError(path)
	}

	g.edges[name] = Edge{TokenName: name, DependsOn: deps, Rule: strings.TrimSpace(rule)}
	g.order = append(g.order, name)
	for _, dep := range deps {
		g.dependents[dep] = append(g.dependents[dep], name)
	}
	return nil
}

// findCyclePath walks existing dependency edges downward from each new
// dependency. If the derived token is reachable, adding the edge would
// close a cycle; the returned path is a stable witness
// (token -> dep -> ... -> token).
func (g *Graph) findCyclePath(name string, deps []string) []string {
	visited := make(map[string]struct{})
	var walk func(cur string, trail []string) []string
	walk = func(cur string, trail []string) []string {
		if cur == name {
			return append(trail, cur)
		}
		if _, ok := visited[cur]; ok {
			return nil
		}
		visited[cur] = struct{}{}
		edge, ok := g.edges[cur]
		if !ok {
			return nil
		}
		for _, next := range edge.DependsOn {
			if path := walk(next, append(trail, cur)); path != nil {
				return path
			}
		}
		return nil
	}
	for _, dep := range deps {
		if path := walk(dep, []string{name}); path != nil {
			return path
		}
	}
	return nil
}

// DependenciesOf returns the edge deriving the named token, if any.
func (g *Graph) DependenciesOf(name string) (Edge, bool) {
	e, ok := g.edges[strings.TrimSpace(name)]
	if !ok {
		return Edge{}, false
	}
	return copyEdge(e), true
}

// DependentsOf returns the tokens whose edges reference name directly,
// in edge-insertion order.
func (g *Graph) DependentsOf(name string) []string {
	deps := g.dependents[strings.TrimSpace(name)]
	out := make([]string, len(deps))
	copy(out, deps)
	return out
}

// CascadeFrom returns the transitive closure of dependents of name via
// breadth-first traversal. Each reachable token is visited exactly once,
// so diamond-shaped dependency paths are not double-counted.
func (g *Graph) CascadeFrom(name string) []string {
	start := strings.TrimSpace(name)
	visited := map[string]struct{}{start: {}}
	queue := g.dependents[start]
	var out []string
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if _, ok := visited[cur]; ok {
			continue
		}
		visited[cur] = struct{}{}
		out = append(out, cur)
		queue = append(queue, g.dependents[cur]...)
	}
	return out
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, len(g.order))
	for _, name := range g.order {
		out = append(out, copyEdge(g.edges[name]))
	}
	return out
}

// Len returns the number of edges.
func (g *Graph) Len() int { return len(g.edges) }

func copyEdge(e Edge) Edge {
	deps := make([]string, len(e.DependsOn))
	copy(deps, e.DependsOn)
	e.DependsOn = deps
	return e
}
