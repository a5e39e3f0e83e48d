package registry

import "rafters/internal/token"

// GraphNode is one token in the exported dependency graph view.
type GraphNode struct {
	UID      string `json:"uid"`
	Label    string `json:"label"`
	Category string `json:"category,omitempty"`
}

// GraphEdge is one derivation step: From is the dependency, To the
// derived token.
type GraphEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Rule string `json:"rule,omitempty"`
}

// Graph is the serializable nodes-and-edges view of a snapshot.
type Graph struct {
	Version string      `json:"version"`
	Nodes   []GraphNode `json:"nodes"`
	Edges   []GraphEdge `json:"edges"`
}

// GraphView flattens a snapshot into nodes and edges, tokens in
// insertion order.
func GraphView(s *Snapshot) Graph {
	g := Graph{Version: s.Version()}
	for _, t := range s.Tokens() {
		g.Nodes = append(g.Nodes, GraphNode{
			UID:      t.Name,
			Label:    t.Name,
			Category: string(t.Category),
		})
	}
	for _, e := range s.Edges() {
		for _, dep := range e.DependsOn {
			g.Edges = append(g.Edges, GraphEdge{From: dep, To: e.TokenName, Rule: e.Rule})
		}
	}
	return g
}

// TokensByCategory returns the snapshot's tokens of one category, sorted
// by name.
func (s *Snapshot) TokensByCategory(cat token.Category) []token.Token {
	return s.store.ByCategory(cat)
}
