package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"rafters/internal/depgraph"
	"rafters/internal/impact"
	"rafters/internal/rule"
	"rafters/internal/token"
)

// Snapshot binds a token store, its dependency graph and the evaluation
// engines into one immutable view. A Snapshot is never mutated after
// Build, so any number of concurrent readers may share it.
type Snapshot struct {
	store     *token.Store
	graph     *depgraph.Graph
	exec      *rule.Executor
	predictor *impact.Predictor
	version   string
}

// Resolution is the full metadata record for one token: the token
// itself, how it is derived, and what depends on it.
type Resolution struct {
	Token      token.Token  `json:"token"`
	Rule       string       `json:"rule,omitempty"`
	DependsOn  []string     `json:"dependsOn,omitempty"`
	Dependents []string     `json:"dependents"`
	Cascade    []string     `json:"cascade"`
	Derived    *rule.Result `json:"derived,omitempty"`
}

// Builder collects tokens, then edges, and validates as it goes. The
// first error sticks; Build surfaces it.
type Builder struct {
	store *token.Store
	graph *depgraph.Graph
	err   error
}

func NewBuilder() *Builder {
	store := token.NewStore()
	return &Builder{store: store, graph: depgraph.New(store)}
}

func (b *Builder) AddToken(t token.Token) *Builder {
	if b.err != nil {
		return b
	}
	b.err = b.store.Put(t)
	return b
}

func (b *Builder) AddDependency(name string, dependsOn []string, ruleStr string) *Builder {
	if b.err != nil {
		return b
	}
	b.err = b.graph.AddDependency(name, dependsOn, ruleStr)
	return b
}

// Err returns the first error the builder hit, if any.
func (b *Builder) Err() error { return b.err }

func (b *Builder) Build() (*Snapshot, error) {
	if b.err != nil {
		return nil, b.err
	}
	exec := rule.NewExecutor()
	return &Snapshot{
		store:     b.store,
		graph:     b.graph,
		exec:      exec,
		predictor: impact.New(b.store, b.graph, exec),
		version:   computeVersion(b.store, b.graph),
	}, nil
}

// computeVersion hashes every token record and edge so two snapshots
// with the same content share a version string.
func computeVersion(store *token.Store, graph *depgraph.Graph) string {
	h := sha256.New()
	field := func(s string) {
		var l [4]byte
		n := len(s)
		l[0], l[1], l[2], l[3] = byte(n>>24), byte(n>>16), byte(n>>8), byte(n)
		h.Write(l[:])
		h.Write([]byte(s))
	}
	for _, t := range store.All() {
		field(t.Name)
		field(string(t.Category))
		field(t.Value)
	}
	for _, e := range graph.Edges() {
		field(e.TokenName)
		field(e.Rule)
		for _, d := range e.DependsOn {
			field(d)
		}
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// Version is a stable content hash of the snapshot.
func (s *Snapshot) Version() string { return s.version }

// Tokens returns every token in insertion order.
func (s *Snapshot) Tokens() []token.Token { return s.store.All() }

// Token returns a single token by name.
func (s *Snapshot) Token(name string) (token.Token, error) {
	return s.store.Get(name)
}

// Edges returns every dependency edge in insertion order.
func (s *Snapshot) Edges() []depgraph.Edge { return s.graph.Edges() }

// Dependents returns the direct dependents of a token.
func (s *Snapshot) Dependents(name string) []string {
	return s.graph.DependentsOf(name)
}

// Cascade returns the transitive dependents of a token.
func (s *Snapshot) Cascade(name string) []string {
	return s.graph.CascadeFrom(name)
}

// Resolve returns the full metadata record for one token, including the
// currently derived value when the token has an evaluable edge.
func (s *Snapshot) Resolve(name string) (Resolution, error) {
	t, err := s.store.Get(name)
	if err != nil {
		return Resolution{}, err
	}
	res := Resolution{
		Token:      t,
		Dependents: s.graph.DependentsOf(t.Name),
		Cascade:    s.graph.CascadeFrom(t.Name),
	}
	if edge, ok := s.graph.DependenciesOf(t.Name); ok {
		res.Rule = edge.Rule
		res.DependsOn = edge.DependsOn
		if derived, err := s.executeEdge(t, edge); err == nil {
			res.Derived = &derived
		}
	}
	return res, nil
}

// ExecuteRule evaluates the named token's recorded rule against its
// current dependency values.
func (s *Snapshot) ExecuteRule(name string) (rule.Result, error) {
	t, err := s.store.Get(name)
	if err != nil {
		return rule.Result{}, err
	}
	edge, ok := s.graph.DependenciesOf(t.Name)
	if !ok {
		return rule.Result{}, fmt.Errorf("%w: token %q has no rule", depgraph.ErrValidation, t.Name)
	}
	return s.executeEdge(t, edge)
}

// ExecuteAdHoc evaluates an arbitrary rule string against a target token
// and explicit dependency values, without consulting the graph.
func (s *Snapshot) ExecuteAdHoc(ruleStr string, target token.Token, deps []token.Token) (rule.Result, error) {
	return s.exec.Execute(ruleStr, target, deps)
}

// PredictImpact reports the cascade effect of the named token taking
// newValue.
func (s *Snapshot) PredictImpact(name, newValue string) (impact.Report, error) {
	return s.predictor.PredictCascadeImpact(name, newValue)
}

func (s *Snapshot) executeEdge(t token.Token, edge depgraph.Edge) (rule.Result, error) {
	deps := make([]token.Token, 0, len(edge.DependsOn))
	for _, dep := range edge.DependsOn {
		dt, err := s.store.Get(dep)
		if err != nil {
			return rule.Result{}, err
		}
		deps = append(deps, dt)
	}
	return s.exec.Execute(edge.Rule, t, deps)
}
