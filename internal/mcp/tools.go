package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"rafters/internal/registry"
	"rafters/internal/token"
)

// SnapshotSource yields the current registry snapshot. The gateway's
// analysis service satisfies it; tests can use a fixed snapshot.
type SnapshotSource interface {
	Snapshot() *registry.Snapshot
}

// RegisterDefaultTools installs the token metadata tool set into a
// registry.
func RegisterDefaultTools(r *Registry, src SnapshotSource) {
	if r == nil || src == nil {
		return
	}
	r.Register(&tokenListTool{src: src})
	r.Register(&tokenResolveTool{src: src})
	r.Register(&ruleExecuteTool{src: src})
	r.Register(&impactPredictTool{src: src})
	r.Register(&graphExportTool{src: src})
}

// --------------------- token.list ---------------------

type tokenListTool struct{ src SnapshotSource }

func (t *tokenListTool) Spec() ToolSpec {
	return ToolSpec{
		Name:        "token.list",
		Description: "List design tokens, optionally filtered by category.",
	}
}

func (t *tokenListTool) Call(_ context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in struct {
		Category string `json:"category,omitempty"`
	}
	if len(input) > 0 {
		if err := json.Unmarshal(input, &in); err != nil {
			return nil, err
		}
	}
	snap := t.src.Snapshot()
	var tokens []token.Token
	if cat := strings.TrimSpace(in.Category); cat != "" {
		c, ok := token.ParseCategory(cat)
		if !ok {
			return nil, fmt.Errorf("token.list: unknown category %q", cat)
		}
		tokens = snap.TokensByCategory(c)
	} else {
		tokens = snap.Tokens()
	}
	return json.Marshal(map[string]any{
		"version": snap.Version(),
		"tokens":  tokens,
	})
}

// --------------------- token.resolve ---------------------

type tokenResolveTool struct{ src SnapshotSource }

func (t *tokenResolveTool) Spec() ToolSpec {
	return ToolSpec{
		Name:        "token.resolve",
		Description: "Resolve one token: value, rule, dependencies, dependents and cascade.",
	}
}

func (t *tokenResolveTool) Call(_ context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("token.resolve: name is required")
	}
	res, err := t.src.Snapshot().Resolve(in.Name)
	if err != nil {
		return nil, err
	}
	return json.Marshal(res)
}

// --------------------- rule.execute ---------------------

type ruleExecuteTool struct{ src SnapshotSource }

func (t *ruleExecuteTool) Spec() ToolSpec {
	return ToolSpec{
		Name:        "rule.execute",
		Description: "Execute a token's recorded generation rule and return the derived value.",
	}
}

func (t *ruleExecuteTool) Call(_ context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("rule.execute: name is required")
	}
	res, err := t.src.Snapshot().ExecuteRule(in.Name)
	if err != nil {
		return nil, err
	}
	return json.Marshal(res)
}

// --------------------- impact.predict ---------------------

type impactPredictTool struct{ src SnapshotSource }

func (t *impactPredictTool) Spec() ToolSpec {
	return ToolSpec{
		Name:        "impact.predict",
		Description: "Predict the cascade impact of changing a token to a new value.",
	}
}

func (t *impactPredictTool) Call(_ context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in struct {
		Token    string `json:"token"`
		NewValue string `json:"newValue"`
	}
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Token) == "" || strings.TrimSpace(in.NewValue) == "" {
		return nil, fmt.Errorf("impact.predict: token and newValue are required")
	}
	report, err := t.src.Snapshot().PredictImpact(in.Token, in.NewValue)
	if err != nil {
		return nil, err
	}
	return json.Marshal(report)
}

// --------------------- graph.export ---------------------

type graphExportTool struct{ src SnapshotSource }

func (t *graphExportTool) Spec() ToolSpec {
	return ToolSpec{
		Name:        "graph.export",
		Description: "Export the token dependency graph as nodes and edges.",
	}
}

func (t *graphExportTool) Call(_ context.Context, _ json.RawMessage) (json.RawMessage, error) {
	snap := t.src.Snapshot()
	return json.Marshal(registry.GraphView(snap))
}
