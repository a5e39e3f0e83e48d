package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"rafters/internal/llm"
	"rafters/internal/registry"
	"rafters/internal/token"
)

const suggestPrompt = `You are a design-system librarian. Given one design
token with its derivation rule, dependencies and dependents, suggest
semantic metadata for it. Respond with a single JSON object:
{"semanticMeaning": string, "cognitiveLoad": number 0-10,
"trustLevel": "unverified"|"reviewed"|"canonical", "rationale": string}.
Base cognitiveLoad on how many other tokens a consumer must understand
to use this one correctly.`

// Suggestion is advisory metadata for one token. It is never written
// back into a snapshot automatically.
type Suggestion struct {
	SemanticMeaning string  `json:"semanticMeaning"`
	CognitiveLoad   float64 `json:"cognitiveLoad"`
	TrustLevel      string  `json:"trustLevel"`
	Rationale       string  `json:"rationale,omitempty"`
}

// Advisor asks a model for semantic metadata suggestions. All analysis
// stays deterministic; the advisor only annotates.
type Advisor struct {
	cli llm.Client
}

func New(cli llm.Client) *Advisor {
	return &Advisor{cli: cli}
}

// Suggest builds the graph context for one token and asks the model for
// metadata. The reply is validated and clamped before being returned.
func (a *Advisor) Suggest(ctx context.Context, snap *registry.Snapshot, name string) (Suggestion, error) {
	res, err := snap.Resolve(name)
	if err != nil {
		return Suggestion{}, err
	}

	raw, err := a.cli.GenerateJSON(ctx, suggestPrompt, res)
	if err != nil {
		return Suggestion{}, fmt.Errorf("advisor: %w", err)
	}

	var s Suggestion
	if err := json.Unmarshal(raw, &s); err != nil {
		return Suggestion{}, fmt.Errorf("advisor: %w: %v", llm.ErrInvalidJSON, err)
	}
	if strings.TrimSpace(s.SemanticMeaning) == "" {
		return Suggestion{}, fmt.Errorf("advisor: %w: empty semanticMeaning", llm.ErrInvalidJSON)
	}
	if s.CognitiveLoad < 0 {
		s.CognitiveLoad = 0
	}
	if s.CognitiveLoad > 10 {
		s.CognitiveLoad = 10
	}
	switch token.TrustLevel(strings.ToLower(strings.TrimSpace(s.TrustLevel))) {
	case token.TrustUnverified, token.TrustReviewed, token.TrustCanonical:
		s.TrustLevel = strings.ToLower(strings.TrimSpace(s.TrustLevel))
	default:
		s.TrustLevel = string(token.TrustUnverified)
	}
	return s, nil
}
