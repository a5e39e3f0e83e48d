package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// FakeClient is an in-memory Client for tests.
type FakeClient struct {
	Response json.RawMessage
	Err      error

	mu      sync.Mutex
	prompts []string
}

func (f *FakeClient) Name() string { return "fake" }

func (f *FakeClient) GenerateJSON(_ context.Context, prompt string, _ any) (json.RawMessage, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Response, nil
}

// Prompts returns the prompts seen so far.
func (f *FakeClient) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.prompts))
	copy(out, f.prompts)
	return out
}
