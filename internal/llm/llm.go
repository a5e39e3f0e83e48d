package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrInvalidJSON reports a model reply that contained no usable JSON.
var ErrInvalidJSON = errors.New("llm: invalid JSON response")

// Client is the minimal surface the advisor needs from a model
// provider.
type Client interface {
	Name() string
	GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error)
}
