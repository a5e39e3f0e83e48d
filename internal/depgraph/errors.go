package depgraph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks an edge that references an unknown token or is
	// otherwise malformed.
	ErrValidation = errors.New("invalid dependency edge")
	// ErrCycle marks an edge that would close a dependency cycle.
	ErrCycle = errors.New("dependency cycle detected")
)

// GraphError wraps deterministic graph validation failures.
type GraphError struct {
	Kind error
	Msg  string
}

func (e *GraphError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *GraphError) Unwrap() error { return e.Kind }

func invalidf(format string, args ...any) error {
	return &GraphError{Kind: ErrValidation, Msg: fmt.Sprintf(format, args...)}
}

func cycleError(path []string) error {
	msg := "cycle"
	if len(path) > 0 {
		msg = "cycle: " + strings.Join(path, " -> ")
	}
	return &GraphError{Kind: ErrCycle, Msg: msg}
}
