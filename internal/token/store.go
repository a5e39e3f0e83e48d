package token

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound reports a lookup for a token name the store does not hold.
var ErrNotFound = errors.New("token not found")

// ErrInvalidToken reports a token record the store refuses to hold.
var ErrInvalidToken = errors.New("invalid token")

// Store maps token names to token records.
//
// A Store is populated once during registry construction and read-only
// afterwards; Get returns copies so callers can never alias internal
// state. It is not safe for concurrent mutation, which matches the
// build-then-read lifecycle.
type Store struct {
	byName map[string]Token
	order  []string
}

func NewStore() *Store {
	return &Store{byName: make(map[string]Token)}
}

// Put inserts or replaces a token record. The name must be non-empty and
// the category known.
func (s *Store) Put(t Token) error {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidToken)
	}
	cat, ok := normalizeCategory(string(t.Category))
	if !ok {
		return fmt.Errorf("%w: unknown category %q for %q", ErrInvalidToken, t.Category, name)
	}
	t.Name = name
	t.Category = cat
	if _, exists := s.byName[name]; !exists {
		s.order = append(s.order, name)
	}
	s.byName[name] = t
	return nil
}

// Get returns a copy of the named token.
func (s *Store) Get(name string) (Token, error) {
	t, ok := s.byName[strings.TrimSpace(name)]
	if !ok {
		return Token{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return t, nil
}

// Has reports whether the store holds the named token.
func (s *Store) Has(name string) bool {
	_, ok := s.byName[strings.TrimSpace(name)]
	return ok
}

// Len returns the number of tokens held.
func (s *Store) Len() int { return len(s.byName) }

// Names returns token names in insertion order.
func (s *Store) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// All returns copies of every token in insertion order.
func (s *Store) All() []Token {
	out := make([]Token, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.byName[name])
	}
	return out
}

// ByCategory returns tokens of one category, sorted by name.
func (s *Store) ByCategory(cat Category) []Token {
	var out []Token
	for _, t := range s.byName {
		if t.Category == cat {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
