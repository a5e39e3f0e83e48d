package tokenstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

func (s *Store) ensureLoadedFile() {
	s.loadOnce.Do(func() {
		b, err := os.ReadFile(s.path)
		if err != nil {
			return
		}
		var rows []TokenSet
		if err := json.Unmarshal(b, &rows); err != nil {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, row := range rows {
			id := strings.TrimSpace(row.ID)
			if id == "" {
				continue
			}
			s.byID[id] = normalizeSet(row)
		}
	})
}

func (s *Store) saveFile() {
	s.ensureLoadedFile()
	s.mu.RLock()
	rows := make([]TokenSet, 0, len(s.byID))
	for _, set := range s.byID {
		rows = append(rows, normalizeSet(set))
	}
	s.mu.RUnlock()
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })

	b, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return
	}
	_ = os.MkdirAll(filepath.Dir(s.path), 0o755)
	_ = os.WriteFile(s.path, b, 0o644)
}

func (s *Store) getFile(setID string) (TokenSet, bool) {
	s.ensureLoadedFile()
	id := strings.TrimSpace(setID)
	if id == "" {
		return TokenSet{}, false
	}
	s.mu.RLock()
	set, ok := s.byID[id]
	s.mu.RUnlock()
	if !ok {
		return TokenSet{}, false
	}
	return normalizeSet(set), true
}

func (s *Store) putFile(set TokenSet) {
	s.ensureLoadedFile()
	normalized := normalizeSet(set)
	if normalized.ID == "" {
		return
	}
	s.mu.Lock()
	s.byID[normalized.ID] = normalized
	s.mu.Unlock()
}

func (s *Store) listFile() []TokenSet {
	s.ensureLoadedFile()
	s.mu.RLock()
	out := make([]TokenSet, 0, len(s.byID))
	for _, set := range s.byID {
		out = append(out, normalizeSet(set))
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
