package tokenstore

import (
	"encoding/json"
	"strings"
	"time"
)

func (s *Store) ensureSchema() error {
	if s == nil || s.db == nil {
		return nil
	}
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.Exec(`
CREATE TABLE IF NOT EXISTS token_sets (
  set_id TEXT PRIMARY KEY,
  version TEXT NOT NULL DEFAULT '',
  document JSONB NOT NULL DEFAULT '{}',
  updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_token_sets_version ON token_sets (version);
`)
	})
	return s.schemaErr
}

func scanSetDB(row rowScanner) (TokenSet, bool) {
	var set TokenSet
	var doc []byte
	var updated time.Time
	if err := row.Scan(&set.ID, &set.Version, &doc, &updated); err != nil {
		return TokenSet{}, false
	}
	if err := json.Unmarshal(doc, &set.Document); err != nil {
		return TokenSet{}, false
	}
	set.UpdatedAt = updated
	return normalizeSet(set), true
}

func (s *Store) getDB(setID string) (TokenSet, bool) {
	if err := s.ensureSchema(); err != nil {
		return TokenSet{}, false
	}
	id := strings.TrimSpace(setID)
	if id == "" {
		return TokenSet{}, false
	}
	row := s.db.QueryRow(`SELECT set_id, version, document, updated_at
FROM token_sets WHERE set_id = $1`, id)
	return scanSetDB(row)
}

func (s *Store) putDB(set TokenSet) {
	if err := s.ensureSchema(); err != nil {
		return
	}
	n := normalizeSet(set)
	if n.ID == "" {
		return
	}
	doc, err := json.Marshal(n.Document)
	if err != nil {
		return
	}
	_, _ = s.db.Exec(`
INSERT INTO token_sets (set_id, version, document, updated_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (set_id)
DO UPDATE SET version=EXCLUDED.version,
  document=EXCLUDED.document,
  updated_at=EXCLUDED.updated_at`,
		n.ID, n.Version, doc, n.UpdatedAt)
}

func (s *Store) listDB() []TokenSet {
	if err := s.ensureSchema(); err != nil {
		return nil
	}
	rows, err := s.db.Query(`SELECT set_id, version, document, updated_at
FROM token_sets ORDER BY set_id`)
	if err != nil {
		return nil
	}
	defer rows.Close()
	var out []TokenSet
	for rows.Next() {
		if set, ok := scanSetDB(rows); ok {
			out = append(out, set)
		}
	}
	return out
}
