package tokenstore

import (
	"strings"
	"time"

	"rafters/internal/tokenfile"
)

// TokenSet is one persisted collection of token declarations, the unit
// the gateway serves and reloads.
type TokenSet struct {
	ID        string             `json:"id"`
	Version   string             `json:"version"`
	Document  tokenfile.Document `json:"document"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func normalizeSet(set TokenSet) TokenSet {
	set.ID = strings.TrimSpace(set.ID)
	set.Version = strings.TrimSpace(set.Version)
	if set.UpdatedAt.IsZero() {
		set.UpdatedAt = time.Now().UTC()
	}
	return set
}

type rowScanner interface {
	Scan(dest ...any) error
}
