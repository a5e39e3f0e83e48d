package handler

import (
	"net/http"
	"strings"

	"rafters/internal/gateway/service/analysis"
	"rafters/internal/registry"
	"rafters/internal/token"
)

// TokenHandler serves token listing and resolution.
type TokenHandler struct {
	svc *analysis.Service
}

func NewTokenHandler(svc *analysis.Service) *TokenHandler {
	return &TokenHandler{svc: svc}
}

func (h *TokenHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	snap := h.svc.Snapshot()
	var tokens []token.Token
	if cat := strings.TrimSpace(r.URL.Query().Get("category")); cat != "" {
		c, ok := token.ParseCategory(cat)
		if !ok {
			http.Error(w, "unknown category", http.StatusBadRequest)
			return
		}
		tokens = snap.TokensByCategory(c)
	} else {
		tokens = snap.Tokens()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"version": snap.Version(),
		"tokens":  tokens,
	})
}

func (h *TokenHandler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	res, err := h.svc.Snapshot().Resolve(name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *TokenHandler) HandleGraph(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, registry.GraphView(h.svc.Snapshot()))
}
