package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"rafters/internal/mcp"
)

// ToolsHandler exposes the in-process tool registry to agents.
type ToolsHandler struct {
	reg *mcp.Registry
}

func NewToolsHandler(reg *mcp.Registry) *ToolsHandler {
	return &ToolsHandler{reg: reg}
}

func (h *ToolsHandler) HandleSpecs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tools": h.reg.Specs()})
}

func (h *ToolsHandler) HandleCall(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var in struct {
		Name  string          `json:"name"`
		Input json.RawMessage `json:"input,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	out, err := h.reg.Call(r.Context(), in.Name, in.Input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"name":   in.Name,
		"output": out,
	})
}
