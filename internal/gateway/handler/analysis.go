package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"rafters/internal/gateway/service/analysis"
	"rafters/internal/registry"
	"rafters/internal/rule"
	"rafters/internal/token"
)

// AnalysisHandler serves rule execution and impact prediction.
type AnalysisHandler struct {
	svc *analysis.Service
}

func NewAnalysisHandler(svc *analysis.Service) *AnalysisHandler {
	return &AnalysisHandler{svc: svc}
}

func (h *AnalysisHandler) HandleExecute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var in struct {
		Name      string   `json:"name"`
		Rule      string   `json:"rule,omitempty"`
		DependsOn []string `json:"dependsOn,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	snap := h.svc.Snapshot()
	var (
		res rule.Result
		err error
	)
	if strings.TrimSpace(in.Rule) == "" {
		// No explicit rule: evaluate the token's recorded edge.
		res, err = snap.ExecuteRule(in.Name)
	} else {
		res, err = h.executeAdHoc(snap, in.Name, in.Rule, in.DependsOn)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// executeAdHoc evaluates an explicit rule string against named tokens
// without consulting the recorded graph edges.
func (h *AnalysisHandler) executeAdHoc(snap *registry.Snapshot, name, ruleStr string, dependsOn []string) (rule.Result, error) {
	target, err := snap.Token(name)
	if err != nil {
		return rule.Result{}, err
	}
	deps := make([]token.Token, 0, len(dependsOn))
	for _, dep := range dependsOn {
		t, err := snap.Token(dep)
		if err != nil {
			return rule.Result{}, err
		}
		deps = append(deps, t)
	}
	return snap.ExecuteAdHoc(ruleStr, target, deps)
}

func (h *AnalysisHandler) HandleImpact(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var in struct {
		Token    string `json:"token"`
		NewValue string `json:"newValue"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(in.Token) == "" || strings.TrimSpace(in.NewValue) == "" {
		http.Error(w, "token and newValue are required", http.StatusBadRequest)
		return
	}
	report, err := h.svc.Impact(in.Token, in.NewValue)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
