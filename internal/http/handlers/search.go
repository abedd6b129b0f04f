package handlers

import (
	"encoding/json"
	"net/http"
)

type searchRequest struct {
	APIKey   string          `json:"apikey"`
	Subjects json.RawMessage `json:"sujetos"`
	Source   string          `json:"fuente"`
}

type searchResponse struct {
	QueryID   string `json:"id_busqueda"`
	Consumed  int    `json:"creditos_consumidos"`
	Remaining int    `json:"creditos_restantes"`
}

// SubmitSearch handles POST /busqueda.
func (a *App) SubmitSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !a.decode(w, r, &req) {
		return
	}
	if req.APIKey == "" {
		a.fail(w, http.StatusBadRequest, "apikey required")
		return
	}
	if req.Source == "" {
		a.fail(w, http.StatusBadRequest, "fuente required")
		return
	}
	var subjects []string
	if req.Subjects == nil || json.Unmarshal(req.Subjects, &subjects) != nil {
		a.fail(w, http.StatusBadRequest, "sujetos must be an array of strings")
		return
	}
	account, err := a.Search.Authorize(r.Context(), req.APIKey)
	if err != nil {
		a.failErr(w, err)
		return
	}
	result, err := a.Search.Submit(r.Context(), account, subjects, req.Source)
	if err != nil {
		a.failErr(w, err)
		return
	}
	a.ok(w, searchResponse{
		QueryID:   result.QueryID,
		Consumed:  result.Consumed,
		Remaining: result.Remaining,
	})
}
