package handlers

import (
	"encoding/json"
	"net/http"
)

type dataRequest struct {
	APIKey  string `json:"apikey"`
	QueryID string `json:"id_busqueda"`
}

type dataResponse struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// SearchData handles POST /datos. FAILED and IN PROGRESS are successful
// observations, not errors; the caller polls again on its own schedule.
func (a *App) SearchData(w http.ResponseWriter, r *http.Request) {
	var req dataRequest
	if !a.decode(w, r, &req) {
		return
	}
	if req.APIKey == "" {
		a.fail(w, http.StatusBadRequest, "apikey required")
		return
	}
	if req.QueryID == "" {
		a.fail(w, http.StatusBadRequest, "id_busqueda required")
		return
	}
	if _, err := a.Search.Authorize(r.Context(), req.APIKey); err != nil {
		a.failErr(w, err)
		return
	}
	result, err := a.Search.Poll(r.Context(), req.QueryID)
	if err != nil {
		a.failErr(w, err)
		return
	}
	a.ok(w, dataResponse{Status: string(result.Status), Data: result.Data})
}
