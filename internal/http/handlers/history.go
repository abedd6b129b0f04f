package handlers

import (
	"net/http"
	"time"
)

type historyRequest struct {
	APIKey string `json:"apikey"`
}

type historyEntryDTO struct {
	Date    time.Time `json:"fecha"`
	Credits int       `json:"creditos"`
	Query   string    `json:"consulta"`
	QueryID string    `json:"id_busqueda"`
}

type historyResponse struct {
	History []historyEntryDTO `json:"historial"`
}

// SearchHistory handles POST /historial-de-busqueda.
func (a *App) SearchHistory(w http.ResponseWriter, r *http.Request) {
	var req historyRequest
	if !a.decode(w, r, &req) {
		return
	}
	if req.APIKey == "" {
		a.fail(w, http.StatusBadRequest, "apikey required")
		return
	}
	account, err := a.Search.Authorize(r.Context(), req.APIKey)
	if err != nil {
		a.failErr(w, err)
		return
	}
	entries, err := a.Search.History(r.Context(), account.Email)
	if err != nil {
		a.failErr(w, err)
		return
	}
	dtos := make([]historyEntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, historyEntryDTO{
			Date:    e.Date,
			Credits: e.Credits,
			Query:   e.Query,
			QueryID: e.QueryID,
		})
	}
	a.ok(w, historyResponse{History: dtos})
}
