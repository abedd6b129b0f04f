package handlers

import (
	"net/http"
	"time"
)

type accountRequest struct {
	APIKey string `json:"apikey"`
}

type accountResponse struct {
	Credits    int       `json:"creditos"`
	PlanExpiry time.Time `json:"vencimiento_plan"`
	APIKey     string    `json:"api_key"`
	UserName   string    `json:"user_name"`
}

// MyAccount handles POST /micuenta.
func (a *App) MyAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
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
	a.ok(w, accountResponse{
		Credits:    account.Credits,
		PlanExpiry: account.Expiry,
		APIKey:     account.APIKey,
		UserName:   account.UserName,
	})
}
