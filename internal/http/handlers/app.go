package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"gateway/internal/domain"
	"gateway/internal/infra"
	"gateway/internal/search"
)

// App bundles the dependencies shared by all route handlers.
type App struct {
	Logger *infra.Logger
	Search *search.Orchestrator
}

func NewApp(logger *infra.Logger, orchestrator *search.Orchestrator) *App {
	return &App{Logger: logger, Search: orchestrator}
}

// envelope is the single response shape for every business route.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (a *App) ok(w http.ResponseWriter, data any) {
	a.write(w, http.StatusOK, envelope{Success: true, Data: data})
}

func (a *App) fail(w http.ResponseWriter, code int, msg string) {
	a.write(w, code, envelope{Success: false, Error: msg})
}

func (a *App) write(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// failErr maps workflow errors onto the response envelope. Anything outside
// the taxonomy is an upstream failure; its detail stays in the logs.
func (a *App) failErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidParams):
		a.fail(w, http.StatusBadRequest, "apikey required")
	case errors.Is(err, domain.ErrAccountNotFound):
		a.fail(w, http.StatusNotFound, "user not found")
	case errors.Is(err, domain.ErrAccountExpired):
		a.fail(w, http.StatusForbidden, "account expired")
	case errors.Is(err, domain.ErrWrongAPIKey):
		a.fail(w, http.StatusUnauthorized, "wrong apikey")
	case errors.Is(err, domain.ErrInvalidSource):
		a.fail(w, http.StatusBadRequest, "invalid source")
	case errors.Is(err, domain.ErrInsufficientCredits):
		a.fail(w, http.StatusPaymentRequired, "insufficient credits")
	default:
		a.Logger.Error().Err(err).Msg("downstream call failed")
		a.fail(w, http.StatusBadGateway, "upstream error")
	}
}

// decode reads the JSON request body; a malformed body terminates the
// request before any downstream call.
func (a *App) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		a.fail(w, http.StatusBadRequest, "invalid payload")
		return false
	}
	return true
}
