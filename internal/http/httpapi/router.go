package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"gateway/internal/http/handlers"
	"gateway/internal/infra"
	"gateway/internal/middleware"
)

// NewRouter wires the public routes with the service middleware stack.
func NewRouter(app *handlers.App, logger infra.Logger, corsOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(
		chimw.RealIP,
		chimw.Recoverer,
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.CORS(corsOrigins),
	)

	r.Get("/v1/healthz", app.Health)

	r.Post("/micuenta", app.MyAccount)
	r.Post("/busqueda", app.SubmitSearch)
	r.Post("/datos", app.SearchData)
	r.Post("/historial-de-busqueda", app.SearchHistory)

	return r
}
