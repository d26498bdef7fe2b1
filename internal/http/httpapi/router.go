package httpapi

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"server/internal/http/handlers"
	"server/internal/middleware"
)

// NewRouter mounts the orchestrator's two external surfaces: the vendor
// callback sink and the client status/registration API.
func NewRouter(app *handlers.App, logger zerolog.Logger) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/generations", func(r chi.Router) {
		r.Post("/", app.RegisterGeneration)
		r.Post("/callback", app.VendorCallback)
		r.Get("/{task_id}", app.GenerationStatus)
	})

	return r
}
