package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"server/internal/domain"
	"server/internal/ledger"
	"server/internal/registry"
)

// App aggregates the dependencies shared by the HTTP handlers.
type App struct {
	Registry *registry.Registry
	Ledger   ledger.Ledger
	Catalog  domain.ArtifactCatalog // optional
	Logger   zerolog.Logger

	validate *validator.Validate
}

// NewApp creates the handler container.
func NewApp(reg *registry.Registry, led ledger.Ledger, catalog domain.ArtifactCatalog, logger zerolog.Logger) *App {
	return &App{
		Registry: reg,
		Ledger:   led,
		Catalog:  catalog,
		Logger:   logger,
		validate: validator.New(),
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.Logger.Error().Err(err).Msg("http: encode response failed")
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, errorResponse{Error: code, Message: message})
}
