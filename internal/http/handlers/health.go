package handlers

import (
	"net/http"
)

// Health reports liveness. The registry is rehydrated before the router is
// mounted, so a served response already implies readiness.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok", "service": "generation-orchestrator"})
}
