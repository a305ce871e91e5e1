package handlers

import (
	"context"
	"net/http"
	"os"
	"time"

	"marketlens/backend-go/internal/models"
)

func (a *API) Root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api/v1" && r.URL.Path != "/api/v1/" {
		writeDetail(w, http.StatusNotFound, "not found")
		return
	}
	env := models.NewEmptyEnvelope("Welcome to the marketlens API", http.StatusOK)
	writeJSON(w, http.StatusOK, env)
}

// Health reports process liveness plus provider reachability; the process
// is healthy even when the provider is down.
func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	providerOK := a.provider.Health(ctx) == nil
	payload, err := models.NewTabularPayload([]map[string]any{{
		"service":     "marketlens-backend",
		"version":     os.Getenv("SERVICE_VERSION"),
		"provider_ok": providerOK,
	}})
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "error in health: response shape mismatch")
		return
	}
	env, err := models.Build(models.KindTabular, payload, "API is healthy", nil, http.StatusOK)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "error in health: response shape mismatch")
		return
	}
	writeJSON(w, http.StatusOK, env)
}

// CacheHealth probes the backing store; unlike the read-through path, a
// store failure here is the whole point of the call and surfaces as a 500.
func (a *API) CacheHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := a.store.Ping(ctx); err != nil {
		writeDetail(w, http.StatusInternalServerError, "cache store connection error: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, models.NewEmptyEnvelope("PONG", http.StatusOK))
}
