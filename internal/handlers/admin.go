package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"marketlens/backend-go/internal/models"
)

// authorized checks the static flush credential, accepted either as a
// bearer token or a token query parameter. An unset credential denies
// everything.
func (a *API) authorized(r *http.Request) bool {
	if a.cfg.FlushToken == "" {
		return false
	}
	token := r.URL.Query().Get("token")
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		token = strings.TrimPrefix(auth, "Bearer ")
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(a.cfg.FlushToken)) == 1
}

// CacheKeys lists (GET) or purges (DELETE) cache entries matching a glob
// pattern.
func (a *API) CacheKeys(w http.ResponseWriter, r *http.Request) {
	if !a.authorized(r) {
		writeDetail(w, http.StatusUnauthorized, "invalid API token")
		return
	}
	pattern := r.URL.Query().Get("pattern")
	if pattern == "" {
		writeDetail(w, http.StatusBadRequest, `invalid parameter "pattern": must not be empty`)
		return
	}

	switch r.Method {
	case http.MethodGet:
		keys, err := a.store.Keys(r.Context(), pattern)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "error listing cache keys: "+err.Error())
			return
		}
		payload, err := models.NewTabularPayload([]map[string]any{{
			"pattern": pattern,
			"keys":    keys,
			"count":   len(keys),
		}})
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "error listing cache keys")
			return
		}
		env, err := models.Build(models.KindTabular, payload, "cache keys listed", nil, http.StatusOK)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "error listing cache keys")
			return
		}
		writeJSON(w, http.StatusOK, env)
	case http.MethodDelete:
		count, err := a.store.DeleteMatching(r.Context(), pattern)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "error deleting cache keys: "+err.Error())
			return
		}
		payload, err := models.NewTabularPayload([]map[string]any{{
			"pattern":         pattern,
			"records_deleted": count,
		}})
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "error deleting cache keys")
			return
		}
		env, err := models.Build(models.KindTabular, payload, "cache keys deleted successfully", nil, http.StatusOK)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "error deleting cache keys")
			return
		}
		writeJSON(w, http.StatusOK, env)
	default:
		writeDetail(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// CacheFlush removes every key in the store.
func (a *API) CacheFlush(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeDetail(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !a.authorized(r) {
		writeDetail(w, http.StatusUnauthorized, "invalid API token")
		return
	}
	if err := a.store.FlushAll(r.Context()); err != nil {
		writeDetail(w, http.StatusInternalServerError, "error flushing cache: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, models.NewEmptyEnvelope("cache flushed successfully", http.StatusOK))
}
