package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"marketlens/backend-go/internal/config"
	"marketlens/backend-go/internal/services"
)

type API struct {
	cfg      config.Config
	store    services.Store
	provider *services.ProviderClient
}

func New(cfg config.Config, store services.Store, provider *services.ProviderClient) *API {
	return &API{
		cfg:      cfg,
		store:    store,
		provider: provider,
	}
}

// ValidationError names the query parameter a request failed on.
type ValidationError struct {
	Param  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid parameter %q: %s", e.Param, e.Reason)
}

var membershipTiers = map[string]bool{
	"anonymous": true,
	"tier1":     true,
	"tier2":     true,
	"tier3":     true,
	"tier4":     true,
	"admin":     true,
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDetail emits the flat error body shared by every failure path.
func writeDetail(w http.ResponseWriter, code int, detail string) {
	writeJSON(w, code, map[string]any{"status_code": code, "detail": detail})
}

func parseSymbols(raw string, def string, max int) ([]string, error) {
	if raw == "" {
		raw = def
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, strings.ToUpper(p))
		if len(out) >= max {
			break
		}
	}
	if len(out) == 0 {
		return nil, &ValidationError{Param: "symbols", Reason: "must list at least one symbol"}
	}
	return out, nil
}

func parseBoolParam(raw string, name string, def bool) (bool, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def, &ValidationError{Param: name, Reason: "must be a boolean"}
	}
	return v, nil
}

func parseEnumParam(raw string, name string, def string, allowed map[string]bool) (string, error) {
	if raw == "" {
		return def, nil
	}
	if !allowed[raw] {
		return "", &ValidationError{Param: name, Reason: "unsupported value " + strconv.Quote(raw)}
	}
	return raw, nil
}

func parseMembership(raw string) (string, error) {
	return parseEnumParam(raw, "membership", "anonymous", membershipTiers)
}

func paramOr(raw, def string) string {
	if raw == "" {
		return def
	}
	return raw
}

// queryFromParams forwards the normalized cache-key parameters to the
// provider verbatim, so the key and the upstream request can never drift.
func queryFromParams(params []services.Param) url.Values {
	q := url.Values{}
	for _, p := range params {
		q.Set(p.Name, p.Value)
	}
	return q
}

func timeboxed(r *http.Request, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), d)
}

func nowDateNY() string {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.Now().UTC().Format("2006-01-02")
	}
	return time.Now().In(loc).Format("2006-01-02")
}
