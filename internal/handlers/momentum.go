package handlers

import (
	"context"
	"net/http"

	"marketlens/backend-go/internal/models"
	"marketlens/backend-go/internal/services"
)

var momentumMethods = map[string]bool{"log": true, "simple": true, "shift": true}

func (a *API) Momentum(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	symbols, err := parseSymbols(q.Get("symbols"), "AAPL", a.cfg.MaxSymbols)
	if err != nil {
		writeEndpointError(w, "momentum", q.Encode(), err)
		return
	}
	method, err := parseEnumParam(q.Get("method"), "method", "log", momentumMethods)
	if err != nil {
		writeEndpointError(w, "momentum", q.Encode(), err)
		return
	}
	chart, err := parseBoolParam(q.Get("chart"), "chart", false)
	if err != nil {
		writeEndpointError(w, "momentum", q.Encode(), err)
		return
	}
	membership, err := parseMembership(q.Get("membership"))
	if err != nil {
		writeEndpointError(w, "momentum", q.Encode(), err)
		return
	}

	params := []services.Param{
		services.ParamList("symbols", symbols),
		services.ParamString("method", method),
		services.ParamString("window", paramOr(q.Get("window"), "1d")),
		services.ParamString("start_date", paramOr(q.Get("start_date"), "2000-01-01")),
		services.ParamString("end_date", paramOr(q.Get("end_date"), nowDateNY())),
		services.ParamBool("chart", chart),
		services.ParamString("template", paramOr(q.Get("template"), "dark")),
		services.ParamString("membership", membership),
	}
	key := services.DeriveKey("momentum", "v1", params)

	ctx, cancel := timeboxed(r, a.cfg.RequestTimeout)
	defer cancel()

	env, _, err := services.Cached(ctx, a.store, key, a.cfg.CacheTTLMomentum, func(ctx context.Context) (models.Envelope, error) {
		var rows []models.MomentumRow
		return a.computeEnvelope(ctx, "/momentum", queryFromParams(params), chart, &rows, "momentum data retrieved successfully")
	})
	if err != nil {
		writeEndpointError(w, "momentum", q.Encode(), err)
		return
	}
	writeJSON(w, env.StatusCode, env)
}
