package handlers

import (
	"context"
	"net/http"

	"marketlens/backend-go/internal/models"
	"marketlens/backend-go/internal/services"
)

func (a *API) LatestPrice(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	symbols, err := parseSymbols(q.Get("symbols"), "AAPL,NVDA,TSLA", a.cfg.MaxSymbols)
	if err != nil {
		writeEndpointError(w, "latest-price", q.Encode(), err)
		return
	}

	params := []services.Param{
		services.ParamList("symbols", symbols),
		services.ParamString("provider", paramOr(q.Get("provider"), "yfinance")),
	}
	key := services.DeriveKey("latest_price", "v1", params)

	ctx, cancel := timeboxed(r, a.cfg.RequestTimeout)
	defer cancel()

	env, _, err := services.Cached(ctx, a.store, key, a.cfg.CacheTTLPrice, func(ctx context.Context) (models.Envelope, error) {
		var rows []models.LatestPriceRow
		return a.computeEnvelope(ctx, "/latest-price", queryFromParams(params), false, &rows, "latest price data retrieved successfully")
	})
	if err != nil {
		writeEndpointError(w, "latest-price", q.Encode(), err)
		return
	}
	writeJSON(w, env.StatusCode, env)
}

func (a *API) LastClose(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	symbols, err := parseSymbols(q.Get("symbols"), "AAPL,NVDA,TSLA", a.cfg.MaxSymbols)
	if err != nil {
		writeEndpointError(w, "last-close", q.Encode(), err)
		return
	}

	params := []services.Param{
		services.ParamList("symbols", symbols),
		services.ParamString("provider", paramOr(q.Get("provider"), "yfinance")),
	}
	key := services.DeriveKey("last_close", "v1", params)

	ctx, cancel := timeboxed(r, a.cfg.RequestTimeout)
	defer cancel()

	env, _, err := services.Cached(ctx, a.store, key, a.cfg.CacheTTLClose, func(ctx context.Context) (models.Envelope, error) {
		var rows []models.LastCloseRow
		return a.computeEnvelope(ctx, "/last-close", queryFromParams(params), false, &rows, "last close data retrieved successfully")
	})
	if err != nil {
		writeEndpointError(w, "last-close", q.Encode(), err)
		return
	}
	writeJSON(w, env.StatusCode, env)
}
