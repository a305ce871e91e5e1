package handlers

import (
	"context"
	"net/http"

	"marketlens/backend-go/internal/models"
	"marketlens/backend-go/internal/services"
)

func (a *API) UserTable(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	symbols, err := parseSymbols(q.Get("symbols"), "AAPL,NVDA,TSLA", a.cfg.MaxSymbols)
	if err != nil {
		writeEndpointError(w, "user-table", q.Encode(), err)
		return
	}
	membership, err := parseMembership(q.Get("membership"))
	if err != nil {
		writeEndpointError(w, "user-table", q.Encode(), err)
		return
	}

	params := []services.Param{
		services.ParamList("symbols", symbols),
		services.ParamString("membership", membership),
	}
	key := services.DeriveKey("user_table", "v1", params)

	ctx, cancel := timeboxed(r, a.cfg.RequestTimeout)
	defer cancel()

	env, _, err := services.Cached(ctx, a.store, key, a.cfg.CacheTTLTable, func(ctx context.Context) (models.Envelope, error) {
		var rows []models.UserTableRow
		return a.computeEnvelope(ctx, "/user-table", queryFromParams(params), false, &rows, "user table data retrieved successfully")
	})
	if err != nil {
		writeEndpointError(w, "user-table", q.Encode(), err)
		return
	}
	writeJSON(w, env.StatusCode, env)
}
