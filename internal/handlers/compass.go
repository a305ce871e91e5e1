package handlers

import (
	"context"
	"net/http"

	"marketlens/backend-go/internal/models"
	"marketlens/backend-go/internal/services"
)

var compassCountries = map[string]bool{
	"g20": true, "g7": true, "asia5": true, "north_america": true,
	"europe4": true, "australia": true, "brazil": true, "canada": true,
	"china": true, "france": true, "germany": true, "india": true,
	"indonesia": true, "italy": true, "japan": true, "mexico": true,
	"south_africa": true, "south_korea": true, "spain": true, "turkey": true,
	"united_kingdom": true, "united_states": true, "all": true,
}

func (a *API) Compass(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	country, err := parseEnumParam(q.Get("country"), "country", "united_states", compassCountries)
	if err != nil {
		writeEndpointError(w, "compass", q.Encode(), err)
		return
	}
	chart, err := parseBoolParam(q.Get("chart"), "chart", false)
	if err != nil {
		writeEndpointError(w, "compass", q.Encode(), err)
		return
	}
	recommendations, err := parseBoolParam(q.Get("recommendations"), "recommendations", false)
	if err != nil {
		writeEndpointError(w, "compass", q.Encode(), err)
		return
	}
	membership, err := parseMembership(q.Get("membership"))
	if err != nil {
		writeEndpointError(w, "compass", q.Encode(), err)
		return
	}

	params := []services.Param{
		services.ParamString("country", country),
		services.ParamString("start_date", paramOr(q.Get("start_date"), "2000-01-01")),
		services.ParamString("end_date", paramOr(q.Get("end_date"), nowDateNY())),
		services.ParamString("z_score", paramOr(q.Get("z_score"), "1 year")),
		services.ParamBool("recommendations", recommendations),
		services.ParamBool("chart", chart),
		services.ParamString("template", paramOr(q.Get("template"), "dark")),
		services.ParamString("membership", membership),
	}
	key := services.DeriveKey("compass", "v1", params)

	ctx, cancel := timeboxed(r, a.cfg.RequestTimeout)
	defer cancel()

	env, _, err := services.Cached(ctx, a.store, key, a.cfg.CacheTTLCompass, func(ctx context.Context) (models.Envelope, error) {
		var rows []models.CompassRow
		return a.computeEnvelope(ctx, "/compass", queryFromParams(params), chart, &rows, "compass data retrieved successfully")
	})
	if err != nil {
		writeEndpointError(w, "compass", q.Encode(), err)
		return
	}
	writeJSON(w, env.StatusCode, env)
}
