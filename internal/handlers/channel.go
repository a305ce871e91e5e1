package handlers

import (
	"context"
	"net/http"

	"marketlens/backend-go/internal/models"
	"marketlens/backend-go/internal/services"
)

var rvMethods = map[string]bool{
	"std": true, "parkinson": true,
	"garman_klass": true, "gk": true,
	"hodges_tompkins": true, "ht": true,
	"rogers_satchell": true, "rs": true,
	"yang_zhang": true, "yz": true,
	"squared_returns": true, "sq": true,
}

var rsMethods = map[string]bool{"RS": true, "RS_min": true, "RS_max": true, "RS_mean": true}

func (a *API) Channel(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	symbols, err := parseSymbols(q.Get("symbols"), "AAPL,NVDA,TSLA", a.cfg.MaxSymbols)
	if err != nil {
		writeEndpointError(w, "channel", q.Encode(), err)
		return
	}
	rvMethod, err := parseEnumParam(q.Get("rv_method"), "rv_method", "std", rvMethods)
	if err != nil {
		writeEndpointError(w, "channel", q.Encode(), err)
		return
	}
	rsMethod, err := parseEnumParam(q.Get("rs_method"), "rs_method", "RS", rsMethods)
	if err != nil {
		writeEndpointError(w, "channel", q.Encode(), err)
		return
	}
	membership, err := parseMembership(q.Get("membership"))
	if err != nil {
		writeEndpointError(w, "channel", q.Encode(), err)
		return
	}

	bools := map[string]bool{}
	for name, def := range map[string]bool{
		"rv_adjustment":   true,
		"rv_grouped_mean": false,
		"live_price":      false,
		"historical":      false,
		"chart":           false,
	} {
		v, err := parseBoolParam(q.Get(name), name, def)
		if err != nil {
			writeEndpointError(w, "channel", q.Encode(), err)
			return
		}
		bools[name] = v
	}
	chart := bools["chart"]

	params := []services.Param{
		services.ParamList("symbols", symbols),
		services.ParamString("interval", paramOr(q.Get("interval"), "1d")),
		services.ParamString("start_date", paramOr(q.Get("start_date"), "2000-01-01")),
		services.ParamString("end_date", paramOr(q.Get("end_date"), nowDateNY())),
		services.ParamString("provider", paramOr(q.Get("provider"), "yfinance")),
		services.ParamString("window", paramOr(q.Get("window"), "1mo")),
		services.ParamString("rv_method", rvMethod),
		services.ParamString("rs_method", rsMethod),
		services.ParamBool("rv_adjustment", bools["rv_adjustment"]),
		services.ParamBool("rv_grouped_mean", bools["rv_grouped_mean"]),
		services.ParamBool("live_price", bools["live_price"]),
		services.ParamBool("historical", bools["historical"]),
		services.ParamBool("chart", chart),
		services.ParamString("template", paramOr(q.Get("template"), "dark")),
		services.ParamString("membership", membership),
	}
	key := services.DeriveKey("channel", "v1", params)

	ctx, cancel := timeboxed(r, a.cfg.RequestTimeout)
	defer cancel()

	env, _, err := services.Cached(ctx, a.store, key, a.cfg.CacheTTLChannel, func(ctx context.Context) (models.Envelope, error) {
		var rows []models.ChannelRow
		return a.computeEnvelope(ctx, "/channel", queryFromParams(params), chart, &rows, "channel data retrieved successfully")
	})
	if err != nil {
		writeEndpointError(w, "channel", q.Encode(), err)
		return
	}
	writeJSON(w, env.StatusCode, env)
}
