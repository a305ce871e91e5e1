package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"reflect"

	"marketlens/backend-go/internal/models"
	"marketlens/backend-go/internal/services"
)

// computeEnvelope performs the provider call for one feature and shapes
// the result into an envelope. rows must be a pointer to the endpoint's
// typed row slice; it is only used on the tabular path. Chart responses
// may arrive as a single figure object or a one-element sequence; the
// first figure wins (one chart per request is the provider contract, even
// for multi-symbol requests).
func (a *API) computeEnvelope(ctx context.Context, path string, query url.Values, chart bool, rows any, message string) (models.Envelope, error) {
	res, err := a.provider.Compute(ctx, path, query)
	if err != nil {
		return models.Envelope{}, err
	}

	if chart {
		if len(res.Chart) == 0 {
			return models.Envelope{}, fmt.Errorf("provider returned no chart data")
		}
		var doc models.ChartDocument
		if err := services.DecodeFirst(res.Chart, &doc); err != nil {
			return models.Envelope{}, fmt.Errorf("provider chart: %v", err)
		}
		payload := models.NewChartPayload(doc.Data, doc.Layout)
		return models.Build(models.KindChart, payload, message, res.Warnings, http.StatusOK)
	}

	if err := json.Unmarshal(res.Data, rows); err != nil {
		return models.Envelope{}, fmt.Errorf("provider data: %v", err)
	}
	payload, err := models.NewTabularPayload(reflect.ValueOf(rows).Elem().Interface())
	if err != nil {
		return models.Envelope{}, err
	}
	return models.Build(models.KindTabular, payload, message, res.Warnings, http.StatusOK)
}
