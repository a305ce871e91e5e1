package models

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// PayloadKind discriminates the two response payload shapes.
type PayloadKind string

const (
	KindTabular PayloadKind = "tabular"
	KindChart   PayloadKind = "chart"
)

type Warning struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// Record is one row of a tabular payload: field name to scalar or
// timestamp-like value.
type Record map[string]any

type TabularPayload struct {
	Records []Record `json:"records"`
}

// ChartPayload carries plot traces and layout as opaque mappings; the
// service never interprets them.
type ChartPayload struct {
	Traces []map[string]any `json:"traces"`
	Layout map[string]any   `json:"layout"`
}

type ShapeMismatchError struct {
	Kind PayloadKind
	Got  string
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("payload does not match kind %q: got %s", e.Kind, e.Got)
}

// Envelope is the uniform wrapper returned by every endpoint. The payload
// is a tagged union: at most one of tabular/chart is set, enforced by the
// constructors; an envelope with neither is legal (health endpoints).
type Envelope struct {
	StatusCode int
	Message    string
	Warnings   []Warning

	tabular *TabularPayload
	chart   *ChartPayload
}

func (e Envelope) Tabular() (*TabularPayload, bool) { return e.tabular, e.tabular != nil }
func (e Envelope) Chart() (*ChartPayload, bool)     { return e.chart, e.chart != nil }

func (e Envelope) HasPayload() bool { return e.tabular != nil || e.chart != nil }

// Build constructs an envelope after validating the payload against the
// declared kind. payload must be *TabularPayload for KindTabular and
// *ChartPayload for KindChart.
func Build(kind PayloadKind, payload any, message string, warnings []Warning, status int) (Envelope, error) {
	env := Envelope{
		StatusCode: status,
		Message:    message,
		Warnings:   warnings,
	}
	if env.Warnings == nil {
		env.Warnings = []Warning{}
	}
	switch kind {
	case KindTabular:
		p, ok := payload.(*TabularPayload)
		if !ok || p == nil {
			return Envelope{}, &ShapeMismatchError{Kind: kind, Got: typeName(payload)}
		}
		env.tabular = p
	case KindChart:
		p, ok := payload.(*ChartPayload)
		if !ok || p == nil {
			return Envelope{}, &ShapeMismatchError{Kind: kind, Got: typeName(payload)}
		}
		env.chart = p
	default:
		return Envelope{}, &ShapeMismatchError{Kind: kind, Got: typeName(payload)}
	}
	return env, nil
}

// NewEmptyEnvelope builds an envelope with no payload (status + message
// only).
func NewEmptyEnvelope(message string, status int) Envelope {
	return Envelope{StatusCode: status, Message: message, Warnings: []Warning{}}
}

// NewTabularPayload normalizes a slice of typed rows into records. rows
// must be a slice or array; each element marshals to a JSON object.
func NewTabularPayload(rows any) (*TabularPayload, error) {
	rv := reflect.ValueOf(rows)
	if rows == nil || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, &ShapeMismatchError{Kind: KindTabular, Got: typeName(rows)}
	}
	b, err := json.Marshal(rows)
	if err != nil {
		return nil, err
	}
	records := []Record{}
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, &ShapeMismatchError{Kind: KindTabular, Got: typeName(rows)}
	}
	return &TabularPayload{Records: records}, nil
}

func NewChartPayload(traces []map[string]any, layout map[string]any) *ChartPayload {
	if traces == nil {
		traces = []map[string]any{}
	}
	if layout == nil {
		layout = map[string]any{}
	}
	return &ChartPayload{Traces: traces, Layout: layout}
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}

type envelopeJSON struct {
	Data       json.RawMessage `json:"data,omitempty"`
	Message    string          `json:"message,omitempty"`
	Warnings   []Warning       `json:"warnings"`
	StatusCode int             `json:"status_code"`
}

func (e Envelope) MarshalJSON() ([]byte, error) {
	out := envelopeJSON{
		Message:    e.Message,
		Warnings:   e.Warnings,
		StatusCode: e.StatusCode,
	}
	if out.Warnings == nil {
		out.Warnings = []Warning{}
	}
	switch {
	case e.tabular != nil:
		b, err := json.Marshal(e.tabular)
		if err != nil {
			return nil, err
		}
		out.Data = b
	case e.chart != nil:
		b, err := json.Marshal(e.chart)
		if err != nil {
			return nil, err
		}
		out.Data = b
	}
	return json.Marshal(out)
}

func (e *Envelope) UnmarshalJSON(data []byte) error {
	var raw envelopeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.StatusCode = raw.StatusCode
	e.Message = raw.Message
	e.Warnings = raw.Warnings
	if e.Warnings == nil {
		e.Warnings = []Warning{}
	}
	e.tabular = nil
	e.chart = nil
	if len(raw.Data) == 0 || string(raw.Data) == "null" {
		return nil
	}

	// The discriminant is the field set: charts carry traces+layout,
	// tables carry records.
	var probe struct {
		Records *json.RawMessage `json:"records"`
		Traces  *json.RawMessage `json:"traces"`
		Layout  *json.RawMessage `json:"layout"`
	}
	if err := json.Unmarshal(raw.Data, &probe); err != nil {
		return err
	}
	switch {
	case probe.Traces != nil || probe.Layout != nil:
		var p ChartPayload
		if err := json.Unmarshal(raw.Data, &p); err != nil {
			return err
		}
		e.chart = &p
	case probe.Records != nil:
		var p TabularPayload
		if err := json.Unmarshal(raw.Data, &p); err != nil {
			return err
		}
		e.tabular = &p
	default:
		return fmt.Errorf("unrecognized payload shape in envelope data")
	}
	return nil
}
