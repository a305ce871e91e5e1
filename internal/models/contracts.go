package models

import "encoding/json"

// ComputeResult is the provider's wire shape for every compute call:
// tabular rows under data, a plot document under chart, plus warnings.
type ComputeResult struct {
	Data     json.RawMessage `json:"data,omitempty"`
	Chart    json.RawMessage `json:"chart,omitempty"`
	Warnings []Warning       `json:"warnings,omitempty"`
}

// ChartDocument is the provider's plot JSON (plotly-style figure): traces
// under data plus a layout mapping.
type ChartDocument struct {
	Data   []map[string]any `json:"data"`
	Layout map[string]any   `json:"layout"`
}

type MomentumRow struct {
	Date           string   `json:"date"`
	Symbol         string   `json:"symbol"`
	Close          *float64 `json:"close,omitempty"`
	Shifted        *float64 `json:"shifted,omitempty"`
	Momentum       *float64 `json:"momentum,omitempty"`
	MomentumSignal *int     `json:"momentum_signal,omitempty"`
}

type ChannelRow struct {
	Date        string  `json:"date"`
	Symbol      string  `json:"symbol"`
	BottomPrice float64 `json:"bottom_price"`
	RecentPrice float64 `json:"recent_price"`
	TopPrice    float64 `json:"top_price"`
}

type CompassRow struct {
	DateMonthStart string   `json:"date_month_start"`
	Country        string   `json:"country"`
	CPI            float64  `json:"cpi"`
	CPI3mDelta     float64  `json:"cpi_3m_delta"`
	CPIZScore      *float64 `json:"cpi_zscore,omitempty"`
	CLI            float64  `json:"cli"`
	CLI3mDelta     float64  `json:"cli_3m_delta"`
	CLIZScore      *float64 `json:"cli_zscore,omitempty"`
}

type UserTableRow struct {
	Symbol      string  `json:"symbol"`
	LastPrice   float64 `json:"last_price"`
	BuyPrice    float64 `json:"buy_price"`
	SellPrice   float64 `json:"sell_price"`
	UpDownPct   float64 `json:"ud_pct"`
	UpDownRatio float64 `json:"ud_ratio"`
	Sector      string  `json:"sector"`
	AssetClass  string  `json:"asset_class"`
}

type LatestPriceRow struct {
	Symbol    string  `json:"symbol"`
	LastPrice float64 `json:"last_price"`
}

type LastCloseRow struct {
	Symbol    string  `json:"symbol"`
	PrevClose float64 `json:"prev_close"`
}
