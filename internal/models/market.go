package models

import (
	"strings"
)

// Quote is the latest market snapshot for a symbol. Never persisted.
type Quote struct {
	Symbol        string  `json:"symbol"`
	CurrentPrice  float64 `json:"currentPrice"`
	Open          float64 `json:"open"`
	DayHigh       float64 `json:"dayHigh"`
	DayLow        float64 `json:"dayLow"`
	Volume        int64   `json:"volume"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
}

// QuoteMap indexes quotes by upper-cased symbol.
type QuoteMap map[string]Quote

// NewQuoteMap builds a QuoteMap; later duplicates win.
func NewQuoteMap(quotes []Quote) QuoteMap {
	m := make(QuoteMap, len(quotes))
	for _, q := range quotes {
		if q.Symbol == "" {
			continue
		}
		m[strings.ToUpper(q.Symbol)] = q
	}
	return m
}

// Get looks up a quote by symbol. Safe on a nil map.
func (m QuoteMap) Get(symbol string) (Quote, bool) {
	if m == nil || symbol == "" {
		return Quote{}, false
	}
	q, ok := m[strings.ToUpper(symbol)]
	return q, ok
}

// HistoricalPoint is one close in a symbol's price history.
type HistoricalPoint struct {
	Date  FlexTime `json:"date"`
	Close float64  `json:"close"`
}

// Timeframe is the window selected for performance charts.
type Timeframe string

const (
	Timeframe1W Timeframe = "1W"
	Timeframe1M Timeframe = "1M"
	Timeframe1Y Timeframe = "1Y"
)

// Timeframes lists the selector options in display order.
var Timeframes = []Timeframe{Timeframe1W, Timeframe1M, Timeframe1Y}

// ParseTimeframe accepts "1W", "1m", ... Unknown input yields false.
func ParseTimeframe(s string) (Timeframe, bool) {
	switch Timeframe(strings.ToUpper(strings.TrimSpace(s))) {
	case Timeframe1W:
		return Timeframe1W, true
	case Timeframe1M:
		return Timeframe1M, true
	case Timeframe1Y:
		return Timeframe1Y, true
	}
	return "", false
}

// Days is the window length; unknown timeframes use 30.
func (t Timeframe) Days() int {
	switch t {
	case Timeframe1W:
		return 7
	case Timeframe1M:
		return 30
	case Timeframe1Y:
		return 365
	default:
		return 30
	}
}

// Period is the backend's historical period parameter.
func (t Timeframe) Period() string {
	switch t {
	case Timeframe1W:
		return "5d"
	case Timeframe1Y:
		return "1y"
	default:
		return "1mo"
	}
}
