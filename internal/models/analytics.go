package models

import "time"

// AssetClassValue is one slice of the asset distribution.
type AssetClassValue struct {
	Type  AssetType `json:"type"`
	Value float64   `json:"value"`
}

// Distribution is the per-asset-class value breakdown in first-seen order.
type Distribution []AssetClassValue

// Total sums all slices.
func (d Distribution) Total() float64 {
	total := 0.0
	for _, s := range d {
		total += s.Value
	}
	return total
}

// ByType returns the distribution as a map.
func (d Distribution) ByType() map[AssetType]float64 {
	m := make(map[AssetType]float64, len(d))
	for _, s := range d {
		m[s.Type] += s.Value
	}
	return m
}

// Share returns the slice's percentage of the total.
func (d Distribution) Share(i int) float64 {
	total := d.Total()
	if total == 0 || i < 0 || i >= len(d) {
		return 0
	}
	return d[i].Value / total * 100
}

// PerformancePoint is one portfolio value on a calendar date.
type PerformancePoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Series labels shown on charts.
const (
	SeriesLabelLive   = "Portfolio Value"
	SeriesLabelStored = "Portfolio Value (Stored)"
)

// PerformanceSeries is portfolio value over a timeframe. Estimated marks a
// synthetic series built from stored values.
type PerformanceSeries struct {
	Timeframe Timeframe          `json:"timeframe"`
	Label     string             `json:"label"`
	Points    []PerformancePoint `json:"points"`
	Estimated bool               `json:"estimated"`
}

// Empty reports whether there is nothing to plot.
func (s *PerformanceSeries) Empty() bool {
	return s == nil || len(s.Points) == 0
}

// Analytics is the output of one aggregation pass.
type Analytics struct {
	Timeframe    Timeframe         `json:"timeframe"`
	Distribution Distribution      `json:"distribution"`
	Performance  PerformanceSeries `json:"performance"`
	Quotes       QuoteMap          `json:"-"`
	UsingStored  bool              `json:"using_stored"`
	Warnings     []string          `json:"warnings,omitempty"`
	Warning      string            `json:"warning,omitempty"` // headline shown to the user
	GeneratedAt  time.Time         `json:"generated_at"`
}
