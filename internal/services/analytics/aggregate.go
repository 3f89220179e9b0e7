package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bobmcallan/folio/internal/models"
)

// Distribution sums quantity × effective price per asset class over valid
// investments. Invalid rows are skipped and described in the returned
// warnings. Classes appear in first-seen order.
func Distribution(investments []models.Investment, quotes models.QuoteMap) (models.Distribution, []string) {
	var warnings []string
	index := make(map[models.AssetType]int)
	dist := models.Distribution{}

	for _, inv := range investments {
		if !inv.Valid() {
			warnings = append(warnings, invalidReason(inv))
			continue
		}
		i, ok := index[inv.Type]
		if !ok {
			i = len(dist)
			index[inv.Type] = i
			dist = append(dist, models.AssetClassValue{Type: inv.Type})
		}
		dist[i].Value += inv.Value(quotes)
	}
	return dist, warnings
}

func invalidReason(inv models.Investment) string {
	var missing []string
	if inv.Type == "" {
		missing = append(missing, "type")
	}
	if inv.Quantity <= 0 {
		missing = append(missing, "quantity")
	}
	if inv.CurrentPrice <= 0 {
		missing = append(missing, "currentPrice")
	}
	label := inv.Symbol
	if label == "" {
		label = inv.ID
	}
	if label == "" {
		label = "(unnamed)"
	}
	return fmt.Sprintf("skipped investment %s: missing %s", label, strings.Join(missing, ", "))
}

// TotalValue is the sum of quantity × effective price over valid investments.
func TotalValue(investments []models.Investment, quotes models.QuoteMap) float64 {
	total := 0.0
	for _, inv := range investments {
		if inv.Valid() {
			total += inv.Value(quotes)
		}
	}
	return total
}

// SymbolQuantities sums the quantity held per upper-cased symbol over valid
// investments.
func SymbolQuantities(investments []models.Investment) map[string]float64 {
	q := make(map[string]float64)
	for _, inv := range investments {
		sym := strings.ToUpper(strings.TrimSpace(inv.Symbol))
		if sym == "" || !inv.Valid() {
			continue
		}
		q[sym] += inv.Quantity
	}
	return q
}

// MergeHistory combines per-symbol close histories into a portfolio value
// series: for each UTC calendar day, the sum of close × quantity held.
// Points with no date or a non-positive close are ignored, as are symbols
// with no quantity. The result is sorted by date.
func MergeHistory(histories map[string][]models.HistoricalPoint, quantities map[string]float64) []models.PerformancePoint {
	byDay := make(map[time.Time]float64)
	for symbol, points := range histories {
		qty := quantities[strings.ToUpper(symbol)]
		if qty <= 0 {
			continue
		}
		for _, p := range points {
			if p.Date.IsZero() || p.Close <= 0 {
				continue
			}
			byDay[p.Date.Day()] += p.Close * qty
		}
	}

	series := make([]models.PerformancePoint, 0, len(byDay))
	for day, value := range byDay {
		series = append(series, models.PerformancePoint{Date: day, Value: value})
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Date.Before(series[j].Date)
	})
	return series
}

// SyntheticSeries builds the stored-values fallback: days+1 daily points
// ending today, rising linearly from 90% of total to total.
func SyntheticSeries(total float64, tf models.Timeframe, now time.Time) models.PerformanceSeries {
	days := tf.Days()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	start := total * 0.9
	step := (total - start) / float64(days)

	points := make([]models.PerformancePoint, 0, days+1)
	for i := 0; i <= days; i++ {
		value := start + step*float64(i)
		if i == days {
			value = total
		}
		points = append(points, models.PerformancePoint{
			Date:  today.AddDate(0, 0, i-days),
			Value: value,
		})
	}

	return models.PerformanceSeries{
		Timeframe: tf,
		Label:     models.SeriesLabelStored,
		Points:    points,
		Estimated: true,
	}
}
