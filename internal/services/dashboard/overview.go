// Package dashboard holds the view-models behind every dashboard screen.
// They are plain state plus pure builders so the web server, the terminal
// dashboard and one-shot CLI commands render the same numbers.
package dashboard

import (
	"github.com/bobmcallan/folio/internal/models"
)

// SummaryCards are the server-computed portfolio totals.
type SummaryCards struct {
	TotalValue         float64
	TotalInvestment    float64
	TotalGainLoss      float64
	GainLossPercentage float64
}

// OverviewRow is one investment with its derived figures.
type OverviewRow struct {
	Investment   models.Investment
	CurrentPrice float64 // effective price
	Live         bool    // CurrentPrice came from a quote
	Value        float64
	GainLoss     float64
	PctChange    float64
}

// Overview is the portfolio table plus summary cards.
type Overview struct {
	Summary SummaryCards
	Rows    []OverviewRow
}

// Empty reports whether there are no investments to list.
func (o Overview) Empty() bool { return len(o.Rows) == 0 }

// BuildOverview derives the table from the portfolio. Row figures use the
// effective price and are recomputed on every call; the summary is taken
// from the server totals as-is.
func BuildOverview(p *models.Portfolio, quotes models.QuoteMap) Overview {
	if p == nil {
		return Overview{}
	}

	o := Overview{
		Summary: SummaryCards{
			TotalValue:         p.TotalValue,
			TotalInvestment:    p.TotalInvestment,
			TotalGainLoss:      p.TotalGainLoss,
			GainLossPercentage: p.GainLossPercentage,
		},
		Rows: make([]OverviewRow, 0, len(p.Investments)),
	}

	for _, inv := range p.Investments {
		_, live := quotes.Get(inv.Symbol)
		o.Rows = append(o.Rows, OverviewRow{
			Investment:   inv,
			CurrentPrice: inv.EffectivePrice(quotes),
			Live:         live,
			Value:        inv.Value(quotes),
			GainLoss:     inv.GainLoss(quotes),
			PctChange:    inv.PctChange(quotes),
		})
	}
	return o
}
