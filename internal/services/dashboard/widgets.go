package dashboard

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bobmcallan/folio/internal/models"
	"github.com/bobmcallan/folio/internal/services/watch"
)

// Widget identifiers.
const (
	WidgetAssetDistribution    = "asset-distribution"
	WidgetPortfolioPerformance = "portfolio-performance"
	WidgetMarketOverview       = "market-overview"
	WidgetTopPerformers        = "top-performers"
)

// TopPerformersLimit caps the top performers list.
const TopPerformersLimit = 5

// Widget is one configurable dashboard panel.
type Widget struct {
	ID      string
	Kind    string // chart, market, list
	Title   string
	Size    string // large, medium, small
	Enabled bool
}

// DefaultWidgets returns the four panels, all enabled.
func DefaultWidgets() []Widget {
	return []Widget{
		{ID: WidgetAssetDistribution, Kind: "chart", Title: "Asset Distribution", Size: "large", Enabled: true},
		{ID: WidgetPortfolioPerformance, Kind: "chart", Title: "Portfolio Performance", Size: "large", Enabled: true},
		{ID: WidgetMarketOverview, Kind: "market", Title: "Market Overview", Size: "medium", Enabled: true},
		{ID: WidgetTopPerformers, Kind: "list", Title: "Top Performers", Size: "small", Enabled: true},
	}
}

// MarketRow is a market overview entry.
type MarketRow struct {
	Symbol        string
	Name          string
	Price         float64
	Change        float64
	ChangePercent float64
}

// Performer is a top performers entry.
type Performer struct {
	Symbol        string
	Name          string
	ChangePercent float64
}

// WidgetsView holds widget visibility and the polled quotes.
type WidgetsView struct {
	mu        sync.RWMutex
	widgets   []Widget
	portfolio *models.Portfolio
	quotes    models.QuoteMap
	lastErr   error
	updatedAt time.Time
	loaded    bool
}

// NewWidgetsView creates the view with default widgets.
func NewWidgetsView() *WidgetsView {
	return &WidgetsView{widgets: DefaultWidgets()}
}

// SetPortfolio replaces the portfolio the widgets describe.
func (v *WidgetsView) SetPortfolio(p *models.Portfolio) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.portfolio = p
}

// Symbols returns the portfolio's symbols for the quote poller.
func (v *WidgetsView) Symbols() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.portfolio.Symbols()
}

// ApplyQuotes records a poll result. A failed poll keeps the previous quotes.
func (v *WidgetsView) ApplyQuotes(u watch.QuoteUpdate) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.loaded = true
	v.lastErr = u.Err
	if u.Err != nil {
		return
	}
	v.quotes = u.Quotes
	v.updatedAt = u.FetchedAt
}

// Toggle flips a widget's visibility. Unknown ids return false.
func (v *WidgetsView) Toggle(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i := range v.widgets {
		if v.widgets[i].ID == id {
			v.widgets[i].Enabled = !v.widgets[i].Enabled
			return true
		}
	}
	return false
}

// Widgets returns all widgets in display order.
func (v *WidgetsView) Widgets() []Widget {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]Widget, len(v.widgets))
	copy(out, v.widgets)
	return out
}

// Enabled reports whether the widget is visible.
func (v *WidgetsView) Enabled(id string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	for _, w := range v.widgets {
		if w.ID == id {
			return w.Enabled
		}
	}
	return false
}

// Loading is true until the first poll lands.
func (v *WidgetsView) Loading() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return !v.loaded
}

// LastPoll returns the time of the last good poll and the last poll error.
func (v *WidgetsView) LastPoll() (time.Time, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.updatedAt, v.lastErr
}

// Quotes returns the latest quotes.
func (v *WidgetsView) Quotes() models.QuoteMap {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.quotes
}

// MarketOverview lists each investment that has a quote, in portfolio order.
func (v *WidgetsView) MarketOverview() []MarketRow {
	v.mu.RLock()
	defer v.mu.RUnlock()

	var rows []MarketRow
	seen := make(map[string]bool)
	for _, inv := range v.investmentsLocked() {
		q, ok := v.quotes.Get(inv.Symbol)
		key := strings.ToUpper(inv.Symbol)
		if !ok || seen[key] {
			continue
		}
		seen[key] = true
		rows = append(rows, MarketRow{
			Symbol:        inv.Symbol,
			Name:          inv.Name,
			Price:         q.CurrentPrice,
			Change:        q.Change,
			ChangePercent: q.ChangePercent,
		})
	}
	return rows
}

// TopPerformers returns up to five quoted investments by daily change
// percent, highest first. Investments without a quote are not listed.
func (v *WidgetsView) TopPerformers() []Performer {
	v.mu.RLock()
	defer v.mu.RUnlock()

	var out []Performer
	seen := make(map[string]bool)
	for _, inv := range v.investmentsLocked() {
		q, ok := v.quotes.Get(inv.Symbol)
		key := strings.ToUpper(inv.Symbol)
		if !ok || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, Performer{Symbol: inv.Symbol, Name: inv.Name, ChangePercent: q.ChangePercent})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ChangePercent > out[j].ChangePercent
	})
	if len(out) > TopPerformersLimit {
		out = out[:TopPerformersLimit]
	}
	return out
}

func (v *WidgetsView) investmentsLocked() []models.Investment {
	if v.portfolio == nil {
		return nil
	}
	return v.portfolio.Investments
}
