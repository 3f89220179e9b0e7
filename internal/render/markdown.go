// Package render turns dashboard view-models into markdown, HTML, terminal
// text and PNG charts.
package render

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/models"
	"github.com/bobmcallan/folio/internal/services/dashboard"
)

// Empty states.
const (
	NoAssetData       = "No asset data available"
	NoPerformanceData = "No performance data available"
	NoInvestmentData  = "No investment data available"
	StoredDataBadge   = "Using stored data"
)

func formatMoney(v float64) string       { return common.FormatMoney(v) }
func formatSignedMoney(v float64) string { return common.FormatSignedMoney(v) }
func formatSignedPct(v float64) string   { return common.FormatSignedPct(v) }

// escapeCell keeps user text from breaking a markdown table.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}

// Landing formats the landing page
func Landing(l dashboard.Landing) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", l.Headline))
	sb.WriteString(l.Tagline + "\n\n")
	sb.WriteString("## Key Features\n\n")
	for _, f := range l.Features {
		sb.WriteString(fmt.Sprintf("- **%s**: %s\n", f.Title, f.Description))
	}
	sb.WriteString(fmt.Sprintf("\n---\n\n*%s: %s*\n", l.Brand, l.Footer))
	return sb.String()
}

// Overview formats the summary cards and investments table
func Overview(o dashboard.Overview) string {
	var sb strings.Builder

	sb.WriteString("## Portfolio Overview\n\n")
	sb.WriteString("| Total Value | Total Investment | Total Gain/Loss |\n")
	sb.WriteString("|-------------|------------------|-----------------|\n")
	sb.WriteString(fmt.Sprintf("| %s | %s | %s (%s) |\n\n",
		formatMoney(o.Summary.TotalValue),
		formatMoney(o.Summary.TotalInvestment),
		formatSignedMoney(o.Summary.TotalGainLoss),
		formatSignedPct(o.Summary.GainLossPercentage),
	))

	sb.WriteString("### Your Investments\n\n")
	if o.Empty() {
		sb.WriteString(NoInvestmentData + "\n")
		return sb.String()
	}

	sb.WriteString("| Symbol | Name | Type | Quantity | Purchase Price | Current Price | Value | Gain/Loss | % Change |\n")
	sb.WriteString("|--------|------|------|----------|----------------|---------------|-------|-----------|----------|\n")
	for _, r := range o.Rows {
		inv := r.Investment
		price := formatMoney(r.CurrentPrice)
		if r.Live {
			price += " *"
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			escapeCell(inv.Symbol), escapeCell(inv.Name), inv.Type,
			common.FormatQuantity(inv.Quantity),
			formatMoney(inv.PurchasePrice), price,
			formatMoney(r.Value), formatSignedMoney(r.GainLoss), formatSignedPct(r.PctChange),
		))
	}
	if hasLive(o.Rows) {
		sb.WriteString("\n\\* live quote\n")
	}
	return sb.String()
}

func hasLive(rows []dashboard.OverviewRow) bool {
	for _, r := range rows {
		if r.Live {
			return true
		}
	}
	return false
}

// Distribution formats the asset distribution table
func Distribution(dist models.Distribution) string {
	var sb strings.Builder
	sb.WriteString("### Asset Distribution\n\n")
	if len(dist) == 0 {
		sb.WriteString(NoAssetData + "\n")
		return sb.String()
	}
	sb.WriteString("| Type | Value | Share |\n")
	sb.WriteString("|------|-------|-------|\n")
	for i, s := range dist {
		sb.WriteString(fmt.Sprintf("| %s | %s | %.1f%% |\n", s.Type, formatMoney(s.Value), dist.Share(i)))
	}
	sb.WriteString(fmt.Sprintf("| **Total** | **%s** | |\n", formatMoney(dist.Total())))
	return sb.String()
}

// Performance formats the performance series summary and points
func Performance(series models.PerformanceSeries) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("### Portfolio Performance (%s)\n\n", series.Timeframe))
	if series.Empty() {
		sb.WriteString(NoPerformanceData + "\n")
		return sb.String()
	}

	first := series.Points[0]
	last := series.Points[len(series.Points)-1]
	change := last.Value - first.Value
	pct := 0.0
	if first.Value != 0 {
		pct = change / first.Value * 100
	}

	sb.WriteString(fmt.Sprintf("**%s:** %s → %s (%s, %s)\n\n",
		series.Label, formatMoney(first.Value), formatMoney(last.Value),
		formatSignedMoney(change), formatSignedPct(pct)))

	sb.WriteString("| Date | Value |\n")
	sb.WriteString("|------|-------|\n")
	for _, p := range series.Points {
		sb.WriteString(fmt.Sprintf("| %s | %s |\n", p.Date.Format("2006-01-02"), formatMoney(p.Value)))
	}
	return sb.String()
}

// Charts formats the charts view: timeframe, warning, distribution and performance
func Charts(st dashboard.ChartsState) string {
	var sb strings.Builder
	sb.WriteString("## Charts\n\n")

	tfs := make([]string, 0, len(models.Timeframes))
	for _, tf := range models.Timeframes {
		if tf == st.Timeframe {
			tfs = append(tfs, "**"+string(tf)+"**")
		} else {
			tfs = append(tfs, string(tf))
		}
	}
	sb.WriteString("Timeframe: " + strings.Join(tfs, " · ") + "\n\n")

	if st.Loading {
		sb.WriteString("_Loading..._\n\n")
	}
	if st.Warning != "" {
		sb.WriteString("> " + st.Warning + "\n\n")
	}
	if st.UsingStored() {
		sb.WriteString("`" + StoredDataBadge + "`\n\n")
	}

	if st.Analytics == nil {
		if !st.Loading {
			sb.WriteString(NoInvestmentData + "\n")
		}
		return sb.String()
	}

	sb.WriteString(Distribution(st.Analytics.Distribution))
	sb.WriteString("\n")
	sb.WriteString(Performance(st.Analytics.Performance))
	return sb.String()
}

// Widgets formats the enabled widgets
func Widgets(v *dashboard.WidgetsView, charts *dashboard.ChartsState) string {
	var sb strings.Builder
	sb.WriteString("## Widgets\n\n")

	if v.Loading() {
		sb.WriteString("Loading widget data...\n")
		return sb.String()
	}
	if updated, err := v.LastPoll(); err != nil {
		sb.WriteString("> Market data refresh failed; showing the last known quotes.\n\n")
	} else if !updated.IsZero() {
		sb.WriteString(fmt.Sprintf("_Updated %s_\n\n", updated.Format("15:04:05")))
	}

	for _, w := range v.Widgets() {
		if !w.Enabled {
			continue
		}
		switch w.ID {
		case dashboard.WidgetAssetDistribution:
			if charts != nil && charts.Analytics != nil {
				sb.WriteString(Distribution(charts.Analytics.Distribution))
			} else {
				sb.WriteString("### Asset Distribution\n\n" + NoAssetData + "\n")
			}
		case dashboard.WidgetPortfolioPerformance:
			if charts != nil && charts.Analytics != nil {
				sb.WriteString(Performance(charts.Analytics.Performance))
			} else {
				sb.WriteString("### Portfolio Performance\n\n" + NoPerformanceData + "\n")
			}
		case dashboard.WidgetMarketOverview:
			sb.WriteString(MarketOverview(v.MarketOverview()))
		case dashboard.WidgetTopPerformers:
			sb.WriteString(TopPerformers(v.TopPerformers()))
		}
		sb.WriteString("\n")
	}

	var hidden []string
	for _, w := range v.Widgets() {
		if !w.Enabled {
			hidden = append(hidden, w.Title)
		}
	}
	if len(hidden) > 0 {
		sb.WriteString("_Hidden: " + strings.Join(hidden, ", ") + "_\n")
	}
	return sb.String()
}

// MarketOverview formats the market overview rows
func MarketOverview(rows []dashboard.MarketRow) string {
	var sb strings.Builder
	sb.WriteString("### Market Overview\n\n")
	if len(rows) == 0 {
		sb.WriteString("No market data available\n")
		return sb.String()
	}
	sb.WriteString("| Symbol | Price | Change |\n")
	sb.WriteString("|--------|-------|--------|\n")
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s (%s) |\n",
			escapeCell(r.Symbol), formatMoney(r.Price), formatSignedMoney(r.Change), formatSignedPct(r.ChangePercent)))
	}
	return sb.String()
}

// TopPerformers formats the top performers list
func TopPerformers(list []dashboard.Performer) string {
	var sb strings.Builder
	sb.WriteString("### Top Performers\n\n")
	if len(list) == 0 {
		sb.WriteString("No market data available\n")
		return sb.String()
	}
	for i, p := range list {
		sb.WriteString(fmt.Sprintf("%d. **%s** %s\n", i+1, escapeCell(p.Symbol), formatSignedPct(p.ChangePercent)))
	}
	return sb.String()
}

// Asset formats the asset detail view
func Asset(st dashboard.AssetState) string {
	var sb strings.Builder

	title := st.Symbol
	if st.Investment != nil && st.Investment.Name != "" {
		title += " · " + st.Investment.Name
	}
	sb.WriteString(fmt.Sprintf("## %s\n\n", title))

	if st.Loading {
		sb.WriteString("Loading asset data...\n")
		return sb.String()
	}
	if st.Error != "" {
		sb.WriteString("> " + st.Error + "\n")
		return sb.String()
	}

	if q := st.Quote; q != nil {
		sb.WriteString(fmt.Sprintf("**%s** %s (%s)\n\n", formatMoney(q.CurrentPrice), formatSignedMoney(q.Change), formatSignedPct(q.ChangePercent)))
		sb.WriteString("| Open | High | Low | Volume |\n")
		sb.WriteString("|------|------|-----|--------|\n")
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n\n",
			formatMoney(q.Open), formatMoney(q.DayHigh), formatMoney(q.DayLow), common.FormatVolume(q.Volume)))
	}

	if inv := st.Investment; inv != nil {
		sb.WriteString("### Investment Details\n\n")
		sb.WriteString(fmt.Sprintf("- **Quantity:** %s\n", common.FormatQuantity(inv.Quantity)))
		sb.WriteString(fmt.Sprintf("- **Purchase Price:** %s\n", formatMoney(inv.PurchasePrice)))
		if !inv.PurchaseDate.IsZero() {
			sb.WriteString(fmt.Sprintf("- **Purchase Date:** %s\n", inv.PurchaseDate.Format("2006-01-02")))
		}
		sb.WriteString(fmt.Sprintf("- **Current Value:** %s\n", formatMoney(st.CurrentValue())))
		sb.WriteString(fmt.Sprintf("- **Gain/Loss:** %s\n", formatSignedMoney(st.GainLoss())))
		sb.WriteString(fmt.Sprintf("- **%% Change:** %s\n\n", formatSignedPct(st.PctChange())))
	}

	sb.WriteString(fmt.Sprintf("### Price History (%s)\n\n", st.Timeframe))
	if len(st.History) == 0 {
		sb.WriteString(NoPerformanceData + "\n")
		return sb.String()
	}
	first, last := st.History[0], st.History[len(st.History)-1]
	sb.WriteString(fmt.Sprintf("%s → %s over %d points (%s to %s)\n",
		formatMoney(first.Close), formatMoney(last.Close), len(st.History),
		first.Date.Format("2006-01-02"), last.Date.Format("2006-01-02")))
	return sb.String()
}

// FormErrors formats add-investment validation errors as a list
func FormErrors(errs dashboard.FieldErrors) string {
	if len(errs) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("**Please fix the following:**\n\n")
	for _, field := range []string{"symbol", "name", "type", "quantity", "purchasePrice", "purchaseDate", "currentPrice"} {
		if msg, ok := errs[field]; ok {
			sb.WriteString(fmt.Sprintf("- %s: %s\n", field, msg))
		}
	}
	return sb.String()
}
