// Package models defines data structures for folio
package models

import (
	"strings"
)

// AssetType is the asset class of an investment. The set is closed.
type AssetType string

const (
	AssetStock      AssetType = "Stock"
	AssetCrypto     AssetType = "Crypto"
	AssetETF        AssetType = "ETF"
	AssetMutualFund AssetType = "Mutual Fund"
	AssetBond       AssetType = "Bond"
	AssetOther      AssetType = "Other"
)

// AssetTypes lists every asset class in form/display order.
var AssetTypes = []AssetType{AssetStock, AssetCrypto, AssetETF, AssetMutualFund, AssetBond, AssetOther}

// ParseAssetType matches s case-insensitively against the closed set.
func ParseAssetType(s string) (AssetType, bool) {
	s = strings.TrimSpace(s)
	for _, t := range AssetTypes {
		if strings.EqualFold(string(t), s) {
			return t, true
		}
	}
	return "", false
}

// Investment is a single tracked position as stored by the backend.
type Investment struct {
	ID            string    `json:"_id"`
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name"`
	Type          AssetType `json:"type"`
	Quantity      float64   `json:"quantity"`
	PurchasePrice float64   `json:"purchasePrice"`
	CurrentPrice  float64   `json:"currentPrice"`
	PurchaseDate  FlexTime  `json:"purchaseDate"`
}

// Valid reports whether the investment carries the fields aggregation needs.
// A zero quantity or stored price counts as missing.
func (inv Investment) Valid() bool {
	return inv.Type != "" && inv.Quantity > 0 && inv.CurrentPrice > 0
}

// EffectivePrice is the live quote price when one is present for the
// symbol, otherwise the stored current price.
func (inv Investment) EffectivePrice(quotes QuoteMap) float64 {
	if q, ok := quotes.Get(inv.Symbol); ok {
		return q.CurrentPrice
	}
	return inv.CurrentPrice
}

// Value is quantity × effective price.
func (inv Investment) Value(quotes QuoteMap) float64 {
	return inv.Quantity * inv.EffectivePrice(quotes)
}

// CostBasis is quantity × purchase price.
func (inv Investment) CostBasis() float64 {
	return inv.Quantity * inv.PurchasePrice
}

// GainLoss is value minus cost basis.
func (inv Investment) GainLoss(quotes QuoteMap) float64 {
	return inv.Value(quotes) - inv.CostBasis()
}

// PctChange is the price change against the purchase price in percent.
// Zero when the purchase price is zero.
func (inv Investment) PctChange(quotes QuoteMap) float64 {
	if inv.PurchasePrice == 0 {
		return 0
	}
	return (inv.EffectivePrice(quotes) - inv.PurchasePrice) / inv.PurchasePrice * 100
}

// Portfolio is the server-computed aggregate. Top-level totals are never
// recomputed client side.
type Portfolio struct {
	Investments        []Investment `json:"investments"`
	TotalValue         float64      `json:"totalValue"`
	TotalInvestment    float64      `json:"totalInvestment"`
	TotalGainLoss      float64      `json:"totalGainLoss"`
	GainLossPercentage float64      `json:"gainLossPercentage"`
}

// Symbols returns the distinct non-empty symbols in first-seen order.
func (p *Portfolio) Symbols() []string {
	if p == nil {
		return nil
	}
	seen := make(map[string]bool, len(p.Investments))
	symbols := make([]string, 0, len(p.Investments))
	for _, inv := range p.Investments {
		sym := strings.TrimSpace(inv.Symbol)
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		symbols = append(symbols, sym)
	}
	return symbols
}

// Find returns the first investment with the given symbol.
func (p *Portfolio) Find(symbol string) (Investment, bool) {
	if p == nil {
		return Investment{}, false
	}
	for _, inv := range p.Investments {
		if strings.EqualFold(inv.Symbol, symbol) {
			return inv, true
		}
	}
	return Investment{}, false
}

// HasInvestments reports whether there is anything to show.
func (p *Portfolio) HasInvestments() bool {
	return p != nil && len(p.Investments) > 0
}

// NewInvestment is the request body for POST /api/portfolio/investments.
type NewInvestment struct {
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name"`
	Type          AssetType `json:"type"`
	Quantity      float64   `json:"quantity"`
	PurchasePrice float64   `json:"purchasePrice"`
	PurchaseDate  string    `json:"purchaseDate"` // 2006-01-02
	CurrentPrice  float64   `json:"currentPrice"`
}
