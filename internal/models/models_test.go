package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvestment_EffectivePriceUsesQuoteWhenPresent(t *testing.T) {
	inv := Investment{Symbol: "aapl", Type: AssetStock, Quantity: 10, PurchasePrice: 100, CurrentPrice: 150}
	quotes := NewQuoteMap([]Quote{{Symbol: "AAPL", CurrentPrice: 160}})

	assert.Equal(t, 160.0, inv.EffectivePrice(quotes))
	assert.Equal(t, 1600.0, inv.Value(quotes))
	assert.Equal(t, 600.0, inv.GainLoss(quotes))
	assert.InDelta(t, 60.0, inv.PctChange(quotes), 1e-9)

	assert.Equal(t, 150.0, inv.EffectivePrice(nil))
	assert.Equal(t, 1500.0, inv.Value(nil))
}

func TestInvestment_PctChangeZeroPurchasePrice(t *testing.T) {
	inv := Investment{Quantity: 1, CurrentPrice: 10}
	assert.Equal(t, 0.0, inv.PctChange(nil))
}

func TestInvestment_Valid(t *testing.T) {
	assert.True(t, Investment{Type: AssetCrypto, Quantity: 1, CurrentPrice: 1}.Valid())
	assert.False(t, Investment{Quantity: 1, CurrentPrice: 1}.Valid())
	assert.False(t, Investment{Type: AssetCrypto, CurrentPrice: 1}.Valid())
	assert.False(t, Investment{Type: AssetCrypto, Quantity: 1}.Valid())
}

func TestPortfolio_DecodeBackendShape(t *testing.T) {
	raw := `{
		"investments": [
			{"_id": "65a1", "symbol": "AAPL", "name": "Apple", "type": "Stock",
			 "quantity": 10, "purchasePrice": 120.5, "currentPrice": 180,
			 "purchaseDate": "2024-01-15T00:00:00.000Z"},
			{"_id": "65a2", "symbol": "VTSAX", "name": "Vanguard", "type": "Mutual Fund",
			 "quantity": 3, "purchasePrice": 100, "currentPrice": 110, "purchaseDate": "2023-06-01"}
		],
		"totalValue": 2130, "totalInvestment": 1505, "totalGainLoss": 625, "gainLossPercentage": 41.53
	}`

	var p Portfolio
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	require.Len(t, p.Investments, 2)
	assert.Equal(t, "65a1", p.Investments[0].ID)
	assert.Equal(t, AssetMutualFund, p.Investments[1].Type)
	assert.Equal(t, 2024, p.Investments[0].PurchaseDate.Year())
	assert.Equal(t, time.June, p.Investments[1].PurchaseDate.Month())
	assert.Equal(t, []string{"AAPL", "VTSAX"}, p.Symbols())
}

func TestPortfolio_SymbolsDeduplicates(t *testing.T) {
	p := &Portfolio{Investments: []Investment{{Symbol: "BTC"}, {Symbol: ""}, {Symbol: "BTC"}, {Symbol: "ETH"}}}
	assert.Equal(t, []string{"BTC", "ETH"}, p.Symbols())

	var nilPortfolio *Portfolio
	assert.Nil(t, nilPortfolio.Symbols())
	assert.False(t, nilPortfolio.HasInvestments())
}

func TestFlexTime_Shapes(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{`"2024-03-01T10:00:00Z"`, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
		{`"2024-03-01T10:00:00.123Z"`, time.Date(2024, 3, 1, 10, 0, 0, 123000000, time.UTC)},
		{`"2024-03-01"`, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{`"2024-03-01 08:30:00"`, time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)},
		{`1709251200000`, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		var ft FlexTime
		require.NoError(t, json.Unmarshal([]byte(tt.in), &ft), tt.in)
		assert.True(t, tt.want.Equal(ft.Time), "%s => %v", tt.in, ft.Time)
	}

	var empty FlexTime
	require.NoError(t, json.Unmarshal([]byte(`null`), &empty))
	assert.True(t, empty.IsZero())
	require.NoError(t, json.Unmarshal([]byte(`""`), &empty))
	assert.True(t, empty.IsZero())

	var bad FlexTime
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &bad))
}

func TestTimeframe_DaysAndPeriod(t *testing.T) {
	assert.Equal(t, 7, Timeframe1W.Days())
	assert.Equal(t, 30, Timeframe1M.Days())
	assert.Equal(t, 365, Timeframe1Y.Days())
	assert.Equal(t, 30, Timeframe("5Y").Days())

	assert.Equal(t, "5d", Timeframe1W.Period())
	assert.Equal(t, "1mo", Timeframe1M.Period())
	assert.Equal(t, "1y", Timeframe1Y.Period())

	tf, ok := ParseTimeframe(" 1y ")
	assert.True(t, ok)
	assert.Equal(t, Timeframe1Y, tf)
	_, ok = ParseTimeframe("3M")
	assert.False(t, ok)
}

func TestParseAssetType(t *testing.T) {
	at, ok := ParseAssetType("mutual fund")
	assert.True(t, ok)
	assert.Equal(t, AssetMutualFund, at)

	_, ok = ParseAssetType("Real Estate")
	assert.False(t, ok)
}

func TestSession_Expired(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	opaque := &Session{Token: "abc"}
	assert.False(t, opaque.Expired(now))

	s := &Session{Token: "abc", ExpiresAt: now.Add(time.Minute)}
	assert.False(t, s.Expired(now))
	assert.True(t, s.Expired(now.Add(time.Minute)))

	var nilSession *Session
	assert.True(t, nilSession.Expired(now))
	assert.Equal(t, "Bearer abc", opaque.BearerHeader())
}

func TestDistribution_TotalsAndShare(t *testing.T) {
	d := Distribution{{Type: AssetStock, Value: 300}, {Type: AssetCrypto, Value: 100}}
	assert.Equal(t, 400.0, d.Total())
	assert.Equal(t, 75.0, d.Share(0))
	assert.Equal(t, 0.0, d.Share(5))
	assert.Equal(t, map[AssetType]float64{AssetStock: 300, AssetCrypto: 100}, d.ByType())
}

type kindErr struct{ kind ErrorKind }

func (e *kindErr) Error() string   { return e.kind.String() }
func (e *kindErr) Kind() ErrorKind { return e.kind }

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(nil))
	assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))

	wrapped := fmt.Errorf("fetch quotes: %w", &kindErr{kind: KindNoValidQuotes})
	assert.Equal(t, KindNoValidQuotes, KindOf(wrapped))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, KindTransport, KindOf(fmt.Errorf("x: %w", ctx.Err())))
}

func TestKindFromCode(t *testing.T) {
	assert.Equal(t, KindSymbolNotFound, KindFromCode("SYMBOL_NOT_FOUND"))
	assert.Equal(t, KindNoValidSymbols, KindFromCode("no_valid_symbols"))
	assert.Equal(t, KindInvalidPeriod, KindFromCode("INVALID_PERIOD"))
	assert.Equal(t, KindInvalidInterval, KindFromCode("INVALID_INTERVAL"))
	assert.Equal(t, KindBackend, KindFromCode("SOMETHING_ELSE"))
}
