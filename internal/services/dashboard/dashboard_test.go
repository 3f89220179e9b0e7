package dashboard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/folio/internal/models"
	"github.com/bobmcallan/folio/internal/services/watch"
)

var testSession = &models.Session{Token: "t", User: models.User{Name: "Ada"}}

func testPortfolio() *models.Portfolio {
	return &models.Portfolio{
		Investments: []models.Investment{
			{ID: "1", Symbol: "AAPL", Name: "Apple", Type: models.AssetStock, Quantity: 10, PurchasePrice: 15, CurrentPrice: 20},
			{ID: "2", Symbol: "BTC", Name: "Bitcoin", Type: models.AssetCrypto, Quantity: 2, PurchasePrice: 0, CurrentPrice: 100},
		},
		TotalValue:         400,
		TotalInvestment:    150,
		TotalGainLoss:      250,
		GainLossPercentage: 166.67,
	}
}

// --- overview ---

func TestBuildOverview_UsesServerTotalsAndEffectivePrice(t *testing.T) {
	quotes := models.NewQuoteMap([]models.Quote{{Symbol: "AAPL", CurrentPrice: 30}})
	o := BuildOverview(testPortfolio(), quotes)

	assert.Equal(t, 400.0, o.Summary.TotalValue)
	assert.Equal(t, 166.67, o.Summary.GainLossPercentage)
	require.Len(t, o.Rows, 2)

	aapl := o.Rows[0]
	assert.True(t, aapl.Live)
	assert.Equal(t, 30.0, aapl.CurrentPrice)
	assert.Equal(t, 300.0, aapl.Value)
	assert.Equal(t, 150.0, aapl.GainLoss)
	assert.Equal(t, 100.0, aapl.PctChange)

	btc := o.Rows[1]
	assert.False(t, btc.Live)
	assert.Equal(t, 200.0, btc.Value)
	assert.Equal(t, 0.0, btc.PctChange)
}

func TestBuildOverview_RecomputedEveryCall(t *testing.T) {
	p := testPortfolio()
	first := BuildOverview(p, nil)
	p.Investments[0].CurrentPrice = 40
	second := BuildOverview(p, nil)

	assert.Equal(t, 200.0, first.Rows[0].Value)
	assert.Equal(t, 400.0, second.Rows[0].Value)
	assert.True(t, BuildOverview(nil, nil).Empty())
}

// --- form ---

func TestInvestmentForm_Defaults(t *testing.T) {
	f := NewInvestmentForm()
	assert.Equal(t, "Stock", f.Type)

	f.Symbol = "X"
	f.Reset()
	assert.Equal(t, NewInvestmentForm(), f)
}

func TestInvestmentForm_ParseValid(t *testing.T) {
	f := InvestmentForm{
		Symbol:        " btc ",
		Name:          "Bitcoin",
		Type:          "crypto",
		Quantity:      "0.12345678",
		PurchasePrice: "30000",
		PurchaseDate:  "2024-03-01",
		CurrentPrice:  "61000.5",
	}
	inv, err := f.Parse()
	require.NoError(t, err)

	assert.Equal(t, "BTC", inv.Symbol)
	assert.Equal(t, models.AssetCrypto, inv.Type)
	assert.Equal(t, 0.123457, inv.Quantity)
	assert.Equal(t, 61000.5, inv.CurrentPrice)
	assert.Equal(t, "2024-03-01", inv.PurchaseDate)
}

func TestInvestmentForm_ValidateErrors(t *testing.T) {
	f := InvestmentForm{
		Type:          "Commodity",
		Quantity:      "-1",
		PurchasePrice: "abc",
		PurchaseDate:  "01/02/2024",
	}
	errs := f.Validate()
	require.NotNil(t, errs)

	assert.Equal(t, "required", errs["symbol"])
	assert.Equal(t, "required", errs["name"])
	assert.Contains(t, errs["type"], "Mutual Fund")
	assert.Equal(t, "must be zero or more", errs["quantity"])
	assert.Equal(t, "must be a number", errs["purchasePrice"])
	assert.Equal(t, "required", errs["currentPrice"])
	assert.Contains(t, errs["purchaseDate"], "YYYY-MM-DD")

	_, err := f.Parse()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "symbol: required")
}

func TestInvestmentForm_ZeroAllowed(t *testing.T) {
	f := InvestmentForm{Symbol: "X", Name: "X", Type: "Other", Quantity: "0", PurchasePrice: "0", CurrentPrice: "0", PurchaseDate: "2024-01-01"}
	assert.Nil(t, f.Validate())
}

// --- charts ---

type fakeAnalytics struct {
	mu      sync.Mutex
	calls   []models.Timeframe
	block   map[models.Timeframe]chan struct{}
	started chan models.Timeframe
	err     error
}

func (f *fakeAnalytics) Analyze(ctx context.Context, sess *models.Session, p *models.Portfolio, tf models.Timeframe) (*models.Analytics, error) {
	f.mu.Lock()
	f.calls = append(f.calls, tf)
	release := f.block[tf]
	f.mu.Unlock()

	if f.started != nil {
		f.started <- tf
	}
	if release != nil {
		<-release
	}
	if f.err != nil {
		return nil, f.err
	}
	return &models.Analytics{Timeframe: tf, Warning: "w-" + string(tf)}, nil
}

func (f *fakeAnalytics) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestChartsView_DefaultsToWeek(t *testing.T) {
	v := NewChartsView(&fakeAnalytics{}, testSession)
	assert.Equal(t, models.Timeframe1W, v.State().Timeframe)
}

func TestChartsView_SelectAlwaysReloads(t *testing.T) {
	fa := &fakeAnalytics{}
	v := NewChartsView(fa, testSession)
	v.SetPortfolio(testPortfolio())

	_, err := v.Select(context.Background(), models.Timeframe1W)
	require.NoError(t, err)
	st, err := v.Select(context.Background(), models.Timeframe1W)
	require.NoError(t, err)

	assert.Equal(t, 2, fa.callCount())
	assert.Equal(t, "w-1W", st.Warning)
	assert.False(t, st.Loading)

	st, _ = v.Select(context.Background(), "bogus")
	assert.Equal(t, models.Timeframe1W, st.Timeframe)
	assert.Equal(t, 3, fa.callCount())
}

func TestChartsView_LatestRequestWins(t *testing.T) {
	release := make(chan struct{})
	fa := &fakeAnalytics{
		block:   map[models.Timeframe]chan struct{}{models.Timeframe1M: release},
		started: make(chan models.Timeframe, 4),
	}
	v := NewChartsView(fa, testSession)
	v.SetPortfolio(testPortfolio())

	_, err := v.Select(context.Background(), models.Timeframe1W)
	require.NoError(t, err)
	<-fa.started

	done := make(chan struct{})
	go func() {
		defer close(done)
		v.Select(context.Background(), models.Timeframe1M)
	}()
	require.Equal(t, models.Timeframe1M, <-fa.started)

	// Previous result stays visible while the new one loads.
	st := v.State()
	assert.True(t, st.Loading)
	assert.Equal(t, models.Timeframe1M, st.Timeframe)
	require.NotNil(t, st.Analytics)
	assert.Equal(t, models.Timeframe1W, st.Analytics.Timeframe)

	st, err = v.Select(context.Background(), models.Timeframe1Y)
	require.NoError(t, err)
	<-fa.started
	assert.Equal(t, models.Timeframe1Y, st.Analytics.Timeframe)

	close(release)
	<-done

	st = v.State()
	assert.Equal(t, models.Timeframe1Y, st.Timeframe)
	assert.Equal(t, models.Timeframe1Y, st.Analytics.Timeframe)
	assert.False(t, st.Loading)
}

func TestChartsView_ErrorKeepsPreviousResult(t *testing.T) {
	fa := &fakeAnalytics{}
	v := NewChartsView(fa, testSession)
	_, err := v.Load(context.Background())
	require.NoError(t, err)

	fa.err = errors.New("no session")
	st, err := v.Select(context.Background(), models.Timeframe1M)
	assert.Error(t, err)
	require.NotNil(t, st.Analytics)
	assert.Equal(t, models.Timeframe1W, st.Analytics.Timeframe)
}

func TestChartsState_UsingStored(t *testing.T) {
	assert.False(t, ChartsState{}.UsingStored())
	assert.True(t, ChartsState{Analytics: &models.Analytics{UsingStored: true}}.UsingStored())
	assert.True(t, ChartsState{Analytics: &models.Analytics{Performance: models.PerformanceSeries{Estimated: true}}}.UsingStored())
}

// --- widgets ---

func TestWidgetsView_DefaultsAndToggle(t *testing.T) {
	v := NewWidgetsView()
	widgets := v.Widgets()
	require.Len(t, widgets, 4)
	for _, w := range widgets {
		assert.True(t, w.Enabled)
	}
	assert.Equal(t, "large", widgets[0].Size)
	assert.Equal(t, "small", widgets[3].Size)

	assert.True(t, v.Toggle(WidgetMarketOverview))
	assert.False(t, v.Enabled(WidgetMarketOverview))
	assert.True(t, v.Toggle(WidgetMarketOverview))
	assert.True(t, v.Enabled(WidgetMarketOverview))
	assert.False(t, v.Toggle("nope"))
}

func TestWidgetsView_MarketOverviewAndTopPerformers(t *testing.T) {
	v := NewWidgetsView()
	p := &models.Portfolio{Investments: []models.Investment{
		{Symbol: "A"}, {Symbol: "B"}, {Symbol: "C"}, {Symbol: "D"},
		{Symbol: "E"}, {Symbol: "F"}, {Symbol: "G"}, {Symbol: "A"},
	}}
	v.SetPortfolio(p)
	assert.True(t, v.Loading())
	assert.Equal(t, []string{"A", "B", "C", "D", "E", "F", "G"}, v.Symbols())

	v.ApplyQuotes(watch.QuoteUpdate{Quotes: models.NewQuoteMap([]models.Quote{
		{Symbol: "A", CurrentPrice: 1, Change: -0.5, ChangePercent: -1},
		{Symbol: "B", CurrentPrice: 2, ChangePercent: 5},
		{Symbol: "C", CurrentPrice: 3, ChangePercent: 3},
		{Symbol: "D", CurrentPrice: 4, ChangePercent: 9},
		{Symbol: "E", CurrentPrice: 5, ChangePercent: 0},
		{Symbol: "F", CurrentPrice: 6, ChangePercent: 2},
	}), FetchedAt: time.Now()})
	assert.False(t, v.Loading())

	market := v.MarketOverview()
	require.Len(t, market, 6)
	assert.Equal(t, "A", market[0].Symbol)
	assert.Equal(t, -0.5, market[0].Change)

	top := v.TopPerformers()
	require.Len(t, top, 5)
	assert.Equal(t, []string{"D", "B", "C", "F", "E"}, []string{top[0].Symbol, top[1].Symbol, top[2].Symbol, top[3].Symbol, top[4].Symbol})
}

func TestWidgetsView_FailedPollKeepsQuotes(t *testing.T) {
	v := NewWidgetsView()
	v.SetPortfolio(&models.Portfolio{Investments: []models.Investment{{Symbol: "A"}}})
	v.ApplyQuotes(watch.QuoteUpdate{Quotes: models.NewQuoteMap([]models.Quote{{Symbol: "A", CurrentPrice: 1}})})
	v.ApplyQuotes(watch.QuoteUpdate{Err: errors.New("down")})

	assert.Len(t, v.MarketOverview(), 1)
	_, err := v.LastPoll()
	assert.Error(t, err)
}

// --- asset ---

type fakeMarket struct {
	quotes    []models.Quote
	quoteErr  error
	history   map[string][]models.HistoricalPoint
	histErr   error
	histCalls atomic.Int32
}

func (f *fakeMarket) GetQuotes(ctx context.Context, sess *models.Session, symbols []string) ([]models.Quote, error) {
	return f.quotes, f.quoteErr
}

func (f *fakeMarket) GetHistorical(ctx context.Context, sess *models.Session, symbol, period string) ([]models.HistoricalPoint, error) {
	f.histCalls.Add(1)
	return f.history[period], f.histErr
}

func holdingOf(inv *models.Investment) HoldingFunc {
	return func(string) *models.Investment { return inv }
}

func TestAssetView_LoadsQuoteAndHistory(t *testing.T) {
	market := &fakeMarket{
		quotes: []models.Quote{{Symbol: "AAPL", CurrentPrice: 30, Open: 29}},
		history: map[string][]models.HistoricalPoint{
			"1mo": {{Close: 1}, {Close: 2}},
			"1y":  {{Close: 1}},
		},
	}
	inv := testPortfolio().Investments[0]
	v := NewAssetView(market, testSession, "AAPL", holdingOf(&inv), nil)

	st := v.Load(context.Background())
	assert.Equal(t, models.Timeframe1M, st.Timeframe)
	assert.Empty(t, st.Error)
	require.NotNil(t, st.Quote)
	assert.Equal(t, 29.0, st.Quote.Open)
	assert.Len(t, st.History, 2)
	assert.Equal(t, 300.0, st.CurrentValue())
	assert.Equal(t, 150.0, st.GainLoss())
	assert.Equal(t, 100.0, st.PctChange())

	st = v.Select(context.Background(), models.Timeframe1Y)
	assert.Len(t, st.History, 1)
	assert.Equal(t, int32(2), market.histCalls.Load())
}

func TestAssetView_ErrorMessage(t *testing.T) {
	market := &fakeMarket{quoteErr: errors.New("down")}
	v := NewAssetView(market, testSession, "AAPL", nil, nil)

	st := v.Load(context.Background())
	assert.Equal(t, AssetErrorMessage, st.Error)
	assert.False(t, st.Loading)
	assert.Equal(t, int32(0), market.histCalls.Load())
	assert.Equal(t, 0.0, st.CurrentValue())

	market.quoteErr = nil
	market.histErr = errors.New("down")
	st = v.Load(context.Background())
	assert.Equal(t, AssetErrorMessage, st.Error)
}

func TestAssetView_NoQuoteUsesStoredPrice(t *testing.T) {
	inv := testPortfolio().Investments[0]
	v := NewAssetView(&fakeMarket{}, testSession, "AAPL", holdingOf(&inv), nil)
	st := v.Load(context.Background())
	assert.Nil(t, st.Quote)
	assert.Equal(t, 200.0, st.CurrentValue())
}

func TestAssetView_IgnoresQuoteForOtherSymbol(t *testing.T) {
	market := &fakeMarket{quotes: []models.Quote{{Symbol: "MSFT", CurrentPrice: 999}}}
	inv := testPortfolio().Investments[0]
	v := NewAssetView(market, testSession, "AAPL", holdingOf(&inv), nil)

	st := v.Load(context.Background())
	assert.Nil(t, st.Quote)
	assert.Equal(t, 200.0, st.CurrentValue())
}

// --- shell ---

func TestWelcome(t *testing.T) {
	assert.Equal(t, "Welcome, Ada", Welcome(testSession))
	assert.Equal(t, "Welcome", Welcome(nil))
	assert.Len(t, LandingPage().Features, 3)
}
