package dashboard

import (
	"context"
	"strings"
	"sync"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

// DefaultAssetTimeframe is selected when an asset detail opens.
const DefaultAssetTimeframe = models.Timeframe1M

// AssetErrorMessage is shown when the quote or history request fails.
const AssetErrorMessage = "Failed to fetch asset data. Please try again later."

// AssetState is a point-in-time copy of the asset detail view.
type AssetState struct {
	Symbol     string
	Investment *models.Investment // nil when the symbol is not held
	Timeframe  models.Timeframe
	Loading    bool
	Error      string
	Quote      *models.Quote
	History    []models.HistoricalPoint
}

// quoteMap wraps the single quote for effective-price math.
func (s AssetState) quoteMap() models.QuoteMap {
	if s.Quote == nil {
		return nil
	}
	return models.NewQuoteMap([]models.Quote{*s.Quote})
}

// CurrentValue is quantity × effective price, zero when not held.
func (s AssetState) CurrentValue() float64 {
	if s.Investment == nil {
		return 0
	}
	return s.Investment.Value(s.quoteMap())
}

// GainLoss is current value minus cost basis.
func (s AssetState) GainLoss() float64 {
	if s.Investment == nil {
		return 0
	}
	return s.Investment.GainLoss(s.quoteMap())
}

// PctChange is the effective price change against the purchase price.
func (s AssetState) PctChange() float64 {
	if s.Investment == nil {
		return 0
	}
	return s.Investment.PctChange(s.quoteMap())
}

// AssetView loads the quote and price history for one symbol.
type AssetView struct {
	market interfaces.MarketClient
	sess   *models.Session
	logger *common.Logger

	mu        sync.Mutex
	symbol    string
	holding   HoldingFunc
	timeframe models.Timeframe
	loading   bool
	errMsg    string
	quote     *models.Quote
	history   []models.HistoricalPoint
	requests  requestSeq
}

// HoldingFunc returns the currently held investment for a symbol, or nil.
type HoldingFunc func(symbol string) *models.Investment

// NewAssetView creates a detail view for symbol. holding is consulted on
// every state read so portfolio changes show up; it may be nil.
func NewAssetView(market interfaces.MarketClient, sess *models.Session, symbol string, holding HoldingFunc, logger *common.Logger) *AssetView {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &AssetView{
		market:    market,
		sess:      sess,
		logger:    logger,
		symbol:    strings.TrimSpace(symbol),
		holding:   holding,
		timeframe: DefaultAssetTimeframe,
	}
}

// Select switches timeframe and reloads. Unknown timeframes are ignored.
func (v *AssetView) Select(ctx context.Context, tf models.Timeframe) AssetState {
	if parsed, ok := models.ParseTimeframe(string(tf)); ok {
		v.mu.Lock()
		v.timeframe = parsed
		v.mu.Unlock()
	}
	return v.Load(ctx)
}

// Load fetches the quote then the history. Only the latest load publishes.
func (v *AssetView) Load(ctx context.Context) AssetState {
	reqCtx, seq := v.requests.begin(ctx)

	v.mu.Lock()
	symbol := v.symbol
	tf := v.timeframe
	v.loading = true
	v.errMsg = ""
	v.mu.Unlock()

	quote, history, err := v.fetch(reqCtx, symbol, tf)

	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.requests.finish(seq) {
		return v.stateLocked()
	}
	v.loading = false
	if err != nil {
		v.logger.Warn().Err(err).Str("symbol", symbol).Msg("Error fetching asset data")
		v.errMsg = AssetErrorMessage
		return v.stateLocked()
	}
	if quote != nil {
		v.quote = quote
	}
	v.history = history
	return v.stateLocked()
}

func (v *AssetView) fetch(ctx context.Context, symbol string, tf models.Timeframe) (*models.Quote, []models.HistoricalPoint, error) {
	quotes, err := v.market.GetQuotes(ctx, v.sess, []string{symbol})
	if err != nil {
		return nil, nil, err
	}
	var quote *models.Quote
	if q, ok := models.NewQuoteMap(quotes).Get(symbol); ok {
		quote = &q
	}

	history, err := v.market.GetHistorical(ctx, v.sess, symbol, tf.Period())
	if err != nil {
		return nil, nil, err
	}
	return quote, history, nil
}

// State returns a copy of the current state.
func (v *AssetView) State() AssetState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stateLocked()
}

// Close cancels any in-flight load.
func (v *AssetView) Close() {
	v.requests.stop()
}

func (v *AssetView) stateLocked() AssetState {
	s := AssetState{
		Symbol:    v.symbol,
		Timeframe: v.timeframe,
		Loading:   v.loading,
		Error:     v.errMsg,
		History:   v.history,
	}
	if v.holding != nil {
		if inv := v.holding(v.symbol); inv != nil {
			held := *inv
			s.Investment = &held
		}
	}
	if v.quote != nil {
		q := *v.quote
		s.Quote = &q
	}
	return s
}
