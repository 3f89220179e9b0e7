// Package analytics aggregates a portfolio into an asset distribution and a
// performance series, falling back to stored values when market data is
// unavailable.
package analytics

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
	"github.com/bobmcallan/folio/internal/services/session"
)

// Service implements AnalyticsService
type Service struct {
	market interfaces.MarketClient
	logger *common.Logger
	now    func() time.Time
}

// NewService creates a new analytics service
func NewService(market interfaces.MarketClient, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{
		market: market,
		logger: logger,
		now:    time.Now,
	}
}

// Analyze builds the distribution and performance series for tf.
//
// Stored prices are used first. Live quotes then replace them in the
// distribution, and per-symbol histories are merged into the performance
// series. Any remote failure degrades to stored values with a warning; only
// a missing session or a cancelled context is returned as an error.
func (s *Service) Analyze(ctx context.Context, sess *models.Session, portfolio *models.Portfolio, tf models.Timeframe) (*models.Analytics, error) {
	if sess == nil || sess.Token == "" {
		return nil, session.ErrNoSession
	}
	if _, ok := models.ParseTimeframe(string(tf)); !ok {
		tf = models.Timeframe1M
	}

	result := &models.Analytics{
		Timeframe:    tf,
		Distribution: models.Distribution{},
		Performance:  models.PerformanceSeries{Timeframe: tf, Label: models.SeriesLabelLive},
		GeneratedAt:  s.now(),
	}

	if !portfolio.HasInvestments() {
		return result, nil
	}

	dist, skipped := Distribution(portfolio.Investments, nil)
	for _, w := range skipped {
		s.logger.Warn().Str("detail", w).Msg("Invalid investment data")
	}
	result.Distribution = dist
	result.Warnings = append(result.Warnings, skipped...)

	if len(dist) == 0 {
		s.logger.Debug().Msg("No valid asset types found")
		return result, nil
	}

	symbols := validSymbols(portfolio.Investments)
	storedTotal := TotalValue(portfolio.Investments, nil)
	if len(symbols) == 0 {
		s.useStored(result, storedTotal, "")
		return result, nil
	}

	quotes, err := s.market.GetQuotes(ctx, sess, symbols)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn().Err(err).Str("kind", models.KindOf(err).String()).Msg("Quote fetch failed, using stored values")
		s.useStored(result, storedTotal, DegradedMessage(err))
		return result, nil
	}
	if len(quotes) == 0 {
		s.logger.Warn().Int("symbols", len(symbols)).Msg("No quotes returned, using stored values")
		s.useStored(result, storedTotal, MsgNoValidQuotes)
		return result, nil
	}

	qm := models.NewQuoteMap(quotes)
	result.Quotes = qm
	result.Distribution, _ = Distribution(portfolio.Investments, qm)

	histories, missing := s.fetchHistories(ctx, sess, symbols, tf.Period())
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	points := MergeHistory(histories, SymbolQuantities(portfolio.Investments))
	if len(points) == 0 {
		s.logger.Info().Str("timeframe", string(tf)).Msg("No historical data available, using stored values")
		result.Performance = SyntheticSeries(storedTotal, tf, s.now())
		result.UsingStored = true
		return result, nil
	}

	result.Performance.Points = points
	if len(missing) > 0 {
		w := fmt.Sprintf("No price history for %s; performance excludes them.", strings.Join(missing, ", "))
		result.Warning = w
		result.Warnings = append(result.Warnings, w)
	}
	return result, nil
}

func (s *Service) useStored(result *models.Analytics, total float64, warning string) {
	result.Performance = SyntheticSeries(total, result.Timeframe, s.now())
	result.UsingStored = true
	if warning != "" {
		result.Warning = warning
		result.Warnings = append(result.Warnings, warning)
	}
}

// fetchHistories requests every symbol's history concurrently. A failed or
// empty history is logged and reported in missing (sorted).
func (s *Service) fetchHistories(ctx context.Context, sess *models.Session, symbols []string, period string) (map[string][]models.HistoricalPoint, []string) {
	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		histories = make(map[string][]models.HistoricalPoint, len(symbols))
		missing   []string
	)

	for _, sym := range symbols {
		wg.Add(1)
		go func(sym string) {
			defer wg.Done()

			points, err := s.market.GetHistorical(ctx, sess, sym, period)

			mu.Lock()
			defer mu.Unlock()
			if err != nil || len(points) == 0 {
				if err != nil {
					s.logger.Warn().Err(err).Str("symbol", sym).Str("period", period).Msg("Historical fetch failed")
				}
				missing = append(missing, sym)
				return
			}
			histories[sym] = points
		}(sym)
	}
	wg.Wait()

	sort.Strings(missing)
	return histories, missing
}

// validSymbols returns the distinct symbols of valid investments in
// first-seen order.
func validSymbols(investments []models.Investment) []string {
	seen := make(map[string]bool)
	var out []string
	for _, inv := range investments {
		sym := strings.TrimSpace(inv.Symbol)
		if sym == "" || !inv.Valid() || seen[strings.ToUpper(sym)] {
			continue
		}
		seen[strings.ToUpper(sym)] = true
		out = append(out, sym)
	}
	return out
}

var _ interfaces.AnalyticsService = (*Service)(nil)
