package dashboard

import (
	"context"
	"sync"

	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

// DefaultChartsTimeframe is selected when the charts view opens.
const DefaultChartsTimeframe = models.Timeframe1W

// ChartsState is a point-in-time copy of the charts view.
type ChartsState struct {
	Timeframe models.Timeframe
	Loading   bool
	Warning   string
	Analytics *models.Analytics // last landed result, possibly for an older timeframe
}

// UsingStored reports whether the stored-data badge should be shown.
func (s ChartsState) UsingStored() bool {
	return s.Analytics != nil && (s.Analytics.UsingStored || s.Analytics.Performance.Estimated)
}

// ChartsView holds the distribution and performance charts state.
type ChartsView struct {
	analytics interfaces.AnalyticsService
	sess      *models.Session

	mu        sync.Mutex
	portfolio *models.Portfolio
	timeframe models.Timeframe
	loading   bool
	warning   string
	result    *models.Analytics
	requests  requestSeq
}

// NewChartsView creates a charts view with the default timeframe.
func NewChartsView(analytics interfaces.AnalyticsService, sess *models.Session) *ChartsView {
	return &ChartsView{
		analytics: analytics,
		sess:      sess,
		timeframe: DefaultChartsTimeframe,
	}
}

// SetPortfolio replaces the portfolio the charts are computed from. The
// caller reloads afterwards.
func (v *ChartsView) SetPortfolio(p *models.Portfolio) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.portfolio = p
}

// Select switches timeframe and reloads, even when tf is already selected.
// Unknown timeframes are ignored.
func (v *ChartsView) Select(ctx context.Context, tf models.Timeframe) (ChartsState, error) {
	if parsed, ok := models.ParseTimeframe(string(tf)); ok {
		v.mu.Lock()
		v.timeframe = parsed
		v.mu.Unlock()
	}
	return v.Load(ctx)
}

// Load runs the aggregation for the selected timeframe. The previous result
// stays visible while loading. When a newer load starts first, this one's
// result is discarded and the returned state reflects the newer load.
func (v *ChartsView) Load(ctx context.Context) (ChartsState, error) {
	reqCtx, seq := v.requests.begin(ctx)

	v.mu.Lock()
	tf := v.timeframe
	portfolio := v.portfolio
	v.loading = true
	v.mu.Unlock()

	result, err := v.analytics.Analyze(reqCtx, v.sess, portfolio, tf)

	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.requests.finish(seq) {
		return v.stateLocked(), nil
	}
	v.loading = false
	if err != nil {
		return v.stateLocked(), err
	}
	v.result = result
	v.warning = result.Warning
	return v.stateLocked(), nil
}

// State returns a copy of the current state.
func (v *ChartsView) State() ChartsState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stateLocked()
}

// Close cancels any in-flight load.
func (v *ChartsView) Close() {
	v.requests.stop()
	v.mu.Lock()
	v.loading = false
	v.mu.Unlock()
}

func (v *ChartsView) stateLocked() ChartsState {
	return ChartsState{
		Timeframe: v.timeframe,
		Loading:   v.loading,
		Warning:   v.warning,
		Analytics: v.result,
	}
}
