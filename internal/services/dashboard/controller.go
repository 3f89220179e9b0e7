package dashboard

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
	"github.com/bobmcallan/folio/internal/services/watch"
)

// Portfolio error messages.
const (
	MsgFetchPortfolio = "Failed to fetch portfolio"
	MsgAddInvestment  = "Failed to add investment"
	MsgUpdatePrices   = "Failed to update prices"
)

// Controller ties the views of one signed-in session to the backend: it
// owns the portfolio copy, the charts and widgets views and the quote poller.
type Controller struct {
	api    interfaces.APIClient
	sess   *models.Session
	logger *common.Logger

	Charts  *ChartsView
	Widgets *WidgetsView

	poller    *watch.Poller
	quoteTask watch.Task
	updates   chan struct{}

	mu        sync.RWMutex
	portfolio *models.Portfolio
	loaded    bool
	errMsg    string
}

// NewController creates a controller for sess. pollInterval drives the
// widgets quote refresh.
func NewController(api interfaces.APIClient, analytics interfaces.AnalyticsService, sess *models.Session, pollInterval time.Duration, logger *common.Logger) *Controller {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	c := &Controller{
		api:     api,
		sess:    sess,
		logger:  logger,
		Charts:  NewChartsView(analytics, sess),
		Widgets: NewWidgetsView(),
		updates: make(chan struct{}, 1),
	}
	c.quoteTask = watch.QuoteTask(api, sess, c.Widgets.Symbols, c.applyQuotes, logger)
	c.poller = watch.NewPoller("quotes", pollInterval, c.quoteTask, logger)
	return c
}

// Session returns the session the controller was built for.
func (c *Controller) Session() *models.Session { return c.sess }

// Refresh fetches the portfolio and hands it to the views.
func (c *Controller) Refresh(ctx context.Context) (*models.Portfolio, error) {
	p, err := c.api.GetPortfolio(ctx, c.sess)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to fetch portfolio")
		c.setError(MsgFetchPortfolio)
		return nil, fmt.Errorf("failed to fetch portfolio: %w", err)
	}
	c.setPortfolio(p)
	return p, nil
}

// AddInvestment validates and submits the form. On success the form is
// reset and the returned portfolio replaces the current one. Validation
// failures are returned as FieldErrors without calling the backend.
func (c *Controller) AddInvestment(ctx context.Context, form *InvestmentForm) (*models.Portfolio, error) {
	inv, err := form.Parse()
	if err != nil {
		return nil, err
	}

	p, err := c.api.AddInvestment(ctx, c.sess, inv)
	if err != nil {
		c.logger.Warn().Err(err).Str("symbol", inv.Symbol).Msg("Failed to add investment")
		c.setError(MsgAddInvestment)
		return nil, fmt.Errorf("failed to add investment: %w", err)
	}

	c.logger.Info().Str("symbol", inv.Symbol).Str("type", string(inv.Type)).Msg("Investment added")
	form.Reset()
	c.setPortfolio(p)
	return p, nil
}

// UpdatePrices asks the backend to refresh stored prices.
func (c *Controller) UpdatePrices(ctx context.Context) (*models.Portfolio, error) {
	p, err := c.api.UpdatePrices(ctx, c.sess)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to update prices")
		c.setError(MsgUpdatePrices)
		return nil, fmt.Errorf("failed to update prices: %w", err)
	}
	c.setPortfolio(p)
	return p, nil
}

func (c *Controller) setPortfolio(p *models.Portfolio) {
	c.mu.Lock()
	c.portfolio = p
	c.loaded = true
	c.errMsg = ""
	c.mu.Unlock()

	c.Charts.SetPortfolio(p)
	c.Widgets.SetPortfolio(p)
}

func (c *Controller) setError(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errMsg = msg
}

// Portfolio returns the last fetched portfolio, nil before the first fetch.
func (c *Controller) Portfolio() *models.Portfolio {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.portfolio
}

// Loaded reports whether a portfolio has been fetched.
func (c *Controller) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Error returns the last portfolio error message, cleared by a successful fetch.
func (c *Controller) Error() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.errMsg
}

// Overview builds the overview from the portfolio and the polled quotes.
func (c *Controller) Overview() Overview {
	return BuildOverview(c.Portfolio(), c.Widgets.Quotes())
}

// Asset opens a detail view for symbol. The view reads the holding from the
// controller's current portfolio, so adds and price updates reach it.
func (c *Controller) Asset(symbol string) *AssetView {
	return NewAssetView(c.api, c.sess, strings.TrimSpace(symbol), c.holding, c.logger)
}

func (c *Controller) holding(symbol string) *models.Investment {
	if inv, ok := c.Portfolio().Find(symbol); ok {
		return &inv
	}
	return nil
}

func (c *Controller) applyQuotes(u watch.QuoteUpdate) {
	c.Widgets.ApplyQuotes(u)
	select {
	case c.updates <- struct{}{}:
	default:
	}
}

// QuoteUpdates signals after each applied quote poll. Signals that are not
// consumed in time are coalesced into one.
func (c *Controller) QuoteUpdates() <-chan struct{} { return c.updates }

// StartPolling begins the quote refresh loop, bound to ctx.
func (c *Controller) StartPolling(ctx context.Context) {
	c.poller.Start(ctx)
}

// RefreshQuotes runs one quote poll synchronously.
func (c *Controller) RefreshQuotes(ctx context.Context) {
	c.quoteTask(ctx)
}

// PollInterval is the quote refresh period.
func (c *Controller) PollInterval() time.Duration { return c.poller.Interval() }

// Close stops polling and cancels in-flight loads.
func (c *Controller) Close() {
	c.poller.Stop()
	c.Charts.Close()
}
