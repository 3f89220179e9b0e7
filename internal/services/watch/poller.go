// Package watch runs periodic background refreshes.
package watch

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

// DefaultInterval is the quote refresh period.
const DefaultInterval = 5 * time.Minute

// Task is one poll iteration.
type Task func(ctx context.Context)

// Poller runs a task immediately and then on every tick until stopped.
type Poller struct {
	name     string
	interval time.Duration
	task     Task
	logger   *common.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPoller creates a poller. A non-positive interval uses DefaultInterval.
func NewPoller(name string, interval time.Duration, task Task, logger *common.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Poller{
		name:     name,
		interval: interval,
		task:     task,
		logger:   logger,
	}
}

// Interval returns the tick period.
func (p *Poller) Interval() time.Duration { return p.interval }

// Start launches the loop bound to ctx. Calling Start again restarts it.
func (p *Poller) Start(ctx context.Context) {
	p.Stop()

	p.mu.Lock()
	defer p.mu.Unlock()

	loopCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.loop(loopCtx)
	}()

	p.logger.Debug().Str("poller", p.name).Dur("interval", p.interval).Msg("Poller started")
}

// Stop cancels the loop and waits for the running iteration to return.
// Safe to call when not started.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	p.wg.Wait()
	p.logger.Debug().Str("poller", p.name).Msg("Poller stopped")
}

func (p *Poller) loop(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.run(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.run(ctx)
		}
	}
}

// run executes one iteration, recovering from panics so a bad tick does
// not kill the loop.
func (p *Poller) run(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error().
				Str("poller", p.name).
				Str("panic", fmt.Sprintf("%v", r)).
				Str("stack", string(debug.Stack())).
				Msg("Recovered from panic in poller")
		}
	}()
	if ctx.Err() != nil {
		return
	}
	p.task(ctx)
}

// QuoteUpdate is delivered after every quote poll.
type QuoteUpdate struct {
	Quotes    models.QuoteMap
	Err       error
	FetchedAt time.Time
}

// QuoteTask returns a Task that fetches quotes for the symbols reported by
// symbols and hands the result to sink. Failed polls deliver the error
// and leave it to sink to keep the previous quotes.
func QuoteTask(market interfaces.MarketClient, sess *models.Session, symbols func() []string, sink func(QuoteUpdate), logger *common.Logger) Task {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return func(ctx context.Context) {
		syms := symbols()
		if len(syms) == 0 {
			sink(QuoteUpdate{FetchedAt: time.Now()})
			return
		}

		quotes, err := market.GetQuotes(ctx, sess, syms)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			logger.Warn().Err(err).Int("symbols", len(syms)).Msg("Error fetching market data")
			sink(QuoteUpdate{Err: err, FetchedAt: time.Now()})
			return
		}

		logger.Debug().Int("quotes", len(quotes)).Msg("Market data refreshed")
		sink(QuoteUpdate{Quotes: models.NewQuoteMap(quotes), FetchedAt: time.Now()})
	}
}
