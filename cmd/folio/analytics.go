package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/subcommands"

	"github.com/bobmcallan/folio/internal/app"
	"github.com/bobmcallan/folio/internal/models"
	"github.com/bobmcallan/folio/internal/render"
	"github.com/bobmcallan/folio/internal/services/dashboard"
)

func parseTimeframe(s string) (models.Timeframe, error) {
	tf, ok := models.ParseTimeframe(s)
	if !ok {
		return "", fmt.Errorf("unknown timeframe %q: use 1W, 1M or 1Y", s)
	}
	return tf, nil
}

func chartSize(a *app.App) render.ChartSize {
	w, h := a.ChartSize()
	return render.ChartSize{Width: w, Height: h}
}

type chartsCmd struct {
	timeframe string
	pngDir    string
}

func (*chartsCmd) Name() string     { return "charts" }
func (*chartsCmd) Synopsis() string { return "show asset distribution and portfolio performance" }
func (*chartsCmd) Usage() string {
	return `folio charts [-timeframe 1W|1M|1Y] [-png <dir>]

  Aggregates the portfolio by asset type and builds the performance series
  from price history. Falls back to stored values when market data is
  unavailable. With -png, writes distribution.png and performance.png.
`
}

func (c *chartsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.timeframe, "timeframe", string(dashboard.DefaultChartsTimeframe), "Performance window: 1W, 1M or 1Y.")
	f.StringVar(&c.pngDir, "png", "", "Directory to write PNG charts to.")
}

func (c *chartsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	tf, err := parseTimeframe(c.timeframe)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return subcommands.ExitUsageError
	}

	a, err := openApp()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	sess, status := currentSession(a)
	if sess == nil {
		return status
	}

	ctrl := a.NewController(sess)
	defer ctrl.Close()

	if _, err := ctrl.Refresh(ctx); err != nil {
		return failure(a, err)
	}
	state, err := ctrl.Charts.Select(ctx, tf)
	if err != nil {
		return failure(a, err)
	}

	printMarkdown(render.Charts(state))

	if c.pngDir != "" && state.Analytics != nil {
		if err := writeChartPNGs(c.pngDir, state.Analytics, chartSize(a)); err != nil {
			fmt.Fprintln(stderr, err)
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}

func writeChartPNGs(dir string, analytics *models.Analytics, size render.ChartSize) error {
	charts := []struct {
		name string
		draw func() ([]byte, error)
	}{
		{"distribution.png", func() ([]byte, error) { return render.DistributionPNG(analytics.Distribution, size) }},
		{"performance.png", func() ([]byte, error) { return render.PerformancePNG(analytics.Performance, size) }},
	}
	for _, ch := range charts {
		data, err := ch.draw()
		if errors.Is(err, render.ErrNoData) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to render %s: %w", ch.name, err)
		}
		if err := writeFile(filepath.Join(dir, ch.name), data); err != nil {
			return err
		}
	}
	return nil
}

type widgetsCmd struct {
	watch bool
	hide  string
}

func (*widgetsCmd) Name() string     { return "widgets" }
func (*widgetsCmd) Synopsis() string { return "show the dashboard widgets" }
func (*widgetsCmd) Usage() string {
	return `folio widgets [-watch] [-hide id,id]

  Shows asset distribution, portfolio performance, market overview and top
  performers. With -watch, quotes refresh on the poll interval until
  interrupted.
`
}

func (c *widgetsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.watch, "watch", false, "Keep refreshing quotes on the poll interval.")
	f.StringVar(&c.hide, "hide", "", "Comma separated widget ids to hide (asset-distribution, portfolio-performance, market-overview, top-performers).")
}

func (c *widgetsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	sess, status := currentSession(a)
	if sess == nil {
		return status
	}

	ctrl := a.NewController(sess)
	defer ctrl.Close()

	for _, id := range strings.Split(c.hide, ",") {
		if id = strings.TrimSpace(id); id == "" {
			continue
		}
		if !ctrl.Widgets.Toggle(id) {
			fmt.Fprintf(stderr, "unknown widget %q\n", id)
			return subcommands.ExitUsageError
		}
	}

	if _, err := ctrl.Refresh(ctx); err != nil {
		return failure(a, err)
	}
	if c.watch {
		// the poller's first run happens immediately
		ctrl.StartPolling(ctx)
		select {
		case <-ctx.Done():
			return subcommands.ExitSuccess
		case <-ctrl.QuoteUpdates():
		}
	} else {
		ctrl.RefreshQuotes(ctx)
	}

	state, err := ctrl.Charts.Load(ctx)
	if err != nil {
		return failure(a, err)
	}
	printMarkdown(render.Widgets(ctrl.Widgets, &state))

	if !c.watch {
		return subcommands.ExitSuccess
	}

	for {
		select {
		case <-ctx.Done():
			return subcommands.ExitSuccess
		case <-ctrl.QuoteUpdates():
			fmt.Fprintln(stdout)
			printMarkdown(render.Widgets(ctrl.Widgets, &state))
		}
	}
}

type assetCmd struct {
	timeframe string
	png       string
}

func (*assetCmd) Name() string     { return "asset" }
func (*assetCmd) Synopsis() string { return "show quote, price history and holding for one symbol" }
func (*assetCmd) Usage() string {
	return `folio asset [-timeframe 1W|1M|1Y] [-png <file>] <symbol>
`
}

func (c *assetCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.timeframe, "timeframe", string(dashboard.DefaultAssetTimeframe), "History window: 1W, 1M or 1Y.")
	f.StringVar(&c.png, "png", "", "File to write the price chart to.")
}

func (c *assetCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(stderr, "exactly one symbol is required")
		return subcommands.ExitUsageError
	}
	tf, err := parseTimeframe(c.timeframe)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return subcommands.ExitUsageError
	}

	a, err := openApp()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	sess, status := currentSession(a)
	if sess == nil {
		return status
	}

	ctrl := a.NewController(sess)
	defer ctrl.Close()

	// the holding is optional; a failed portfolio fetch still shows the quote
	if _, err := ctrl.Refresh(ctx); err != nil {
		a.Logger.Warn().Err(err).Msg("Portfolio unavailable for asset detail")
	}

	view := ctrl.Asset(strings.ToUpper(f.Arg(0)))
	defer view.Close()
	state := view.Select(ctx, tf)

	printMarkdown(render.Asset(state))
	if state.Error != "" {
		return subcommands.ExitFailure
	}

	if c.png != "" {
		data, err := render.AssetPNG(state.Symbol, state.History, chartSize(a))
		if err != nil {
			fmt.Fprintln(stderr, err)
			return subcommands.ExitFailure
		}
		if err := writeFile(c.png, data); err != nil {
			fmt.Fprintln(stderr, err)
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}
