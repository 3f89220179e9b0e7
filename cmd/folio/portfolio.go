package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/google/subcommands"

	"github.com/bobmcallan/folio/internal/render"
	"github.com/bobmcallan/folio/internal/services/dashboard"
)

type overviewCmd struct {
	live bool
}

func (*overviewCmd) Name() string     { return "overview" }
func (*overviewCmd) Synopsis() string { return "show the portfolio summary and investments" }
func (*overviewCmd) Usage() string {
	return `folio overview [-live]

  Prints the server totals and one row per investment. With -live, prices
  come from current quotes where available.
`
}

func (c *overviewCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.live, "live", false, "Fetch current quotes for the table.")
}

func (c *overviewCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	if c.live {
		ctrl.RefreshQuotes(ctx)
	}

	printMarkdown(render.Overview(ctrl.Overview()))
	return subcommands.ExitSuccess
}

type addCmd struct {
	form dashboard.InvestmentForm
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "add an investment to the portfolio" }
func (*addCmd) Usage() string {
	return `folio add -symbol <symbol> -name <name> [-type Stock] -quantity <n> -price <n> [-current-price <n>] [-date YYYY-MM-DD]
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	c.form = dashboard.NewInvestmentForm()
	f.StringVar(&c.form.Symbol, "symbol", "", "Ticker symbol.")
	f.StringVar(&c.form.Name, "name", "", "Display name.")
	f.StringVar(&c.form.Type, "type", c.form.Type, "Asset type: Stock, Crypto, ETF, Mutual Fund, Bond, Other.")
	f.StringVar(&c.form.Quantity, "quantity", "", "Units held.")
	f.StringVar(&c.form.PurchasePrice, "price", "", "Purchase price per unit.")
	f.StringVar(&c.form.CurrentPrice, "current-price", "", "Current price per unit (defaults to the purchase price).")
	f.StringVar(&c.form.PurchaseDate, "date", time.Now().Format("2006-01-02"), "Purchase date.")
}

func (c *addCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.form.CurrentPrice == "" {
		c.form.CurrentPrice = c.form.PurchasePrice
	}

	if errs := c.form.Validate(); errs != nil {
		printMarkdown(render.FormErrors(errs))
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

	symbol := c.form.Symbol
	if _, err := ctrl.AddInvestment(ctx, &c.form); err != nil {
		var fieldErrs dashboard.FieldErrors
		if errors.As(err, &fieldErrs) {
			printMarkdown(render.FormErrors(fieldErrs))
			return subcommands.ExitUsageError
		}
		return failure(a, err)
	}

	fmt.Fprintf(stdout, "Added %s\n", symbol)
	printMarkdown(render.Overview(ctrl.Overview()))
	return subcommands.ExitSuccess
}

type updatePricesCmd struct{}

func (*updatePricesCmd) Name() string     { return "update-prices" }
func (*updatePricesCmd) Synopsis() string { return "ask the backend to refresh stored prices" }
func (*updatePricesCmd) Usage() string {
	return `folio update-prices
`
}
func (*updatePricesCmd) SetFlags(*flag.FlagSet) {}

func (*updatePricesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	if _, err := ctrl.UpdatePrices(ctx); err != nil {
		return failure(a, err)
	}
	printMarkdown(render.Overview(ctrl.Overview()))
	return subcommands.ExitSuccess
}
