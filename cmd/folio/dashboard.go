package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/bobmcallan/folio/internal/render"
	"github.com/bobmcallan/folio/internal/services/session"
	"github.com/bobmcallan/folio/internal/tui"
)

type dashboardCmd struct{}

func (*dashboardCmd) Name() string     { return "dashboard" }
func (*dashboardCmd) Synopsis() string { return "open the interactive terminal dashboard" }
func (*dashboardCmd) Usage() string {
	return `folio dashboard

  Full-screen dashboard with overview, charts, widgets and asset detail.
  Quotes refresh on the poll interval while it is open.
`
}
func (*dashboardCmd) SetFlags(*flag.FlagSet) {}

func (*dashboardCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	md, err := render.NewTerminalRenderer(*style, *wrap)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return subcommands.ExitFailure
	}

	ctrl := a.NewController(sess)
	defer ctrl.Close()

	if err := tui.Run(ctx, ctrl, md, a.Logger); err != nil {
		if errors.Is(err, session.ErrNoSession) {
			if lerr := a.Sessions.Logout(); lerr != nil {
				a.Logger.Warn().Err(lerr).Msg("Failed to clear session")
			}
			fmt.Fprintln(stderr, "session rejected by the server: run 'folio login' again")
			return subcommands.ExitFailure
		}
		fmt.Fprintln(stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
