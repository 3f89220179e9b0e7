// Command folio is the portfolio tracker CLI and terminal dashboard.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	register(commander)

	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	status := commander.Execute(ctx)
	stop()
	os.Exit(int(status))
}

// register adds every folio command to c.
func register(c *subcommands.Commander) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	c.Register(c.CommandsCommand(), "")

	c.Register(&loginCmd{}, "session")
	c.Register(&logoutCmd{}, "session")
	c.Register(&whoamiCmd{}, "session")

	c.Register(&overviewCmd{}, "portfolio")
	c.Register(&addCmd{}, "portfolio")
	c.Register(&updatePricesCmd{}, "portfolio")

	c.Register(&chartsCmd{}, "analytics")
	c.Register(&widgetsCmd{}, "analytics")
	c.Register(&assetCmd{}, "analytics")

	c.Register(&dashboardCmd{}, "")
	c.Register(&versionCmd{}, "")
}
