package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"github.com/bobmcallan/folio/internal/app"
	"github.com/bobmcallan/folio/internal/models"
	"github.com/bobmcallan/folio/internal/render"
	"github.com/bobmcallan/folio/internal/services/session"
)

var (
	configPath = flag.String("config", "", "Path to folio.toml (defaults to $FOLIO_CONFIG, then next to the binary)")
	logLevel   = flag.String("log-level", "warn", "Log level: trace, debug, info, warn, error, disabled")
	style      = flag.String("style", render.StyleAuto, "Markdown style: auto, dark, light, notty")
	wrap       = flag.Int("width", 100, "Word wrap width for markdown output")
)

// stdout and stderr are swapped in tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// openApp loads configuration and wires the services.
func openApp() (*app.App, error) {
	return app.NewApp(app.Options{ConfigPath: *configPath, LogLevel: *logLevel})
}

// currentSession returns the stored session or prints why there is none.
func currentSession(a *app.App) (*models.Session, subcommands.ExitStatus) {
	sess, err := a.Sessions.Current()
	if err == nil {
		return sess, subcommands.ExitSuccess
	}
	switch {
	case errors.Is(err, session.ErrSessionExpired):
		fmt.Fprintln(stderr, "session expired: run 'folio login' again")
	case errors.Is(err, session.ErrNoSession):
		fmt.Fprintln(stderr, "not logged in: run 'folio login'")
	default:
		fmt.Fprintln(stderr, err)
	}
	return nil, subcommands.ExitFailure
}

// failure prints err and maps a rejected token to a sign out.
func failure(a *app.App, err error) subcommands.ExitStatus {
	if session.IsSignedOut(err) {
		if lerr := a.Sessions.Logout(); lerr != nil {
			a.Logger.Warn().Err(lerr).Msg("Failed to clear session")
		}
		fmt.Fprintln(stderr, "session rejected by the server: run 'folio login' again")
		return subcommands.ExitFailure
	}
	fmt.Fprintln(stderr, err)
	return subcommands.ExitFailure
}

// printMarkdown renders md for the terminal, falling back to raw text.
func printMarkdown(md string) {
	r, err := render.NewTerminalRenderer(*style, *wrap)
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	fmt.Fprint(stdout, out)
}

// writeFile writes data to path, reporting where it went.
func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(stdout, "wrote %s\n", path)
	return nil
}
