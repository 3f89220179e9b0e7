package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"

	"github.com/bobmcallan/folio/internal/models"
	"github.com/bobmcallan/folio/internal/services/session"
)

type loginCmd struct {
	token string
	name  string
	email string
}

func (*loginCmd) Name() string     { return "login" }
func (*loginCmd) Synopsis() string { return "store a backend-issued access token" }
func (*loginCmd) Usage() string {
	return `folio login -token <token> [-name <name>] [-email <email>]

  Stores the token and user identity in the local session file. When the
  token is a JWT, missing name and email are read from its claims.
`
}

func (c *loginCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.token, "token", "", "Access token issued by the portfolio backend.")
	f.StringVar(&c.name, "name", "", "Display name.")
	f.StringVar(&c.email, "email", "", "Email address.")
}

func (c *loginCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	token := c.token
	if token == "" && f.NArg() > 0 {
		token = f.Arg(0)
	}
	if strings.TrimSpace(token) == "" {
		fmt.Fprintln(stderr, "a token is required")
		return subcommands.ExitUsageError
	}

	a, err := openApp()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	sess, err := a.Sessions.Login(token, models.User{Name: c.name, Email: c.email})
	if err != nil {
		if errors.Is(err, session.ErrMissingName) {
			fmt.Fprintln(stderr, "the token carries no name: pass -name")
			return subcommands.ExitUsageError
		}
		fmt.Fprintln(stderr, err)
		return subcommands.ExitFailure
	}

	fmt.Fprintf(stdout, "Logged in as %s\n", sess.User.Name)
	return subcommands.ExitSuccess
}

type logoutCmd struct{}

func (*logoutCmd) Name() string     { return "logout" }
func (*logoutCmd) Synopsis() string { return "clear the stored session" }
func (*logoutCmd) Usage() string {
	return `folio logout

  Removes the stored token and user.
`
}
func (*logoutCmd) SetFlags(*flag.FlagSet) {}

func (*logoutCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if err := a.Sessions.Logout(); err != nil {
		fmt.Fprintln(stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintln(stdout, "Logged out")
	return subcommands.ExitSuccess
}

type whoamiCmd struct{}

func (*whoamiCmd) Name() string     { return "whoami" }
func (*whoamiCmd) Synopsis() string { return "show the signed-in user" }
func (*whoamiCmd) Usage() string {
	return `folio whoami
`
}
func (*whoamiCmd) SetFlags(*flag.FlagSet) {}

func (*whoamiCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	fmt.Fprintln(stdout, sess.User.Name)
	if sess.User.Email != "" {
		fmt.Fprintln(stdout, sess.User.Email)
	}
	if !sess.ExpiresAt.IsZero() {
		fmt.Fprintf(stdout, "expires %s\n", sess.ExpiresAt.Local().Format("2006-01-02 15:04"))
	}
	return subcommands.ExitSuccess
}
