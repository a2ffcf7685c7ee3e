package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/kanellos-me/console/config"
	"github.com/kanellos-me/console/internal/apiclient"
	"github.com/kanellos-me/console/internal/app"
	"github.com/kanellos-me/console/internal/logging"
	"github.com/kanellos-me/console/internal/tracing"
)

const usage = `usage: console [-json] [-email E -password P] <command> [args]

commands:
  login | logout | me | status | register | profile
  forgot-password | reset-password
  route <path>
  tickets   list|mine|show|submit|update|resolve|reopen|delete|replies|reply
  showcase  list|show|create|delete|upload
  demos     list|show|create|delete
  users     list|show|update
  analytics dashboard|watch`

var errUsage = errors.New(usage)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logging.Configure(cfg.App.Environment, cfg.App.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	shutdown, err := tracing.Setup(ctx, cfg.Tracing, cfg.App.Version)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	code := 0
	if err := run(ctx, cfg, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, usage)
			code = 2
		} else {
			fmt.Fprintln(os.Stderr, apiclient.UserMessage(err))
			code = 1
		}
	}
	stop()
	if err := shutdown(context.Background()); err != nil {
		logging.New(context.Background()).LogWarnf("tracing", "flush failed: %v", err)
	}
	os.Exit(code)
}

type cli struct {
	app  *app.App
	out  io.Writer
	json bool
}

func run(ctx context.Context, cfg *config.Config, args []string, out io.Writer, opts ...app.Option) error {
	fs := flag.NewFlagSet("console", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	asJSON := fs.Bool("json", false, "print JSON instead of tables")
	email := fs.String("email", "", "sign in with this email before running the command")
	password := fs.String("password", "", "password for -email")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	rest := fs.Args()
	if len(rest) == 0 {
		return errUsage
	}

	a, err := app.New(ctx, cfg, opts...)
	if err != nil {
		return err
	}
	defer a.Close()

	if *email != "" {
		if err := a.Session.Login(ctx, *email, *password); err != nil {
			return fmt.Errorf("sign in: %w", err)
		}
	}

	c := &cli{app: a, out: out, json: *asJSON}
	cmd, cmdArgs := rest[0], rest[1:]
	switch cmd {
	case "login":
		return c.login(ctx, cmdArgs)
	case "logout":
		return c.logout(ctx)
	case "me":
		return c.me(ctx)
	case "status":
		return c.status(ctx)
	case "register":
		return c.register(ctx, cmdArgs)
	case "profile":
		return c.profile(ctx, cmdArgs)
	case "forgot-password":
		return c.forgotPassword(ctx, cmdArgs)
	case "reset-password":
		return c.resetPassword(ctx, cmdArgs)
	case "route":
		return c.route(ctx, cmdArgs)
	case "tickets":
		return c.tickets(ctx, cmdArgs)
	case "showcase":
		return c.showcase(ctx, cmdArgs)
	case "demos":
		return c.demos(ctx, cmdArgs)
	case "users":
		return c.users(ctx, cmdArgs)
	case "analytics":
		return c.analytics(ctx, cmdArgs)
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

// subcommand splits "<verb> [args]" for the grouped commands.
func subcommand(args []string) (string, []string, error) {
	if len(args) == 0 {
		return "", nil, errUsage
	}
	return args[0], args[1:], nil
}

func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// needArg returns the single positional argument a command requires.
func needArg(fs *flag.FlagSet, what string) (string, error) {
	if fs.NArg() != 1 {
		return "", fmt.Errorf("%s: expected <%s>", fs.Name(), what)
	}
	return fs.Arg(0), nil
}
