// Command sitectl is a terminal client for the admin API. It keeps the
// backend session in its own cookie jar and reads through a long-lived
// cache, the same way a browser client would.
//
// Usage:
//
//	sitectl [flags] login|me|sites|products|watch
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/dmitrymomot/sitekit/internal/config"
	"github.com/dmitrymomot/sitekit/pkg/logger"
)

// ErrUnknownCommand is returned for a missing or unrecognized command.
var ErrUnknownCommand = errors.New("sitectl: unknown command")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "sitectl:", err)
		}
		os.Exit(1)
	}
}

// flags are the command line options shared by all commands.
type flags struct {
	email    string
	password string
	site     string
	search   string
	page     int
	limit    int
	interval time.Duration
	updates  int
	verbose  bool
}

func parseFlags(args []string, stderr io.Writer) (*flags, []string, error) {
	f := &flags{}
	fs := pflag.NewFlagSet("sitectl", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&f.email, "email", "e", "", "login email (defaults to API_TEST_EMAIL)")
	fs.StringVarP(&f.password, "password", "p", "", "login password (defaults to API_TEST_PASSWORD)")
	fs.StringVar(&f.site, "site", "", "filter by site id")
	fs.StringVarP(&f.search, "search", "s", "", "search term")
	fs.IntVar(&f.page, "page", 1, "page number")
	fs.IntVar(&f.limit, "limit", 20, "page size")
	fs.DurationVar(&f.interval, "interval", 30*time.Second, "watch: refresh interval")
	fs.IntVar(&f.updates, "updates", 0, "watch: stop after this many updates (0 runs until interrupted)")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: sitectl [flags] login|me|sites|products|watch")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// run executes one command. cfgOpts are passed to config.Load.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, cfgOpts ...config.Option) error {
	f, rest, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if len(rest) == 0 {
		return ErrUnknownCommand
	}

	cfg, err := config.Load(cfgOpts...)
	if err != nil {
		return err
	}
	logCfg := cfg.Log
	logCfg.Output = stderr
	logCfg.Format = "text"
	if f.verbose {
		logCfg.Level = "debug"
	}
	log := logger.New(logCfg)

	cmds := map[string]func(context.Context, *client, *flags, io.Writer) error{
		"login":    cmdLogin,
		"me":       cmdMe,
		"sites":    cmdSites,
		"products": cmdProducts,
		"watch":    cmdWatch,
	}
	cmd, ok := cmds[rest[0]]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, rest[0])
	}

	c, err := newClient(cfg, f, log)
	if err != nil {
		return err
	}
	defer c.Close()

	return cmd(ctx, c, f, stdout)
}
