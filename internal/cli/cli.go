package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	ucli "github.com/urfave/cli/v2"

	"github.com/tdh8316/Pindown/internal/config"
	"github.com/tdh8316/Pindown/internal/download"
	"github.com/tdh8316/Pindown/internal/fetch"
)

var ErrHelp = errors.New("help requested")

// Options holds the parsed flags. Only flags given on the command line are
// applied over the loaded configuration.
type Options struct {
	ConfigFile     string
	ConfigExplicit bool

	OutputDir       string
	PageTimeout     time.Duration
	DownloadTimeout time.Duration
	VerifyTLS       bool
	Proxy           string
	WithTor         bool
	NoColor         bool
	Verbose         bool

	set map[string]bool
}

const usageText = `pindown [flags] [LINK...]

   Without links an interactive menu is shown. With links every link is
   downloaded in order and the program exits.`

func newApp(stdout, stderr io.Writer) *ucli.App {
	return &ucli.App{
		Name:            "pindown",
		Usage:           "download the best image or video from Pinterest pin pages",
		UsageText:       usageText,
		HideHelpCommand: true,
		Writer:          stdout,
		ErrWriter:       stderr,
		Flags: []ucli.Flag{
			&ucli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output `DIR` (default: ./downloads)"},
			&ucli.StringFlag{Name: "config", Value: config.DefaultFile, Usage: "YAML config `FILE`"},
			&ucli.DurationFlag{Name: "timeout", Value: fetch.DefaultTimeout, Usage: "page fetch timeout"},
			&ucli.DurationFlag{Name: "download-timeout", Value: download.DefaultTimeout, Usage: "asset download timeout"},
			&ucli.BoolFlag{Name: "verify-tls", Usage: "verify TLS certificates"},
			&ucli.StringFlag{Name: "proxy", Usage: "http(s) or socks5 proxy `URL`"},
			&ucli.BoolFlag{Name: "tor", Aliases: []string{"t"}, Usage: "route requests through the local Tor proxy"},
			&ucli.BoolFlag{Name: "no-color", Usage: "disable colored output"},
			&ucli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "debug logging on stderr"},
		},
		OnUsageError: func(_ *ucli.Context, err error, _ bool) error {
			return err
		},
		// Never let the library call os.Exit.
		ExitErrHandler: func(*ucli.Context, error) {},
	}
}

func Parse(args []string, stdout, stderr io.Writer) (Options, []string, error) {
	var (
		opts  Options
		links []string
		ran   bool
	)

	app := newApp(stdout, stderr)
	app.Action = func(c *ucli.Context) error {
		ran = true
		opts = Options{
			ConfigFile:      c.String("config"),
			ConfigExplicit:  c.IsSet("config"),
			OutputDir:       c.String("output"),
			PageTimeout:     c.Duration("timeout"),
			DownloadTimeout: c.Duration("download-timeout"),
			VerifyTLS:       c.Bool("verify-tls"),
			Proxy:           c.String("proxy"),
			WithTor:         c.Bool("tor"),
			NoColor:         c.Bool("no-color"),
			Verbose:         c.Bool("verbose"),
			set:             map[string]bool{},
		}
		for _, f := range c.App.Flags {
			name := f.Names()[0]
			if c.IsSet(name) {
				opts.set[name] = true
			}
		}
		links = c.Args().Slice()
		return nil
	}

	if err := app.Run(append([]string{app.Name}, args...)); err != nil {
		return Options{}, nil, fmt.Errorf("incorrect usage: %w", err)
	}
	if !ran {
		return Options{}, nil, ErrHelp
	}
	return opts, links, nil
}

// IsSet reports whether flag name was given on the command line.
func (o Options) IsSet(name string) bool {
	return o.set[name]
}

// Apply overrides cfg with the flags that were set explicitly.
func (o Options) Apply(cfg *config.Config) {
	if o.IsSet("output") {
		cfg.OutputDir = config.ExpandPath(o.OutputDir)
	}
	if o.IsSet("timeout") {
		cfg.PageTimeout = o.PageTimeout
	}
	if o.IsSet("download-timeout") {
		cfg.DownloadTimeout = o.DownloadTimeout
	}
	if o.IsSet("verify-tls") {
		cfg.VerifyTLS = o.VerifyTLS
	}
	if o.IsSet("proxy") {
		cfg.Proxy = o.Proxy
	}
	if o.IsSet("tor") {
		cfg.WithTor = o.WithTor
	}
	if o.IsSet("no-color") {
		cfg.NoColor = o.NoColor
	}
	if o.IsSet("verbose") {
		cfg.Verbose = o.Verbose
	}
}
