package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/tdh8316/Pindown/internal/cli"
	"github.com/tdh8316/Pindown/internal/config"
	"github.com/tdh8316/Pindown/internal/download"
	"github.com/tdh8316/Pindown/internal/fetch"
	"github.com/tdh8316/Pindown/internal/httpx"
	"github.com/tdh8316/Pindown/internal/output"
	"github.com/tdh8316/Pindown/internal/pipeline"
)

const (
	exitOK          = 0
	exitInterrupted = 1
	exitInputError  = 1
	exitUsage       = 2
	exitPartial     = 3
)

// Pause after an invalid menu choice.
var invalidChoicePause = time.Second

func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return RunWithInput(ctx, args, os.Stdin, stdout, stderr)
}

// RunWithInput is Run with an explicit stdin, used by the interactive menu.
func RunWithInput(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, args, err := cli.Parse(args, stdout, stderr)
	if err != nil {
		if errors.Is(err, cli.ErrHelp) {
			return exitOK
		}
		fmt.Fprintln(stderr, err.Error())
		return exitUsage
	}

	cfg, err := config.Load(opts.ConfigFile, opts.ConfigExplicit)
	if err != nil {
		fmt.Fprintf(stderr, "config error: %v\n", err)
		return exitUsage
	}
	opts.Apply(&cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "config error: %v\n", err)
		return exitUsage
	}

	color.NoColor = cfg.NoColor
	out := stdout
	if !cfg.NoColor && stdout == os.Stdout {
		out = color.Output
	}
	printer := output.NewPrinter(out, cfg.NoColor)
	log := newLogger(stderr, cfg)

	httpClient, err := httpx.NewClient(cfg.ClientConfig())
	if err != nil {
		fmt.Fprintf(stderr, "failed to initialize HTTP client: %v\n", err)
		return exitUsage
	}
	log.WithFields(logrus.Fields{
		"output":  cfg.OutputDir,
		"proxy":   cfg.Proxy,
		"tor":     cfg.WithTor,
		"timeout": cfg.PageTimeout,
	}).Debug("configured")

	if !cfg.VerifyTLS {
		printer.Warn("TLS certificate verification is disabled. Use --verify-tls to enable it.")
	}

	proc := pipeline.New(
		fetch.New(httpClient,
			fetch.WithTimeout(cfg.PageTimeout),
			fetch.WithUserAgent(cfg.UserAgent),
			fetch.WithLogger(log),
		),
		download.New(httpClient,
			download.WithTimeout(cfg.DownloadTimeout),
			download.WithUserAgent(cfg.UserAgent),
			download.WithLogger(log),
		),
		pipeline.WithLogger(log),
		pipeline.OnFound(printer.Found),
	)

	s := &session{
		proc:    proc,
		printer: printer,
		outDir:  cfg.OutputDir,
	}

	if len(args) > 0 {
		return s.batch(ctx, args, stderr)
	}

	if err := download.EnsureDir(s.outDir); err != nil {
		fmt.Fprintln(stderr, err.Error())
		return exitUsage
	}
	s.in = newLineReader(stdin)
	defer s.in.Close()
	return s.menu(ctx)
}

func newLogger(w io.Writer, cfg config.Config) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableColors:    cfg.NoColor,
	})
	l.SetLevel(logrus.WarnLevel)
	if cfg.Verbose {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

// ParseLinks splits raw on whitespace and commas and keeps the pieces that
// look like Pinterest links.
func ParseLinks(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})

	links := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.Contains(p, "pinterest.") || strings.Contains(p, "pinimg.") {
			links = append(links, p)
		}
	}
	return links
}
