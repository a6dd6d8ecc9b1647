// Package config loads pindown settings from defaults, an optional YAML file,
// a .env file and PINDOWN_* environment variables, in that order.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/tdh8316/Pindown/internal/download"
	"github.com/tdh8316/Pindown/internal/fetch"
	"github.com/tdh8316/Pindown/internal/httpx"
)

const DefaultFile = "pindown.yaml"

const envPrefix = "PINDOWN_"

type Config struct {
	OutputDir       string        `yaml:"output_dir"`
	PageTimeout     time.Duration `yaml:"page_timeout"`
	DownloadTimeout time.Duration `yaml:"download_timeout"`
	VerifyTLS       bool          `yaml:"verify_tls"`
	UserAgent       string        `yaml:"user_agent"`
	Proxy           string        `yaml:"proxy"`
	WithTor         bool          `yaml:"tor"`
	NoColor         bool          `yaml:"no_color"`
	Verbose         bool          `yaml:"verbose"`
}

// Default returns the built-in settings. OutputDir is ./downloads under the
// current working directory.
func Default() Config {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	return Config{
		OutputDir:       filepath.Join(cwd, "downloads"),
		PageTimeout:     fetch.DefaultTimeout,
		DownloadTimeout: download.DefaultTimeout,
		UserAgent:       httpx.DefaultUserAgent,
	}
}

// Load layers path (if it exists), .env and the environment over Default().
// A missing file is only an error when explicit is true.
func Load(path string, explicit bool) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse %s: %w", path, err)
			}
		case os.IsNotExist(err) && !explicit:
		default:
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	// .env never overrides variables already set in the process.
	_ = godotenv.Load()

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}

	cfg.OutputDir = ExpandPath(cfg.OutputDir)
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(envPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) error {
		v, ok := lookup(envPrefix + key)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, key, err)
		}
		*dst = b
		return nil
	}
	duration := func(key string, dst *time.Duration) error {
		v, ok := lookup(envPrefix + key)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, key, err)
		}
		*dst = d
		return nil
	}

	str("OUTPUT_DIR", &cfg.OutputDir)
	str("USER_AGENT", &cfg.UserAgent)
	str("PROXY", &cfg.Proxy)

	for _, err := range []error{
		duration("PAGE_TIMEOUT", &cfg.PageTimeout),
		duration("DOWNLOAD_TIMEOUT", &cfg.DownloadTimeout),
		boolean("VERIFY_TLS", &cfg.VerifyTLS),
		boolean("TOR", &cfg.WithTor),
		boolean("NO_COLOR", &cfg.NoColor),
		boolean("VERBOSE", &cfg.Verbose),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

func (c Config) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("output directory is empty")
	}
	if c.PageTimeout <= 0 {
		return fmt.Errorf("page timeout must be positive, got %s", c.PageTimeout)
	}
	if c.DownloadTimeout <= 0 {
		return fmt.Errorf("download timeout must be positive, got %s", c.DownloadTimeout)
	}
	if c.Proxy != "" {
		u, err := url.Parse(c.Proxy)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid proxy url %q", c.Proxy)
		}
	}
	return nil
}

// ClientConfig maps the settings onto an HTTP client configuration. The
// client's header timeout is the longer of the two; each fetch and download
// applies its own timeout on top.
func (c Config) ClientConfig() httpx.ClientConfig {
	timeout := c.PageTimeout
	if c.DownloadTimeout > timeout {
		timeout = c.DownloadTimeout
	}
	return httpx.ClientConfig{
		Timeout:            timeout,
		InsecureSkipVerify: !c.VerifyTLS,
		ProxyURL:           c.Proxy,
		WithTor:            c.WithTor,
	}
}

// ExpandPath resolves a leading ~ and makes p absolute.
func ExpandPath(p string) string {
	if p == "" {
		return p
	}
	if p == "~" || len(p) > 1 && p[0] == '~' && os.IsPathSeparator(p[1]) {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, p[1:])
		}
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
