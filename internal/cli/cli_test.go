package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdh8316/Pindown/internal/config"
)

func parse(t *testing.T, args ...string) (Options, []string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	opts, links, err := Parse(args, &stdout, &stderr)
	return opts, links, stdout.String(), err
}

func TestParse_Defaults(t *testing.T) {
	opts, links, _, err := parse(t)
	require.NoError(t, err)

	assert.Empty(t, links)
	assert.Equal(t, config.DefaultFile, opts.ConfigFile)
	assert.False(t, opts.ConfigExplicit)
	assert.Equal(t, 20*time.Second, opts.PageTimeout)
	assert.False(t, opts.IsSet("timeout"))
	assert.False(t, opts.IsSet("output"))
}

func TestParse_FlagsAndLinks(t *testing.T) {
	opts, links, _, err := parse(t,
		"-o", "/tmp/pins",
		"--config", "custom.yaml",
		"--timeout", "5s",
		"--download-timeout", "1m",
		"--verify-tls",
		"--proxy", "http://127.0.0.1:8080",
		"-t", "-v", "--no-color",
		"https://www.pinterest.com/pin/1234567890/",
		"https://pin.it/abc",
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"https://www.pinterest.com/pin/1234567890/", "https://pin.it/abc"}, links)
	assert.Equal(t, "/tmp/pins", opts.OutputDir)
	assert.Equal(t, "custom.yaml", opts.ConfigFile)
	assert.True(t, opts.ConfigExplicit)
	assert.Equal(t, 5*time.Second, opts.PageTimeout)
	assert.Equal(t, time.Minute, opts.DownloadTimeout)
	assert.True(t, opts.VerifyTLS)
	assert.Equal(t, "http://127.0.0.1:8080", opts.Proxy)
	assert.True(t, opts.WithTor)
	assert.True(t, opts.Verbose)
	assert.True(t, opts.NoColor)
	assert.True(t, opts.IsSet("output"), "alias -o marks output as set")
	assert.True(t, opts.IsSet("tor"))
}

func TestParse_Help(t *testing.T) {
	for _, arg := range []string{"-h", "--help"} {
		_, _, out, err := parse(t, arg)
		assert.ErrorIs(t, err, ErrHelp)
		assert.Contains(t, out, "pindown")
		assert.Contains(t, out, "--download-timeout")
	}
}

func TestParse_Errors(t *testing.T) {
	tests := [][]string{
		{"--bogus"},
		{"--timeout", "soon"},
	}
	for _, args := range tests {
		_, _, _, err := parse(t, args...)
		assert.Error(t, err, args)
		assert.NotErrorIs(t, err, ErrHelp)
	}
}

func TestApply_OnlySetFlagsOverride(t *testing.T) {
	cfg := config.Default()
	cfg.PageTimeout = 7 * time.Second
	cfg.Proxy = "socks5://127.0.0.1:9050"

	opts, _, _, err := parse(t, "--download-timeout", "45s", "--verify-tls")
	require.NoError(t, err)
	opts.Apply(&cfg)

	assert.Equal(t, 7*time.Second, cfg.PageTimeout, "unset flag keeps the config value")
	assert.Equal(t, 45*time.Second, cfg.DownloadTimeout)
	assert.True(t, cfg.VerifyTLS)
	assert.Equal(t, "socks5://127.0.0.1:9050", cfg.Proxy)
}

func TestApply_OutputIsExpanded(t *testing.T) {
	cfg := config.Default()
	opts, _, _, err := parse(t, "--output", "rel/pins")
	require.NoError(t, err)
	opts.Apply(&cfg)

	assert.Equal(t, config.ExpandPath("rel/pins"), cfg.OutputDir)
}
