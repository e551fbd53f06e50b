package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/x-stp/crtree/internal/certlib"
	"github.com/x-stp/crtree/internal/config"
	"github.com/x-stp/crtree/internal/core"
	"github.com/x-stp/crtree/internal/tree"
)

type fakeSource map[string][]string

func (f fakeSource) Names(ctx context.Context, domain string) ([]string, error) {
	if domain == "down.example" {
		return nil, fmt.Errorf("%w: HTTP 503", certlib.ErrUpstream)
	}
	return f[domain], nil
}

var testNames = fakeSource{
	"example.com":   {"example.com", "www.example.com", "mail.example.com", "www.example.com"},
	"example.org":   {"a.example.org"},
	"empty.example": nil,
	"tld.example":   {"localhost", "com"},
}

func TestMain(m *testing.M) {
	for _, key := range []string{"NO_COLOR", "CLICOLOR", "CLICOLOR_FORCE"} {
		os.Unsetenv(key)
	}
	os.Exit(m.Run())
}

// runCLI executes the root command against the fake source.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	prev := newSource
	newSource = func(config.Config) core.Source { return testNames }
	t.Cleanup(func() { newSource = prev })

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(append([]string{"--rate", "1000"}, args...))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestSingleDomain(t *testing.T) {
	out, _, err := runCLI(t, "-d", "example.com")
	require.NoError(t, err)
	assert.Equal(t, "example.com\n├─mail.example.com\n└─www.example.com\n", out)
}

func TestMultipleDomainsKeepOrder(t *testing.T) {
	out, _, err := runCLI(t, "-d", "example.org", "-d", "EXAMPLE.com.", "-d", "example.org", "--style", "ascii")
	require.NoError(t, err)
	want := "example.org\n\\-a.example.org\n" +
		"\n" +
		"example.com\n+-mail.example.com\n\\-www.example.com\n"
	assert.Equal(t, want, out)
}

func TestColoredOutputWithBanner(t *testing.T) {
	t.Setenv("CLICOLOR_FORCE", "1")
	out, _, err := runCLI(t, "-d", "example.org")
	require.NoError(t, err)

	var banner bytes.Buffer
	printBanner(&banner)
	want := banner.String() +
		tree.ColorFor(0) + "example.org" + tree.Reset + "\n" +
		tree.ColorFor(0) + tree.ColorFor(1) + "└─a.example.org" + tree.Reset + tree.Reset + "\n"
	assert.Equal(t, want, out)
}

func TestNoColorFlagSuppressesBanner(t *testing.T) {
	t.Setenv("CLICOLOR_FORCE", "1")
	out, _, err := runCLI(t, "-d", "example.org", "-n")
	require.NoError(t, err)
	assert.Equal(t, "example.org\n└─a.example.org\n", out)
}

func TestColorEnabled(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, colorEnabled(false, &buf))
	assert.False(t, colorEnabled(true, &buf))

	t.Setenv("CLICOLOR_FORCE", "1")
	assert.True(t, colorEnabled(false, &buf))
	assert.False(t, colorEnabled(true, &buf))

	t.Setenv("NO_COLOR", "1")
	assert.False(t, colorEnabled(false, &buf))
}

func TestNoDataFound(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{"no names", []string{"-d", "empty.example"}},
		{"no second-level names", []string{"-d", "tld.example"}},
		{"no second-level names as json", []string{"-d", "tld.example", "--format", "json"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, _, err := runCLI(t, tc.args...)
			require.NoError(t, err)
			assert.Equal(t, "No data found\n", out)
		})
	}
}

func TestFetchFailure(t *testing.T) {
	out, stderr, err := runCLI(t, "-d", "down.example", "-d", "example.org")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errReported))
	assert.Equal(t, "Error: Unable to fetch data from crt.sh\n\nexample.org\n└─a.example.org\n", out)
	assert.Contains(t, stderr, "Lookup failed")
}

func TestInvalidDomain(t *testing.T) {
	_, _, err := runCLI(t, "-d", " . ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid domain")
}

func TestUnknownStyle(t *testing.T) {
	_, _, err := runCLI(t, "-d", "example.com", "--style", "fancy")
	require.Error(t, err)
	assert.True(t, errors.Is(err, tree.ErrUnknownStyle))
}

func TestInputFileJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "names.txt")
	require.NoError(t, os.WriteFile(path, []byte("# names\nwww.example.net\n*.example.net\n"), 0o600))

	out, _, err := runCLI(t, "--input", path, "--format", "json", "--wildcards", "drop")
	require.NoError(t, err)

	var doc core.Document
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "names", doc.Domain)
	assert.Equal(t, 3, doc.Names)
	require.Len(t, doc.Trees, 1)
	assert.Equal(t, "example.net", doc.Trees[0].Name)
}

func TestOutDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "trees")
	out, stderr, err := runCLI(t, "-d", "example.com", "-d", "example.org", "--out-dir", dir, "--style", "ascii")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Contains(t, stderr, "Wrote tree")

	b, err := os.ReadFile(filepath.Join(dir, "example.com.txt"))
	require.NoError(t, err)
	assert.Equal(t, "example.com\n+-mail.example.com\n\\-www.example.com\n", string(b))
	assert.FileExists(t, filepath.Join(dir, "example.org.txt"))
}

func TestConfigFileAndFlagPrecedence(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("style = \"ascii\"\ninclude_root = true\n"), 0o600))

	out, _, err := runCLI(t, "-d", "example.org", "--config", cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "\\-example.org\n  \\-a.example.org\n", out)

	out, _, err = runCLI(t, "-d", "example.org", "--config", cfgPath, "--style", "yaml")
	require.NoError(t, err)
	assert.Equal(t, "-example.org\n -a.example.org\n", out)
}

func TestNoArgsShowsHelp(t *testing.T) {
	out, _, err := runCLI(t)
	require.NoError(t, err)
	assert.Contains(t, out, "crtree -d DOMAIN [flags]")
}

func TestNormalizeDomains(t *testing.T) {
	got, err := normalizeDomains([]string{"Example.com", "example.com.", "b.org"})
	require.NoError(t, err)
	assert.Equal(t, []string{"example.com", "b.org"}, got)

	_, err = normalizeDomains(nil)
	assert.True(t, errors.Is(err, core.ErrNoDomains))
}

func TestStylesCommand(t *testing.T) {
	out, _, err := runCLI(t, "styles")
	require.NoError(t, err)
	for _, name := range tree.StyleNames() {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "└─www.example.com")
	assert.Contains(t, out, "(default)")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	printBanner(&buf)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 6)
	for i, line := range lines[:5] {
		assert.True(t, strings.HasPrefix(line, tree.ColorFor(i+1)), "line %d", i)
		assert.True(t, strings.HasSuffix(line, tree.Reset), "line %d", i)
	}
	assert.Equal(t, "", lines[5])
}
