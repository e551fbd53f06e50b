package main

/*
crtree — subdomain trees from Certificate Transparency search results
Copyright (C) 2025  Pepijn van der Stap <rxtls@vanderstap.info>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/x-stp/crtree/internal/certlib"
	"github.com/x-stp/crtree/internal/client"
	"github.com/x-stp/crtree/internal/config"
	"github.com/x-stp/crtree/internal/core"
	"github.com/x-stp/crtree/internal/forest"
	"github.com/x-stp/crtree/internal/metrics"
	"github.com/x-stp/crtree/internal/tree"
	"github.com/x-stp/crtree/internal/util"
)

// errReported marks failures whose message was already printed.
var errReported = errors.New("failure already reported")

// newSource builds the name source for a run.
var newSource = func(cfg config.Config) core.Source {
	return &certlib.Client{
		BaseURL:     cfg.Fetch.BaseURL,
		UserAgent:   cfg.Fetch.UserAgent,
		IncludeSANs: cfg.SANs,
		Normalize:   cfg.Normalize,
	}
}

// rootOptions holds the raw flag values. Flag values in flags only override
// the config file when the flag was set explicitly.
type rootOptions struct {
	domains    []string
	input      string
	outDir     string
	configPath string
	verbose    bool
	flags      config.Config
}

func newRootCmd() *cobra.Command {
	o := &rootOptions{flags: config.Default()}

	root := &cobra.Command{
		Use:   "crtree -d DOMAIN [flags]",
		Short: "crtree - subdomain trees from Certificate Transparency search results",
		Long: `crtree looks up every certificate crt.sh knows for a domain and prints the
names it finds as trees, one per second-level grouping.`,
		Example: `  crtree -d example.com
  crtree -d example.com -d example.org --style ascii --no-color
  crtree --input names.txt --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := log.InfoLevel
			if o.verbose {
				level = log.DebugLevel
			}
			cmd.SetContext(core.WithLogger(cmd.Context(), core.NewLogger(cmd.ErrOrStderr(), level)))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(o.domains) == 0 && o.input == "" {
				return cmd.Help()
			}
			return o.run(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.BoolVarP(&o.verbose, "verbose", "v", false, "Enable debug logging")
	pf.StringVarP(&o.configPath, "config", "c", "", "Config file (default $XDG_CONFIG_HOME/crtree/config.toml)")
	pf.StringVar(&o.flags.Server.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	pf.BoolVar(&o.flags.SANs, "sans", false, "Also use the subject alternative names of each certificate")
	pf.BoolVar(&o.flags.Normalize, "normalize", false, "Lowercase names and trim surrounding dots before building")
	pf.IntVar(&o.flags.Fetch.Workers, "workers", o.flags.Fetch.Workers, "Number of domains fetched concurrently")
	pf.Float64Var(&o.flags.Fetch.Rate, "rate", o.flags.Fetch.Rate, "Maximum crt.sh requests per second")
	pf.DurationVar(&o.flags.Fetch.Timeout.Duration, "timeout", o.flags.Fetch.Timeout.Duration, "Timeout for a single domain lookup")
	pf.StringVar(&o.flags.Fetch.UserAgent, "user-agent", "", "User-Agent sent to crt.sh")
	pf.StringVar(&o.flags.Fetch.BaseURL, "base-url", "", "crt.sh base URL")

	f := root.Flags()
	f.StringSliceVarP(&o.domains, "domain", "d", nil, "Domain name to search (repeatable)")
	f.StringVarP(&o.input, "input", "i", "", "Read names from a file instead of crt.sh, one per line (- for stdin)")
	f.StringVarP(&o.outDir, "out-dir", "o", "", "Write one file per domain into this directory")
	f.BoolVarP(&o.flags.NoColor, "no-color", "n", false, "Disable header and colored output")
	f.StringVarP(&o.flags.Style, "style", "s", o.flags.Style, "Tree style (see 'crtree styles')")
	f.BoolVar(&o.flags.IncludeRoot, "include-root", false, "Draw each root with a branch glyph")
	f.IntVar(&o.flags.Spaces, "spaces", 0, "Blanks between a branch glyph and the name")
	f.StringVar(&o.flags.Wildcards, "wildcards", o.flags.Wildcards, "Wildcard labels: keep, strip or drop")
	f.StringVarP(&o.flags.Format, "format", "f", o.flags.Format, "Output format: text, json or yaml")

	root.AddCommand(newStylesCmd())
	root.AddCommand(newServeCmd(o))
	return root
}

// settingFlags maps flag names to the config field they override.
var settingFlags = map[string]func(dst *config.Config, src config.Config){
	"metrics-addr": func(d *config.Config, s config.Config) { d.Server.MetricsAddr = s.Server.MetricsAddr },
	"sans":         func(d *config.Config, s config.Config) { d.SANs = s.SANs },
	"normalize":    func(d *config.Config, s config.Config) { d.Normalize = s.Normalize },
	"workers":      func(d *config.Config, s config.Config) { d.Fetch.Workers = s.Fetch.Workers },
	"rate":         func(d *config.Config, s config.Config) { d.Fetch.Rate = s.Fetch.Rate },
	"timeout":      func(d *config.Config, s config.Config) { d.Fetch.Timeout = s.Fetch.Timeout },
	"user-agent":   func(d *config.Config, s config.Config) { d.Fetch.UserAgent = s.Fetch.UserAgent },
	"base-url":     func(d *config.Config, s config.Config) { d.Fetch.BaseURL = s.Fetch.BaseURL },
	"no-color":     func(d *config.Config, s config.Config) { d.NoColor = s.NoColor },
	"style":        func(d *config.Config, s config.Config) { d.Style = s.Style },
	"include-root": func(d *config.Config, s config.Config) { d.IncludeRoot = s.IncludeRoot },
	"spaces":       func(d *config.Config, s config.Config) { d.Spaces = s.Spaces },
	"wildcards":    func(d *config.Config, s config.Config) { d.Wildcards = s.Wildcards },
	"format":       func(d *config.Config, s config.Config) { d.Format = s.Format },
	"addr":         func(d *config.Config, s config.Config) { d.Server.Addr = s.Server.Addr },
}

// loadConfig reads the config file and applies explicitly set flags on top.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return cfg, err
	}
	for name, apply := range settingFlags {
		if fl := cmd.Flags().Lookup(name); fl != nil && fl.Changed {
			apply(&cfg, o.flags)
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// settings resolves the rendering configuration.
type settings struct {
	tree      tree.Options
	wildcards forest.WildcardPolicy
	format    core.Format
}

func resolveSettings(cfg config.Config) (settings, error) {
	style, err := tree.LookupStyle(cfg.Style)
	if err != nil {
		return settings{}, err
	}
	policy, err := forest.ParseWildcardPolicy(cfg.Wildcards)
	if err != nil {
		return settings{}, err
	}
	format, err := core.ParseFormat(cfg.Format)
	if err != nil {
		return settings{}, err
	}
	return settings{
		tree:      tree.Options{Style: style, IncludeRoot: cfg.IncludeRoot, Spaces: cfg.Spaces},
		wildcards: policy,
		format:    format,
	}, nil
}

// newFetcher configures the shared HTTP client and the fetch pool from cfg.
func newFetcher(cfg config.Config) *core.Fetcher {
	client.InitHTTPClient(&client.Config{
		MaxConnsPerHost: cfg.Fetch.Workers,
		RequestTimeout:  cfg.Fetch.Timeout.Duration,
	})
	return core.NewFetcher(newSource(cfg), &core.FetcherConfig{
		Workers: cfg.Fetch.Workers,
		Rate:    rate.Limit(cfg.Fetch.Rate),
		Burst:   cfg.Fetch.Burst,
		Timeout: cfg.Fetch.Timeout.Duration,
	})
}

// startMetrics enables collection and the metrics listener when addr is set.
// The returned function stops the listener.
func startMetrics(logger *log.Logger, addr string) func() {
	if addr == "" {
		return func() {}
	}
	metrics.EnableMetrics()
	if err := metrics.StartMetricsServer(addr); err != nil {
		logger.Warn("Failed to start metrics server", "err", err)
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metrics.ShutdownMetricsServer(ctx); err != nil {
			logger.Warn("Metrics server shutdown failed", "err", err)
		}
	}
}

func (o *rootOptions) run(cmd *cobra.Command) error {
	ctx := cmd.Context()
	logger := core.LoggerFromContext(ctx)

	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return err
	}
	s, err := resolveSettings(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	s.tree.Colored = s.format == core.FormatText && o.outDir == "" && colorEnabled(cfg.NoColor, out)
	if s.tree.Colored {
		printBanner(out)
	}

	defer startMetrics(logger, cfg.Server.MetricsAddr)()

	if o.outDir != "" {
		if err := os.MkdirAll(o.outDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory '%s': %w", o.outDir, err)
		}
	}

	if o.input != "" {
		return o.runInput(ctx, cmd.InOrStdin(), out, s)
	}
	return o.runDomains(ctx, out, cfg, s)
}

// runInput builds a single forest from names read from a file or stdin.
func (o *rootOptions) runInput(ctx context.Context, stdin io.Reader, out io.Writer, s settings) error {
	r := stdin
	label := "stdin"
	if o.input != "-" {
		f, err := os.Open(o.input)
		if err != nil {
			return fmt.Errorf("error opening input: %w", err)
		}
		defer f.Close()
		r = f
		label = strings.TrimSuffix(filepath.Base(o.input), filepath.Ext(o.input))
	}

	names, err := core.ReadNames(r)
	if err != nil {
		return err
	}
	return o.emit(ctx, out, label, names, s)
}

// runDomains fetches every domain and prints one block per domain in input order.
func (o *rootOptions) runDomains(ctx context.Context, out io.Writer, cfg config.Config, s settings) error {
	logger := core.LoggerFromContext(ctx)

	domains, err := normalizeDomains(o.domains)
	if err != nil {
		return err
	}

	fetcher := newFetcher(cfg)
	progress := core.NewProgress(logger)
	results, err := fetcher.FetchAll(ctx, domains)
	if err != nil {
		return err
	}
	stats := fetcher.Stats()
	progress.Done(fmt.Sprintf("Fetched %d domains", len(domains)),
		"failed", stats.Failed.Load(), "names", stats.Names.Load())

	failed := false
	for i, res := range results {
		if i > 0 && o.outDir == "" && s.format == core.FormatText {
			fmt.Fprintln(out)
		}
		if res.Err != nil {
			logger.Error("Lookup failed", "domain", res.Domain, "retryable", core.IsRetryable(res.Err), "err", res.Err)
			fmt.Fprintln(out, core.MsgFetchFailed)
			failed = true
			continue
		}
		if err := o.emit(ctx, out, res.Domain, res.Names, s); err != nil {
			logger.Error("Rendering failed", "domain", res.Domain, "err", err)
			failed = true
		}
	}
	if failed {
		return errReported
	}
	return nil
}

// emit builds and writes the forest for names.
func (o *rootOptions) emit(ctx context.Context, out io.Writer, label string, names []string, s settings) error {
	if len(names) == 0 {
		fmt.Fprintln(out, core.MsgNoData)
		return nil
	}

	f, err := core.Build(ctx, names, s.wildcards)
	if err != nil {
		return err
	}
	// Names without a second-level grouping (e.g. "localhost") render nothing.
	if len(f.Roots()) == 0 {
		fmt.Fprintln(out, core.MsgNoData)
		return nil
	}

	body, err := core.Render(f, label, s.format, s.tree)
	if err != nil {
		return err
	}
	if s.format == core.FormatText {
		body = append(body, '\n')
	}

	if o.outDir == "" {
		_, err = out.Write(body)
		return err
	}

	ext := string(s.format)
	if s.format == core.FormatText {
		ext = "txt"
	}
	path := util.OutputPath(o.outDir, label, ext)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	core.LoggerFromContext(ctx).Info("Wrote tree", "domain", label, "path", path, "names", f.Len())
	return nil
}

// normalizeDomains cleans and deduplicates the requested domains, keeping order.
func normalizeDomains(in []string) ([]string, error) {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, d := range in {
		n := certlib.NormalizeDomain(d)
		if n == "" {
			return nil, fmt.Errorf("invalid domain %q", d)
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, core.ErrNoDomains
	}
	return out, nil
}
