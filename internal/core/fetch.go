package core

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
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/x-stp/crtree/internal/certlib"
	"github.com/x-stp/crtree/internal/metrics"
)

// Source resolves the certificate names recorded below a domain.
// *certlib.Client implements it.
type Source interface {
	Names(ctx context.Context, domain string) ([]string, error)
}

var _ Source = (*certlib.Client)(nil)

// Result is the outcome of one domain lookup.
type Result struct {
	Domain  string
	Names   []string
	Err     error
	Elapsed time.Duration
}

// FetcherConfig holds the fetch pool parameters. Zero fields use the package defaults.
type FetcherConfig struct {
	Workers int
	Rate    rate.Limit
	Burst   int
	// Timeout bounds each lookup, not the whole batch.
	Timeout time.Duration
	// SourceName labels metrics and log lines.
	SourceName string
}

// FetcherStats uses atomic counters so workers can update them without locking.
type FetcherStats struct {
	Requested atomic.Int64
	Succeeded atomic.Int64
	Failed    atomic.Int64
	Names     atomic.Int64
}

// Fetcher resolves domains through a Source with bounded concurrency. All
// workers share one token bucket, so the configured rate holds for the
// whole pool.
type Fetcher struct {
	source  Source
	config  FetcherConfig
	limiter *rate.Limiter
	stats   FetcherStats
}

// NewFetcher creates a Fetcher. A nil config uses the defaults.
func NewFetcher(source Source, config *FetcherConfig) *Fetcher {
	var cfg FetcherConfig
	if config != nil {
		cfg = *config
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.Workers > MaxWorkers {
		cfg.Workers = MaxWorkers
	}
	if cfg.Rate <= 0 {
		cfg.Rate = DefaultRate
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultBurst
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultFetchTimeout
	}
	if cfg.SourceName == "" {
		cfg.SourceName = certlib.SourceName
	}
	return &Fetcher{
		source:  source,
		config:  cfg,
		limiter: rate.NewLimiter(cfg.Rate, cfg.Burst),
	}
}

// Config returns the effective configuration.
func (f *Fetcher) Config() FetcherConfig { return f.config }

// Stats returns the live counters.
func (f *Fetcher) Stats() *FetcherStats { return &f.stats }

// Fetch resolves a single domain, waiting for a rate limiter token first.
// Errors are wrapped with their retryable classification.
func (f *Fetcher) Fetch(ctx context.Context, domain string) ([]string, error) {
	f.stats.Requested.Add(1)
	logger := LoggerFromContext(ctx).With("domain", domain)

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, f.failed(domain, err)
	}

	fctx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	logger.Debug("Querying source", "source", f.config.SourceName)
	names, err := f.source.Names(fctx, domain)
	if err != nil {
		logger.Debug("Lookup failed", "err", err)
		return nil, f.failed(domain, err)
	}

	f.stats.Succeeded.Add(1)
	f.stats.Names.Add(int64(len(names)))
	logger.Debug("Lookup finished", "names", len(names))
	return names, nil
}

func (f *Fetcher) failed(domain string, err error) error {
	f.stats.Failed.Add(1)
	err = classifyFetch(domain, err)
	metrics.GetMetrics().CountFetchError(f.config.SourceName, ErrorType(err))
	return err
}

// FetchAll resolves every domain and returns one Result per input, in input
// order. Domains not yet dispatched when ctx is cancelled carry ctx's error.
// Per-domain failures are reported in the results, not as the returned error.
func (f *Fetcher) FetchAll(ctx context.Context, domains []string) ([]Result, error) {
	if len(domains) == 0 {
		return nil, ErrNoDomains
	}

	results := make([]Result, len(domains))
	for i, d := range domains {
		results[i].Domain = d
	}

	workers := f.config.Workers
	if workers > len(domains) {
		workers = len(domains)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				start := time.Now()
				names, err := f.Fetch(ctx, domains[i])
				results[i].Names = names
				results[i].Err = err
				results[i].Elapsed = time.Since(start)
			}
		}()
	}

	dispatched := 0
dispatch:
	for i := range domains {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- i:
			dispatched++
		}
	}
	close(jobs)
	wg.Wait()

	for i := dispatched; i < len(domains); i++ {
		results[i].Err = f.failed(domains[i], ctx.Err())
	}
	return results, nil
}
