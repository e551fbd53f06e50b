package certlib

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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/x-stp/crtree/internal/client"
	"github.com/x-stp/crtree/internal/metrics"
)

// Constants related to the crt.sh search endpoint.
const (
	DefaultBaseURL = "https://crt.sh/"
	SourceName     = "crt.sh"
	// DefaultUserAgent mimics a browser; crt.sh throttles unknown agents harder.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.3"
)

// ErrUpstream is returned when crt.sh answers with a non-200 status.
var ErrUpstream = errors.New("unexpected response from crt.sh")

// Client queries crt.sh for the certificates issued below a domain.
// The zero value is usable and talks to DefaultBaseURL with the shared HTTP client.
type Client struct {
	HTTPClient  *http.Client
	BaseURL     string
	UserAgent   string
	IncludeSANs bool
	Normalize   bool
}

// QueryURL returns the JSON search URL matching every name below domain.
func (c *Client) QueryURL(domain string) (string, error) {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid crt.sh base URL %q: %w", base, err)
	}
	q := u.Query()
	q.Set("q", "%."+strings.TrimSpace(domain))
	q.Set("output", "json")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Records performs a single search request for domain. No retry is attempted.
// Operation: Network bound. Allocates during HTTP fetch and JSON parsing.
func (c *Client) Records(ctx context.Context, domain string) ([]Record, error) {
	m := metrics.GetMetrics()
	defer metrics.MeasureDuration(m.FetchDuration, map[string]string{"source": SourceName})()

	target, err := c.QueryURL(domain)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	ua := c.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "application/json")

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = client.GetHTTPClient()
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		m.CountFetch(SourceName, "error")
		return nil, fmt.Errorf("error querying %s for %s: %w", SourceName, domain, err)
	}
	defer resp.Body.Close()
	m.CountFetch(SourceName, strconv.Itoa(resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d for %s", ErrUpstream, resp.StatusCode, domain)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading %s response body: %w", SourceName, err)
	}

	var records []Record
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("error parsing %s JSON for %s: %w", SourceName, domain, err)
	}
	return records, nil
}

// Names returns the unique certificate names found for domain.
func (c *Client) Names(ctx context.Context, domain string) ([]string, error) {
	records, err := c.Records(ctx, domain)
	if err != nil {
		return nil, err
	}
	names := CollectNames(records, NameOptions{IncludeSANs: c.IncludeSANs, Normalize: c.Normalize})
	metrics.GetMetrics().AddNames(SourceName, len(names))
	return names, nil
}
