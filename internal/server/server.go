package server

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
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/zeebo/xxh3"

	"github.com/x-stp/crtree/internal/certlib"
	"github.com/x-stp/crtree/internal/config"
	"github.com/x-stp/crtree/internal/core"
	"github.com/x-stp/crtree/internal/forest"
	"github.com/x-stp/crtree/internal/metrics"
	"github.com/x-stp/crtree/internal/tree"
)

// Server answers tree requests by fetching names through a Fetcher.
type Server struct {
	Fetcher  *core.Fetcher
	Defaults config.Config
	Logger   *log.Logger
}

// NewHandler creates the HTTP handler for serve mode.
func NewHandler(fetcher *core.Fetcher, defaults config.Config, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{Fetcher: fetcher, Defaults: defaults, Logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Get("/v1/styles", s.Styles)
	r.Get("/v1/trees/{domain}", s.Tree)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	return r
}

// instrument logs and counts every request by its route pattern.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m := metrics.GetMetrics()
		m.CountHTTPRequest(route, strconv.Itoa(status))
		if metrics.IsMetricsEnabled() {
			m.HTTPRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		}
		s.Logger.Debug("Request", "method", r.Method, "path", r.URL.Path, "status", status, "took", time.Since(start).Round(time.Millisecond))
	})
}

type styleInfo struct {
	Name   string `json:"name"`
	Sample string `json:"sample"`
}

type stylesResponse struct {
	Default string      `json:"default"`
	Styles  []styleInfo `json:"styles"`
}

// SampleTree is the small tree used to preview styles.
func SampleTree() *tree.Node {
	return tree.NewBranch("example.com",
		tree.NewBranch("mail.example.com",
			tree.NewLeaf("imap.mail.example.com"),
			tree.NewLeaf("smtp.mail.example.com"),
		),
		tree.NewLeaf("www.example.com"),
	)
}

// Styles handles GET /v1/styles.
func (s *Server) Styles(w http.ResponseWriter, r *http.Request) {
	resp := stylesResponse{Default: tree.DefaultStyle}
	for _, name := range tree.StyleNames() {
		style, _ := tree.LookupStyle(name)
		resp.Styles = append(resp.Styles, styleInfo{
			Name:   name,
			Sample: tree.Render(SampleTree(), tree.Options{Style: style}),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// treeRequest is the parsed query of a tree request.
type treeRequest struct {
	domain    string
	format    core.Format
	wildcards forest.WildcardPolicy
	opts      tree.Options
}

func (s *Server) parseTreeRequest(r *http.Request) (treeRequest, error) {
	q := r.URL.Query()
	req := treeRequest{domain: certlib.NormalizeDomain(chi.URLParam(r, "domain"))}
	if req.domain == "" {
		return req, errors.New("domain is required")
	}

	styleName := s.Defaults.Style
	if v := q.Get("style"); v != "" {
		styleName = v
	}
	style, err := tree.LookupStyle(styleName)
	if err != nil {
		return req, err
	}
	req.opts = tree.Options{Style: style, IncludeRoot: s.Defaults.IncludeRoot, Spaces: s.Defaults.Spaces}

	if req.opts.Colored, err = boolParam(q.Get("color"), false); err != nil {
		return req, fmt.Errorf("color: %w", err)
	}
	if req.opts.IncludeRoot, err = boolParam(q.Get("include_root"), req.opts.IncludeRoot); err != nil {
		return req, fmt.Errorf("include_root: %w", err)
	}
	if v := q.Get("spaces"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return req, fmt.Errorf("spaces: want a non-negative integer, got %q", v)
		}
		req.opts.Spaces = n
	}

	wildcards := s.Defaults.Wildcards
	if v := q.Get("wildcards"); v != "" {
		wildcards = v
	}
	if req.wildcards, err = forest.ParseWildcardPolicy(wildcards); err != nil {
		return req, err
	}

	format := s.Defaults.Format
	if v := q.Get("format"); v != "" {
		format = v
	}
	if req.format, err = core.ParseFormat(format); err != nil {
		return req, err
	}
	return req, nil
}

func boolParam(v string, fallback bool) (bool, error) {
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseBool(v)
}

// Tree handles GET /v1/trees/{domain}.
func (s *Server) Tree(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseTreeRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := core.WithLogger(r.Context(), s.Logger)
	names, err := s.Fetcher.Fetch(ctx, req.domain)
	if err != nil {
		s.Logger.Warn("Lookup failed", "domain", req.domain, "err", err)
		status := http.StatusBadGateway
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		http.Error(w, core.MsgFetchFailed, status)
		return
	}
	if len(names) == 0 {
		http.Error(w, core.MsgNoData, http.StatusNotFound)
		return
	}

	f, err := core.Build(ctx, names, req.wildcards)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if len(f.Roots()) == 0 {
		http.Error(w, core.MsgNoData, http.StatusNotFound)
		return
	}
	body, err := core.Render(f, req.domain, req.format, req.opts)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if req.format == core.FormatText {
		body = append(body, '\n')
	}

	etag := fmt.Sprintf(`"%016x"`, xxh3.Hash(body))
	w.Header().Set("ETag", etag)
	w.Header().Set("X-Forest-Digest", core.DigestString(f))
	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", req.format.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Response encode failed", "err", err)
	}
}

// ListenAndServe serves h on addr until ctx is cancelled, then shuts down
// gracefully within timeout.
func ListenAndServe(ctx context.Context, addr string, h http.Handler, timeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
