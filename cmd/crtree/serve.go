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
	"time"

	"github.com/spf13/cobra"

	"github.com/x-stp/crtree/internal/core"
	"github.com/x-stp/crtree/internal/metrics"
	"github.com/x-stp/crtree/internal/server"
)

func newServeCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve trees over HTTP",
		Long: `Serve answers GET /v1/trees/{domain} with the rendered tree of a domain.
Query parameters style, color, include_root, spaces, wildcards and format
override the configured defaults per request. /v1/styles lists the styles,
/healthz reports liveness and /metrics exposes Prometheus metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := core.LoggerFromContext(ctx)

			cfg, err := o.loadConfig(cmd)
			if err != nil {
				return err
			}
			// /metrics is always mounted in serve mode.
			metrics.EnableMetrics()
			defer startMetrics(logger, cfg.Server.MetricsAddr)()

			h := server.NewHandler(newFetcher(cfg), cfg, logger)
			logger.Info("Serving trees", "addr", cfg.Server.Addr)
			if err := server.ListenAndServe(ctx, cfg.Server.Addr, h, 10*time.Second); err != nil {
				return err
			}
			logger.Info("Server stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&o.flags.Server.Addr, "addr", o.flags.Server.Addr, "Listen address")
	return cmd
}
