/*
Package main is the entry point for the crtree command-line application.

crtree queries the crt.sh Certificate Transparency search for every certificate
issued below a domain and prints the names it finds as one tree per second-level
grouping. Names can also be read from a file, which skips the network entirely.

Subcommands:
  - styles: preview every tree style on a sample tree.
  - serve: answer tree requests over HTTP.

Graceful shutdown is handled via context cancellation triggered by OS signals (SIGINT, SIGTERM).
*/
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
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}
