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
	"time"

	"golang.org/x/time/rate"
)

// Fetch pool defaults. crt.sh is a shared community service; keep the request
// rate low.
const (
	// DefaultWorkers is the number of domains fetched concurrently.
	DefaultWorkers = 4
	// MaxWorkers caps the worker count regardless of configuration.
	MaxWorkers = 32
	// DefaultRate is the steady request rate across all workers, in requests per second.
	DefaultRate rate.Limit = 2
	// DefaultBurst is the number of requests allowed back to back.
	DefaultBurst = 2
	// DefaultFetchTimeout bounds a single domain lookup.
	DefaultFetchTimeout = 90 * time.Second
)

// User-facing messages shared by the CLI and the HTTP server.
const (
	MsgNoData      = "No data found"
	MsgFetchFailed = "Error: Unable to fetch data from crt.sh"
)
