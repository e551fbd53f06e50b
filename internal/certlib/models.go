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
	"strings"
)

// Record is one certificate row of a crt.sh JSON search result.
// Only CommonName and NameValue feed the tree; the rest is kept for logging.
type Record struct {
	ID             int64  `json:"id"`
	IssuerCAID     int64  `json:"issuer_ca_id"`
	IssuerName     string `json:"issuer_name"`
	CommonName     string `json:"common_name"`
	NameValue      string `json:"name_value"`
	EntryTimestamp string `json:"entry_timestamp"`
	NotBefore      string `json:"not_before"`
	NotAfter       string `json:"not_after"`
	SerialNumber   string `json:"serial_number"`
}

// Names returns the common name of r and, when includeSANs is set, every
// line of its name_value field (crt.sh lists SAN entries one per line).
func (r Record) Names(includeSANs bool) []string {
	names := make([]string, 0, 1)
	if r.CommonName != "" {
		names = append(names, r.CommonName)
	}
	if !includeSANs {
		return names
	}
	for _, line := range strings.Split(r.NameValue, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			names = append(names, line)
		}
	}
	return names
}

// NameOptions controls CollectNames.
type NameOptions struct {
	IncludeSANs bool
	// Normalize runs every name through NormalizeDomain and drops empty results.
	Normalize bool
}

// CollectNames flattens records into a list of unique names in first-seen order.
func CollectNames(records []Record, opts NameOptions) []string {
	seen := make(map[string]struct{}, len(records))
	out := make([]string, 0, len(records))
	for _, r := range records {
		for _, name := range r.Names(opts.IncludeSANs) {
			if opts.Normalize {
				name = NormalizeDomain(name)
				if name == "" {
					continue
				}
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

// NormalizeDomain standardizes a certificate name for tree building: surrounding
// whitespace and dots are trimmed and letters are lowercased. Wildcard
// labels are preserved. Everything else is left as is; names are opaque
// label sequences, not validated hostnames.
func NormalizeDomain(domain string) string {
	domain = strings.TrimSpace(domain)
	domain = strings.Trim(domain, ".")
	if domain == "" {
		return ""
	}
	return strings.ToLower(domain)
}
