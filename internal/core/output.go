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
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/x-stp/crtree/internal/forest"
	"github.com/x-stp/crtree/internal/metrics"
	"github.com/x-stp/crtree/internal/tree"
)

// Format selects how a forest is written out.
type Format string

// Supported output formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat maps a flag or query value to a Format. The empty string means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w %q (want text, json or yaml)", ErrUnknownFormat, s)
	}
}

// ContentType returns the HTTP media type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Build builds the forest for names and records its size. Build failures
// are logged and counted by error type; names the builder left out are
// logged as warnings.
func Build(ctx context.Context, names []string, policy forest.WildcardPolicy) (*forest.Forest, error) {
	m := metrics.GetMetrics()
	logger := LoggerFromContext(ctx)
	f, err := forest.Build(names, forest.WithWildcards(policy))
	if err != nil {
		m.CountBuildFailure(ErrorType(err))
		logger.Error("Building forest failed", "names", len(names), "err", err)
		return nil, err
	}
	for _, skip := range f.Skipped() {
		m.CountSkippedName(ErrorType(skip))
		logger.Warn("Skipping name", "err", skip)
	}
	m.ObserveForest(f.Len())
	return f, nil
}

// Document is the structured form of one domain's forest.
type Document struct {
	Domain string        `json:"domain" yaml:"domain"`
	Names  int           `json:"names" yaml:"names"`
	Digest string        `json:"digest" yaml:"digest"`
	Trees  []forest.Tree `json:"trees" yaml:"trees"`
}

// NewDocument captures f for structured output.
func NewDocument(domain string, f *forest.Forest) Document {
	return Document{
		Domain: domain,
		Names:  f.Len(),
		Digest: DigestString(f),
		Trees:  f.Export(),
	}
}

// DigestString formats the forest digest as 16 hex digits.
func DigestString(f *forest.Forest) string {
	return fmt.Sprintf("%016x", f.Digest())
}

// Render writes f in format. Text output is the newline-joined tree blocks
// without a trailing newline; JSON and YAML end with one.
func Render(f *forest.Forest, domain string, format Format, opts tree.Options) ([]byte, error) {
	defer metrics.MeasureDuration(metrics.GetMetrics().RenderDuration, map[string]string{"format": string(format)})()

	switch format {
	case FormatText, "":
		return []byte(f.Render(opts)), nil
	case FormatJSON:
		out, err := json.MarshalIndent(NewDocument(domain, f), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("error encoding JSON: %w", err)
		}
		return append(out, '\n'), nil
	case FormatYAML:
		out, err := yaml.Marshal(NewDocument(domain, f))
		if err != nil {
			return nil, fmt.Errorf("error encoding YAML: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}
}
