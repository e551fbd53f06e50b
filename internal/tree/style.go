/*
Package tree renders a hierarchy of named nodes as indented text lines.

Rendering is driven by a Style (the glyph set used for branches and vertical
guides) and an Options value (style, color, root handling, padding). The
package holds no mutable state: the style catalog and the color palette are
read-only tables.
*/
package tree

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
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownStyle is returned when a style name is not part of the catalog.
var ErrUnknownStyle = errors.New("unknown style")

// DefaultStyle is the catalog entry used when no style is configured.
const DefaultStyle = "unicode"

// Glyph is an optional glyph string. The zero value is unset, which is
// different from a glyph explicitly set to the empty string.
type Glyph struct {
	value string
	set   bool
}

// Set returns a Glyph holding s.
func Set(s string) Glyph {
	return Glyph{value: s, set: true}
}

// Get returns the glyph and whether it was set.
func (g Glyph) Get() (string, bool) {
	return g.value, g.set
}

// Or returns the glyph if set, otherwise fallback.
func (g Glyph) Or(fallback string) string {
	if g.set {
		return g.value
	}
	return fallback
}

// Style is an immutable set of glyphs used to draw a tree.
//
// Glyph widths are compared by rune count when computing indentation, so
// multi-character glyphs must have a consistent visual width within a style.
type Style struct {
	// IndentPrefix continues the vertical guide below a non-final sibling.
	IndentPrefix string
	// TPrefix is the branch glyph for a non-final sibling.
	TPrefix string
	// LastPrefix is the branch glyph for the final sibling. Unset means TPrefix.
	LastPrefix Glyph
	// LeafPrefix overrides the branch glyph for true leaves when set.
	LeafPrefix Glyph
}

// styles is the fixed catalog. The glyphs are part of the output contract.
var styles = map[string]Style{
	"ascii":          {IndentPrefix: "|", TPrefix: "+-", LastPrefix: Set(`\-`)},
	"ascii2":         {IndentPrefix: "|", TPrefix: "+-", LastPrefix: Set("`-")},
	"ascii-compact":  {IndentPrefix: "|", TPrefix: "+", LastPrefix: Set(`\`)},
	"ascii2-compact": {IndentPrefix: "|", TPrefix: "+", LastPrefix: Set("`")},
	"arrows":         {IndentPrefix: "|", TPrefix: "->"},
	"harrows":        {IndentPrefix: "|", TPrefix: "#>"},
	"bars":           {IndentPrefix: "|", TPrefix: "|"},
	"yaml":           {TPrefix: "-", LastPrefix: Set("-")},
	"empty":          {},
	"compact":        {IndentPrefix: "│", TPrefix: "├", LastPrefix: Set("└")},
	"unicode":        {IndentPrefix: "│", TPrefix: "├─", LastPrefix: Set("└─")},
}

// LookupStyle returns the catalog style registered under name.
// Names are matched exactly and case-sensitively.
func LookupStyle(name string) (Style, error) {
	s, ok := styles[name]
	if !ok {
		return Style{}, fmt.Errorf("%w %q (available: %v)", ErrUnknownStyle, name, StyleNames())
	}
	return s, nil
}

// StyleNames returns the catalog names in sorted order.
func StyleNames() []string {
	names := make([]string, 0, len(styles))
	for name := range styles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
