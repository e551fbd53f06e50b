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
	"strings"
	"unicode/utf8"
)

// Options configures a rendering pass.
type Options struct {
	Style Style
	// Colored wraps every line in the depth palette color and Reset.
	Colored bool
	// IncludeRoot draws the top node with final-sibling styling instead of
	// as a bare label.
	IncludeRoot bool
	// Spaces is the number of blanks inserted between a branch glyph and the
	// node name. Indentation of descendants grows by the same amount.
	Spaces int
}

// Render draws n and its subtree and joins the lines with a newline.
// A nil node renders as the empty string.
func Render(n *Node, opts Options) string {
	top := Root
	if opts.IncludeRoot {
		top = Last
	}
	return strings.Join(Lines(n, opts, top, 0), "\n")
}

// Lines returns the lines for n drawn as kind at depth, followed by the
// lines of its subtree. Every descendant line is prefixed with the
// indentation that continues n's vertical guide.
func Lines(n *Node, opts Options, kind Kind, depth int) []string {
	if n == nil {
		return nil
	}

	prefix := opts.prefix(n, kind)
	pad := opts.padding(prefix)
	indent := opts.indent(prefix, kind)

	color, reset := "", ""
	if opts.Colored {
		color, reset = ColorFor(depth), Reset
	}

	lines := []string{color + prefix + pad + n.Name + reset}

	children := n.Children()
	for i, child := range children {
		for _, line := range Lines(child, opts, childKind(i, len(children)), depth+1) {
			lines = append(lines, color+indent+line+reset)
		}
	}
	return lines
}

// prefix picks the branch glyph for n.
func (o Options) prefix(n *Node, kind Kind) string {
	if kind == Root {
		return ""
	}
	if n.IsLeaf() {
		if leaf, ok := o.Style.LeafPrefix.Get(); ok && leaf != "" {
			return leaf
		}
	}
	if kind == Last {
		return o.Style.LastPrefix.Or(o.Style.TPrefix)
	}
	return o.Style.TPrefix
}

// padding returns the blanks placed after a non-empty prefix.
func (o Options) padding(prefix string) string {
	if prefix == "" || o.Spaces <= 0 {
		return ""
	}
	return strings.Repeat(" ", o.Spaces)
}

// indent returns the lead-in for lines below a node drawn with prefix.
// The final sibling hangs its subtree on blanks; other siblings continue
// the vertical guide.
func (o Options) indent(prefix string, kind Kind) string {
	if kind == Root {
		return ""
	}
	width := utf8.RuneCountInString(prefix) + utf8.RuneCountInString(o.padding(prefix))
	if kind == Last {
		return strings.Repeat(" ", width)
	}
	fill := width - utf8.RuneCountInString(o.Style.IndentPrefix)
	if fill < 0 {
		fill = 0
	}
	return o.Style.IndentPrefix + strings.Repeat(" ", fill)
}
