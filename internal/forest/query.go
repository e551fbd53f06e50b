package forest

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
	"slices"
	"strings"

	"github.com/x-stp/crtree/internal/tree"
	"github.com/zeebo/xxh3"
)

// Tree is the exported shape of one subtree, used for JSON and YAML output.
type Tree struct {
	Name     string `json:"name" yaml:"name"`
	Children []Tree `json:"children,omitempty" yaml:"children,omitempty"`
}

// Len returns the number of names in the forest.
func (f *Forest) Len() int {
	return len(f.entries)
}

// Skipped returns one ErrTooDeep error per over-deep input name, in input order.
func (f *Forest) Skipped() []error {
	return slices.Clone(f.skipped)
}

// Names returns every name in creation order.
func (f *Forest) Names() []string {
	names := make([]string, len(f.entries))
	for i, e := range f.entries {
		names[i] = e.name
	}
	return names
}

// Contains reports whether name is in the forest.
func (f *Forest) Contains(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Parent returns the parent of name. The second result is false for
// unknown names and for top-level labels.
func (f *Forest) Parent(name string) (string, bool) {
	idx, ok := f.index[name]
	if !ok || f.entries[idx].parent == noParent {
		return "", false
	}
	return f.entries[f.entries[idx].parent].name, true
}

// Children returns the child names of name in link order.
func (f *Forest) Children(name string) []string {
	idx, ok := f.index[name]
	if !ok {
		return nil
	}
	children := f.entries[idx].children
	names := make([]string, len(children))
	for i, c := range children {
		names[i] = f.entries[c].name
	}
	return names
}

// IsRoot reports whether name is a second-level grouping, i.e. contains
// exactly one separator.
func IsRoot(name string) bool {
	return strings.Count(name, Separator) == 1
}

// Roots returns the second-level groupings in creation order. Each one is
// rendered as an independent tree.
func (f *Forest) Roots() []string {
	var roots []string
	for _, e := range f.entries {
		if IsRoot(e.name) {
			roots = append(roots, e.name)
		}
	}
	return roots
}

// Node materializes the subtree rooted at name. Every forest entry has a
// child sequence, so no returned node is a true leaf.
func (f *Forest) Node(name string) (*tree.Node, bool) {
	idx, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return f.node(idx), true
}

func (f *Forest) node(idx int) *tree.Node {
	e := f.entries[idx]
	n := tree.NewBranch(e.name)
	for _, c := range e.children {
		n.Add(f.node(c))
	}
	return n
}

// Render draws every root with opts and joins the blocks with a newline.
// A forest without roots renders as the empty string.
func (f *Forest) Render(opts tree.Options) string {
	roots := f.Roots()
	blocks := make([]string, 0, len(roots))
	for _, name := range roots {
		n, _ := f.Node(name)
		blocks = append(blocks, tree.Render(n, opts))
	}
	return strings.Join(blocks, "\n")
}

// Export returns the root subtrees in creation order.
func (f *Forest) Export() []Tree {
	roots := f.Roots()
	out := make([]Tree, 0, len(roots))
	for _, name := range roots {
		out = append(out, f.export(f.index[name]))
	}
	return out
}

func (f *Forest) export(idx int) Tree {
	e := f.entries[idx]
	t := Tree{Name: e.name}
	for _, c := range e.children {
		t.Children = append(t.Children, f.export(c))
	}
	return t
}

// Digest is a NON-CRYPTOGRAPHIC xxh3 hash of the creation-ordered names.
// Forests built from the same set of names have the same digest.
func (f *Forest) Digest() uint64 {
	h := xxh3.New()
	for _, e := range f.entries {
		_, _ = h.WriteString(e.name)
		_, _ = h.WriteString("\n")
	}
	return h.Sum64()
}
