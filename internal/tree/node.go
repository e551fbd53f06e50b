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

// Node is one level of a rendered hierarchy.
//
// A node either has no child sequence at all (a true leaf, see NewLeaf) or
// has one, possibly empty (a branch, see NewBranch). Only true leaves are
// drawn with a style's LeafPrefix.
type Node struct {
	Name string

	children []*Node
	branch   bool
}

// NewLeaf returns a node without a child sequence.
func NewLeaf(name string) *Node {
	return &Node{Name: name}
}

// NewBranch returns a node with a child sequence holding children, which may be empty.
func NewBranch(name string, children ...*Node) *Node {
	n := &Node{Name: name, branch: true, children: make([]*Node, 0, len(children))}
	n.children = append(n.children, children...)
	return n
}

// Add appends child and returns n. A leaf becomes a branch.
func (n *Node) Add(child *Node) *Node {
	n.branch = true
	n.children = append(n.children, child)
	return n
}

// Children returns the child sequence. It is nil for a true leaf.
func (n *Node) Children() []*Node {
	return n.children
}

// IsLeaf reports whether n has no child sequence.
func (n *Node) IsLeaf() bool {
	return !n.branch
}

type kind uint8

const (
	kindDefault kind = iota
	kindLast
	kindRoot
)

// Kind describes where a node sits relative to its siblings when it is drawn.
//
// The set is closed: Default, Last and Root are the only values that can
// exist outside this package, and the zero value is Default.
type Kind struct {
	k kind
}

var (
	// Default is a non-final sibling.
	Default = Kind{kindDefault}
	// Last is the final sibling.
	Last = Kind{kindLast}
	// Root is a top-level node drawn without prefix or indentation.
	Root = Kind{kindRoot}
)

func (k Kind) String() string {
	switch k.k {
	case kindLast:
		return "last"
	case kindRoot:
		return "root"
	default:
		return "default"
	}
}

// childKind returns Last for the final index of a sequence of length n, else Default.
func childKind(i, n int) Kind {
	if i == n-1 {
		return Last
	}
	return Default
}
