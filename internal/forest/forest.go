/*
Package forest reconstructs a hierarchy from a flat collection of dotted names.

Every ancestor prefix of every input name becomes an entry, linked below its
parent. Names are processed shortest first, so a parent always exists by the
time its children are linked. Entries are stored in one slice in creation
order and refer to each other by index.
*/
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
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Separator delimits the labels of a dotted name.
const Separator = "."

// MaxLabels bounds the number of labels in one name. DNS names cannot exceed it.
const MaxLabels = 127

var (
	// ErrIntegrity is returned when a name is linked before its parent exists.
	ErrIntegrity = errors.New("forest integrity violated")
	// ErrTooDeep is reported by Skipped for names with more than MaxLabels labels.
	ErrTooDeep = errors.New("name has too many labels")
)

const noParent = -1

// entry is one node of the arena.
type entry struct {
	name     string
	parent   int
	children []int
}

// Forest is the result of Build. It is immutable once returned.
type Forest struct {
	entries []entry
	index   map[string]int
	skipped []error
}

// Build constructs a Forest from names. Duplicate and empty names are ignored.
// Names with more than MaxLabels labels are left out and reported by Skipped.
// On error no partial forest is returned.
func Build(names []string, opts ...Option) (*Forest, error) {
	cfg := buildConfig{wildcards: WildcardKeep}
	for _, opt := range opts {
		opt(&cfg)
	}

	seqs, skipped := sequences(names, cfg)
	sortSequences(seqs)
	f, err := link(seqs)
	if err != nil {
		return nil, err
	}
	f.skipped = skipped
	return f, nil
}

// sequences deduplicates names and turns each into its reversed label list.
// Over-deep names are returned as ErrTooDeep errors instead.
func sequences(names []string, cfg buildConfig) ([][]string, []error) {
	seen := make(map[string]struct{}, len(names))
	seqs := make([][]string, 0, len(names))
	var skipped []error
	for _, raw := range names {
		name, ok := cfg.wildcards.apply(raw)
		if !ok || name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		labels := strings.Split(name, Separator)
		if len(labels) > MaxLabels {
			skipped = append(skipped, fmt.Errorf("%w: %d labels in %.64q", ErrTooDeep, len(labels), name))
			continue
		}
		slices.Reverse(labels)
		seqs = append(seqs, labels)
	}
	return seqs, skipped
}

// sortSequences orders by length, then lexicographically. A strict prefix is
// always shorter, so every ancestor sorts before its descendants.
func sortSequences(seqs [][]string) {
	slices.SortFunc(seqs, func(a, b []string) int {
		if c := cmp.Compare(len(a), len(b)); c != 0 {
			return c
		}
		return slices.Compare(a, b)
	})
}

// link walks every prefix of every sequence in order and registers new names.
func link(seqs [][]string) (*Forest, error) {
	f := newForest()
	for _, seq := range seqs {
		parent := ""
		for i := 1; i <= len(seq); i++ {
			name := joinReversed(seq[:i])
			if err := f.insert(name, parent, i > 1); err != nil {
				return nil, err
			}
			parent = name
		}
	}
	return f, nil
}

func newForest() *Forest {
	return &Forest{index: make(map[string]int)}
}

// insert registers name below parent unless it already exists. The parent
// must already be registered when hasParent is set.
func (f *Forest) insert(name, parent string, hasParent bool) error {
	if _, ok := f.index[name]; ok {
		return nil
	}
	p := noParent
	if hasParent {
		idx, ok := f.index[parent]
		if !ok {
			return fmt.Errorf("%w: parent %q of %q not found", ErrIntegrity, parent, name)
		}
		p = idx
	}

	idx := len(f.entries)
	f.entries = append(f.entries, entry{name: name, parent: p, children: []int{}})
	f.index[name] = idx
	if p != noParent && !slices.Contains(f.entries[p].children, idx) {
		f.entries[p].children = append(f.entries[p].children, idx)
	}
	return nil
}

// joinReversed restores reading order of a reversed label prefix.
func joinReversed(labels []string) string {
	var sb strings.Builder
	for i := len(labels) - 1; i >= 0; i-- {
		sb.WriteString(labels[i])
		if i > 0 {
			sb.WriteString(Separator)
		}
	}
	return sb.String()
}
