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
	"fmt"
	"strings"
)

// Wildcard is the label certificates use to cover every name at one level.
const Wildcard = "*"

// WildcardPolicy decides what Build does with wildcard labels.
type WildcardPolicy string

const (
	// WildcardKeep treats "*" as an ordinary label.
	WildcardKeep WildcardPolicy = "keep"
	// WildcardStrip removes leading "*" labels; a name made only of wildcards is skipped.
	WildcardStrip WildcardPolicy = "strip"
	// WildcardDrop skips every name containing a "*" label.
	WildcardDrop WildcardPolicy = "drop"
)

// ParseWildcardPolicy maps a configuration string to a policy.
func ParseWildcardPolicy(s string) (WildcardPolicy, error) {
	switch p := WildcardPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case WildcardKeep, WildcardStrip, WildcardDrop:
		return p, nil
	case "":
		return WildcardKeep, nil
	default:
		return "", fmt.Errorf("unknown wildcard policy %q (want keep, strip or drop)", s)
	}
}

// apply returns the name to insert and false when the name must be skipped.
func (p WildcardPolicy) apply(name string) (string, bool) {
	switch p {
	case WildcardStrip:
		for name == Wildcard || strings.HasPrefix(name, Wildcard+Separator) {
			if name == Wildcard {
				return "", false
			}
			name = name[len(Wildcard+Separator):]
		}
		return name, true
	case WildcardDrop:
		for _, label := range strings.Split(name, Separator) {
			if label == Wildcard {
				return "", false
			}
		}
		return name, true
	default:
		return name, true
	}
}

type buildConfig struct {
	wildcards WildcardPolicy
}

// Option configures Build.
type Option func(*buildConfig)

// WithWildcards sets the wildcard policy. The default is WildcardKeep.
func WithWildcards(p WildcardPolicy) Option {
	return func(c *buildConfig) {
		c.wildcards = p
	}
}
