package util

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
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// maxFilenameLength keeps generated names well below common filesystem limits.
const maxFilenameLength = 100

// SanitizeFilename creates a filesystem-safe filename from a domain or other string.
// Path separators, wildcards and other problematic characters become underscores,
// and a leading dot is replaced so the result is never hidden or relative.
func SanitizeFilename(input string) string {
	replaced := strings.Map(func(r rune) rune {
		switch {
		case r < 0x20 || r == 0x7f:
			return '_'
		}
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, strings.TrimSpace(input))
	if strings.HasPrefix(replaced, ".") {
		replaced = "_" + replaced[1:]
	}
	if replaced == "" {
		replaced = "_"
	}
	return truncate(replaced, maxFilenameLength)
}

// truncate cuts s to at most limit bytes without splitting a rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// OutputPath returns the file in dir that holds the output for name, using ext
// (without the dot) as extension.
func OutputPath(dir, name, ext string) string {
	return filepath.Join(dir, SanitizeFilename(name)+"."+ext)
}
