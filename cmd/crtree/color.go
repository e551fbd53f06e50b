package main

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
	"io"

	"github.com/muesli/termenv"
)

// colorEnabled reports whether tree output to w should be colored. Color is
// off with --no-color, with NO_COLOR set, or when w is not a terminal;
// CLICOLOR_FORCE turns it back on for non-terminals.
func colorEnabled(noColor bool, w io.Writer) bool {
	if noColor {
		return false
	}
	return termenv.NewOutput(w).EnvColorProfile() != termenv.Ascii
}
