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
	"fmt"
	"io"
	"strings"

	"github.com/x-stp/crtree/internal/tree"
)

const banner = `▗▄▄▖▗▄▄▖     ▗▄▄▄   ▗▄▖ ▗▖  ▗▖ ▗▄▖ ▗▄▄▄▖▗▖  ▗▖    ▗▄▄▄▖▗▖  ▗▖▗▄▄▖  ▗▄▖ ▗▖  ▗▖ ▗▄▄▖▗▄▄▄▖ ▗▄▖ ▗▖  ▗▖    ▗▄▄▖▗▄▄▖ 
▐▌  ▐▌       ▐▌  █ ▐▌ ▐▌▐▛▚▞▜▌▐▌ ▐▌  █  ▐▛▚▖▐▌    ▐▌    ▝▚▞▘ ▐▌ ▐▌▐▌ ▐▌▐▛▚▖▐▌▐▌     █  ▐▌ ▐▌▐▛▚▖▐▌      ▐▌  ▐▌ 
▐▌  ▐▌       ▐▌  █ ▐▌ ▐▌▐▌  ▐▌▐▛▀▜▌  █  ▐▌ ▝▜▌    ▐▛▀▀▘  ▐▌  ▐▛▀▘ ▐▛▀▜▌▐▌ ▝▜▌ ▝▀▚▖  █  ▐▌ ▐▌▐▌ ▝▜▌      ▐▌  ▐▌ 
 ■   ■       ▐▙▄▄▀ ▝▚▄▞▘▐▌  ▐▌▐▌ ▐▌▗▄█▄▖▐▌  ▐▌    ▐▙▄▄▖▗▞▘▝▚▖▐▌   ▐▌ ▐▌▐▌  ▐▌▗▄▄▞▘▗▄█▄▖▝▚▄▞▘▐▌  ▐▌       ■   ■ 
 ■■■ ■■■                                                                                               ■■■ ■■■`

// printBanner writes the banner with each line in the next palette color,
// followed by an empty line.
func printBanner(w io.Writer) {
	for i, line := range strings.Split(banner, "\n") {
		fmt.Fprintln(w, tree.ColorFor(i+1)+line+tree.Reset)
	}
	fmt.Fprintln(w)
}
