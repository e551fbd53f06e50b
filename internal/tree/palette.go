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

// Reset closes any color opened by a palette entry.
const Reset = "\x1b[0m"

// palette holds the bright foreground colors cycled by depth:
// red, green, yellow, blue, magenta, cyan.
var palette = [...]string{
	"\x1b[91m",
	"\x1b[92m",
	"\x1b[93m",
	"\x1b[94m",
	"\x1b[95m",
	"\x1b[96m",
}

// PaletteSize is the number of colors in the depth palette.
const PaletteSize = len(palette)

// ColorFor returns the palette color for depth, cycling every PaletteSize levels.
// A negative depth uses the color of its absolute value.
func ColorFor(depth int) string {
	if depth < 0 {
		depth = -depth
	}
	return palette[depth%PaletteSize]
}

// Palette returns a copy of the depth palette.
func Palette() []string {
	out := make([]string, PaletteSize)
	copy(out, palette[:])
	return out
}
