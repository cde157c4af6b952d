// seehuhn.de/go/fontmerge - consolidate fonts of re-embedded PDF pages
// Copyright (C) 2024  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package testfont

import (
	"fmt"

	"golang.org/x/image/font/gofont/goregular"

	"seehuhn.de/go/fontmerge/truetype"
)

// TrueTypeSubset returns a subset of the Go Regular font, as found in PDF
// files.  Character code firstCode+i shows the character text[i], which must
// be ASCII.  The subset keeps the original glyph IDs.
func TrueTypeSubset(firstCode int, text string) ([]byte, error) {
	info, err := truetype.Inspect(goregular.TTF)
	if err != nil {
		return nil, err
	}

	glyphs := map[int]int{0: 0}
	codes := map[int]int{}
	for i, r := range text {
		gid := info.Lookup(byte(r), string(r))
		if gid == 0 {
			return nil, fmt.Errorf("no glyph for %q", r)
		}
		glyphs[gid] = gid
		codes[firstCode+i] = gid
	}

	m := truetype.NewMerger()
	err = m.ReadFont(goregular.TTF, glyphs, codes)
	if err != nil {
		return nil, err
	}
	return m.Bytes()
}
