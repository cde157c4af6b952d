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

package type1

import "seehuhn.de/go/fontmerge/internal/testfont"

type testGlyph = testfont.Glyph

var (
	lineCS    = testfont.LineCS
	notdefCS  = testfont.NotdefCS
	testSubrs = testfont.Subrs
)

// makeFont returns a Type 1 font in PFB format.  If enc is nil, the font
// uses StandardEncoding.  If hexEexec is set, the font is returned in PFA
// format with a hexadecimal eexec section.
func makeFont(name string, glyphs []testGlyph, subrs [][]byte, enc map[int]string, hexEexec bool) []byte {
	return testfont.Type1(name, glyphs, &testfont.Type1Options{
		Subrs:    subrs,
		Encoding: enc,
		Hex:      hexEexec,
	})
}
