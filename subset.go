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

package fontmerge

import "slices"

const subsetModulus = 26 * 26 * 26 * 26 * 26 * 26

// subsetTag constructs a 6-letter tag (range AAAAAA to ZZZZZZ) to describe
// the glyph set of a merged font.  This is used for the /BaseFont entry in
// PDF font dictionaries and the /FontName entry in font descriptors.
func subsetTag(indices []int, numGlyphs int) string {
	indices = slices.Clone(indices)
	slices.Sort(indices)

	// mix all the information into a single uint32
	X := uint32(numGlyphs)
	for _, idx := range indices {
		// 11 is the largest integer smaller than `1<<32 / subsetModulus` which
		// is relatively prime to 26.
		X = (X*11 + uint32(idx)) % subsetModulus
	}

	var buf [6]byte
	for i := range buf {
		buf[i] = 'A' + byte(X%26)
		X /= 26
	}
	return string(buf[:])
}

func isSubsetTag(tag string) bool {
	if len(tag) != 6 {
		return false
	}
	for _, c := range []byte(tag) {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}
