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

import (
	"encoding/binary"

	"seehuhn.de/go/postscript/psenc"
)

const (
	csEscape = 12
	csSeac   = 6
)

// seacComponents returns the names of the base and accent glyphs of an
// accented character built with the seac operator.
func seacComponents(cs []byte) (base, accent string, ok bool) {
	var stack []int32
	for i := 0; i < len(cs); {
		b := cs[i]
		switch {
		case b >= 32 && b <= 246:
			stack = append(stack, int32(b)-139)
			i++
		case b >= 247 && b <= 250:
			if i+1 >= len(cs) {
				return "", "", false
			}
			stack = append(stack, (int32(b)-247)*256+int32(cs[i+1])+108)
			i += 2
		case b >= 251 && b <= 254:
			if i+1 >= len(cs) {
				return "", "", false
			}
			stack = append(stack, -(int32(b)-251)*256-int32(cs[i+1])-108)
			i += 2
		case b == 255:
			if i+4 >= len(cs) {
				return "", "", false
			}
			stack = append(stack, int32(binary.BigEndian.Uint32(cs[i+1:])))
			i += 5
		case b == csEscape:
			if i+1 < len(cs) && cs[i+1] == csSeac && len(stack) >= 5 {
				bchar, achar := stack[len(stack)-2], stack[len(stack)-1]
				if bchar < 0 || bchar > 255 || achar < 0 || achar > 255 {
					return "", "", false
				}
				return psenc.StandardEncoding[bchar], psenc.StandardEncoding[achar], true
			}
			stack = stack[:0]
			i += 2
		default:
			stack = stack[:0]
			i++
		}
	}
	return "", "", false
}
