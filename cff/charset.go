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

package cff

import (
	"fmt"

	"seehuhn.de/go/sfnt/parser"
)

// readCharset reads the charset at the current position.  The result gives
// the SID (or CID for CID-keyed fonts) for every glyph.
func readCharset(p *parser.Parser, nGlyphs int) ([]int32, error) {
	format, err := p.ReadUint8()
	if err != nil {
		return nil, err
	}

	charset := make([]int32, 1, nGlyphs)
	switch format {
	case 0:
		for len(charset) < nGlyphs {
			sid, err := p.ReadUint16()
			if err != nil {
				return nil, err
			}
			charset = append(charset, int32(sid))
		}
	case 1, 2:
		for len(charset) < nGlyphs {
			first, err := p.ReadUint16()
			if err != nil {
				return nil, err
			}
			var nLeft int
			if format == 1 {
				n, err := p.ReadUint8()
				if err != nil {
					return nil, err
				}
				nLeft = int(n)
			} else {
				n, err := p.ReadUint16()
				if err != nil {
					return nil, err
				}
				nLeft = int(n)
			}
			for i := 0; i <= nLeft && len(charset) < nGlyphs; i++ {
				charset = append(charset, int32(first)+int32(i))
			}
		}
	default:
		return nil, unsupported(fmt.Sprintf("charset format %d", format))
	}

	return charset, nil
}

// isoAdobeCharset returns the predefined ISOAdobe charset for a font with
// the given number of glyphs.
func isoAdobeCharset(nGlyphs int) ([]int32, error) {
	if nGlyphs > 229 {
		return nil, invalidSince("too many glyphs for ISOAdobe charset")
	}
	charset := make([]int32, nGlyphs)
	for i := range charset {
		charset[i] = int32(i)
	}
	return charset, nil
}

// encodeCharset returns the shortest of the format 0, 1 and 2 encodings of
// the given charset.  The first entry must be 0.
func encodeCharset(names []int32) ([]byte, error) {
	if len(names) == 0 || names[0] != 0 {
		return nil, invalidSince("invalid charset")
	}
	names = names[1:]

	// find runs of consecutive glyph names
	var runs []int
	for i := 0; i < len(names); i++ {
		if i == 0 || names[i] != names[i-1]+1 {
			runs = append(runs, i)
		}
	}
	runs = append(runs, len(names))

	length0 := 1 + 2*len(names)
	length1 := 1
	for i := 0; i < len(runs)-1; i++ {
		d := runs[i+1] - runs[i]
		length1 += 3 * ((d + 255) / 256)
	}
	length2 := 1 + 4*(len(runs)-1)

	var buf []byte
	switch {
	case length0 <= length1 && length0 <= length2:
		buf = make([]byte, 1, length0)
		for _, name := range names {
			buf = append(buf, byte(name>>8), byte(name))
		}
	case length1 < length2:
		buf = make([]byte, 1, length1)
		buf[0] = 1
		for i := 0; i < len(runs)-1; i++ {
			name := names[runs[i]]
			dd := runs[i+1] - runs[i]
			for dd > 0 {
				d := min(dd-1, 255)
				buf = append(buf, byte(name>>8), byte(name), byte(d))
				name += int32(d + 1)
				dd -= d + 1
			}
		}
	default:
		buf = make([]byte, 1, length2)
		buf[0] = 2
		for i := 0; i < len(runs)-1; i++ {
			name := names[runs[i]]
			d := runs[i+1] - runs[i] - 1
			buf = append(buf, byte(name>>8), byte(name), byte(d>>8), byte(d))
		}
	}
	return buf, nil
}
