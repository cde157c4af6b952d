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

// readFDSelect reads the FDSelect table at the current position and
// returns the font DICT index for every glyph.
func readFDSelect(p *parser.Parser, nGlyphs, nPrivate int) ([]uint8, error) {
	format, err := p.ReadUint8()
	if err != nil {
		return nil, err
	}

	res := make([]uint8, nGlyphs)
	switch format {
	case 0:
		for i := range res {
			fd, err := p.ReadUint8()
			if err != nil {
				return nil, err
			}
			if int(fd) >= nPrivate {
				return nil, invalidSince("FDSelect out of range")
			}
			res[i] = fd
		}
	case 3:
		nRanges, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		if nGlyphs > 0 && nRanges == 0 {
			return nil, invalidSince("no FDSelect data found")
		}

		var prev, prevFD int
		for i := 0; i <= int(nRanges); i++ {
			first, err := p.ReadUint16()
			if err != nil {
				return nil, err
			}
			if i == 0 && first != 0 || i > 0 && int(first) <= prev || int(first) > nGlyphs {
				return nil, invalidSince("FDSelect is invalid")
			}
			for gid := prev; gid < int(first); gid++ {
				res[gid] = uint8(prevFD)
			}
			if i == int(nRanges) {
				if int(first) != nGlyphs {
					return nil, invalidSince("wrong FDSelect sentinel")
				}
				break
			}
			fd, err := p.ReadUint8()
			if err != nil {
				return nil, err
			} else if int(fd) >= nPrivate {
				return nil, invalidSince("FDSelect out of range")
			}
			prev, prevFD = int(first), int(fd)
		}
	default:
		return nil, unsupported(fmt.Sprintf("FDSelect format %d", format))
	}
	return res, nil
}

// encodeFDSelect writes a format 3 FDSelect table.
func encodeFDSelect(fds []uint8) []byte {
	buf := []byte{3, 0, 0}
	nRanges := 0
	for gid, fd := range fds {
		if gid > 0 && fd == fds[gid-1] {
			continue
		}
		buf = append(buf, byte(gid>>8), byte(gid), fd)
		nRanges++
	}
	buf[1] = byte(nRanges >> 8)
	buf[2] = byte(nRanges)
	n := len(fds)
	return append(buf, byte(n>>8), byte(n))
}
