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

package truetype

import (
	"encoding/binary"
	"fmt"
)

// Flags used in composite glyph descriptions.
const (
	flagArgsAreWords   = 0x0001
	flagHaveScale      = 0x0008
	flagMoreComponents = 0x0020
	flagXYScale        = 0x0040
	flagTwoByTwo       = 0x0080
)

// decodeLoca returns the glyph offsets stored in a "loca" table.  The
// offsets are not required to be increasing; glyphs with a negative span
// are treated as empty by the caller.
func decodeLoca(loca []byte, format int16, glyfLen int) ([]int, error) {
	var offs []int
	switch format {
	case 0:
		n := len(loca)
		if n < 4 || n%2 != 0 {
			return nil, invalid("sfnt/loca", "invalid table length")
		}
		offs = make([]int, n/2)
		for i := range offs {
			offs[i] = 2 * int(binary.BigEndian.Uint16(loca[2*i:]))
		}
	case 1:
		n := len(loca)
		if n < 8 || n%4 != 0 {
			return nil, invalid("sfnt/loca", "invalid table length")
		}
		offs = make([]int, n/4)
		for i := range offs {
			offs[i] = int(binary.BigEndian.Uint32(loca[4*i:]))
		}
	default:
		return nil, notSupported("sfnt/loca",
			fmt.Sprintf("loca table format %d", format))
	}
	for _, pos := range offs {
		if pos > glyfLen {
			return nil, invalid("sfnt/loca",
				fmt.Sprintf("invalid offset %d", pos))
		}
	}
	return offs, nil
}

// encodeLoca converts glyph offsets into a "loca" table.  The short format
// is used if wantShort is set and all offsets fit.
func encodeLoca(offs []int, wantShort bool) ([]byte, int16) {
	if wantShort && offs[len(offs)-1] <= 2*0xFFFF {
		locaData := make([]byte, 2*len(offs))
		for i, off := range offs {
			binary.BigEndian.PutUint16(locaData[2*i:], uint16(off/2))
		}
		return locaData, 0
	}

	locaData := make([]byte, 4*len(offs))
	for i, off := range offs {
		binary.BigEndian.PutUint32(locaData[4*i:], uint32(off))
	}
	return locaData, 1
}

// componentRef is a reference from a composite glyph to one of its
// components.  Pos is the byte offset of the glyph index inside the glyph
// data.
type componentRef struct {
	Pos int
	GID int
}

// components lists the component references of a composite glyph.  For
// simple and empty glyphs, nil is returned.
func components(data []byte) ([]componentRef, error) {
	if len(data) == 0 {
		return nil, nil
	} else if len(data) < 10 {
		return nil, invalid("sfnt/glyf", "incomplete glyph header")
	}
	numCont := int16(binary.BigEndian.Uint16(data))
	if numCont >= 0 {
		return nil, nil
	}

	var res []componentRef
	pos := 10
	for {
		if pos+4 > len(data) {
			return nil, errIncompleteComposite
		}
		flags := binary.BigEndian.Uint16(data[pos:])
		res = append(res, componentRef{
			Pos: pos + 2,
			GID: int(binary.BigEndian.Uint16(data[pos+2:])),
		})
		pos += 4

		skip := 2
		if flags&flagArgsAreWords != 0 {
			skip = 4
		}
		switch {
		case flags&flagHaveScale != 0:
			skip += 2
		case flags&flagXYScale != 0:
			skip += 4
		case flags&flagTwoByTwo != 0:
			skip += 8
		}
		pos += skip
		if pos > len(data) {
			return nil, errIncompleteComposite
		}

		if flags&flagMoreComponents == 0 {
			break
		}
	}
	return res, nil
}

var errIncompleteComposite = invalid("sfnt/glyf", "incomplete composite glyph")
