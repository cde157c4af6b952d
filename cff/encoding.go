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

// readEncoding reads a custom encoding at the current position.  The result
// gives the glyph ID for every code, 0 for unused codes.
func readEncoding(p *parser.Parser, charset []int32) ([]int, error) {
	format, err := p.ReadUint8()
	if err != nil {
		return nil, err
	}

	res := make([]int, 256)
	current := 1
	switch format & 127 {
	case 0:
		nCodes, err := p.ReadUint8()
		if err != nil {
			return nil, err
		}
		if int(nCodes) >= len(charset) {
			return nil, invalidSince("encoding too long")
		}
		for i := 0; i < int(nCodes); i++ {
			c, err := p.ReadUint8()
			if err != nil {
				return nil, err
			}
			if res[c] != 0 {
				return nil, invalidSince("invalid format 0 encoding")
			}
			res[c] = current
			current++
		}
	case 1:
		nRanges, err := p.ReadUint8()
		if err != nil {
			return nil, err
		}
		for i := 0; i < int(nRanges); i++ {
			first, err := p.ReadUint8()
			if err != nil {
				return nil, err
			}
			nLeft, err := p.ReadUint8()
			if err != nil {
				return nil, err
			}
			if int(first)+int(nLeft) > 255 {
				return nil, invalidSince("invalid format 1 encoding")
			}
			for j := int(first); j <= int(first)+int(nLeft); j++ {
				if current >= len(charset) {
					return nil, invalidSince("encoding too long")
				} else if res[j] != 0 {
					return nil, invalidSince("invalid format 1 encoding")
				}
				res[j] = current
				current++
			}
		}
	default:
		return nil, unsupported(fmt.Sprintf("encoding format %d", format&127))
	}

	if format&128 != 0 {
		lookup := make(map[int32]int, len(charset))
		for gid, sid := range charset {
			if _, seen := lookup[sid]; !seen {
				lookup[sid] = gid
			}
		}
		nSups, err := p.ReadUint8()
		if err != nil {
			return nil, err
		}
		for i := 0; i < int(nSups); i++ {
			code, err := p.ReadUint8()
			if err != nil {
				return nil, err
			}
			sid, err := p.ReadUint16()
			if err != nil {
				return nil, err
			}
			if gid := lookup[int32(sid)]; gid != 0 && res[code] == 0 {
				res[code] = gid
			}
		}
	}

	return res, nil
}

// encodeEncoding writes a custom encoding.  The encoded glyphs must be
// the glyphs 1, 2, ..., n for some n; further codes for these glyphs are
// stored as supplements.
func encodeEncoding(encoding []int, charset []int32) ([]byte, error) {
	maxGID := 0
	codes := map[int]byte{}
	type suppl struct {
		code byte
		gid  int
	}
	var extra []suppl
	for code, gid := range encoding {
		if gid == 0 {
			continue
		}
		if _, ok := codes[gid]; ok {
			extra = append(extra, suppl{byte(code), gid})
			continue
		}
		codes[gid] = byte(code)
		maxGID = max(maxGID, gid)
	}
	if maxGID > 255 {
		return nil, invalidSince("too many encoded glyphs")
	}

	type seg struct {
		firstCode byte
		nLeft     byte
	}
	var ss []seg
	if maxGID > 0 {
		startGID := 1
		startCode := codes[startGID]
		for gid := 1; gid <= maxGID; gid++ {
			code, ok := codes[gid]
			if !ok {
				return nil, invalidSince("encoded glyphs not consecutive")
			}
			if gid-startGID != int(code)-int(startCode) {
				ss = append(ss, seg{startCode, byte(gid - startGID - 1)})
				startGID = gid
				startCode = code
			}
		}
		ss = append(ss, seg{startCode, byte(maxGID - startGID)})
	}

	var buf []byte
	if 2+maxGID <= 2+2*len(ss) {
		buf = append(buf, 0, byte(maxGID))
		for gid := 1; gid <= maxGID; gid++ {
			buf = append(buf, codes[gid])
		}
	} else {
		buf = append(buf, 1, byte(len(ss)))
		for _, s := range ss {
			buf = append(buf, s.firstCode, s.nLeft)
		}
	}

	if len(extra) > 0 {
		buf[0] |= 128
		buf = append(buf, byte(len(extra)))
		for _, s := range extra {
			sid := charset[s.gid]
			buf = append(buf, s.code, byte(sid>>8), byte(sid))
		}
	}

	return buf, nil
}
