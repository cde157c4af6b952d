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
	"seehuhn.de/go/sfnt/cmap"
	"seehuhn.de/go/sfnt/glyph"
	"seehuhn.de/go/sfnt/parser"
)

var (
	keyWinUnicode = cmap.Key{PlatformID: 3, EncodingID: 1}
	keyWinFull    = cmap.Key{PlatformID: 3, EncodingID: 10}
	keyWinSymbol  = cmap.Key{PlatformID: 3, EncodingID: 0}
	keyMacRoman   = cmap.Key{PlatformID: 1, EncodingID: 0}
)

// codeMap maps the character codes of one cmap subtable to glyph IDs.
type codeMap map[uint32]int

// decodeCmap returns the subtables of the given "cmap" table, keyed by
// platform and encoding ID.  Character codes are kept as they appear in the
// subtable, also for Mac subtables.  Subtables in formats other than 0, 4,
// 6 and 12 are skipped.
func decodeCmap(data []byte) (map[cmap.Key]codeMap, error) {
	table, err := cmap.Decode(data)
	if err != nil {
		return nil, &parser.InvalidFontError{SubSystem: "sfnt/cmap", Reason: err.Error()}
	}

	res := make(map[cmap.Key]codeMap, len(table))
	for key := range table {
		key.Language = 0
		if _, seen := res[key]; seen {
			continue
		}
		sub, err := table.GetNoLang(key.PlatformID, key.EncodingID)
		if err != nil {
			continue
		}
		res[key] = fromSubtable(sub)
	}
	return res, nil
}

func fromSubtable(sub cmap.Subtable) codeMap {
	res := make(codeMap)
	switch sub := sub.(type) {
	case *cmap.Format0:
		for c, gid := range sub.Data {
			if gid != 0 {
				res[uint32(c)] = int(gid)
			}
		}
	case cmap.Format4:
		for c, gid := range sub {
			if gid != 0 {
				res[uint32(c)] = int(gid)
			}
		}
	case cmap.Format12:
		for c, gid := range sub {
			if gid != 0 {
				res[c] = int(gid)
			}
		}
	}
	return res
}

// subtable converts m into a cmap subtable.  Mac Roman subtables use
// format 0 where possible.  Otherwise format 4 is used if all codes are in
// the BMP, format 12 if not.
func (m codeMap) subtable(key cmap.Key) cmap.Subtable {
	small, bmp := true, true
	for c, gid := range m {
		if c >= 0xFFFF {
			bmp = false
		}
		if c > 255 || gid > 255 {
			small = false
		}
	}

	switch {
	case !bmp:
		sub := make(cmap.Format12, len(m))
		for c, gid := range m {
			sub[c] = glyph.ID(gid)
		}
		return sub
	case small && key == keyMacRoman:
		sub := &cmap.Format0{}
		for c, gid := range m {
			sub.Data[c] = byte(gid)
		}
		return sub
	default:
		sub := make(cmap.Format4, len(m))
		for c, gid := range m {
			sub[uint16(c)] = glyph.ID(gid)
		}
		return sub
	}
}

// encodeCmap writes a complete "cmap" table.  Identical subtables are
// stored only once.
func encodeCmap(subtables map[cmap.Key]codeMap) []byte {
	table := make(cmap.Table, len(subtables))
	for key, m := range subtables {
		table[key] = m.subtable(key).Encode(key.Language)
	}
	return table.Encode()
}
