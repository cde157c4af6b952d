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

	"seehuhn.de/go/sfnt/cmap"
	"seehuhn.de/go/sfnt/mac"
)

// sfntFont is a decoded TrueType font file.  Table data is shared with the
// underlying file data and must not be modified.
type sfntFont struct {
	data   []byte
	tables map[string][]byte

	numGlyphs  int
	locaFormat int16
	offs       []int // glyph offsets, numGlyphs+1 entries
	glyf       []byte

	advance []uint16
	lsb     []int16

	cmaps map[cmap.Key]codeMap
}

// Mandatory tables for a mergeable TrueType font.
var requiredTables = []string{"head", "hhea", "hmtx", "maxp", "loca", "glyf"}

func decodeFont(data []byte) (*sfntFont, error) {
	tables, err := readDirectory(data)
	if err != nil {
		return nil, err
	}
	for _, name := range requiredTables {
		if tables[name] == nil {
			return nil, invalid("sfnt", fmt.Sprintf("missing %q table", name))
		}
	}

	head := tables["head"]
	if len(head) < 54 {
		return nil, invalid("sfnt/head", "table too short")
	}
	if magic := binary.BigEndian.Uint32(head[12:]); magic != 0x5F0F3CF5 {
		return nil, invalid("sfnt/head", "wrong magic number")
	}
	locaFormat := int16(binary.BigEndian.Uint16(head[50:]))

	maxp := tables["maxp"]
	if len(maxp) < 6 {
		return nil, invalid("sfnt/maxp", "table too short")
	}
	numGlyphs := int(binary.BigEndian.Uint16(maxp[4:]))
	if numGlyphs == 0 {
		return nil, invalid("sfnt/maxp", "no glyphs")
	}

	glyf := tables["glyf"]
	offs, err := decodeLoca(tables["loca"], locaFormat, len(glyf))
	if err != nil {
		return nil, err
	}
	if len(offs) < numGlyphs+1 {
		return nil, invalid("sfnt/loca", "table too short")
	}
	offs = offs[:numGlyphs+1]

	hhea := tables["hhea"]
	if len(hhea) < 36 {
		return nil, invalid("sfnt/hhea", "table too short")
	}
	numHMetrics := int(binary.BigEndian.Uint16(hhea[34:]))
	if numHMetrics == 0 || numHMetrics > numGlyphs {
		return nil, invalid("sfnt/hhea", "invalid numberOfHMetrics")
	}
	hmtx := tables["hmtx"]
	if len(hmtx) < 4*numHMetrics+2*(numGlyphs-numHMetrics) {
		return nil, invalid("sfnt/hmtx", "table too short")
	}
	advance := make([]uint16, numGlyphs)
	lsb := make([]int16, numGlyphs)
	for i := 0; i < numHMetrics; i++ {
		advance[i] = binary.BigEndian.Uint16(hmtx[4*i:])
		lsb[i] = int16(binary.BigEndian.Uint16(hmtx[4*i+2:]))
	}
	tail := hmtx[4*numHMetrics:]
	for i := numHMetrics; i < numGlyphs; i++ {
		advance[i] = advance[numHMetrics-1]
		lsb[i] = int16(binary.BigEndian.Uint16(tail[2*(i-numHMetrics):]))
	}

	cmaps := map[cmap.Key]codeMap{}
	if cmapData := tables["cmap"]; cmapData != nil {
		cmaps, err = decodeCmap(cmapData)
		if err != nil {
			return nil, err
		}
	}

	f := &sfntFont{
		data:       data,
		tables:     tables,
		numGlyphs:  numGlyphs,
		locaFormat: locaFormat,
		offs:       offs,
		glyf:       glyf,
		advance:    advance,
		lsb:        lsb,
		cmaps:      cmaps,
	}
	return f, nil
}

// glyphData returns the raw glyph description for the given glyph.  Empty
// glyphs and glyphs with a negative span in the "loca" table give nil.
func (f *sfntFont) glyphData(gid int) []byte {
	start, end := f.offs[gid], f.offs[gid+1]
	if end <= start {
		return nil
	}
	return f.glyf[start:end]
}

// Info summarises a TrueType font program, for deciding which glyphs to
// request from a merger.
type Info struct {
	NumGlyphs int

	font *sfntFont
}

// Inspect decodes the given TrueType font file.
func Inspect(data []byte) (*Info, error) {
	f, err := decodeFont(data)
	if err != nil {
		return nil, err
	}
	return &Info{NumGlyphs: f.numGlyphs, font: f}, nil
}

// Lookup finds the glyph used to show character code c of a simple font.
// If text is a single character, it is first looked up in the Unicode
// subtables.  Next, the symbolic (3,0) subtable is tried with the code
// itself and with the code in the ranges 0xF000, 0xF100 and 0xF200.  The
// Mac Roman (1,0) subtable is used last, first with the Mac Roman code of
// the text and then with c.  If no glyph is found, 0 is returned.
func (info *Info) Lookup(c byte, text string) int {
	cmaps := info.font.cmaps

	rr := []rune(text)
	if len(rr) == 1 {
		r := uint32(rr[0])
		for _, key := range unicodeKeys {
			if gid := cmaps[key][r]; gid != 0 {
				return gid
			}
		}
	}

	for _, code := range []uint32{uint32(c), 0xF000 + uint32(c), 0xF100 + uint32(c), 0xF200 + uint32(c)} {
		if gid := cmaps[keyWinSymbol][code]; gid != 0 {
			return gid
		}
	}

	if len(rr) == 1 {
		// unmapped runes are encoded as '?'
		if mc := mac.Encode(text)[0]; mc != '?' || text == "?" {
			if gid := cmaps[keyMacRoman][uint32(mc)]; gid != 0 {
				return gid
			}
		}
	}
	return cmaps[keyMacRoman][uint32(c)]
}

// unicodeKeys lists the Unicode subtables, in order of preference.
var unicodeKeys = []cmap.Key{
	keyWinFull,
	keyWinUnicode,
	{PlatformID: 0, EncodingID: 4},
	{PlatformID: 0, EncodingID: 6},
	{PlatformID: 0, EncodingID: 3},
	{PlatformID: 0, EncodingID: 2},
	{PlatformID: 0, EncodingID: 1},
	{PlatformID: 0, EncodingID: 0},
}

// Empty reports whether the given glyph has no outline data.
func (info *Info) Empty(gid int) bool {
	if gid < 0 || gid >= info.NumGlyphs {
		return true
	}
	return info.font.glyphData(gid) == nil
}

// Advance returns the advance width of the given glyph in font design units.
func (info *Info) Advance(gid int) int {
	if gid < 0 || gid >= info.NumGlyphs {
		return 0
	}
	return int(info.font.advance[gid])
}

// UnitsPerEm returns the unitsPerEm value from the "head" table.
func (info *Info) UnitsPerEm() int {
	return int(binary.BigEndian.Uint16(info.font.tables["head"][18:]))
}
