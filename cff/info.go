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

// Info gives access to the glyphs of a CFF font program.
type Info struct {
	// FontName is the name from the Name INDEX.
	FontName string

	// IsCID is true for CID-keyed fonts.
	IsCID bool

	// NumGlyphs is the number of glyphs in the font.
	NumGlyphs int

	font  *cffFont
	names []string
}

// Parse decodes a CFF font program.
func Parse(data []byte) (*Info, error) {
	f, err := decodeFont(data)
	if err != nil {
		return nil, err
	}
	info := &Info{
		FontName:  string(f.fontName),
		IsCID:     f.isCID(),
		NumGlyphs: len(f.charStrings),
		font:      f,
	}
	if !info.IsCID {
		info.names = make([]string, info.NumGlyphs)
		for gid := range info.names {
			info.names[gid], err = f.glyphName(gid)
			if err != nil {
				return nil, err
			}
		}
	}
	return info, nil
}

// GlyphName returns the name of the given glyph.  For CID-keyed fonts the
// empty string is returned.
func (info *Info) GlyphName(gid int) string {
	if gid < 0 || gid >= len(info.names) {
		return ""
	}
	return info.names[gid]
}

// CID returns the CID of the given glyph in a CID-keyed font.
func (info *Info) CID(gid int) int {
	if !info.IsCID || gid < 0 || gid >= info.NumGlyphs {
		return 0
	}
	return int(info.font.charset[gid])
}

// Lookup returns the glyph selected by the given code using the built-in
// encoding of a simple font.
func (info *Info) Lookup(code byte) int {
	if info.font.encoding == nil {
		return 0
	}
	return info.font.encoding[code]
}

// GlyphByName returns the glyph with the given name.
func (info *Info) GlyphByName(name string) (int, bool) {
	for gid, n := range info.names {
		if n == name {
			return gid, true
		}
	}
	return 0, false
}

// CharString returns the Type 2 charstring of the given glyph.
func (info *Info) CharString(gid int) []byte {
	if gid < 0 || gid >= info.NumGlyphs {
		return nil
	}
	return info.font.charStrings[gid]
}

// StandardEncoding reports whether a simple font uses the predefined
// Standard encoding.
func (info *Info) StandardEncoding() bool {
	return info.font.stdEncoding
}
