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

// Info gives access to the glyphs of a Type 1 font program.
//
// Glyph IDs are positions in the CharStrings dictionary of the font.
type Info struct {
	FontName  string
	NumGlyphs int

	font   *t1Font
	byName map[string]int
}

// Parse decodes a Type 1 font program in PFB or PFA format.
func Parse(data []byte) (*Info, error) {
	f, err := decodeFont(data)
	if err != nil {
		return nil, err
	}
	info := &Info{
		FontName:  f.fontName,
		NumGlyphs: len(f.priv.glyphNames),
		font:      f,
		byName:    make(map[string]int, len(f.priv.glyphNames)),
	}
	for gid, name := range f.priv.glyphNames {
		info.byName[name] = gid
	}
	return info, nil
}

func (info *Info) GlyphName(gid int) string {
	if gid < 0 || gid >= info.NumGlyphs {
		return ""
	}
	return info.font.priv.glyphNames[gid]
}

func (info *Info) GlyphByName(name string) (int, bool) {
	gid, ok := info.byName[name]
	return gid, ok
}

// CharString returns the decrypted charstring of the given glyph, with the
// lenIV leading bytes removed.
func (info *Info) CharString(gid int) []byte {
	return info.font.priv.charStrings[info.GlyphName(gid)]
}

// Lookup returns the glyph selected by the given code using the built-in
// encoding.  The second return value is false if the code is not mapped
// or the glyph is missing.
func (info *Info) Lookup(code byte) (int, bool) {
	name := info.font.encoding[code]
	if name == "" {
		return 0, false
	}
	return info.GlyphByName(name)
}

// StandardEncoding reports whether the font uses StandardEncoding as its
// built-in encoding.
func (info *Info) StandardEncoding() bool {
	return info.font.stdEncoding
}
