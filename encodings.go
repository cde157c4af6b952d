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

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"seehuhn.de/go/postscript/psenc"
	"seehuhn.de/go/postscript/type1/names"
)

// glyphName returns the glyph name the encoding assigns to code, or the
// empty string if the built-in encoding of the font program is used.
func (enc *Encoding) glyphName(code int) string {
	if enc == nil || code < 0 || code > 255 {
		return ""
	}
	if name, ok := enc.Differences[code]; ok {
		return name
	}
	return baseGlyphName(enc.BaseName, byte(code))
}

func baseGlyphName(base string, c byte) string {
	switch base {
	case "StandardEncoding":
		if name := psenc.StandardEncoding[c]; name != ".notdef" {
			return name
		}
		return ""
	case "WinAnsiEncoding":
		switch c {
		case 0xA0:
			return "space"
		case 0xAD:
			return "hyphen"
		}
		return nameForRune(charmap.Windows1252.DecodeByte(c))
	case "MacRomanEncoding":
		return nameForRune(charmap.Macintosh.DecodeByte(c))
	}
	return ""
}

func nameForRune(r rune) string {
	if r < 0x20 || r == 0x7F || r == utf8.RuneError || r >= 0x80 && r < 0xA0 {
		return ""
	}
	return names.FromUnicode(string(r))
}

// textForName guesses the text represented by a glyph name.
func textForName(name string) string {
	if name == "" || name == ".notdef" {
		return ""
	}
	return names.ToUnicode(name, "")
}
