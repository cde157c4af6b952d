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
	"strings"

	"seehuhn.de/go/geom/rect"
)

// Format identifies the type of an embedded font program.
type Format int

// These are the supported font program formats.
const (
	TrueType Format = iota + 1
	CFFSimple
	CFFCID
	Type1
)

func (f Format) String() string {
	switch f {
	case TrueType:
		return "TrueType"
	case CFFSimple:
		return "CFF"
	case CFFCID:
		return "CFF/CID"
	case Type1:
		return "Type1"
	default:
		return "unknown"
	}
}

// Encoding describes the /Encoding entry of a simple PDF font.
type Encoding struct {
	// BaseName is one of "StandardEncoding", "WinAnsiEncoding" and
	// "MacRomanEncoding".  The empty string selects the built-in encoding
	// of the font program.
	BaseName string

	// Differences maps character codes to glyph names.
	Differences map[int]string
}

// Source is one occurrence of an embedded font, as found in a source
// document.  A Source must not be modified after it has been passed to
// this package.
type Source struct {
	// BaseFont is the PostScript name of the font, possibly with a subset
	// tag.
	BaseFont string

	Format Format

	// Composite is set for fonts used via a Type 0 font dictionary with
	// two-byte codes.  CFFCID fonts are always composite.  For composite
	// fonts, a character code is the same as the CID.
	Composite bool

	FirstChar, LastChar int

	// Widths (optional) gives the glyph widths for the codes FirstChar to
	// LastChar, in PDF text space units.
	Widths []int

	// ToUnicode (optional) maps character codes to text.
	ToUnicode map[int]string

	// Encoding (optional) is the encoding of a simple font.
	Encoding *Encoding

	// BBox is the font bounding box from the font descriptor, in PDF glyph
	// space units.
	BBox rect.Rect

	// Data is the embedded font program.
	Data []byte
}

// IsCID reports whether the font uses two-byte CID codes.
func (src *Source) IsCID() bool {
	return src.Composite || src.Format == CFFCID
}

// Width returns the width of the given code, or 0 if no width is known.
func (src *Source) Width(code int) int {
	i := code - src.FirstChar
	if i < 0 || i >= len(src.Widths) {
		return 0
	}
	return src.Widths[i]
}

// FontName returns the font name without the subset tag.
func (src *Source) FontName() string {
	return stripSubsetTag(src.BaseFont)
}

func stripSubsetTag(name string) string {
	tag, rest, ok := strings.Cut(name, "+")
	if ok && isSubsetTag(tag) {
		return rest
	}
	return name
}
