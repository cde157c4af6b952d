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

// Package fontmerge consolidates the fonts of re-embedded PDF pages.
//
// When pages from several PDF files are copied into a new document, the
// same font is often embedded many times, each time as a different subset.
// This package merges such occurrences into one font, so that the new
// document needs to embed every font only once.
//
// A [Font] is created from the first occurrence of a font, using [New].
// Further occurrences are added using [Font.AddFont].  The merged font
// program is obtained from [Font.Bytes], and the code translation needed
// to rewrite content streams is available via [Font.MappedWord].
// A [Session] keeps track of all fonts of one output document and falls
// back to separate fonts where merging is not possible.
//
// Font programs in TrueType, CFF (simple and CID-keyed) and Type 1 format
// are supported.  The binary formats are handled by the sub-packages
// truetype, cff and type1.
package fontmerge
