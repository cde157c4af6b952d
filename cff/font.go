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

	"seehuhn.de/go/postscript/psenc"
	"seehuhn.de/go/sfnt/parser"
)

// cffFont is a decoded CFF font program.  Byte slices point into either
// the original data or buffers owned by the font, and are never modified.
type cffFont struct {
	data []byte

	major, minor byte
	fontName     []byte
	topDict      cffDict
	strings      *cffStrings
	gsubrs       [][]byte
	charStrings  [][]byte
	charset      []int32 // SID for simple fonts, CID for CID-keyed fonts

	// simple fonts
	private     *privateInfo
	encoding    []int // code -> glyph ID
	stdEncoding bool

	// CID-keyed fonts
	fdArray  []*fdInfo
	fdSelect []uint8
}

type privateInfo struct {
	dict  cffDict
	subrs [][]byte
}

type fdInfo struct {
	dict    cffDict
	private *privateInfo
}

func (f *cffFont) isCID() bool {
	return f.fdArray != nil
}

func decodeFont(data []byte) (*cffFont, error) {
	p := newParser(data)

	header, err := readBlob(p, 4)
	if err != nil {
		return nil, err
	}
	major, minor := header[0], header[1]
	nameIndexOffs := int64(header[2])
	offSize := header[3] // only used to exclude non-CFF files
	if major == 2 {
		return nil, unsupported(fmt.Sprintf("CFF version %d.%d", major, minor))
	} else if major != 1 || nameIndexOffs < 4 || offSize > 4 {
		return nil, invalidSince("not a CFF font")
	}

	// read the Name INDEX
	err = seek(p, nameIndexOffs)
	if err != nil {
		return nil, err
	}
	fontNames, err := readIndex(p)
	if err != nil {
		return nil, err
	}
	if len(fontNames) == 0 {
		return nil, invalidSince("no font found")
	} else if len(fontNames) > 1 {
		return nil, unsupported("font sets")
	}

	// read the Top DICT
	topDictIndex, err := readIndex(p)
	if err != nil {
		return nil, err
	}
	if len(topDictIndex) != 1 {
		return nil, invalidSince("wrong number of top DICTs")
	}

	stringIndex, err := readIndex(p)
	if err != nil {
		return nil, err
	}
	gsubrs, err := readIndex(p)
	if err != nil {
		return nil, err
	}

	topDict, err := decodeDict(topDictIndex[0])
	if err != nil {
		return nil, err
	}
	if topDict.getInt(opCharstringType, 2) != 2 {
		return nil, unsupported("charstring type")
	}
	if topDict.has(opSyntheticBase) {
		return nil, unsupported("synthetic fonts")
	}

	f := &cffFont{
		data:     data,
		major:    major,
		minor:    minor,
		fontName: fontNames[0],
		topDict:  topDict,
		strings:  newStrings(stringIndex),
		gsubrs:   gsubrs,
	}

	f.charStrings, err = readIndexAt(p, topDict.getInt(opCharStrings, 0), "CharStrings")
	if err != nil {
		return nil, err
	}
	nGlyphs := len(f.charStrings)
	if nGlyphs == 0 {
		return nil, invalidSince("no glyphs")
	}

	charsetOffs := topDict.getInt(opCharset, 0)
	switch charsetOffs {
	case 0:
		f.charset, err = isoAdobeCharset(nGlyphs)
	case 1, 2:
		err = unsupported("Expert charsets")
	default:
		err = seek(p, int64(charsetOffs))
		if err == nil {
			f.charset, err = readCharset(p, nGlyphs)
		}
	}
	if err != nil {
		return nil, err
	}

	if topDict.has(opROS) {
		fdArrayIndex, err := readIndexAt(p, topDict.getInt(opFDArray, 0), "Font DICT")
		if err != nil {
			return nil, err
		}
		if len(fdArrayIndex) == 0 || len(fdArrayIndex) > 256 {
			return nil, invalidSince("invalid FDArray")
		}
		for _, blob := range fdArrayIndex {
			fontDict, err := decodeDict(blob)
			if err != nil {
				return nil, err
			}
			private, err := readPrivate(p, fontDict)
			if err != nil {
				return nil, err
			}
			f.fdArray = append(f.fdArray, &fdInfo{dict: fontDict, private: private})
		}

		fdSelectOffs := topDict.getInt(opFDSelect, 0)
		if fdSelectOffs <= 0 {
			return nil, invalidSince("missing FDSelect")
		}
		err = seek(p, int64(fdSelectOffs))
		if err != nil {
			return nil, err
		}
		f.fdSelect, err = readFDSelect(p, nGlyphs, len(f.fdArray))
		if err != nil {
			return nil, err
		}
		return f, nil
	}

	f.private, err = readPrivate(p, topDict)
	if err != nil {
		return nil, err
	}

	encodingOffs := topDict.getInt(opEncoding, 0)
	switch encodingOffs {
	case 0:
		f.stdEncoding = true
		f.encoding = make([]int, 256)
		byName := make(map[string]int, nGlyphs)
		for gid := nGlyphs - 1; gid > 0; gid-- {
			name, err := f.strings.get(f.charset[gid])
			if err != nil {
				return nil, err
			}
			byName[name] = gid
		}
		for code, name := range psenc.StandardEncoding[:] {
			if gid, ok := byName[name]; ok && name != ".notdef" {
				f.encoding[code] = gid
			}
		}
	case 1:
		return nil, unsupported("Expert encoding")
	default:
		err = seek(p, int64(encodingOffs))
		if err != nil {
			return nil, err
		}
		f.encoding, err = readEncoding(p, f.charset)
		if err != nil {
			return nil, err
		}
	}

	return f, nil
}

// readPrivate reads the Private DICT referenced by the given top DICT or
// font DICT, together with its local subroutines.
func readPrivate(p *parser.Parser, parent cffDict) (*privateInfo, error) {
	size, offs, ok := parent.getPair(opPrivate)
	if !ok || size < 0 || offs < 0 || int64(offs)+int64(size) > p.Size() {
		return nil, invalidSince("missing or invalid Private DICT")
	}
	err := seek(p, int64(offs))
	if err != nil {
		return nil, err
	}
	blob, err := readBlob(p, int(size))
	if err != nil {
		return nil, err
	}
	dict, err := decodeDict(blob)
	if err != nil {
		return nil, err
	}
	res := &privateInfo{dict: dict}

	if subrsOffs := dict.getInt(opSubrs, 0); subrsOffs > 0 {
		res.subrs, err = readIndexAt(p, offs+subrsOffs, "Subrs")
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

// glyphName returns the name of a glyph in a simple font.
func (f *cffFont) glyphName(gid int) (string, error) {
	return f.strings.get(f.charset[gid])
}
