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
	"slices"

	"seehuhn.de/go/fontmerge/internal/fontio"
)

// Bytes returns the merged CFF font program.  If only one font was added,
// the original data is returned unchanged.  Calling Bytes does not change
// the Merger.
func (m *Merger) Bytes() ([]byte, error) {
	if m.numSources == 0 {
		return nil, errNoFonts
	}
	if m.numSources == 1 {
		return slices.Clone(m.first.data), nil
	}

	f := m.first
	glyphs := m.order()
	nGlyphs := len(glyphs)
	if nGlyphs >= 1<<16 {
		return nil, conflict("too many glyphs")
	}

	charset := make([]int32, nGlyphs)
	charStrings := make([][]byte, nGlyphs)
	for i, g := range glyphs {
		charset[i] = g.key
		charStrings[i] = g.data
	}
	charsetData, err := encodeCharset(charset)
	if err != nil {
		return nil, err
	}
	charStringsData, err := fontio.AppendIndex(nil, charStrings)
	if err != nil {
		return nil, err
	}

	var encodingData, fdSelectData []byte
	if f.isCID() {
		fds := make([]uint8, nGlyphs)
		for i, g := range glyphs {
			fds[i] = g.fd
		}
		fdSelectData = encodeFDSelect(fds)
	} else if m.customEncoding {
		gidOf := make(map[int32]int, nGlyphs)
		for gid, g := range glyphs {
			gidOf[g.key] = gid
		}
		encoding := make([]int, 256)
		for code, key := range m.encoding {
			encoding[code] = gidOf[key]
		}
		encodingData, err = encodeEncoding(encoding, charset)
		if err != nil {
			return nil, err
		}
	}

	// The top DICT has a fixed size, since all offsets use five bytes.
	skip := []dictOp{opCharset, opEncoding, opCharStrings, opPrivate,
		opFDArray, opFDSelect}
	var cidCount int32
	if f.isCID() {
		skip = append(skip, opCIDCount)
		cidCount = f.topDict.getInt(opCIDCount, 8720)
		if maxCID := charset[nGlyphs-1]; maxCID >= cidCount {
			cidCount = maxCID + 1
		}
	}
	topDict := f.topDict.appendEntries(nil, skip...)
	if f.isCID() {
		enc, _ := fontio.CreateNewRef(cidCount, opCIDCount.bytes(), 0)
		topDict = append(topDict, enc...)
	}
	var charsetPos, encodingPos, charStringsPos, privatePos, fdArrayPos, fdSelectPos int
	topDict, charsetPos = appendRef(topDict, opCharset, 1)
	if encodingData != nil {
		topDict, encodingPos = appendRef(topDict, opEncoding, 1)
	}
	topDict, charStringsPos = appendRef(topDict, opCharStrings, 1)
	if f.isCID() {
		topDict, fdArrayPos = appendRef(topDict, opFDArray, 1)
		topDict, fdSelectPos = appendRef(topDict, opFDSelect, 1)
	} else {
		topDict, privatePos = appendRef(topDict, opPrivate, 2)
	}

	out := []byte{f.major, f.minor, 4, 4}
	out, err = fontio.AppendIndex(out, [][]byte{f.fontName})
	if err != nil {
		return nil, err
	}
	topIndexLen, err := fontio.IndexLength([][]byte{topDict})
	if err != nil {
		return nil, err
	}
	stringsData, err := fontio.AppendIndex(nil, m.strings.encode())
	if err != nil {
		return nil, err
	}
	gsubrsData, err := fontio.AppendIndex(nil, f.gsubrs)
	if err != nil {
		return nil, err
	}

	// Lay out the remaining sections.
	pos := len(out) + topIndexLen + len(stringsData) + len(gsubrsData)
	var tail []byte
	place := func(data []byte) int {
		start := pos
		tail = append(tail, data...)
		pos += len(data)
		return start
	}
	patch := func(at int, value int) {
		_ = fontio.PatchInt(topDict, at, 5, int32(value))
	}

	patch(charsetPos, place(charsetData))
	if encodingData != nil {
		patch(encodingPos, place(encodingData))
	}
	if fdSelectData != nil {
		patch(fdSelectPos, place(fdSelectData))
	}
	patch(charStringsPos, place(charStringsData))

	if f.isCID() {
		fdDicts := make([][]byte, len(f.fdArray))
		refs := make([]int, len(f.fdArray))
		for i, fd := range f.fdArray {
			fdDicts[i], refs[i] = appendRef(fd.dict.appendEntries(nil, opPrivate), opPrivate, 2)
		}
		fdArrayLen, err := fontio.IndexLength(fdDicts)
		if err != nil {
			return nil, err
		}
		fdArrayStart := pos
		pos += fdArrayLen
		var privates []byte
		for i, fd := range f.fdArray {
			private, err := encodePrivate(fd.private)
			if err != nil {
				return nil, err
			}
			_ = fontio.PatchInt(fdDicts[i], refs[i], 5, int32(private.dictLen))
			_ = fontio.PatchInt(fdDicts[i], refs[i]+5, 5, int32(pos))
			privates = append(privates, private.data...)
			pos += len(private.data)
		}
		fdArrayData, err := fontio.AppendIndex(nil, fdDicts)
		if err != nil {
			return nil, err
		}
		tail = append(tail, fdArrayData...)
		tail = append(tail, privates...)
		patch(fdArrayPos, fdArrayStart)
	} else {
		private, err := encodePrivate(f.private)
		if err != nil {
			return nil, err
		}
		patch(privatePos, private.dictLen)
		patch(privatePos+5, place(private.data))
	}

	out, err = fontio.AppendIndex(out, [][]byte{topDict})
	if err != nil {
		return nil, err
	}
	out = append(out, stringsData...)
	out = append(out, gsubrsData...)
	out = append(out, tail...)
	return out, nil
}

type encodedPrivate struct {
	data    []byte // the Private DICT, followed by the local subroutines
	dictLen int
}

// encodePrivate writes a Private DICT, followed by its Subrs INDEX.
func encodePrivate(p *privateInfo) (*encodedPrivate, error) {
	dict := p.dict.appendEntries(nil, opSubrs)
	if len(p.subrs) == 0 {
		return &encodedPrivate{data: dict, dictLen: len(dict)}, nil
	}

	dict, subrsPos := appendRef(dict, opSubrs, 1)
	_ = fontio.PatchInt(dict, subrsPos, 5, int32(len(dict)))
	dictLen := len(dict)
	data, err := fontio.AppendIndex(dict, p.subrs)
	if err != nil {
		return nil, err
	}
	return &encodedPrivate{data: data, dictLen: dictLen}, nil
}
