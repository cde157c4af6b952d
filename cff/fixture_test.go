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
	"testing"

	"seehuhn.de/go/fontmerge/internal/fontio"
)

type testGlyph struct {
	name string // glyph name for simple fonts
	cid  int32  // CID for CID-keyed fonts
	cs   []byte
}

// glyphCS returns a Type 2 charstring drawing a single line of length d.
func glyphCS(d int) []byte {
	// 100 100 rmoveto d 0 rlineto endchar
	return []byte{239, 239, 21, byte(d + 139), 139, 5, 14}
}

// subrCS returns a charstring which calls local subroutine 0 and then
// draws a line.
func subrCS(d int) []byte {
	// -107 callsubr d 0 rlineto endchar
	return []byte{32, 10, byte(d + 139), 139, 5, 14}
}

var (
	notdefCS = []byte{14}
	testSubr = []byte{239, 239, 21, 11} // 100 100 rmoveto return
)

func intArg(t *testing.T, x int32) []byte {
	t.Helper()
	buf, err := fontio.CreateNewRef(x, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	return buf
}

// makeSimpleFont builds a CFF font with the given glyphs.  If enc is
// non-nil, the glyphs 1, 2, ... are given the listed codes in a custom
// encoding.
func makeSimpleFont(t *testing.T, fontName string, glyphs []testGlyph, subrs [][]byte, enc []byte) []byte {
	t.Helper()

	ss := &cffStrings{}
	charset := make([]int32, len(glyphs))
	charStrings := make([][]byte, len(glyphs))
	for i, g := range glyphs {
		charset[i] = ss.lookup(g.name)
		charStrings[i] = g.cs
	}

	var encodingData []byte
	if enc != nil {
		encoding := make([]int, 256)
		for i, code := range enc {
			encoding[code] = i + 1
		}
		var err error
		encodingData, err = encodeEncoding(encoding, charset)
		if err != nil {
			t.Fatal(err)
		}
	}

	private := &privateInfo{
		dict:  cffDict{{op: 0x15, args: [][]byte{intArg(t, 0)}}}, // nominalWidthX
		subrs: subrs,
	}

	return assemble(t, fontName, ss, charset, charStrings, encodingData, private, nil, nil)
}

// makeCIDFont builds a CID-keyed CFF font with the given glyphs, using a
// single font DICT.
func makeCIDFont(t *testing.T, fontName string, glyphs []testGlyph, subrs [][]byte) []byte {
	t.Helper()

	ss := &cffStrings{}
	charset := make([]int32, len(glyphs))
	charStrings := make([][]byte, len(glyphs))
	for i, g := range glyphs {
		charset[i] = g.cid
		charStrings[i] = g.cs
	}
	ros := cffDict{{
		op: opROS,
		args: [][]byte{
			intArg(t, ss.lookup("Adobe")),
			intArg(t, ss.lookup("Identity")),
			intArg(t, 0),
		},
	}}
	fd := &fdInfo{
		private: &privateInfo{
			dict:  cffDict{{op: 0x15, args: [][]byte{intArg(t, 0)}}},
			subrs: subrs,
		},
	}
	return assemble(t, fontName, ss, charset, charStrings, nil, nil, ros, []*fdInfo{fd})
}

func assemble(t *testing.T, fontName string, ss *cffStrings, charset []int32, charStrings [][]byte,
	encodingData []byte, private *privateInfo, ros cffDict, fds []*fdInfo) []byte {
	t.Helper()

	charsetData, err := encodeCharset(charset)
	if err != nil {
		t.Fatal(err)
	}
	charStringsData, err := fontio.AppendIndex(nil, charStrings)
	if err != nil {
		t.Fatal(err)
	}

	topDict := ros.appendEntries(nil)
	var charsetPos, encodingPos, charStringsPos, privatePos, fdArrayPos, fdSelectPos int
	topDict, charsetPos = appendRef(topDict, opCharset, 1)
	if encodingData != nil {
		topDict, encodingPos = appendRef(topDict, opEncoding, 1)
	}
	topDict, charStringsPos = appendRef(topDict, opCharStrings, 1)
	if fds != nil {
		topDict, fdArrayPos = appendRef(topDict, opFDArray, 1)
		topDict, fdSelectPos = appendRef(topDict, opFDSelect, 1)
	} else {
		topDict, privatePos = appendRef(topDict, opPrivate, 2)
	}

	out := []byte{1, 0, 4, 4}
	out, _ = fontio.AppendIndex(out, [][]byte{[]byte(fontName)})
	topLen, _ := fontio.IndexLength([][]byte{topDict})
	stringsData, _ := fontio.AppendIndex(nil, ss.encode())
	gsubrsData, _ := fontio.AppendIndex(nil, nil)

	pos := len(out) + topLen + len(stringsData) + len(gsubrsData)
	var tail []byte
	place := func(at int, data []byte) {
		if err := fontio.PatchInt(topDict, at, 5, int32(pos)); err != nil {
			t.Fatal(err)
		}
		tail = append(tail, data...)
		pos += len(data)
	}
	place(charsetPos, charsetData)
	if encodingData != nil {
		place(encodingPos, encodingData)
	}
	if fds != nil {
		fdSelect := make([]uint8, len(charset))
		place(fdSelectPos, encodeFDSelect(fdSelect))
	}
	place(charStringsPos, charStringsData)
	if fds != nil {
		var dicts [][]byte
		var privates []byte
		for range fds {
			dict, _ := appendRef(nil, opPrivate, 2)
			dicts = append(dicts, dict)
		}
		fdArrayLen, _ := fontio.IndexLength(dicts)
		privPos := pos + fdArrayLen
		for i, fd := range fds {
			enc, err := encodePrivate(fd.private)
			if err != nil {
				t.Fatal(err)
			}
			_ = fontio.PatchInt(dicts[i], 0, 5, int32(enc.dictLen))
			_ = fontio.PatchInt(dicts[i], 5, 5, int32(privPos))
			privates = append(privates, enc.data...)
			privPos += len(enc.data)
		}
		fdArray, _ := fontio.AppendIndex(nil, dicts)
		place(fdArrayPos, append(fdArray, privates...))
	} else {
		enc, err := encodePrivate(private)
		if err != nil {
			t.Fatal(err)
		}
		_ = fontio.PatchInt(topDict, privatePos, 5, int32(enc.dictLen))
		place(privatePos+5, enc.data)
	}

	out, _ = fontio.AppendIndex(out, [][]byte{topDict})
	out = append(out, stringsData...)
	out = append(out, gsubrsData...)
	return append(out, tail...)
}
