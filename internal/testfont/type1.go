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

// Package testfont builds small font programs for use in tests.
package testfont

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Glyph is a glyph of a test font.
type Glyph struct {
	Name string

	// CharString is the unencrypted charstring, without the leading
	// lenIV bytes.
	CharString []byte
}

// Type1Options controls the construction of a Type 1 font.
type Type1Options struct {
	// Subrs are the unencrypted subroutines.
	Subrs [][]byte

	// Encoding gives the built-in encoding.  If nil, StandardEncoding is
	// used.
	Encoding map[int]string

	// Hex selects PFA format with a hexadecimal eexec section, instead of
	// PFB.
	Hex bool

	// LenIV, if positive, sets the number of leading bytes of encrypted
	// charstrings.  The /lenIV entry is written after the Subrs array.
	LenIV int
}

// Type1 returns a Type 1 font with the given glyphs.
func Type1(name string, glyphs []Glyph, opt *Type1Options) []byte {
	if opt == nil {
		opt = &Type1Options{}
	}

	var clear bytes.Buffer
	fmt.Fprintf(&clear, "%%!PS-AdobeFont-1.0: %s 001.000\n", name)
	clear.WriteString("11 dict begin\n")
	clear.WriteString("/FontInfo 2 dict dup begin\n")
	fmt.Fprintf(&clear, "/FullName (%s Regular) readonly def\n", name)
	clear.WriteString("/FamilyName (Test) readonly def\nend readonly def\n")
	fmt.Fprintf(&clear, "/FontName /%s def\n", name)
	clear.WriteString("/PaintType 0 def\n/FontType 1 def\n")
	clear.WriteString("/FontMatrix [0.001 0 0 0.001 0 0] readonly def\n")
	if opt.Encoding == nil {
		clear.WriteString("/Encoding StandardEncoding def\n")
	} else {
		clear.WriteString("/Encoding 256 array\n0 1 255 {1 index exch /.notdef put} for\n")
		for code := range 256 {
			if n, ok := opt.Encoding[code]; ok {
				fmt.Fprintf(&clear, "dup %d /%s put\n", code, n)
			}
		}
		clear.WriteString("readonly def\n")
	}
	clear.WriteString("/FontBBox {0 0 600 700} readonly def\n")
	clear.WriteString("currentdict end\ncurrentfile eexec\n")

	var priv bytes.Buffer
	priv.WriteString("dup /Private 8 dict dup begin\n")
	priv.WriteString("/RD {string currentfile exch readstring pop} executeonly def\n")
	priv.WriteString("/ND {noaccess def} executeonly def\n")
	priv.WriteString("/NP {noaccess put} executeonly def\n")
	priv.WriteString("/MinFeature {16 16} def\n/password 5839 def\n")
	priv.WriteString("/BlueValues [-10 0 700 710] def\n")
	lenIV := 4
	if opt.LenIV > 0 {
		lenIV = opt.LenIV
	}
	if len(opt.Subrs) > 0 {
		fmt.Fprintf(&priv, "/Subrs %d array\n", len(opt.Subrs))
		for i, subr := range opt.Subrs {
			cipher := encrypt(4330, subr, lenIV)
			fmt.Fprintf(&priv, "dup %d %d RD ", i, len(cipher))
			priv.Write(cipher)
			priv.WriteString(" NP\n")
		}
		priv.WriteString("ND\n")
	}
	if opt.LenIV > 0 {
		fmt.Fprintf(&priv, "/lenIV %d def\n", opt.LenIV)
	}
	fmt.Fprintf(&priv, "2 index /CharStrings %d dict dup begin\n", len(glyphs))
	for _, g := range glyphs {
		cipher := encrypt(4330, g.CharString, lenIV)
		fmt.Fprintf(&priv, "/%s %d RD ", g.Name, len(cipher))
		priv.Write(cipher)
		priv.WriteString(" ND\n")
	}
	priv.WriteString("end\nend\nreadonly put\nnoaccess put\n")
	priv.WriteString("dup /FontName get exch definefont pop\n")
	priv.WriteString("mark currentfile closefile\n")
	private := encrypt(55665, priv.Bytes(), 4)

	var trailer bytes.Buffer
	for range 8 {
		trailer.Write(bytes.Repeat([]byte{'0'}, 64))
		trailer.WriteByte('\n')
	}
	trailer.WriteString("cleartomark\n")

	var out bytes.Buffer
	if opt.Hex {
		out.Write(clear.Bytes())
		for i, c := range private {
			fmt.Fprintf(&out, "%02x", c)
			if i%32 == 31 {
				out.WriteByte('\n')
			}
		}
		out.WriteByte('\n')
		out.Write(trailer.Bytes())
		return out.Bytes()
	}

	segment := func(tp byte, body []byte) {
		out.Write([]byte{0x80, tp})
		binary.Write(&out, binary.LittleEndian, uint32(len(body)))
		out.Write(body)
	}
	segment(1, clear.Bytes())
	segment(2, private)
	segment(1, trailer.Bytes())
	out.Write([]byte{0x80, 3})
	return out.Bytes()
}

// encrypt applies the Type 1 encryption with n leading zero bytes.
func encrypt(key uint16, plain []byte, n int) []byte {
	r := key
	cipher := make([]byte, 0, len(plain)+n)
	for _, p := range append(make([]byte, n), plain...) {
		c := p ^ byte(r>>8)
		r = (uint16(c)+r)*52845 + 22719
		cipher = append(cipher, c)
	}
	return cipher
}

// LineCS returns a Type 1 charstring for a glyph of width 500, drawing a
// triangle of size d.  d must be in the range 1 to 107.
func LineCS(d int) []byte {
	// 0 500 hsbw 0 0 rmoveto d 0 rlineto 0 d rlineto closepath endchar
	return []byte{
		139, 248, 136, 13,
		139, 139, 21,
		byte(d + 139), 139, 5,
		139, byte(d + 139), 5,
		9, 14,
	}
}

// NotdefCS is the Type 1 charstring for an empty .notdef glyph.
var NotdefCS = []byte{139, 248, 136, 13, 14} // 0 500 hsbw endchar

// Subrs returns the conventional first four subroutines of a Type 1 font.
func Subrs() [][]byte {
	return [][]byte{
		{142, 139, 12, 16, 12, 17, 12, 17, 12, 33, 11}, // 3 0 callothersubr pop pop setcurrentpoint return
		{139, 140, 12, 16, 11},                         // 0 1 callothersubr return
		{139, 141, 12, 16, 11},                         // 0 2 callothersubr return
		{11},                                           // return
	}
}
