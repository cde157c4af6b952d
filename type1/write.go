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

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
)

// outputLenIV is used for all charstrings of a merged font.
const outputLenIV = 4

// Bytes returns the merged font in PFB format.  If only one font was read
// and all its glyphs were requested, the original data is returned.
func (m *Merger) Bytes() ([]byte, error) {
	if m.numSources == 0 {
		return nil, errNoFonts
	}
	if m.numSources == 1 && m.allGlyphs {
		return slices.Clone(m.firstData), nil
	}

	clear, err := m.encodeClear()
	if err != nil {
		return nil, err
	}
	seg := &segments{
		clear:   clear,
		private: encrypt(eexecKey, m.encodePrivate(), 4),
		trailer: m.first.seg.trailer,
	}
	return seg.writePFB(), nil
}

// encodeClear returns the cleartext part of the first font with the
// /Encoding definition replaced.
func (m *Merger) encodeClear() ([]byte, error) {
	f := m.first
	clear := f.seg.clear

	var buf bytes.Buffer
	if f.encStart >= 0 {
		buf.Write(clear[:f.encStart])
		m.writeEncoding(&buf)
		buf.Write(clear[f.encEnd:])
		return buf.Bytes(), nil
	}

	k := bytes.Index(clear, []byte("currentdict end"))
	if k < 0 {
		k = bytes.Index(clear, []byte("currentfile"))
	}
	if k < 0 {
		return nil, invalid("cannot place /Encoding")
	}
	buf.Write(clear[:k])
	m.writeEncoding(&buf)
	buf.WriteByte('\n')
	buf.Write(clear[k:])
	return buf.Bytes(), nil
}

func (m *Merger) writeEncoding(buf *bytes.Buffer) {
	if m.allStandard {
		buf.WriteString("/Encoding StandardEncoding def")
		return
	}
	buf.WriteString("/Encoding 256 array\n0 1 255 {1 index exch /.notdef put} for\n")
	for _, code := range slices.Sorted(maps.Keys(m.encoding)) {
		fmt.Fprintf(buf, "dup %d /%s put\n", code, m.encoding[code])
	}
	buf.WriteString("readonly def")
}

func (m *Merger) encodePrivate() []byte {
	p := m.first.priv
	var buf bytes.Buffer

	buf.Write(normalizeLenIV(p.head))

	np := p.np
	if p.numSubrs == 0 {
		np = putFor(p.nd)
	}
	count := m.numSubrs
	for idx := range m.subrs {
		count = max(count, idx+1)
	}
	if count > 0 {
		fmt.Fprintf(&buf, "/Subrs %d array\n", count)
		for i := range count {
			subr, ok := m.subrs[i]
			if !ok {
				subr = []byte{11} // return
			}
			cipher := encrypt(charStringKey, subr, outputLenIV)
			fmt.Fprintf(&buf, "dup %d %d %s ", i, len(cipher), p.rd)
			buf.Write(cipher)
			fmt.Fprintf(&buf, " %s\n", np)
		}
		if p.numSubrs == 0 {
			buf.WriteString(p.nd + "\n")
		}
	}

	buf.Write(normalizeLenIV(p.mid))
	fmt.Fprintf(&buf, "/CharStrings %d dict dup begin\n", len(m.glyphNames))
	for _, name := range m.glyphNames {
		cipher := encrypt(charStringKey, m.charStrings[name], outputLenIV)
		fmt.Fprintf(&buf, "/%s %d %s ", name, len(cipher), p.rd)
		buf.Write(cipher)
		fmt.Fprintf(&buf, " %s\n", p.nd)
	}
	buf.Write(normalizeLenIV(p.tail))
	return buf.Bytes()
}

// normalizeLenIV rewrites a /lenIV entry in a text part of the Private
// dictionary to the value used for merged fonts.
func normalizeLenIV(text []byte) []byte {
	idx := bytes.Index(text, []byte("/lenIV"))
	if idx < 0 {
		return text
	}
	s := &scanner{data: text, pos: idx + len("/lenIV")}
	s.skipSpace()
	start := s.pos
	if _, err := s.int(); err != nil {
		return text
	}
	res := slices.Clone(text[:start])
	res = fmt.Appendf(res, "%d", outputLenIV)
	return append(res, text[s.pos:]...)
}

// putFor returns the spelling of the NP procedure matching the given
// spelling of ND.
func putFor(nd string) string {
	switch nd {
	case "|-":
		return "|"
	case "noaccess def":
		return "noaccess put"
	}
	return "NP"
}
