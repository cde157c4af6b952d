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
	"strconv"

	"seehuhn.de/go/postscript/psenc"
)

// t1Font is a decoded Type 1 font.
type t1Font struct {
	seg *segments

	fontName string

	// The /Encoding definition occupies clear[encStart:encEnd].
	// If the font has no /Encoding, encStart is -1.
	encStart, encEnd int
	stdEncoding      bool
	encoding         [256]string

	priv *privateSection
}

// privateSection is the decrypted eexec part of a font, split around the
// Subrs array and the CharStrings dictionary.
type privateSection struct {
	lenIV int

	// token spellings
	rd, nd, np string

	head []byte // text before the Subrs array
	mid  []byte // text between the Subrs array and /CharStrings
	tail []byte // text after the CharStrings dictionary

	numSubrs int // declared length of the Subrs array, 0 if absent
	subrs    map[int][]byte

	glyphNames  []string // in the order of the CharStrings dictionary
	charStrings map[string][]byte
}

func decodeFont(data []byte) (*t1Font, error) {
	seg, err := readSegments(data)
	if err != nil {
		return nil, err
	}
	f := &t1Font{seg: seg}

	f.fontName = findName(seg.clear, "/FontName")
	err = f.readEncoding()
	if err != nil {
		return nil, err
	}

	plain := decrypt(eexecKey, seg.private, 4)
	f.priv, err = parsePrivate(plain)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// findName returns the name value following key, or the empty string.
func findName(data []byte, key string) string {
	idx := bytes.Index(data, []byte(key))
	if idx < 0 {
		return ""
	}
	s := &scanner{data: data, pos: idx + len(key)}
	tok := s.token()
	if len(tok) < 2 || tok[0] != '/' {
		return ""
	}
	return tok[1:]
}

// readEncoding parses the /Encoding entry of the cleartext part.
func (f *t1Font) readEncoding() error {
	clear := f.seg.clear
	idx := bytes.Index(clear, []byte("/Encoding"))
	if idx < 0 {
		f.encStart = -1
		f.setStandard()
		return nil
	}
	f.encStart = idx

	s := &scanner{data: clear, pos: idx + len("/Encoding")}
	tok := s.token()
	if tok == "StandardEncoding" {
		f.setStandard()
		for tok != "" && tok != "def" {
			tok = s.token()
		}
		if tok == "" {
			return invalid("unterminated /Encoding")
		}
		f.encEnd = s.pos
		return nil
	}

	if _, err := strconv.Atoi(tok); err != nil {
		return invalid("unsupported /Encoding " + strconv.Quote(tok))
	}
	for {
		tok = s.token()
		switch tok {
		case "":
			return invalid("unterminated /Encoding")
		case "dup":
			code, err := s.int()
			if err != nil {
				return err
			}
			name := s.token()
			if len(name) < 2 || name[0] != '/' || code < 0 || code > 255 {
				return invalid("malformed /Encoding entry")
			}
			f.encoding[code] = name[1:]
		case "def":
			f.encEnd = s.pos
			return nil
		}
	}
}

func (f *t1Font) setStandard() {
	f.stdEncoding = true
	for code, name := range psenc.StandardEncoding {
		if name != ".notdef" {
			f.encoding[code] = name
		}
	}
}

func parsePrivate(plain []byte) (*privateSection, error) {
	p := &privateSection{
		lenIV:       4,
		rd:          "RD",
		nd:          "ND",
		np:          "NP",
		subrs:       map[int][]byte{},
		charStrings: map[string][]byte{},
	}

	csPos := bytes.Index(plain, []byte("/CharStrings"))
	subrsPos := bytes.Index(plain, []byte("/Subrs"))
	if subrsPos >= 0 && (csPos < 0 || subrsPos < csPos) {
		p.head = plain[:subrsPos]
		end, err := p.readSubrs(plain, subrsPos)
		if err != nil {
			return nil, err
		}
		csPos = bytes.Index(plain[end:], []byte("/CharStrings"))
		if csPos >= 0 {
			csPos += end
			p.mid = plain[end:csPos]
		}
	} else if csPos >= 0 {
		// Without Subrs, new subroutines go on a line of their own
		// before the one with /CharStrings.
		lineStart := bytes.LastIndexAny(plain[:csPos], "\r\n") + 1
		p.head = plain[:lineStart]
		p.mid = plain[lineStart:csPos]
	}
	if csPos < 0 {
		return nil, invalid("missing /CharStrings")
	}
	err := p.readCharStrings(plain, csPos)
	if err != nil {
		return nil, err
	}

	// /lenIV can appear anywhere in the Private dictionary.
	for _, text := range [][]byte{p.head, p.mid, p.tail} {
		if v, ok := findInt(text, "/lenIV"); ok {
			p.lenIV = v
			break
		}
	}
	for i, subr := range p.subrs {
		p.subrs[i] = decrypt(charStringKey, subr, p.lenIV)
	}
	for name, cs := range p.charStrings {
		p.charStrings[name] = decrypt(charStringKey, cs, p.lenIV)
	}
	return p, nil
}

func findInt(data []byte, key string) (int, bool) {
	idx := bytes.Index(data, []byte(key))
	if idx < 0 {
		return 0, false
	}
	s := &scanner{data: data, pos: idx + len(key)}
	x, err := s.int()
	return x, err == nil
}

// readSubrs reads the Subrs array starting at pos.  The subroutines are
// stored still encrypted.  The position after the last entry is returned.
func (p *privateSection) readSubrs(plain []byte, pos int) (int, error) {
	s := &scanner{data: plain, pos: pos + len("/Subrs")}
	n, err := s.int()
	if err != nil {
		return 0, err
	}
	if s.token() != "array" {
		return 0, invalid("malformed /Subrs")
	}
	p.numSubrs = n
	for s.peek() == "dup" {
		s.token()
		idx, err := s.int()
		if err != nil {
			return 0, err
		}
		length, err := s.int()
		if err != nil {
			return 0, err
		}
		p.rd = s.token()
		bin, err := s.binary(length)
		if err != nil {
			return 0, err
		}
		p.np = s.twoWord(s.token())
		if idx < 0 || idx >= n {
			return 0, invalid(fmt.Sprintf("subroutine %d outside Subrs array of length %d", idx, n))
		}
		p.subrs[idx] = bin
	}
	return s.pos, nil
}

func (p *privateSection) readCharStrings(plain []byte, pos int) error {
	s := &scanner{data: plain, pos: pos + len("/CharStrings")}
	if _, err := s.int(); err != nil {
		return err
	}
	for {
		tok := s.token()
		if tok == "" {
			return invalid("malformed /CharStrings")
		}
		if tok == "begin" {
			break
		}
	}

	for {
		start := s.pos
		tok := s.token()
		switch {
		case tok == "end":
			p.tail = plain[start:]
			if len(p.charStrings) == 0 {
				return invalid("no glyphs in font")
			}
			return nil
		case len(tok) > 1 && tok[0] == '/':
			name := tok[1:]
			length, err := s.int()
			if err != nil {
				return err
			}
			p.rd = s.token()
			bin, err := s.binary(length)
			if err != nil {
				return err
			}
			p.nd = s.twoWord(s.token())
			if _, dup := p.charStrings[name]; !dup {
				p.glyphNames = append(p.glyphNames, name)
			}
			p.charStrings[name] = bin
		default:
			return invalid("unexpected token " + strconv.Quote(tok) + " in /CharStrings")
		}
	}
}
