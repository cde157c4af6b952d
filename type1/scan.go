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

import "strconv"

// scanner splits PostScript program text into tokens.  It understands just
// enough of the syntax to find the structures of a Type 1 font.
type scanner struct {
	data []byte
	pos  int
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', 0:
		return true
	}
	return false
}

func isDelim(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func (s *scanner) skipSpace() {
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		if c == '%' {
			for s.pos < len(s.data) && s.data[s.pos] != '\n' && s.data[s.pos] != '\r' {
				s.pos++
			}
			continue
		}
		if !isSpace(c) {
			return
		}
		s.pos++
	}
}

// token returns the next token, or the empty string at the end of input.
func (s *scanner) token() string {
	s.skipSpace()
	if s.pos >= len(s.data) {
		return ""
	}
	start := s.pos
	switch c := s.data[s.pos]; c {
	case '[', ']', '{', '}':
		s.pos++
	case '(':
		depth := 0
		for s.pos < len(s.data) {
			c := s.data[s.pos]
			s.pos++
			if c == '\\' {
				s.pos++
			} else if c == '(' {
				depth++
			} else if c == ')' {
				depth--
				if depth == 0 {
					break
				}
			}
		}
	case '<', '>':
		s.pos++
		if s.pos < len(s.data) && s.data[s.pos] == c {
			s.pos++
		} else if c == '<' {
			for s.pos < len(s.data) && s.data[s.pos] != '>' {
				s.pos++
			}
			s.pos++
		}
	default:
		s.pos++
		for s.pos < len(s.data) && !isSpace(s.data[s.pos]) && !isDelim(s.data[s.pos]) {
			s.pos++
		}
	}
	s.pos = min(s.pos, len(s.data))
	return string(s.data[start:s.pos])
}

// peek returns the next token without consuming it.
func (s *scanner) peek() string {
	pos := s.pos
	tok := s.token()
	s.pos = pos
	return tok
}

func (s *scanner) int() (int, error) {
	tok := s.token()
	x, err := strconv.Atoi(tok)
	if err != nil {
		return 0, invalid("expected integer, got " + strconv.Quote(tok))
	}
	return x, nil
}

// binary returns the n bytes following the single space after an RD
// token.
func (s *scanner) binary(n int) ([]byte, error) {
	start := s.pos + 1
	if n < 0 || start+n > len(s.data) {
		return nil, invalid("binary data exceeds font program")
	}
	s.pos = start + n
	return s.data[start:s.pos], nil
}

// twoWord reads the second word of the "noaccess def" and "noaccess put"
// spellings.
func (s *scanner) twoWord(tok string) string {
	if tok == "noaccess" || tok == "readonly" {
		return tok + " " + s.token()
	}
	return tok
}
