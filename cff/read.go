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
	"bytes"
	"fmt"

	"seehuhn.de/go/sfnt/parser"
)

func newParser(data []byte) *parser.Parser {
	return parser.New(bytes.NewReader(data))
}

// seek moves the reading position of p, which must stay inside the font
// data.
func seek(p *parser.Parser, pos int64) error {
	if pos < 0 || pos > p.Size() {
		return invalidSince(fmt.Sprintf("offset %d out of range", pos))
	}
	return seek(p, pos)
}

// readBlob reads n bytes into a newly allocated slice.
func readBlob(p *parser.Parser, n int) ([]byte, error) {
	if n < 0 || int64(n) > p.Size()-p.Pos() {
		return nil, invalidSince(fmt.Sprintf("blob of length %d exceeds font data", n))
	}
	res := make([]byte, n)
	if _, err := p.Read(res); err != nil {
		return nil, err
	}
	return res, nil
}

// readOffset reads a big-endian offset of the given size, as used in a CFF
// INDEX.
func readOffset(p *parser.Parser, size int) (uint32, error) {
	buf, err := p.ReadBytes(size)
	if err != nil {
		return 0, err
	}
	var res uint32
	for _, x := range buf {
		res = res<<8 | uint32(x)
	}
	return res, nil
}
