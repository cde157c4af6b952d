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

	"seehuhn.de/go/sfnt/parser"
)

// readIndex reads a CFF INDEX at the current position.  The returned
// slices point into a single newly allocated buffer.
func readIndex(p *parser.Parser) ([][]byte, error) {
	count, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}

	offSize, err := p.ReadUint8()
	if err != nil {
		return nil, err
	}
	if offSize < 1 || offSize > 4 {
		return nil, invalidSince(fmt.Sprintf("invalid INDEX offset size %d", offSize))
	}

	offsets := make([]uint32, count+1)
	prevOffset := uint32(1)
	size := p.Size()
	for i := range offsets {
		offs, err := readOffset(p, int(offSize))
		if err != nil {
			return nil, err
		}
		if offs < prevOffset || int64(offs) > size {
			return nil, invalidSince("invalid INDEX offset")
		}
		offsets[i] = offs - 1
		prevOffset = offs
	}

	buf, err := readBlob(p, int(offsets[count]))
	if err != nil {
		return nil, err
	}

	res := make([][]byte, count)
	for i := range res {
		res[i] = buf[offsets[i]:offsets[i+1]]
	}
	return res, nil
}

func readIndexAt(p *parser.Parser, pos int32, name string) ([][]byte, error) {
	if pos <= 0 || int64(pos) >= p.Size() {
		return nil, invalidSince(fmt.Sprintf("invalid %s offset %d", name, pos))
	}
	err := seek(p, int64(pos))
	if err != nil {
		return nil, err
	}
	return readIndex(p)
}
