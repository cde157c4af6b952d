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

package fontio

import (
	"errors"
)

// IndexOffSize returns the smallest offset size (1 to 4 bytes) which can
// represent all offsets of an INDEX with the given total payload length.
func IndexOffSize(bodyLength int) (int, error) {
	offSize := 1
	for bodyLength+1 >= 1<<(8*offSize) {
		offSize++
		if offSize > 4 {
			return 0, errors.New("fontio: too much data for CFF INDEX")
		}
	}
	return offSize, nil
}

// AppendIndex appends a CFF INDEX containing the given items to buf.
//
// The INDEX consists of a 2-byte count, a 1-byte offset size, count+1
// offsets (the first one is always 1) and the concatenated payload.
// An empty INDEX is encoded as two zero bytes.
func AppendIndex(buf []byte, data [][]byte) ([]byte, error) {
	count := len(data)
	if count >= 1<<16 {
		return nil, errors.New("fontio: too many items for CFF INDEX")
	}
	if count == 0 {
		return append(buf, 0, 0), nil
	}

	bodyLength := 0
	for _, blob := range data {
		bodyLength += len(blob)
	}
	offSize, err := IndexOffSize(bodyLength)
	if err != nil {
		return nil, err
	}

	buf = append(buf, byte(count>>8), byte(count), byte(offSize))
	pos := uint32(1)
	for i := 0; i <= count; i++ {
		for j := offSize - 1; j >= 0; j-- {
			buf = append(buf, byte(pos>>(8*j)))
		}
		if i < count {
			pos += uint32(len(data[i]))
		}
	}
	for _, blob := range data {
		buf = append(buf, blob...)
	}
	return buf, nil
}

// IndexLength returns the number of bytes AppendIndex would write.
func IndexLength(data [][]byte) (int, error) {
	if len(data) == 0 {
		return 2, nil
	}
	bodyLength := 0
	for _, blob := range data {
		bodyLength += len(blob)
	}
	offSize, err := IndexOffSize(bodyLength)
	if err != nil {
		return 0, err
	}
	return 3 + (len(data)+1)*offSize + bodyLength, nil
}
