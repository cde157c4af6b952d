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

import "encoding/binary"

// Checksum computes the sfnt table checksum of data.  The data is treated
// as a sequence of big-endian uint32 values, padded with zeros to a
// multiple of four bytes.
func Checksum(data []byte) uint32 {
	var sum uint32
	for len(data) >= 4 {
		sum += binary.BigEndian.Uint32(data)
		data = data[4:]
	}
	if len(data) > 0 {
		var buf [4]byte
		copy(buf[:], data)
		sum += binary.BigEndian.Uint32(buf[:])
	}
	return sum
}

// Check is an io.Writer which computes the sfnt checksum of everything
// written to it.
type Check struct {
	sum  uint32
	buf  [4]byte
	used int
}

func (s *Check) Write(p []byte) (int, error) {
	n := 0
	for len(p) > 0 {
		k := copy(s.buf[s.used:], p)
		p = p[k:]
		n += k
		s.used += k

		if s.used == 4 {
			s.sum += binary.BigEndian.Uint32(s.buf[:])
			s.used = 0
		}
	}
	return n, nil
}

// Sum returns the checksum of the data written so far.
func (s *Check) Sum() uint32 {
	sum := s.sum
	if s.used != 0 {
		var buf [4]byte
		copy(buf[:], s.buf[:s.used])
		sum += binary.BigEndian.Uint32(buf[:])
	}
	return sum
}

// Reset clears the state of the checksum.
func (s *Check) Reset() {
	s.sum = 0
	s.used = 0
}
