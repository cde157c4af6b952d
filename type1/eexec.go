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

const (
	eexecKey      = 55665
	charStringKey = 4330

	c1 = 52845
	c2 = 22719
)

// decrypt reverses the Type 1 encryption and removes the first n
// plaintext bytes.
func decrypt(key uint16, cipher []byte, n int) []byte {
	if n < 0 {
		return cipher
	}
	r := key
	plain := make([]byte, 0, max(len(cipher)-n, 0))
	for i, c := range cipher {
		if i >= n {
			plain = append(plain, c^byte(r>>8))
		}
		r = (uint16(c)+r)*c1 + c2
	}
	return plain
}

// encrypt applies the Type 1 encryption to plain, after prepending n
// zero bytes.
func encrypt(key uint16, plain []byte, n int) []byte {
	r := key
	cipher := make([]byte, 0, n+len(plain))
	enc := func(p byte) {
		c := p ^ byte(r>>8)
		r = (uint16(c)+r)*c1 + c2
		cipher = append(cipher, c)
	}
	for range n {
		enc(0)
	}
	for _, p := range plain {
		enc(p)
	}
	return cipher
}
