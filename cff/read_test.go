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
	"errors"
	"testing"

	"seehuhn.de/go/sfnt/parser"
)

func TestReadHelpers(t *testing.T) {
	data := make([]byte, 3000)
	for i := range data {
		data[i] = byte(i)
	}
	p := newParser(data)

	c, err := readOffset(p, 3)
	if err != nil || c != 0x000102 {
		t.Fatalf("readOffset: %x %v", c, err)
	}

	for _, pos := range []int64{2000, 5, 1023, 1024, 2999} {
		if err := seek(p, pos); err != nil {
			t.Fatal(err)
		}
		x, err := p.ReadUint8()
		if err != nil {
			t.Fatal(err)
		}
		if x != byte(pos) {
			t.Errorf("%d: got %d", pos, x)
		}
	}

	var invalid *parser.InvalidFontError
	if err := seek(p, 3001); !errors.As(err, &invalid) {
		t.Errorf("seek beyond end: got %v", err)
	}

	if err := seek(p, 100); err != nil {
		t.Fatal(err)
	}
	blob, err := readBlob(p, 1500)
	if err != nil {
		t.Fatal(err)
	}
	for i, x := range blob {
		if x != byte(100+i) {
			t.Fatalf("wrong blob data at %d", i)
		}
	}

	if _, err := readBlob(p, 5000); !errors.As(err, &invalid) {
		t.Errorf("oversized blob: got %v", err)
	}
}
