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
	"bytes"
	"testing"
)

func TestIntRoundTrip(t *testing.T) {
	cases := []struct {
		value  int32
		length int
	}{
		{0, 1},
		{107, 1},
		{-107, 1},
		{108, 2},
		{363, 2},
		{620, 2},
		{876, 2},
		{1131, 2},
		{-1131, 2},
		{1132, 3},
		{32767, 3},
		{-32768, 3},
		{32768, 5},
		{2000000, 5},
		{-2000000, 5},
	}
	for _, test := range cases {
		buf, err := CreateNewRef(test.value, []byte{17}, 0)
		if err != nil {
			t.Errorf("%d: %v", test.value, err)
			continue
		}
		if len(buf) != test.length+1 {
			t.Errorf("%d: wrong length %d, expected %d", test.value, len(buf)-1, test.length)
		}
		if buf[len(buf)-1] != 17 {
			t.Errorf("%d: operator missing", test.value)
		}

		x, n, err := DecodeInt(buf)
		if err != nil {
			t.Errorf("%d: %v", test.value, err)
			continue
		}
		if n != test.length || x != test.value {
			t.Errorf("%d: decoded %d (%d bytes)", test.value, x, n)
		}
	}
}

func TestForcedLength(t *testing.T) {
	buf, err := CreateNewRef(5, []byte{12, 36}, 5)
	if err != nil {
		t.Fatal(err)
	}
	expected := []byte{29, 0, 0, 0, 5, 12, 36}
	if !bytes.Equal(buf, expected) {
		t.Errorf("got % x, expected % x", buf, expected)
	}

	// values which do not fit the requested width are rejected
	for _, test := range []struct {
		value  int32
		length int
	}{
		{108, 1},
		{5, 2},
		{40000, 3},
	} {
		_, err := CreateNewRef(test.value, nil, test.length)
		if err == nil {
			t.Errorf("%d in %d bytes: expected error", test.value, test.length)
		}
	}
}

func TestPatchInt(t *testing.T) {
	buf := []byte{139, 29, 0, 0, 0, 0, 17, 139}
	err := PatchInt(buf, 1, 5, 70000)
	if err != nil {
		t.Fatal(err)
	}
	x, n, err := DecodeInt(buf[1:])
	if err != nil {
		t.Fatal(err)
	}
	if x != 70000 || n != 5 {
		t.Errorf("got %d (%d bytes)", x, n)
	}
	if buf[0] != 139 || buf[6] != 17 || buf[7] != 139 {
		t.Error("surrounding bytes changed")
	}
}
