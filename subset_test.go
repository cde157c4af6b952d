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

package fontmerge

import "testing"

func TestSubsetTag(t *testing.T) {
	tag := subsetTag([]int{3, 1, 2}, 10)
	if !isSubsetTag(tag) {
		t.Errorf("invalid tag %q", tag)
	}
	if other := subsetTag([]int{1, 2, 3}, 10); other != tag {
		t.Errorf("tag depends on order: %q != %q", tag, other)
	}
	if other := subsetTag([]int{1, 2, 4}, 10); other == tag {
		t.Errorf("tags for different glyph sets coincide: %q", tag)
	}
}

func TestStripSubsetTag(t *testing.T) {
	cases := map[string]string{
		"ABCDEF+Times-Roman": "Times-Roman",
		"Times-Roman":        "Times-Roman",
		"ABCDE+Times-Roman":  "ABCDE+Times-Roman",
		"abcdef+Times-Roman": "abcdef+Times-Roman",
	}
	for in, want := range cases {
		if got := stripSubsetTag(in); got != want {
			t.Errorf("%q: got %q, want %q", in, got, want)
		}
	}
}
