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

package truetype

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/image/font/gofont/goregular"
	xsfnt "golang.org/x/image/font/sfnt"
	"seehuhn.de/go/sfnt"
	"seehuhn.de/go/sfnt/parser"

	"seehuhn.de/go/fontmerge/internal/fontio"
)

// subset returns the glyph and code maps for the given range of ASCII
// characters in the Go Regular font.  Glyph IDs are kept unchanged.
func subset(t *testing.T, info *Info, first, last byte) (map[int]int, map[int]int) {
	t.Helper()
	glyphs := map[int]int{0: 0}
	codes := map[int]int{}
	for c := first; c <= last; c++ {
		gid := info.Lookup(c, string(rune(c)))
		if gid == 0 {
			t.Fatalf("no glyph for %q", c)
		}
		glyphs[gid] = gid
		codes[int(c)] = gid
	}
	return glyphs, codes
}

func TestSingleSourceVerbatim(t *testing.T) {
	m := NewMerger()
	err := m.ReadFont(goregular.TTF, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	out, err := m.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, goregular.TTF) {
		t.Error("single source font was modified")
	}
}

func TestMergeDisjoint(t *testing.T) {
	info, err := Inspect(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	upper, upperCodes := subset(t, info, 'A', 'Z')
	lower, lowerCodes := subset(t, info, 'a', 'z')

	m := NewMerger()
	if err := m.ReadFont(goregular.TTF, upper, upperCodes); err != nil {
		t.Fatal(err)
	}
	if err := m.ReadFont(goregular.TTF, lower, lowerCodes); err != nil {
		t.Fatal(err)
	}
	out, err := m.Bytes()
	if err != nil {
		t.Fatal(err)
	}

	if sum := fontio.Checksum(out); sum != 0xB1B0AFBA {
		t.Errorf("wrong file checksum 0x%08x", sum)
	}

	f1, err := sfnt.Read(bytes.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	if n := f1.NumGlyphs(); n < 53 {
		t.Errorf("only %d glyphs", n)
	}

	f2, err := xsfnt.Parse(out)
	if err != nil {
		t.Fatal(err)
	}
	if n := f2.NumGlyphs(); n < 53 {
		t.Errorf("only %d glyphs", n)
	}

	merged, err := Inspect(out)
	if err != nil {
		t.Fatal(err)
	}
	for c := byte('A'); c <= 'z'; c++ {
		if c > 'Z' && c < 'a' {
			continue
		}
		want := info.Lookup(c, string(rune(c)))
		if got := merged.Lookup(c, string(rune(c))); got != want {
			t.Errorf("%q: got glyph %d, want %d", c, got, want)
		}
		if merged.Empty(want) {
			t.Errorf("%q: glyph %d is empty", c, want)
		}
		if got, want := merged.Advance(want), info.Advance(want); got != want {
			t.Errorf("%q: advance %d != %d", c, got, want)
		}
	}
	if !merged.Empty(info.Lookup('0', "0")) {
		t.Error("unrequested glyph was included")
	}
}

// TestFillEmptyGlyphs checks that subsets which keep the original glyph
// numbering fill each other's empty glyphs.
func TestFillEmptyGlyphs(t *testing.T) {
	info, err := Inspect(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	upper, upperCodes := subset(t, info, 'A', 'Z')
	lower, lowerCodes := subset(t, info, 'a', 'z')

	makeSubset := func(glyphs, codes map[int]int) []byte {
		m := NewMerger()
		if err := m.ReadFont(goregular.TTF, glyphs, codes); err != nil {
			t.Fatal(err)
		}
		out, err := m.Bytes()
		if err != nil {
			t.Fatal(err)
		}
		return out
	}
	subUpper := makeSubset(upper, upperCodes)
	subLower := makeSubset(lower, lowerCodes)

	m := NewMerger()
	if err := m.ReadFont(subUpper, nil, nil); err != nil {
		t.Fatal(err)
	}
	if err := m.ReadFont(subLower, lower, lowerCodes); err != nil {
		t.Fatal(err)
	}
	out, err := m.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	merged, err := Inspect(out)
	if err != nil {
		t.Fatal(err)
	}

	maxGID := 0
	for gid := range upper {
		maxGID = max(maxGID, gid)
	}
	for gid := range lower {
		maxGID = max(maxGID, gid)
	}
	if merged.NumGlyphs != maxGID+1 {
		t.Errorf("got %d glyphs, want %d", merged.NumGlyphs, maxGID+1)
	}
	for c := byte('a'); c <= 'z'; c++ {
		gid := info.Lookup(c, string(rune(c)))
		if merged.Empty(gid) {
			t.Errorf("%q: glyph %d is empty", c, gid)
		}
		if got, want := merged.Advance(gid), info.Advance(gid); got != want {
			t.Errorf("%q: advance %d != %d", c, got, want)
		}
	}
	for c := byte('A'); c <= 'Z'; c++ {
		if merged.Empty(info.Lookup(c, string(rune(c)))) {
			t.Errorf("%q: glyph is empty", c)
		}
	}
}

func TestMergeIdempotent(t *testing.T) {
	info, err := Inspect(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	glyphs, codes := subset(t, info, '0', '9')

	m := NewMerger()
	if err := m.ReadFont(goregular.TTF, glyphs, codes); err != nil {
		t.Fatal(err)
	}
	out1, err := m.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	out2, err := m.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out1, out2) {
		t.Error("output changed between calls")
	}
}

func TestMergeRenumber(t *testing.T) {
	info, err := Inspect(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	gidA := info.Lookup('A', "A")
	gidB := info.Lookup('B', "B")

	m := NewMerger()
	err = m.ReadFont(goregular.TTF, map[int]int{0: 0, gidA: 1}, map[int]int{'A': gidA})
	if err != nil {
		t.Fatal(err)
	}
	err = m.ReadFont(goregular.TTF, map[int]int{0: 0, gidB: 2}, map[int]int{'B': gidB})
	if err != nil {
		t.Fatal(err)
	}
	out, err := m.Bytes()
	if err != nil {
		t.Fatal(err)
	}

	merged, err := Inspect(out)
	if err != nil {
		t.Fatal(err)
	}
	if merged.NumGlyphs != 3 {
		t.Errorf("got %d glyphs, want 3", merged.NumGlyphs)
	}
	got := []int{merged.Lookup('A', "A"), merged.Lookup('B', "B")}
	if d := cmp.Diff([]int{1, 2}, got); d != "" {
		t.Errorf("wrong glyphs (-want +got):\n%s", d)
	}
	if got, want := merged.Advance(2), info.Advance(gidB); got != want {
		t.Errorf("advance %d != %d", got, want)
	}
}

func TestCompositeClosure(t *testing.T) {
	f, err := decodeFont(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	composite := -1
	for gid := 0; gid < f.numGlyphs; gid++ {
		refs, err := components(f.glyphData(gid))
		if err != nil {
			t.Fatal(err)
		}
		if len(refs) > 0 {
			composite = gid
			break
		}
	}
	if composite < 0 {
		t.Skip("no composite glyphs in test font")
	}

	m := NewMerger()
	if err := m.ReadFont(goregular.TTF, map[int]int{0: 0, composite: 1}, nil); err != nil {
		t.Fatal(err)
	}
	out, err := m.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	g, err := decodeFont(out)
	if err != nil {
		t.Fatal(err)
	}
	refs, err := components(g.glyphData(1))
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) == 0 {
		t.Fatal("composite glyph lost its components")
	}
	for _, ref := range refs {
		if ref.GID < 2 || ref.GID >= g.numGlyphs {
			t.Errorf("component refers to glyph %d of %d", ref.GID, g.numGlyphs)
		}
	}

	if _, err := sfnt.Read(bytes.NewReader(out)); err != nil {
		t.Error(err)
	}
}

func TestGlyphOutOfRange(t *testing.T) {
	m := NewMerger()
	err := m.ReadFont(goregular.TTF, map[int]int{0: 0, 60000: 1}, nil)
	var conflict *fontio.ConflictError
	if !errors.As(err, &conflict) {
		t.Errorf("expected ConflictError, got %v", err)
	}
	if _, err := m.Bytes(); err == nil {
		t.Error("failed ReadFont changed the merger")
	}
}

func TestMalformed(t *testing.T) {
	data := bytes.Clone(goregular.TTF[:200])
	m := NewMerger()
	err := m.ReadFont(data, nil, nil)
	var invalid *parser.InvalidFontError
	if !errors.As(err, &invalid) {
		t.Errorf("expected InvalidFontError, got %v", err)
	}
}

func TestCmapFolding(t *testing.T) {
	f, err := decodeFont(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	gidE := f.cmaps[keyWinUnicode]['é']
	gidA := f.cmaps[keyWinUnicode]['A']

	// Mac Roman entries of the source are translated to Unicode.
	m := NewMerger()
	err = m.ReadFont(macOnly(f, codeMap{0x8E: gidE}), map[int]int{0: 0, gidE: gidE}, nil)
	if err != nil {
		t.Fatal(err)
	}
	out, err := m.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	merged, err := decodeFont(out)
	if err != nil {
		t.Fatal(err)
	}
	if got := merged.cmaps[keyWinUnicode][0xE9]; got != gidE {
		t.Errorf("U+00E9 maps to %d, want %d", got, gidE)
	}

	// Symbolic entries are copied into the Unicode subtable.
	m = NewMerger()
	err = m.ReadFont(goregular.TTF, map[int]int{0: 0, gidA: 1}, map[int]int{0x20: gidA})
	if err != nil {
		t.Fatal(err)
	}
	out, err = m.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	merged, err = decodeFont(out)
	if err != nil {
		t.Fatal(err)
	}
	uni := merged.cmaps[keyWinUnicode]
	for _, code := range []uint32{'A', 0xF020} {
		if uni[code] != 1 {
			t.Errorf("U+%04X maps to %d, want 1", code, uni[code])
		}
	}
}
