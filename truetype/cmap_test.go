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
	"maps"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/image/font/gofont/goregular"
	"seehuhn.de/go/sfnt/cmap"
)

func TestCmapRoundTrip(t *testing.T) {
	cases := []codeMap{
		{0x41: 1},
		{0x41: 1, 0x42: 2, 0x43: 3, 0x44: 4, 0x45: 5},
		{0x20: 7, 0x21: 3, 0x22: 9, 0x30: 10, 0x31: 11, 0x32: 12, 0xFFFE: 13},
		{0x41: 1, 0x1F600: 2, 0x1F601: 3},
	}
	for i, sub := range cases {
		data := encodeCmap(map[cmap.Key]codeMap{keyWinUnicode: sub})
		decoded, err := decodeCmap(data)
		if err != nil {
			t.Errorf("%d: %v", i, err)
			continue
		}
		if d := cmp.Diff(sub, decoded[keyWinUnicode]); d != "" {
			t.Errorf("%d: wrong subtable (-want +got):\n%s", i, d)
		}
	}
}

func TestCmapFormat0(t *testing.T) {
	sub := codeMap{32: 3, 65: 36, 200: 255}
	if _, ok := sub.subtable(keyMacRoman).(*cmap.Format0); !ok {
		t.Fatal("expected a format 0 subtable")
	}
	if _, ok := sub.subtable(keyWinSymbol).(cmap.Format4); !ok {
		t.Error("expected a format 4 subtable")
	}
	decoded, err := decodeCmap(encodeCmap(map[cmap.Key]codeMap{keyMacRoman: sub}))
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(sub, decoded[keyMacRoman]); d != "" {
		t.Errorf("wrong subtable (-want +got):\n%s", d)
	}
}

func TestCmapShared(t *testing.T) {
	sub := codeMap{0x41: 1}
	data := encodeCmap(map[cmap.Key]codeMap{
		keyWinUnicode:                   sub,
		{PlatformID: 0, EncodingID: 3}: sub,
	})
	single := encodeCmap(map[cmap.Key]codeMap{keyWinUnicode: sub})
	if len(data) != len(single)+8 {
		t.Errorf("identical subtables stored twice")
	}
}

func TestCmapGoRegular(t *testing.T) {
	f, err := decodeFont(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	uni := f.cmaps[keyWinUnicode]
	if len(uni) < 100 {
		t.Fatalf("only %d entries in (3,1) subtable", len(uni))
	}
	decoded, err := decodeCmap(encodeCmap(map[cmap.Key]codeMap{keyWinUnicode: uni}))
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(uni, decoded[keyWinUnicode]); d != "" {
		t.Errorf("round trip failed (-want +got):\n%s", d)
	}
}

// TestLookupUnicodeFirst checks that characters outside ASCII are found
// through the Unicode subtable, and not through the Mac Roman subtable with
// the raw code.
func TestLookupUnicodeFirst(t *testing.T) {
	info, err := Inspect(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	uni := info.font.cmaps[keyWinUnicode]
	cases := []struct {
		code byte
		text string
	}{
		{0x80, "€"},
		{0xE9, "é"},
		{0xC4, "Ä"},
		{'A', "A"},
	}
	for _, c := range cases {
		want := uni[uint32([]rune(c.text)[0])]
		if want == 0 {
			t.Fatalf("%q not in the Unicode subtable", c.text)
		}
		if got := info.Lookup(c.code, c.text); got != want {
			t.Errorf("Lookup(0x%02X, %q) = %d, want %d", c.code, c.text, got, want)
		}
	}
}

// TestLookupMacRoman checks the fallbacks for fonts without a Unicode
// subtable.
func TestLookupMacRoman(t *testing.T) {
	f, err := decodeFont(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	uni := f.cmaps[keyWinUnicode]
	gidE := uni['é']
	gidX := uni['x']

	info, err := Inspect(macOnly(f, codeMap{0x8E: gidE, 0x41: gidX}))
	if err != nil {
		t.Fatal(err)
	}
	if got := info.Lookup(0xE9, "é"); got != gidE {
		t.Errorf("Lookup by text: got %d, want %d", got, gidE)
	}
	if got := info.Lookup(0x41, ""); got != gidX {
		t.Errorf("Lookup by code: got %d, want %d", got, gidX)
	}
}

func TestLocaRoundTrip(t *testing.T) {
	offs := []int{0, 0, 12, 40, 40, 100}
	for _, short := range []bool{true, false} {
		data, format := encodeLoca(offs, short)
		if short != (format == 0) {
			t.Errorf("short=%t: got format %d", short, format)
		}
		decoded, err := decodeLoca(data, format, 100)
		if err != nil {
			t.Fatal(err)
		}
		if d := cmp.Diff(offs, decoded); d != "" {
			t.Errorf("short=%t (-want +got):\n%s", short, d)
		}
	}

	long := []int{0, 0x20000}
	if _, format := encodeLoca(long, true); format != 1 {
		t.Error("large offsets need the long format")
	}
}

// macOnly returns a copy of f where the "cmap" table has only the given
// Mac Roman subtable.
func macOnly(f *sfntFont, sub codeMap) []byte {
	tables := maps.Clone(f.tables)
	tables["head"] = slices.Clone(tables["head"])
	tables["cmap"] = encodeCmap(map[cmap.Key]codeMap{keyMacRoman: sub})
	return writeFont(tables)
}
