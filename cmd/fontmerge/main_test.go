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

package main

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/goregular"

	"seehuhn.de/go/fontmerge"
	"seehuhn.de/go/fontmerge/internal/testfont"
)

func TestDetectFormat(t *testing.T) {
	t1 := testfont.Type1("Test", []testfont.Glyph{{Name: ".notdef", CharString: testfont.NotdefCS}}, nil)
	cases := []struct {
		data []byte
		want fontmerge.Format
	}{
		{goregular.TTF, fontmerge.TrueType},
		{t1, fontmerge.Type1},
		{[]byte("%!FontType1-1.0: Test"), fontmerge.Type1},
	}
	for i, c := range cases {
		got, err := detectFormat(c.data)
		if err != nil {
			t.Errorf("%d: %v", i, err)
		} else if got != c.want {
			t.Errorf("%d: got %s, want %s", i, got, c.want)
		}
	}

	if _, err := detectFormat([]byte("GIF89a")); err != errUnknownFormat {
		t.Errorf("expected errUnknownFormat, got %v", err)
	}
}

func TestMergeFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "GoRegular.ttf")
	b := filepath.Join(dir, "copy.ttf")
	for _, fname := range []string{a, b} {
		if err := os.WriteFile(fname, goregular.TTF, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	fonts, err := mergeFiles([]string{a, b}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(fonts) != 1 {
		t.Fatalf("got %d fonts, want 1", len(fonts))
	}
	if fonts[0].FontName() != "GoRegular" || fonts[0].NumSources() != 2 {
		t.Errorf("font %s has %d sources", fonts[0].FontName(), fonts[0].NumSources())
	}
	if _, ok := fonts[0].MapChar("A"); !ok {
		t.Error("A is not mapped")
	}
}

func TestOutputName(t *testing.T) {
	cases := map[int]string{0: "out.ttf", 1: "out-2.ttf", 2: "out-3.ttf"}
	for i, want := range cases {
		if got := outputName("out.ttf", i); got != want {
			t.Errorf("%d: got %q, want %q", i, got, want)
		}
	}
}
