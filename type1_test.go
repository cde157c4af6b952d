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

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	pstype1 "seehuhn.de/go/postscript/type1"

	"seehuhn.de/go/fontmerge/internal/testfont"
	"seehuhn.de/go/fontmerge/type1"
)

// t1Source returns a simple Type 1 source with StandardEncoding.  The glyph
// names must be single letters.
func t1Source(tag string, subrs [][]byte, glyphs ...testfont.Glyph) *Source {
	all := append([]testfont.Glyph{{Name: ".notdef", CharString: testfont.NotdefCS}}, glyphs...)
	src := &Source{
		BaseFont: tag + "+TestSerif",
		Format:   Type1,
		Data:     testfont.Type1("TestSerif", all, &testfont.Type1Options{Subrs: subrs}),
	}
	first, last := 255, 0
	for _, g := range glyphs {
		code := int(g.Name[0])
		first = min(first, code)
		last = max(last, code)
	}
	src.FirstChar, src.LastChar = first, last
	for range last - first + 1 {
		src.Widths = append(src.Widths, 500)
	}
	return src
}

func glyph(name string, d int) testfont.Glyph {
	return testfont.Glyph{Name: name, CharString: testfont.LineCS(d)}
}

func TestMergeType1(t *testing.T) {
	src1 := t1Source("AAAAAA", testfont.Subrs(), glyph("A", 10), glyph("B", 20), glyph("C", 30))
	src2 := t1Source("BBBBBB", testfont.Subrs(), glyph("C", 30), glyph("D", 40))

	f, err := New(src1, nil)
	if err != nil {
		t.Fatal(err)
	}
	name, err := f.AddFont(src2)
	if err != nil {
		t.Fatal(err)
	}
	if name == "" {
		t.Fatal("font was not merged")
	}

	want := map[int]string{'A': "A", 'B': "B", 'C': "C", 'D': "D"}
	if d := cmp.Diff(want, f.Encoding()); d != "" {
		t.Errorf("encoding (-want +got):\n%s", d)
	}

	out, err := f.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	info, err := type1.Parse(out)
	if err != nil {
		t.Fatal(err)
	}
	if info.NumGlyphs != 5 {
		t.Errorf("got %d glyphs, want 5", info.NumGlyphs)
	}
	for i, n := range []string{"A", "B", "C", "D"} {
		gid, ok := info.GlyphByName(n)
		if !ok {
			t.Errorf("glyph %q missing", n)
			continue
		}
		if d := cmp.Diff(testfont.LineCS(10*(i+1)), info.CharString(gid)); d != "" {
			t.Errorf("glyph %q (-want +got):\n%s", n, d)
		}
	}

	ps, err := pstype1.Read(bytes.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	if ps.FontInfo.FontName != "TestSerif" {
		t.Errorf("wrong font name %q", ps.FontInfo.FontName)
	}
	if len(ps.Glyphs) != 5 {
		t.Errorf("pstype1 found %d glyphs", len(ps.Glyphs))
	}
}

func TestType1SubrConflict(t *testing.T) {
	src1 := t1Source("AAAAAA", testfont.Subrs(), glyph("A", 10))
	subrs := testfont.Subrs()
	subrs[3] = []byte{139, 11} // 0 return
	src2 := t1Source("BBBBBB", subrs, glyph("A", 10), glyph("B", 20))

	f, err := New(src1, nil)
	if err != nil {
		t.Fatal(err)
	}
	before, err := f.Bytes()
	if err != nil {
		t.Fatal(err)
	}

	_, err = f.AddFont(src2)
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if _, ok := f.MapChar("B"); ok {
		t.Error("B was added despite the conflict")
	}
	if f.NumSources() != 1 {
		t.Errorf("font has %d sources", f.NumSources())
	}
	after, err := f.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(before, after) {
		t.Error("font program changed")
	}
}

func TestType1OutlineRefusal(t *testing.T) {
	src1 := t1Source("AAAAAA", nil, glyph("A", 10))
	src2 := t1Source("BBBBBB", nil,
		testfont.Glyph{Name: "A", CharString: testfont.NotdefCS}, glyph("B", 20))

	f, err := New(src1, nil)
	if err != nil {
		t.Fatal(err)
	}
	name, err := f.AddFont(src2)
	if err != nil {
		t.Fatal(err)
	}
	if name != "" {
		t.Errorf("font with different outline was merged as %q", name)
	}
	if _, ok := f.MapChar("B"); ok {
		t.Error("B was added")
	}

	// A few differing bytes are tolerated.
	src3 := t1Source("CCCCCC", nil, glyph("A", 11), glyph("B", 20))
	name, err = f.AddFont(src3)
	if err != nil {
		t.Fatal(err)
	}
	if name == "" {
		t.Error("font was refused")
	}

	// With zero tolerance, the same font is refused.
	strict, err := New(src1, &Options{OutlineTolerance: -1})
	if err != nil {
		t.Fatal(err)
	}
	name, err = strict.AddFont(src3)
	if err != nil {
		t.Fatal(err)
	}
	if name != "" {
		t.Error("font was merged despite zero tolerance")
	}
}

// TestType1UnencodedOutline checks that glyphs of the first source which
// are not reachable through its character codes still take part in the
// outline comparison.
func TestType1UnencodedOutline(t *testing.T) {
	src1 := t1Source("AAAAAA", nil, glyph("A", 10), glyph("B", 20))
	src1.LastChar = 'A'
	src1.Widths = src1.Widths[:1]
	src2 := t1Source("BBBBBB", nil, testfont.Glyph{Name: "B", CharString: testfont.NotdefCS})

	f, err := New(src1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := f.MapChar("B"); ok {
		t.Fatal("B is mapped in the first source")
	}
	name, err := f.AddFont(src2)
	if err != nil {
		t.Fatal(err)
	}
	if name != "" {
		t.Errorf("font with different outline for B was merged as %q", name)
	}

	// The same outline is accepted.
	src3 := t1Source("CCCCCC", nil, glyph("B", 20))
	name, err = f.AddFont(src3)
	if err != nil {
		t.Fatal(err)
	}
	if name == "" {
		t.Error("font with matching outline was refused")
	}
}

func TestSession(t *testing.T) {
	var logBuf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuf, nil))
	s := NewSession(&Options{Logger: logger})

	src1 := t1Source("AAAAAA", nil, glyph("A", 10))
	src2 := t1Source("BBBBBB", nil,
		testfont.Glyph{Name: "A", CharString: testfont.NotdefCS}, glyph("B", 20))
	src3 := t1Source("CCCCCC", nil, glyph("C", 30))

	f1, err := s.Add(src1)
	if err != nil {
		t.Fatal(err)
	}
	f2, err := s.Add(src2)
	if err != nil {
		t.Fatal(err)
	}
	if f1 == f2 {
		t.Error("fonts with different outlines were merged")
	}
	if !strings.Contains(logBuf.String(), "glyph outlines differ") {
		t.Errorf("missing log message, got %q", logBuf.String())
	}

	f3, err := s.Add(src3)
	if err != nil {
		t.Fatal(err)
	}
	if f3 != f1 {
		t.Error("compatible font was not merged into the first font")
	}
	if got := s.Fonts(); len(got) != 2 || got[0] != f1 || got[1] != f2 {
		t.Errorf("unexpected session fonts %v", got)
	}

	_, err = s.Add(&Source{BaseFont: "TestSerif", Format: Type1})
	if !errors.Is(err, ErrNoProgram) {
		t.Errorf("expected ErrNoProgram, got %v", err)
	}
	if len(s.Fonts()) != 2 {
		t.Error("font without program was added")
	}
}

func TestSessionSource(t *testing.T) {
	s := NewSession(nil)
	calls := 0
	load := func() (*Source, error) {
		calls++
		return &Source{BaseFont: "TestSerif"}, nil
	}
	key := SourceKey{Document: "a.pdf", Number: 12}
	src1, err := s.Source(key, load)
	if err != nil {
		t.Fatal(err)
	}
	src2, err := s.Source(key, load)
	if err != nil {
		t.Fatal(err)
	}
	if src1 != src2 || calls != 1 {
		t.Errorf("source loaded %d times", calls)
	}

	// The same object number in another document is a different font.
	if _, err := s.Source(SourceKey{Document: "b.pdf", Number: 12}, load); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("source loaded %d times", calls)
	}

	failed := errors.New("bad font")
	_, err = s.Source(SourceKey{Number: 1}, func() (*Source, error) { return nil, failed })
	if !errors.Is(err, failed) {
		t.Errorf("expected load error, got %v", err)
	}
}
