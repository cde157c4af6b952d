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

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"slices"
)

// Merger combines glyphs from several Type 1 fonts into one font.
//
// The cleartext part, the Private dictionary and the trailer of the merged
// font are taken from the first source.  Subroutines are merged by index
// and glyphs by name.
type Merger struct {
	first      *t1Font
	firstData  []byte
	numSources int
	allGlyphs  bool // only one source, all glyphs requested

	subrs       map[int][]byte
	numSubrs    int
	glyphNames  []string
	charStrings map[string][]byte

	encoding    map[byte]string
	allStandard bool
}

// NewMerger returns a new, empty Merger.
func NewMerger() *Merger {
	return &Merger{
		subrs:       make(map[int][]byte),
		charStrings: make(map[string][]byte),
		encoding:    make(map[byte]string),
		allStandard: true,
	}
}

// ReadFont adds glyphs from the Type 1 font program data.
//
// The keys of glyphs are the glyph IDs (see [Info]) of the glyphs to
// include; the values are ignored.  A map with at most one entry requests
// all glyphs.  Accented characters pull in their base and accent glyphs.
// The map codes gives single-byte codes for source glyph IDs, which are
// entered into the built-in encoding of the merged font.
//
// If a subroutine number is used by an earlier source with different
// content, a ConflictError is returned.  If an error is returned, the
// state of the Merger is unchanged.
func (m *Merger) ReadFont(data []byte, glyphs map[int]int, codes map[int]int) error {
	f, err := decodeFont(data)
	if err != nil {
		return err
	}
	p := f.priv
	nGlyphs := len(p.glyphNames)

	var want []string
	if len(glyphs) <= 1 {
		want = slices.Clone(p.glyphNames)
	} else {
		if _, ok := p.charStrings[".notdef"]; ok {
			want = append(want, ".notdef")
		}
		for _, gid := range slices.Sorted(maps.Keys(glyphs)) {
			if gid < 0 || gid >= nGlyphs {
				return conflict(fmt.Sprintf("glyph %d not present in font with %d glyphs", gid, nGlyphs))
			}
			want = append(want, p.glyphNames[gid])
		}
	}

	// Close the glyph set under seac references, using a worklist.
	included := make(map[string]bool, len(want))
	var todo []string
	for _, name := range want {
		if !included[name] {
			included[name] = true
			todo = append(todo, name)
		}
	}
	for len(todo) > 0 {
		name := todo[len(todo)-1]
		todo = todo[:len(todo)-1]
		base, accent, ok := seacComponents(p.charStrings[name])
		if !ok {
			continue
		}
		for _, c := range []string{base, accent} {
			if _, exists := p.charStrings[c]; exists && !included[c] {
				included[c] = true
				want = append(want, c)
				todo = append(todo, c)
			}
		}
	}

	for _, idx := range slices.Sorted(maps.Keys(p.subrs)) {
		if old, ok := m.subrs[idx]; ok && !bytes.Equal(old, p.subrs[idx]) {
			return conflict(fmt.Sprintf("Subrs[%d] differ", idx))
		}
	}

	var added []string
	for _, name := range want {
		if _, seen := m.charStrings[name]; seen {
			continue
		}
		if name == ".notdef" && m.numSources > 0 {
			continue
		}
		if slices.Contains(added, name) {
			continue
		}
		added = append(added, name)
	}

	enc := map[byte]string{}
	for code, gid := range codes {
		if code < 0 || code > 255 || gid < 0 || gid >= nGlyphs {
			continue
		}
		if name := p.glyphNames[gid]; included[name] && name != ".notdef" {
			enc[byte(code)] = name
		}
	}
	if !f.stdEncoding {
		for code, name := range f.encoding {
			if included[name] && name != ".notdef" {
				if _, seen := enc[byte(code)]; !seen {
					enc[byte(code)] = name
				}
			}
		}
	}

	// Commit.
	if m.numSources == 0 {
		m.first = f
		m.firstData = data
		m.allGlyphs = len(glyphs) <= 1
	} else {
		m.allGlyphs = false
	}
	m.numSources++
	for idx, subr := range p.subrs {
		m.subrs[idx] = subr
	}
	m.numSubrs = max(m.numSubrs, p.numSubrs)
	for _, name := range added {
		m.glyphNames = append(m.glyphNames, name)
		m.charStrings[name] = p.charStrings[name]
	}
	for code, name := range enc {
		if _, seen := m.encoding[code]; !seen {
			m.encoding[code] = name
		}
	}
	m.allStandard = m.allStandard && f.stdEncoding

	return nil
}

// NumGlyphs returns the number of glyphs in the merged font.
func (m *Merger) NumGlyphs() int {
	return len(m.glyphNames)
}

var errNoFonts = errors.New("type1: no fonts merged")
