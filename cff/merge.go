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
	"fmt"
	"slices"
	"sort"
)

// Merger combines glyphs from several CFF fonts into one font.
//
// The header, the top DICT, the global subroutines and the Private DICT
// (or the FDArray for CID-keyed fonts) of the merged font are taken from the
// first source.  Later sources which contribute new glyphs must use the
// same subroutines.
type Merger struct {
	first      *cffFont
	numSources int

	strings *cffStrings
	glyphs  []mergedGlyph
	byKey   map[int32]int // SID (simple fonts) or CID -> index into glyphs

	// simple fonts
	encoding       map[byte]int32 // code -> glyph key
	customEncoding bool
}

type mergedGlyph struct {
	key  int32 // SID in the merged Strings INDEX, or CID
	data []byte
	fd   uint8
}

// NewMerger returns a new, empty Merger.
func NewMerger() *Merger {
	return &Merger{
		byKey:    make(map[int32]int),
		encoding: make(map[byte]int32),
	}
}

// ReadFont adds glyphs from the CFF font program data.
//
// For simple fonts, the keys of glyphs are the glyph IDs of the source font
// which should be included; glyphs are identified by name and the values are
// ignored.  For CID-keyed fonts, glyphs maps source glyph IDs to the CIDs
// in the merged font.  A map with at most one entry requests all glyphs,
// keeping their names or CIDs.
//
// For simple fonts, codes maps single-byte character codes to source glyph
// IDs.  These codes are added to the built-in encoding of the merged font.
//
// If an error is returned, the state of the Merger is unchanged.
func (m *Merger) ReadFont(data []byte, glyphs map[int]int, codes map[int]int) error {
	f, err := decodeFont(data)
	if err != nil {
		return err
	}
	nGlyphs := len(f.charStrings)

	if m.numSources > 0 && f.isCID() != m.first.isCID() {
		return conflict("cannot merge CID-keyed and simple fonts")
	}

	var oldGIDs []int
	cids := map[int]int32{}
	if len(glyphs) <= 1 {
		for gid := 0; gid < nGlyphs; gid++ {
			oldGIDs = append(oldGIDs, gid)
			cids[gid] = f.charset[gid]
		}
	} else {
		for oldGID, newCID := range glyphs {
			if oldGID < 0 || oldGID >= nGlyphs {
				return conflict(fmt.Sprintf("glyph %d not present in font with %d glyphs", oldGID, nGlyphs))
			}
			oldGIDs = append(oldGIDs, oldGID)
			cids[oldGID] = int32(newCID)
		}
		if _, ok := cids[0]; !ok {
			oldGIDs = append(oldGIDs, 0)
			cids[0] = 0
		}
		slices.Sort(oldGIDs)
	}

	var ss *cffStrings
	if m.numSources == 0 {
		ss = &cffStrings{data: slices.Clone(f.strings.data)}
	} else {
		ss = &cffStrings{data: slices.Clone(m.strings.data)}
	}

	keyOf := func(gid int) (int32, error) {
		if f.isCID() {
			return cids[gid], nil
		}
		name, err := f.glyphName(gid)
		if err != nil {
			return 0, err
		}
		return ss.lookup(name), nil
	}

	// Stage the new glyphs before modifying the Merger.
	var added []mergedGlyph
	addedKey := map[int32]int{}
	keys := map[int]int32{} // source glyph ID -> key
	for _, gid := range oldGIDs {
		key, err := keyOf(gid)
		if err != nil {
			return err
		}
		keys[gid] = key
		if gid == 0 && m.numSources == 0 {
			key = 0
			keys[gid] = 0
		} else if gid == 0 || key == 0 {
			continue // .notdef comes from the first source
		}
		if _, seen := m.byKey[key]; seen {
			continue
		}
		if _, seen := addedKey[key]; seen {
			continue
		}

		var fd uint8
		if f.isCID() {
			fd = f.fdSelect[gid]
		}
		addedKey[key] = len(m.glyphs) + len(added)
		added = append(added, mergedGlyph{
			key:  key,
			data: f.charStrings[gid],
			fd:   fd,
		})
	}

	if m.numSources > 0 && len(added) > 0 {
		err := m.checkSubrs(f, added)
		if err != nil {
			return err
		}
	}

	// Stage the encoding entries.
	enc := map[byte]int32{}
	custom := false
	if !f.isCID() {
		for code, gid := range codes {
			if code < 0 || code > 255 {
				continue
			}
			if key, ok := keys[gid]; ok && key != 0 {
				enc[byte(code)] = key
			}
		}
		if !f.stdEncoding {
			custom = true
			for code, gid := range f.encoding {
				key, ok := keys[gid]
				if !ok || key == 0 {
					continue
				}
				if _, seen := enc[byte(code)]; !seen {
					enc[byte(code)] = key
				}
			}
		}
	}

	// Commit.
	if m.numSources == 0 {
		m.first = f
	}
	m.numSources++
	m.strings = ss
	m.glyphs = append(m.glyphs, added...)
	for key, idx := range addedKey {
		m.byKey[key] = idx
	}
	for code, key := range enc {
		if _, seen := m.encoding[code]; !seen {
			m.encoding[code] = key
		}
	}
	m.customEncoding = m.customEncoding || custom

	return nil
}

// checkSubrs verifies that the subroutines used by the new glyphs agree
// with the ones taken from the first source.
func (m *Merger) checkSubrs(f *cffFont, added []mergedGlyph) error {
	if !equalIndex(f.gsubrs, m.first.gsubrs) {
		return conflict("global subroutines differ")
	}
	if !f.isCID() {
		if !equalIndex(f.private.subrs, m.first.private.subrs) {
			return conflict("local subroutines differ")
		}
		return nil
	}

	checked := map[uint8]bool{}
	for _, g := range added {
		if checked[g.fd] {
			continue
		}
		checked[g.fd] = true
		if int(g.fd) >= len(m.first.fdArray) {
			return conflict(fmt.Sprintf("font DICT %d not present in first font", g.fd))
		}
		if !equalIndex(f.fdArray[g.fd].private.subrs, m.first.fdArray[g.fd].private.subrs) {
			return conflict(fmt.Sprintf("local subroutines for font DICT %d differ", g.fd))
		}
	}
	return nil
}

func equalIndex(a, b [][]byte) bool {
	return slices.EqualFunc(a, b, func(x, y []byte) bool {
		return string(x) == string(y)
	})
}

// order returns the glyphs in the order used for the merged font.
//
// For simple fonts, the encoded glyphs come directly after .notdef, sorted
// by code, so that the built-in encoding can be stored compactly.  The
// remaining glyphs follow in the order they were added.  For CID-keyed
// fonts, glyphs are sorted by CID.
func (m *Merger) order() []mergedGlyph {
	res := slices.Clone(m.glyphs)
	if m.first.isCID() {
		sort.SliceStable(res, func(i, j int) bool {
			return res[i].key < res[j].key
		})
		return res
	}

	firstCode := make(map[int32]int, len(m.encoding))
	for code, key := range m.encoding {
		if c, seen := firstCode[key]; !seen || int(code) < c {
			firstCode[key] = int(code)
		}
	}
	rank := func(g mergedGlyph) int {
		if g.key == 0 {
			return -1
		}
		if c, ok := firstCode[g.key]; ok {
			return c
		}
		return 256
	}
	sort.SliceStable(res, func(i, j int) bool {
		return rank(res[i]) < rank(res[j])
	})
	return res
}

var errNoFonts = errors.New("cff: no fonts added")
