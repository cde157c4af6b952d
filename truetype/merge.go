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
	"encoding/binary"
	"errors"
	"fmt"
	"maps"
	"slices"

	"seehuhn.de/go/sfnt/cmap"
	"seehuhn.de/go/sfnt/mac"

	"seehuhn.de/go/fontmerge/internal/fontio"
)

// Merger combines glyphs from several TrueType fonts into one font.
//
// Each call to [Merger.ReadFont] adds the requested glyphs of one source
// font.  Tables other than glyf, loca, hmtx, cmap and maxp are taken from
// the first source.
type Merger struct {
	first      *sfntFont
	numSources int
	identity   bool // the first source was added with all glyphs unchanged

	arena []mergedGlyph
	byGID map[int]int // new glyph ID -> arena index

	maxp [16]uint32 // summed maxp fields, indexed by byte offset / 2
	bbox [4]int16
	cmap map[cmap.Key]codeMap
}

// mergedGlyph is one glyph of the merged font.
type mergedGlyph struct {
	gid     int // -1 for components without a requested glyph ID
	data    []byte
	advance uint16
	lsb     int16
	links   []link
}

// link connects a component reference inside glyph data to the arena index
// of the component glyph.
type link struct {
	pos    int
	target int
}

// NewMerger returns a new, empty Merger.
func NewMerger() *Merger {
	return &Merger{
		byGID: make(map[int]int),
		cmap:  make(map[cmap.Key]codeMap),
	}
}

// ReadFont adds glyphs from the TrueType font file data.
//
// The map glyphs gives the new glyph ID for every old glyph ID of the
// source font which should be included.  A map with at most one entry
// requests all glyphs without renumbering.  Components of composite glyphs
// are included automatically.  Glyph 0 is always taken from the first
// source.  A glyph ID which is already in use keeps its glyph, unless that
// glyph is empty and the new one is not.
//
// For simple fonts, codes maps single-byte character codes to old glyph
// IDs, and is used to build the symbolic (3,0) and Mac Roman (1,0) cmap
// subtables.  CID-keyed fonts pass nil.
//
// If an error is returned, the state of the Merger is unchanged.
func (m *Merger) ReadFont(data []byte, glyphs map[int]int, codes map[int]int) error {
	f, err := decodeFont(data)
	if err != nil {
		return err
	}

	gidMap := make(map[int]int, len(glyphs)+1)
	if len(glyphs) <= 1 {
		for gid := 0; gid < f.numGlyphs; gid++ {
			gidMap[gid] = gid
		}
	} else {
		for oldGID, newGID := range glyphs {
			if oldGID < 0 || oldGID >= f.numGlyphs {
				return fontio.Conflict("sfnt/glyf",
					fmt.Sprintf("glyph %d not present in font with %d glyphs", oldGID, f.numGlyphs))
			}
			if newGID < 0 || newGID > 0xFFFF {
				return fontio.Conflict("sfnt/glyf",
					fmt.Sprintf("invalid new glyph ID %d", newGID))
			}
			gidMap[oldGID] = newGID
		}
		if _, ok := gidMap[0]; !ok {
			gidMap[0] = 0
		}
	}

	identity := m.numSources == 0 && len(gidMap) == f.numGlyphs
	for oldGID, newGID := range gidMap {
		if oldGID != newGID {
			identity = false
			break
		}
	}

	// Stage all new glyphs before modifying the Merger.
	base := len(m.arena)
	var added []mergedGlyph
	addedGID := make(map[int]int)
	local := make(map[int]int) // old glyph ID -> arena index
	type todo struct {
		idx, oldGID int
	}
	var work []todo

	newGlyph := func(oldGID, newGID int) int {
		idx := base + len(added)
		added = append(added, mergedGlyph{
			gid:     newGID,
			data:    f.glyphData(oldGID),
			advance: f.advance[oldGID],
			lsb:     f.lsb[oldGID],
		})
		local[oldGID] = idx
		work = append(work, todo{idx, oldGID})
		return idx
	}

	oldGIDs := make([]int, 0, len(gidMap))
	for oldGID := range gidMap {
		oldGIDs = append(oldGIDs, oldGID)
	}
	slices.Sort(oldGIDs)
	replaced := make(map[int]*mergedGlyph) // arena index -> new content for an empty glyph
	for _, oldGID := range oldGIDs {
		newGID := gidMap[oldGID]
		if idx, ok := m.byGID[newGID]; ok {
			data := f.glyphData(oldGID)
			if _, seen := replaced[idx]; !seen && len(m.arena[idx].data) == 0 && len(data) > 0 {
				replaced[idx] = &mergedGlyph{
					gid:     newGID,
					data:    data,
					advance: f.advance[oldGID],
					lsb:     f.lsb[oldGID],
				}
				work = append(work, todo{idx, oldGID})
			}
			local[oldGID] = idx
			continue
		}
		if idx, ok := addedGID[newGID]; ok {
			local[oldGID] = idx
			continue
		}
		addedGID[newGID] = newGlyph(oldGID, newGID)
	}

	for len(work) > 0 {
		item := work[len(work)-1]
		work = work[:len(work)-1]

		g := replaced[item.idx]
		if item.idx >= base {
			g = &added[item.idx-base]
		}
		refs, err := components(g.data)
		if err != nil {
			return fmt.Errorf("glyph %d: %w", item.oldGID, err)
		}
		var links []link
		for _, ref := range refs {
			if ref.GID >= f.numGlyphs {
				return invalid("sfnt/glyf",
					fmt.Sprintf("glyph %d: invalid component %d", item.oldGID, ref.GID))
			}
			target, ok := local[ref.GID]
			if !ok {
				target = newGlyph(ref.GID, -1)
			}
			links = append(links, link{pos: ref.Pos, target: target})
		}
		if item.idx >= base {
			added[item.idx-base].links = links
		} else {
			replaced[item.idx].links = links
		}
	}

	// Build the cmap contributions of this source.  The Windows Unicode
	// subtable collects the entries of all Unicode subtables, followed by
	// the Mac Roman entries translated to Unicode.
	contrib := make(map[cmap.Key]codeMap)
	add := func(key cmap.Key, code uint32, gid int) {
		sub := contrib[key]
		if sub == nil {
			sub = make(codeMap)
			contrib[key] = sub
		}
		if _, seen := sub[code]; !seen {
			sub[code] = gid
		}
	}
	for _, key := range unicodeKeys {
		for code, oldGID := range f.cmaps[key] {
			if newGID, ok := gidMap[oldGID]; ok {
				add(keyWinUnicode, code, newGID)
			}
		}
	}
	for code, oldGID := range f.cmaps[keyMacRoman] {
		if newGID, ok := gidMap[oldGID]; ok && code < 256 {
			add(keyWinUnicode, uint32(mac.DecodeOne(byte(code))), newGID)
		}
	}
	for key, sub := range f.cmaps {
		if isUnicode(key) || codes != nil && (key == keyWinSymbol || key == keyMacRoman) {
			continue
		}
		for code, oldGID := range sub {
			if newGID, ok := gidMap[oldGID]; ok {
				add(key, code, newGID)
			}
		}
	}
	for code, oldGID := range codes {
		newGID, ok := gidMap[oldGID]
		if !ok || code < 0 || code > 255 {
			continue
		}
		add(keyWinSymbol, 0xF000+uint32(code), newGID)
		add(keyMacRoman, uint32(code), newGID)
	}

	// Commit.
	if m.numSources == 0 {
		m.first = f
		m.identity = identity
		head := f.tables["head"]
		for i := range m.bbox {
			m.bbox[i] = int16(binary.BigEndian.Uint16(head[36+2*i:]))
		}
	} else {
		m.identity = false
		head := f.tables["head"]
		for i := range m.bbox {
			v := int16(binary.BigEndian.Uint16(head[36+2*i:]))
			if i < 2 {
				m.bbox[i] = min(m.bbox[i], v)
			} else {
				m.bbox[i] = max(m.bbox[i], v)
			}
		}
	}
	m.numSources++

	m.arena = append(m.arena, added...)
	for idx, g := range replaced {
		m.arena[idx] = *g
	}
	for newGID, idx := range addedGID {
		m.byGID[newGID] = idx
	}

	if maxp := f.tables["maxp"]; len(maxp) >= 32 {
		for pos := 6; pos < 32; pos += 2 {
			v := uint32(binary.BigEndian.Uint16(maxp[pos:]))
			if pos == 14 { // maxZones
				m.maxp[pos/2] = max(m.maxp[pos/2], v)
			} else {
				m.maxp[pos/2] += v
			}
		}
	}

	for key, sub := range contrib {
		target := m.cmap[key]
		if target == nil {
			target = make(codeMap, len(sub))
			m.cmap[key] = target
		}
		for code, gid := range sub {
			if _, seen := target[code]; !seen {
				target[code] = gid
			}
		}
	}

	return nil
}

func isUnicode(key cmap.Key) bool {
	return key.PlatformID == 0 || key == keyWinUnicode || key == keyWinFull
}

// Bytes returns the merged font file.  Calling Bytes does not change the
// Merger; further fonts can be added afterwards.
func (m *Merger) Bytes() ([]byte, error) {
	if m.numSources == 0 {
		return nil, errNoFonts
	}
	if m.numSources == 1 && m.identity {
		return slices.Clone(m.first.data), nil
	}

	// Glyphs without a requested ID are placed after all others.
	numGlyphs := 0
	for _, g := range m.arena {
		numGlyphs = max(numGlyphs, g.gid+1)
	}
	final := make([]int, len(m.arena))
	for i, g := range m.arena {
		if g.gid >= 0 {
			final[i] = g.gid
		} else {
			final[i] = numGlyphs
			numGlyphs++
		}
	}
	if numGlyphs > 0xFFFF {
		return nil, fontio.Conflict("sfnt/glyf", "too many glyphs")
	}
	order := make([]int, numGlyphs)
	for i := range order {
		order[i] = -1
	}
	for i, gid := range final {
		order[gid] = i
	}

	var glyf []byte
	offs := make([]int, numGlyphs+1)
	hmtx := make([]byte, 4*numGlyphs)
	var advanceMax uint16
	for gid, idx := range order {
		offs[gid] = len(glyf)
		if idx < 0 {
			continue
		}
		g := m.arena[idx]
		start := len(glyf)
		glyf = append(glyf, g.data...)
		for _, l := range g.links {
			binary.BigEndian.PutUint16(glyf[start+l.pos:], uint16(final[l.target]))
		}
		for len(glyf)%4 != 0 {
			glyf = append(glyf, 0)
		}

		binary.BigEndian.PutUint16(hmtx[4*gid:], g.advance)
		binary.BigEndian.PutUint16(hmtx[4*gid+2:], uint16(g.lsb))
		advanceMax = max(advanceMax, g.advance)
	}
	offs[numGlyphs] = len(glyf)
	loca, locaFormat := encodeLoca(offs, m.first.locaFormat == 0)

	first := m.first.tables
	tables := map[string][]byte{
		"glyf": glyf,
		"loca": loca,
		"hmtx": hmtx,
	}

	head := slices.Clone(first["head"])
	for i, v := range m.bbox {
		binary.BigEndian.PutUint16(head[36+2*i:], uint16(v))
	}
	binary.BigEndian.PutUint16(head[50:], uint16(locaFormat))
	tables["head"] = head

	hhea := slices.Clone(first["hhea"])
	binary.BigEndian.PutUint16(hhea[10:], advanceMax)
	binary.BigEndian.PutUint16(hhea[34:], uint16(numGlyphs))
	tables["hhea"] = hhea

	maxp := slices.Clone(first["maxp"])
	binary.BigEndian.PutUint16(maxp[4:], uint16(numGlyphs))
	if len(maxp) >= 32 {
		for pos := 6; pos < 32; pos += 2 {
			binary.BigEndian.PutUint16(maxp[pos:], uint16(min(m.maxp[pos/2], 0xFFFF)))
		}
	}
	tables["maxp"] = maxp

	// Glyph names are not kept, convert to version 3.0.
	if post := first["post"]; len(post) >= 32 {
		post = slices.Clone(post[:32])
		binary.BigEndian.PutUint32(post, 0x00030000)
		tables["post"] = post
	}

	if data := m.encodeCmap(); data != nil {
		tables["cmap"] = data
	}

	for _, name := range []string{"OS/2", "name", "cvt ", "fpgm", "prep"} {
		if data := first[name]; data != nil {
			tables[name] = slices.Clone(data)
		}
	}

	return writeFont(tables), nil
}

func (m *Merger) encodeCmap() []byte {
	out := make(map[cmap.Key]codeMap)
	for key, sub := range m.cmap {
		if key == keyWinUnicode || len(sub) == 0 {
			continue
		}
		out[key] = sub
	}
	// Entries of the symbolic subtable are added to the Unicode subtable,
	// unless the code is already mapped there.
	uni := maps.Clone(m.cmap[keyWinUnicode])
	for code, gid := range m.cmap[keyWinSymbol] {
		if _, seen := uni[code]; !seen {
			if uni == nil {
				uni = make(codeMap)
			}
			uni[code] = gid
		}
	}
	if len(uni) > 0 {
		bmp := make(codeMap, len(uni))
		for code, gid := range uni {
			if code < 0xFFFF {
				bmp[code] = gid
			}
		}
		out[keyWinUnicode] = bmp
		if len(bmp) < len(uni) {
			out[keyWinFull] = uni
		}
	}
	if len(out) == 0 {
		return nil
	}
	return encodeCmap(out)
}

var errNoFonts = errors.New("truetype: no fonts added")
