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
	"fmt"
	"maps"
	"slices"
	"strings"
	"unicode/utf8"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/postscript/type1/names"
)

// Font is a font which combines the glyphs of several occurrences of the
// same font.
//
// For simple fonts, glyphs are identified by single-byte character codes.
// For composite fonts, glyphs are identified by CIDs, and the character
// codes are the CIDs written as two bytes.  CID 0 is reserved for .notdef.
type Font struct {
	baseName string
	format   Format
	cid      bool
	opt      *Options

	chars    *charMap
	widths   map[int]int       // output index -> width
	names    map[int]string    // output code -> glyph name, simple fonts
	outlines map[string][]byte // glyph name -> charstring, simple Type 1 and CFF

	eng        engine
	numSources int

	// Glyph slots of the merged font program which hold a glyph: glyph
	// IDs for TrueType, CIDs for CID-keyed CFF.
	occupied map[int]bool
	slotEnd  int

	bbox  rect.Rect
	codes map[*Source]map[int]int // source code -> output index
}

// New creates a new merged font, starting with the given source.
func New(src *Source, opt *Options) (*Font, error) {
	f := &Font{
		baseName: src.FontName(),
		format:   src.Format,
		cid:      src.IsCID(),
		opt:      MergeOptions(opt, defaultOptions),
		chars:    newCharMap(),
		widths:   make(map[int]int),
		names:    make(map[int]string),
		outlines: make(map[string][]byte),
		eng:      newEngine(src.Format),
		occupied: make(map[int]bool),
		codes:    make(map[*Source]map[int]int),
		bbox:     src.BBox,
	}
	if f.cid {
		f.chars.set(notdefKey, 0)
	}
	_, err := f.AddFont(src)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// notdefKey is the character key of CID 0 in composite fonts.
const notdefKey = "/.notdef"

// entry is one character of a source font.
type entry struct {
	code, gid int
	key       string
	name      string // glyph name in the font program
	glyphName string // glyph name for the PDF encoding
	synthetic bool
}

// AddFont adds the glyphs of a new occurrence of the font.
//
// If the occurrence uses a glyph name which is already present in a
// simple Type 1 or CFF font, but with a different outline, the occurrence
// is not merged and the empty string is returned.  Otherwise the (new)
// name of the merged font is returned.  If an error is returned, or if the
// occurrence is not merged, the Font is unchanged.
func (f *Font) AddFont(src *Source) (string, error) {
	if src.Format != f.format || src.IsCID() != f.cid {
		return "", conflict(fmt.Sprintf("cannot merge %s font into %s font", src.Format, f.format))
	}
	if _, seen := f.codes[src]; seen {
		return f.Name(), nil
	}
	prog, err := openProgram(src)
	if err != nil {
		return "", err
	}

	entries := f.sourceEntries(src, prog)

	if !f.cid && (f.format == Type1 || f.format == CFFSimple) {
		for _, e := range entries {
			if old, ok := f.outlines[e.name]; ok && e.name != "" {
				if outlinesDiffer(old, prog.outline(e.gid), f.opt.OutlineTolerance) {
					return "", nil
				}
			}
		}
	}

	first := f.numSources == 0
	staged := &stagedMap{base: f.chars, added: newCharMap()}
	srcCodes := make(map[int]int, len(entries))
	newWidths := make(map[int]int)
	newNames := make(map[int]string)
	var added []entry

	glyphs := make(map[int]int) // old glyph ID -> glyph slot or CID
	codes := make(map[int]int)  // output code -> old glyph ID
	newOccupied := make(map[int]bool)
	slotEnd := f.slotEnd
	slotOf := make(map[int]int) // old glyph ID -> new glyph ID, simple TrueType fonts

	slotFree := func(slot int) bool {
		return slot > 0 && !f.occupied[slot] && !newOccupied[slot]
	}

	for _, e := range entries {
		if idx, ok := staged.lookup(e.key); ok {
			srcCodes[e.code] = idx
			if w := src.Width(e.code); w != 0 && !e.synthetic && f.widths[idx] == 0 && newWidths[idx] == 0 {
				newWidths[idx] = w
			}
			continue
		}

		idx, err := f.allocate(staged, e.code, slotFree)
		if err != nil {
			return "", err
		}
		staged.added.set(e.key, idx)
		srcCodes[e.code] = idx
		if w := src.Width(e.code); w != 0 && !e.synthetic {
			newWidths[idx] = w
		}
		if !f.cid && e.glyphName != "" {
			newNames[idx] = e.glyphName
		}
		added = append(added, e)

		switch {
		case f.cid:
			glyphs[e.gid] = idx
			newOccupied[idx] = true
		case f.format == TrueType:
			slot, ok := slotOf[e.gid]
			if !ok {
				slot = e.gid
				if !first && !slotFree(slot) {
					for !slotFree(slotEnd) {
						slotEnd++
					}
					slot = slotEnd
				}
				slotOf[e.gid] = slot
				newOccupied[slot] = true
			}
			glyphs[e.gid] = slot
			codes[idx] = e.gid
		default:
			glyphs[e.gid] = e.gid
			codes[idx] = e.gid
		}
	}

	switch {
	case first:
		// The first source keeps all its glyphs, without renumbering.
		glyphs = nil
	case len(glyphs) == 0:
		// nothing new
	default:
		notdef := 0
		if t1, ok := prog.(*t1Program); ok {
			notdef, _ = t1.info.GlyphByName(".notdef")
		}
		if _, ok := glyphs[notdef]; !ok {
			glyphs[notdef] = 0
		}
	}
	if f.cid {
		codes = nil
	}

	if first || len(glyphs) > 0 {
		err := f.eng.ReadFont(src.Data, glyphs, codes)
		if err != nil {
			return "", err
		}
	}

	// Commit.
	if first {
		for gid := range prog.numGlyphs() {
			if slot := prog.cid(gid); slot >= 0 {
				newOccupied[slot] = true
			} else if f.format == TrueType && !prog.empty(gid) {
				newOccupied[gid] = true
			}
		}
		slotEnd = prog.numGlyphs()
	} else if !src.BBox.IsZero() {
		if f.bbox.IsZero() {
			f.bbox = src.BBox
		} else {
			f.bbox.LLx = min(f.bbox.LLx, src.BBox.LLx)
			f.bbox.LLy = min(f.bbox.LLy, src.BBox.LLy)
			f.bbox.URx = max(f.bbox.URx, src.BBox.URx)
			f.bbox.URy = max(f.bbox.URy, src.BBox.URy)
		}
	}
	staged.commit()
	for idx, w := range newWidths {
		if f.widths[idx] == 0 {
			f.widths[idx] = w
		}
	}
	for idx, name := range newNames {
		f.names[idx] = name
	}
	// The first source is embedded whole, so all its glyphs are in use.
	if first {
		for gid := range prog.numGlyphs() {
			f.recordOutline(prog, gid)
		}
	}
	for _, e := range added {
		f.recordOutline(prog, e.gid)
	}
	for slot := range newOccupied {
		f.occupied[slot] = true
	}
	f.slotEnd = slotEnd
	f.codes[src] = srcCodes
	f.numSources++

	return f.Name(), nil
}

// recordOutline remembers the outline of a glyph in the merged font
// program, for comparison with later sources.
func (f *Font) recordOutline(prog program, gid int) {
	name := prog.glyphName(gid)
	if name == "" || f.outlines[name] != nil {
		return
	}
	if cs := prog.outline(gid); cs != nil {
		f.outlines[name] = cs
	}
}

// sourceEntries lists the characters of a source, in order of increasing
// character code.
func (f *Font) sourceEntries(src *Source, prog program) []entry {
	var entries []entry
	keyGID := make(map[string]int)

	add := func(code, gid int, pdfName, text string) {
		e := entry{
			code:      code,
			gid:       gid,
			name:      prog.glyphName(gid),
			glyphName: pdfName,
		}
		if e.glyphName == "" {
			e.glyphName = e.name
		}
		if e.glyphName == "" && utf8.RuneCountInString(text) == 1 {
			e.glyphName = names.FromUnicode(text)
		}

		suffix := e.glyphName
		if suffix == "" {
			suffix = fmt.Sprintf("#%d", code)
		}
		switch {
		case text != "":
			e.key = text
		case e.glyphName != "":
			e.key = nameKey(e.glyphName)
		case prog.cid(gid) >= 0:
			e.key = fmt.Sprintf("\x00cid%d", prog.cid(gid))
		case !prog.empty(gid):
			e.key = fmt.Sprintf("\x00src%d/%d", f.numSources, code)
			e.synthetic = true
		default:
			return
		}
		if other, seen := keyGID[e.key]; seen && other != gid {
			e.key += "\x00" + suffix
		}
		keyGID[e.key] = gid
		entries = append(entries, e)
	}

	if f.cid {
		for gid := 1; gid < prog.numGlyphs(); gid++ {
			code := gid
			if cid := prog.cid(gid); cid >= 0 {
				code = cid
			}
			text := src.ToUnicode[code]
			if prog.empty(gid) && text == "" && src.Width(code) == 0 {
				continue
			}
			add(code, gid, "", text)
		}
		slices.SortStableFunc(entries, func(a, b entry) int { return a.code - b.code })
		return entries
	}

	firstCode, lastCode := src.FirstChar, src.LastChar
	if lastCode < firstCode || firstCode == 0 && lastCode == 0 {
		firstCode, lastCode = 0, 255
	}
	for code := max(firstCode, 0); code <= min(lastCode, 255); code++ {
		pdfName := src.Encoding.glyphName(code)
		text := src.ToUnicode[code]
		gid, ok := prog.lookup(code, pdfName, text)
		if !ok || prog.isNotdef(gid) {
			continue
		}
		add(code, gid, pdfName, text)
	}
	return entries
}

// nameKey returns the character key for a glyph name.  Glyph names with a
// suffix, like "a.sc", are kept distinct from the base glyph.
func nameKey(name string) string {
	if base, _, hasSuffix := strings.Cut(name, "."); hasSuffix && base != "" {
		return "/" + name
	}
	if text := textForName(name); text != "" {
		return text
	}
	return "/" + name
}

// allocate chooses the output index for a new character key.  The index
// used by the source is kept where possible.
func (f *Font) allocate(sm *stagedMap, own int, slotFree func(int) bool) (int, error) {
	if !f.cid {
		if own >= 0 && own <= 255 && !sm.used(own) {
			return own, nil
		}
		for code := 1; code <= 255; code++ {
			if !sm.used(code) {
				return code, nil
			}
		}
		if !sm.used(0) {
			return 0, nil
		}
		return 0, conflict("no free character codes in simple font")
	}

	free := func(cid int) bool {
		return !sm.used(cid) && slotFree(cid)
	}
	if free(own) {
		return own, nil
	}
	cid := sm.size() + 1
	for !free(cid) {
		cid++
	}
	if cid > 0xFFFF {
		return 0, conflict("no free CIDs")
	}
	return cid, nil
}

// outlinesDiffer compares two charstrings, starting from the end.  The
// outlines are considered different if more than tol bytes do not match.
func outlinesDiffer(a, b []byte, tol int) bool {
	tol = max(tol, 0)
	n := max(len(a), len(b))
	mismatches := 0
	for i := 1; i <= n; i++ {
		x, y := -1, -1
		if i <= len(a) {
			x = int(a[len(a)-i])
		}
		if i <= len(b) {
			y = int(b[len(b)-i])
		}
		if x != y {
			mismatches++
			if mismatches > tol {
				return true
			}
		}
	}
	return false
}

// Name returns the PostScript name of the merged font, including a subset
// tag.
func (f *Font) Name() string {
	return subsetTag(slices.Collect(maps.Keys(f.chars.key)), f.chars.size()) + "+" + f.baseName
}

// FontName returns the PostScript name of the font, without subset tag.
func (f *Font) FontName() string {
	return f.baseName
}

// Format returns the format of the font program.
func (f *Font) Format() Format {
	return f.format
}

// IsCID reports whether the font uses two-byte CID codes.
func (f *Font) IsCID() bool {
	return f.cid
}

// NumSources returns the number of occurrences merged into the font.
func (f *Font) NumSources() int {
	return f.numSources
}

// MapChar returns the output index assigned to a character key.  Character
// keys are the text of a character, or "/" followed by a glyph name where
// the text is unknown.
func (f *Font) MapChar(key string) (int, bool) {
	return f.chars.lookup(key)
}

// MappedWord translates the operand of a text showing operator from the
// code space of the given source into the code space of the merged font.
// The second return value is false if some character cannot be
// represented.
func (f *Font) MappedWord(src *Source, s []byte) ([]byte, bool) {
	m, ok := f.codes[src]
	if !ok {
		return nil, false
	}
	if !f.cid {
		res := make([]byte, len(s))
		for i, c := range s {
			idx, ok := m[int(c)]
			if !ok {
				return nil, false
			}
			res[i] = byte(idx)
		}
		return res, true
	}

	if len(s)%2 != 0 {
		return nil, false
	}
	res := make([]byte, len(s))
	for i := 0; i < len(s); i += 2 {
		idx, ok := m[int(s[i])<<8|int(s[i+1])]
		if !ok {
			return nil, false
		}
		res[i] = byte(idx >> 8)
		res[i+1] = byte(idx)
	}
	return res, true
}

// Widths returns the glyph widths for the /Widths array of a simple font.
// The widths cover all codes from firstChar to firstChar+len(widths)-1;
// unused codes have width 0.
func (f *Font) Widths() (firstChar int, widths []int) {
	if len(f.widths) == 0 {
		return 0, nil
	}
	idx := slices.Sorted(maps.Keys(f.widths))
	firstChar = idx[0]
	widths = make([]int, idx[len(idx)-1]-firstChar+1)
	for _, i := range idx {
		widths[i-firstChar] = f.widths[i]
	}
	return firstChar, widths
}

// WidthMap returns the widths of all output indices which have a width.
func (f *Font) WidthMap() map[int]int {
	return maps.Clone(f.widths)
}

// Encoding returns the glyph names for the codes of a simple font, for use
// in the /Differences array of the font dictionary.  For composite fonts,
// nil is returned.
func (f *Font) Encoding() map[int]string {
	if f.cid {
		return nil
	}
	return maps.Clone(f.names)
}

// BBox returns the union of the bounding boxes of all sources.
func (f *Font) BBox() rect.Rect {
	return f.bbox
}

// Bytes returns the merged font program.  The result does not change,
// unless more fonts are added.
func (f *Font) Bytes() ([]byte, error) {
	return f.eng.Bytes()
}
