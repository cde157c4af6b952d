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

	"seehuhn.de/go/fontmerge/cff"
	"seehuhn.de/go/fontmerge/truetype"
	"seehuhn.de/go/fontmerge/type1"
)

// engine is a binary merger for one font program format.
type engine interface {
	ReadFont(data []byte, glyphs map[int]int, codes map[int]int) error
	Bytes() ([]byte, error)
}

func newEngine(f Format) engine {
	switch f {
	case TrueType:
		return truetype.NewMerger()
	case CFFSimple, CFFCID:
		return cff.NewMerger()
	default:
		return type1.NewMerger()
	}
}

// program gives access to the glyphs of a source font program.
type program interface {
	numGlyphs() int

	// lookup returns the glyph used for the given code.  The glyph name
	// from the PDF encoding and the text from the ToUnicode map are
	// used where applicable; both may be empty.
	lookup(code int, name, text string) (int, bool)

	isNotdef(gid int) bool

	// glyphName returns the name of the given glyph, or the empty string
	// if the font has no glyph names.
	glyphName(gid int) string

	// outline returns the charstring of a named glyph, or nil for formats
	// where outlines are not compared.
	outline(gid int) []byte

	empty(gid int) bool

	// cid returns the CID of a glyph in a CID-keyed CFF font, or -1.
	cid(gid int) int
}

func openProgram(src *Source) (program, error) {
	if len(src.Data) == 0 {
		return nil, ErrNoProgram
	}
	switch src.Format {
	case TrueType:
		info, err := truetype.Inspect(src.Data)
		if err != nil {
			return nil, err
		}
		return &ttProgram{info: info, composite: src.Composite}, nil
	case CFFSimple, CFFCID:
		info, err := cff.Parse(src.Data)
		if err != nil {
			return nil, err
		}
		if info.IsCID != (src.Format == CFFCID) {
			return nil, conflict(fmt.Sprintf("font program does not match format %s", src.Format))
		}
		p := &cffProgram{info: info}
		if info.IsCID {
			p.byCID = make(map[int]int, info.NumGlyphs)
			for gid := range info.NumGlyphs {
				p.byCID[info.CID(gid)] = gid
			}
		}
		return p, nil
	case Type1:
		info, err := type1.Parse(src.Data)
		if err != nil {
			return nil, err
		}
		return &t1Program{info: info}, nil
	}
	return nil, &NotSupportedError{SubSystem: "fontmerge", Feature: "font format " + src.Format.String()}
}

type ttProgram struct {
	info      *truetype.Info
	composite bool
}

func (p *ttProgram) numGlyphs() int { return p.info.NumGlyphs }

func (p *ttProgram) lookup(code int, name, text string) (int, bool) {
	if p.composite {
		// CIDToGIDMap /Identity
		return code, code < p.info.NumGlyphs
	}
	if code < 0 || code > 255 {
		return 0, false
	}
	if text == "" {
		text = textForName(name)
	}
	gid := p.info.Lookup(byte(code), text)
	return gid, gid != 0
}

func (p *ttProgram) isNotdef(gid int) bool { return gid == 0 }
func (p *ttProgram) glyphName(int) string { return "" }
func (p *ttProgram) outline(int) []byte { return nil }
func (p *ttProgram) empty(gid int) bool { return p.info.Empty(gid) }
func (p *ttProgram) cid(int) int { return -1 }

type cffProgram struct {
	info  *cff.Info
	byCID map[int]int
}

func (p *cffProgram) numGlyphs() int { return p.info.NumGlyphs }

func (p *cffProgram) lookup(code int, name, text string) (int, bool) {
	if p.info.IsCID {
		gid, ok := p.byCID[code]
		return gid, ok
	}
	if code < 0 || code > 255 {
		return 0, false
	}
	if name != "" {
		if gid, ok := p.info.GlyphByName(name); ok {
			return gid, true
		}
	}
	gid := p.info.Lookup(byte(code))
	return gid, gid != 0
}

func (p *cffProgram) isNotdef(gid int) bool { return gid == 0 }

func (p *cffProgram) glyphName(gid int) string { return p.info.GlyphName(gid) }

func (p *cffProgram) outline(gid int) []byte {
	if p.info.IsCID {
		return nil
	}
	return p.info.CharString(gid)
}

func (p *cffProgram) empty(gid int) bool { return len(p.info.CharString(gid)) == 0 }

func (p *cffProgram) cid(gid int) int {
	if !p.info.IsCID {
		return -1
	}
	return p.info.CID(gid)
}

type t1Program struct {
	info *type1.Info
}

func (p *t1Program) numGlyphs() int { return p.info.NumGlyphs }

// lookup prefers the glyph name from the PDF encoding, then the built-in
// encoding.  If neither gives a glyph, the code is used as a position in
// the CharStrings dictionary; this works for many symbol fonts.
func (p *t1Program) lookup(code int, name, text string) (int, bool) {
	if code < 0 || code > 255 {
		return 0, false
	}
	if name != "" {
		if gid, ok := p.info.GlyphByName(name); ok {
			return gid, true
		}
	}
	if gid, ok := p.info.Lookup(byte(code)); ok {
		return gid, true
	}
	if name != "" && code < p.info.NumGlyphs && !p.isNotdef(code) {
		return code, true
	}
	return 0, false
}

func (p *t1Program) isNotdef(gid int) bool { return p.info.GlyphName(gid) == ".notdef" }

func (p *t1Program) glyphName(gid int) string { return p.info.GlyphName(gid) }

func (p *t1Program) outline(gid int) []byte { return p.info.CharString(gid) }

func (p *t1Program) empty(gid int) bool { return len(p.info.CharString(gid)) == 0 }

func (p *t1Program) cid(int) int { return -1 }
