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
	"errors"
	"log/slog"
)

// SourceKey identifies a font dictionary in a source document.
type SourceKey struct {
	// Document distinguishes the source documents of one session.
	Document   string
	Number     uint32
	Generation uint16
}

// fontID identifies a logical font.  Occurrences with the same fontID
// are candidates for merging.
type fontID struct {
	name   string
	format Format
	cid    bool
}

// Session keeps track of the merged fonts for one output document.
type Session struct {
	opt *Options

	fonts      []*Font
	candidates map[fontID][]*Font
	cache      *lruCache[SourceKey, *Source]
}

// NewSession creates a new session.  opt can be nil to use the default
// options.
func NewSession(opt *Options) *Session {
	opt = MergeOptions(opt, defaultOptions)
	return &Session{
		opt:        opt,
		candidates: make(map[fontID][]*Font),
		cache:      newCache[SourceKey, *Source](opt.SourceCacheSize),
	}
}

// Source returns the source for the given font dictionary.  If the source
// is not in the cache, load is called to construct it.
func (s *Session) Source(key SourceKey, load func() (*Source, error)) (*Source, error) {
	if src, ok := s.cache.Get(key); ok {
		return src, nil
	}
	src, err := load()
	if err != nil {
		return nil, err
	}
	s.cache.Put(key, src)
	return src, nil
}

// Add merges a font occurrence into one of the fonts of the session.  If
// the occurrence cannot be merged into any existing font, a new font is
// started.  An error is returned only if the occurrence cannot be used to
// start a new font either; the caller should then embed the original font
// unchanged.
func (s *Session) Add(src *Source) (*Font, error) {
	id := fontID{name: src.FontName(), format: src.Format, cid: src.IsCID()}
	for _, f := range s.candidates[id] {
		name, err := f.AddFont(src)
		switch {
		case err != nil:
			s.log("cannot merge font", src, err.Error())
			if errors.Is(err, ErrNoProgram) {
				return nil, err
			}
		case name == "":
			s.log("cannot merge font", src, "glyph outlines differ")
		default:
			return f, nil
		}
	}

	f, err := New(src, s.opt)
	if err != nil {
		s.log("cannot use font", src, err.Error())
		return nil, err
	}
	s.fonts = append(s.fonts, f)
	s.candidates[id] = append(s.candidates[id], f)
	return f, nil
}

// Fonts returns all fonts of the session, in the order they were created.
func (s *Session) Fonts() []*Font {
	return s.fonts
}

func (s *Session) log(msg string, src *Source, reason string) {
	if s.opt.Logger == nil {
		return
	}
	s.opt.Logger.Info(msg,
		slog.String("font", src.BaseFont),
		slog.String("format", src.Format.String()),
		slog.String("reason", reason))
}
