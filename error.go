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

	"seehuhn.de/go/sfnt/parser"

	"seehuhn.de/go/fontmerge/internal/fontio"
)

type (
	// ConflictError indicates that a font occurrence cannot be merged
	// into an existing font.  The occurrence must be embedded separately.
	ConflictError = fontio.ConflictError

	// InvalidFontError indicates a malformed font program.
	InvalidFontError = parser.InvalidFontError

	// NotSupportedError indicates a valid font program which uses an
	// unsupported feature.
	NotSupportedError = parser.NotSupportedError
)

// ErrNoProgram is returned for sources without an embedded font program.
var ErrNoProgram = errors.New("fontmerge: font program not embedded")

func conflict(reason string) error {
	return fontio.Conflict("fontmerge", reason)
}
