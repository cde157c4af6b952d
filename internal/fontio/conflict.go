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

// Package fontio contains the low-level binary helpers shared by the
// TrueType, CFF and Type 1 merge engines.
package fontio

// ConflictError indicates that glyph data from two source fonts cannot be
// combined into one font.  The conflicting occurrence must be embedded
// separately.
type ConflictError struct {
	SubSystem string
	Reason    string
}

func (err *ConflictError) Error() string {
	return err.SubSystem + ": merge conflict: " + err.Reason
}

// Conflict returns a new ConflictError.
func Conflict(subSystem, reason string) error {
	return &ConflictError{SubSystem: subSystem, Reason: reason}
}
