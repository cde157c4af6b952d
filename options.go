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

import "log/slog"

// DefaultSourceCacheSize is the number of parsed sources a [Session]
// keeps by default.
const DefaultSourceCacheSize = 10

// Options allows to customize the merging of fonts.
type Options struct {
	// SourceCacheSize is the capacity of the source cache of a [Session].
	SourceCacheSize int

	// OutlineTolerance is the number of trailing charstring bytes which may
	// differ between two outlines of the same glyph name before the
	// outlines are considered different.  A negative value requires
	// identical outlines.
	OutlineTolerance int

	// Logger (optional) receives messages when a [Session] has to keep an
	// occurrence separate.
	Logger *slog.Logger
}

var defaultOptions = &Options{
	SourceCacheSize:  DefaultSourceCacheSize,
	OutlineTolerance: 2,
}

// MergeOptions takes an options struct and a default values struct and
// returns a new options struct, where all fields which are zero in opt are
// taken from defaultValues.  opt can be nil, in which case the default
// values are returned.  defaultValues must not be nil.
func MergeOptions(opt, defaultValues *Options) *Options {
	if opt == nil {
		return defaultValues
	}

	res := &Options{}
	if opt.SourceCacheSize != 0 {
		res.SourceCacheSize = opt.SourceCacheSize
	} else {
		res.SourceCacheSize = defaultValues.SourceCacheSize
	}
	if opt.OutlineTolerance != 0 {
		res.OutlineTolerance = opt.OutlineTolerance
	} else {
		res.OutlineTolerance = defaultValues.OutlineTolerance
	}
	if opt.Logger != nil {
		res.Logger = opt.Logger
	} else {
		res.Logger = defaultValues.Logger
	}
	return res
}
