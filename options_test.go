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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMergeOptions(t *testing.T) {
	if got := MergeOptions(nil, defaultOptions); got != defaultOptions {
		t.Error("nil options must return the defaults")
	}

	got := MergeOptions(&Options{OutlineTolerance: 5}, defaultOptions)
	want := &Options{SourceCacheSize: DefaultSourceCacheSize, OutlineTolerance: 5}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("options (-want +got):\n%s", d)
	}
}
