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
	"fmt"
	"sort"
)

const (
	scalerTypeTrueType = 0x00010000
	scalerTypeApple    = 0x74727565 // "true"
)

type record struct {
	Offset uint32
	Length uint32
}

// readDirectory reads the table directory of a TrueType font file and
// returns the data of all tables, keyed by table tag.
func readDirectory(data []byte) (map[string][]byte, error) {
	if len(data) < 12 {
		return nil, invalid("sfnt/header", "file too short")
	}
	scalerType := binary.BigEndian.Uint32(data)
	numTables := int(binary.BigEndian.Uint16(data[4:]))

	if scalerType == 0x4F54544F { // "OTTO"
		return nil, notSupported("sfnt/header", "CFF-based OpenType")
	}
	if scalerType != scalerTypeTrueType && scalerType != scalerTypeApple {
		return nil, notSupported("sfnt/header",
			fmt.Sprintf("scaler type 0x%x", scalerType))
	}
	if numTables > 280 {
		return nil, invalid("sfnt/header", "too many tables")
	}
	if len(data) < 12+16*numTables {
		return nil, invalid("sfnt/header", "truncated table directory")
	}

	type alloc struct {
		Start, End uint32
	}
	var coverage []alloc
	tables := make(map[string][]byte, numTables)
	for i := 0; i < numTables; i++ {
		buf := data[12+16*i : 12+16*(i+1)]
		name := string(buf[:4])
		rec := record{
			Offset: binary.BigEndian.Uint32(buf[8:]),
			Length: binary.BigEndian.Uint32(buf[12:]),
		}
		end := uint64(rec.Offset) + uint64(rec.Length)
		if end > uint64(len(data)) {
			return nil, invalid("sfnt/header",
				fmt.Sprintf("table %q extends beyond EOF", name))
		}
		if rec.Length == 0 {
			continue
		}
		tables[name] = data[rec.Offset:end]
		coverage = append(coverage, alloc{rec.Offset, uint32(end)})
	}
	if len(tables) == 0 {
		return nil, invalid("sfnt/header", "no tables found")
	}

	sort.Slice(coverage, func(i, j int) bool {
		if coverage[i].Start != coverage[j].Start {
			return coverage[i].Start < coverage[j].Start
		}
		return coverage[i].End < coverage[j].End
	})
	if coverage[0].Start < 12 {
		return nil, invalid("sfnt/header", "invalid table offset")
	}
	for i := 1; i < len(coverage); i++ {
		if coverage[i-1].End > coverage[i].Start {
			return nil, invalid("sfnt/header", "overlapping tables")
		}
	}

	return tables, nil
}
