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
	"bytes"
	"encoding/binary"
	"io"
	"math/bits"
	"sort"

	"seehuhn.de/go/fontmerge/internal/fontio"
)

// tableOrder is the order in which tables are stored in a merged font file.
// Tables not in this list are not written.
var tableOrder = []string{
	"cmap", "hmtx", "loca", "head", "OS/2", "hhea", "maxp",
	"cvt ", "fpgm", "post", "prep", "name", "glyf",
}

// writeFont assembles an sfnt file from the given tables.  Each table gets
// its own checksum in the table directory, and the checkSumAdjustment field
// of the "head" table is set last.  The "head" table is modified in place.
func writeFont(tables map[string][]byte) []byte {
	var names []string
	for _, name := range tableOrder {
		if tables[name] != nil {
			names = append(names, name)
		}
	}
	numTables := len(names)

	head := tables["head"]
	if len(head) >= 12 {
		binary.BigEndian.PutUint32(head[8:12], 0)
	}

	type rawRecord struct {
		Tag      [4]byte
		CheckSum uint32
		Offset   uint32
		Length   uint32
	}
	records := make([]rawRecord, numTables)
	offset := uint32(12 + 16*numTables)
	var totalSum uint32
	for i, name := range names {
		body := tables[name]
		sum := fontio.Checksum(body)
		copy(records[i].Tag[:], name)
		records[i].CheckSum = sum
		records[i].Offset = offset
		records[i].Length = uint32(len(body))

		totalSum += sum
		offset += 4 * ((uint32(len(body)) + 3) / 4)
	}
	sort.Slice(records, func(i, j int) bool {
		return bytes.Compare(records[i].Tag[:], records[j].Tag[:]) < 0
	})

	entrySelector := bits.Len(uint(numTables)) - 1
	searchRange := 16 << entrySelector
	header := struct {
		ScalerType    uint32
		NumTables     uint16
		SearchRange   uint16
		EntrySelector uint16
		RangeShift    uint16
	}{
		ScalerType:    scalerTypeTrueType,
		NumTables:     uint16(numTables),
		SearchRange:   uint16(searchRange),
		EntrySelector: uint16(entrySelector),
		RangeShift:    uint16(16*numTables - searchRange),
	}

	buf := bytes.NewBuffer(make([]byte, 0, offset))
	check := &fontio.Check{}
	w := io.MultiWriter(buf, check)
	_ = binary.Write(w, binary.BigEndian, header)
	_ = binary.Write(w, binary.BigEndian, records)
	totalSum += check.Sum()

	if len(head) >= 12 {
		binary.BigEndian.PutUint32(head[8:12], 0xB1B0AFBA-totalSum)
	}

	var pad [3]byte
	for _, name := range names {
		body := tables[name]
		buf.Write(body)
		if k := len(body) % 4; k != 0 {
			buf.Write(pad[:4-k])
		}
	}
	return buf.Bytes()
}
