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

package cff

import "seehuhn.de/go/fontmerge/internal/fontio"

// cffDict is a decoded CFF DICT.  Operands are kept in their original
// binary form, so that entries can be copied without changes.
type cffDict []dictEntry

type dictEntry struct {
	op   dictOp
	args [][]byte
}

func decodeDict(buf []byte) (cffDict, error) {
	var res cffDict
	var stack [][]byte

	for len(buf) > 0 {
		b0 := buf[0]
		var n int
		switch {
		case b0 == 12:
			if len(buf) < 2 {
				return nil, errCorruptDict
			}
			res = append(res, dictEntry{op: dictOp(b0)<<8 + dictOp(buf[1]), args: stack})
			stack = nil
			buf = buf[2:]
			continue
		case b0 <= 21:
			res = append(res, dictEntry{op: dictOp(b0), args: stack})
			stack = nil
			buf = buf[1:]
			continue
		case b0 == 30:
			n = floatLength(buf)
			if n == 0 {
				return nil, errCorruptDict
			}
		default: // values 22–27, 31, and 255 are reserved
			_, k, err := fontio.DecodeInt(buf)
			if err != nil {
				return nil, errCorruptDict
			}
			n = k
		}
		stack = append(stack, buf[:n])
		buf = buf[n:]
	}

	if len(stack) > 0 {
		return nil, errCorruptDict
	}
	return res, nil
}

// floatLength returns the length of the real number operand at the start of
// buf, including the leading 0x1e byte.  If the operand is incomplete, 0 is
// returned.
func floatLength(buf []byte) int {
	for i := 1; i < len(buf); i++ {
		if buf[i]&0x0F == 0x0F || buf[i]>>4 == 0x0F {
			return i + 1
		}
	}
	return 0
}

func (d cffDict) find(op dictOp) ([][]byte, bool) {
	for _, e := range d {
		if e.op == op {
			return e.args, true
		}
	}
	return nil, false
}

func (d cffDict) has(op dictOp) bool {
	_, ok := d.find(op)
	return ok
}

func (d cffDict) getInt(op dictOp, defVal int32) int32 {
	args, ok := d.find(op)
	if !ok || len(args) != 1 {
		return defVal
	}
	x, _, err := fontio.DecodeInt(args[0])
	if err != nil {
		return defVal
	}
	return x
}

func (d cffDict) getPair(op dictOp) (int32, int32, bool) {
	args, ok := d.find(op)
	if !ok || len(args) != 2 {
		return 0, 0, false
	}
	x, _, err := fontio.DecodeInt(args[0])
	if err != nil {
		return 0, 0, false
	}
	y, _, err := fontio.DecodeInt(args[1])
	if err != nil {
		return 0, 0, false
	}
	return x, y, true
}

// appendEntries appends the binary form of all entries except for the
// operators listed in skip.
func (d cffDict) appendEntries(buf []byte, skip ...dictOp) []byte {
entryLoop:
	for _, e := range d {
		for _, op := range skip {
			if e.op == op {
				continue entryLoop
			}
		}
		for _, arg := range e.args {
			buf = append(buf, arg...)
		}
		buf = append(buf, e.op.bytes()...)
	}
	return buf
}

// appendRef appends an entry for op with numArgs five-byte integer operands
// which can later be filled in using [fontio.PatchInt].  The position of the
// first operand is returned.
func appendRef(buf []byte, op dictOp, numArgs int, values ...int32) ([]byte, int) {
	pos := len(buf)
	for i := 0; i < numArgs; i++ {
		var val int32
		if i < len(values) {
			val = values[i]
		}
		var opBytes []byte
		if i == numArgs-1 {
			opBytes = op.bytes()
		}
		enc, _ := fontio.CreateNewRef(val, opBytes, 5)
		buf = append(buf, enc...)
	}
	return buf, pos
}

type dictOp uint16

func (d dictOp) bytes() []byte {
	if d > 255 {
		return []byte{12, byte(d)}
	}
	return []byte{byte(d)}
}

const (
	// top DICT operators
	opCharset        dictOp = 0x000F
	opEncoding       dictOp = 0x0010
	opCharStrings    dictOp = 0x0011
	opPrivate        dictOp = 0x0012
	opCharstringType dictOp = 0x0C06
	opSyntheticBase  dictOp = 0x0C14
	opROS            dictOp = 0x0C1E
	opCIDCount       dictOp = 0x0C22
	opFDArray        dictOp = 0x0C24
	opFDSelect       dictOp = 0x0C25

	// private DICT operators
	opSubrs dictOp = 0x0013 // Offset (self) to local subrs
)

var errCorruptDict = invalidSince("invalid DICT")
