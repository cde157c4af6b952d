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

package fontio

import (
	"fmt"

	"seehuhn.de/go/sfnt/parser"
)

// CreateNewRef encodes value as a CFF DICT integer operand, followed by the
// operator bytes op.
//
// If forcedLength is non-zero, the operand is encoded using exactly that
// many bytes (1, 2, 3 or 5), so that the result can replace an existing
// operand in place.  An error is returned if the value cannot be represented
// with the requested width.
func CreateNewRef(value int32, op []byte, forcedLength int) ([]byte, error) {
	length := forcedLength
	if length == 0 {
		length = IntLength(value)
	}

	res := make([]byte, 0, length+len(op))
	switch length {
	case 1:
		if value < -107 || value > 107 {
			return nil, fmt.Errorf("fontio: %d does not fit into 1 byte", value)
		}
		res = append(res, byte(value+139))
	case 2:
		switch {
		case value >= 108 && value <= 1131:
			v := value - 108
			res = append(res, byte(v>>8+247), byte(v))
		case value >= -1131 && value <= -108:
			v := -value - 108
			res = append(res, byte(v>>8+251), byte(v))
		default:
			return nil, fmt.Errorf("fontio: %d does not fit into 2 bytes", value)
		}
	case 3:
		if value < -32768 || value > 32767 {
			return nil, fmt.Errorf("fontio: %d does not fit into 3 bytes", value)
		}
		res = append(res, 28, byte(value>>8), byte(value))
	case 5:
		v := uint32(value)
		res = append(res, 29, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
	default:
		return nil, fmt.Errorf("fontio: invalid operand length %d", length)
	}
	return append(res, op...), nil
}

// IntLength returns the number of bytes of the shortest DICT encoding of x.
func IntLength(x int32) int {
	switch {
	case x >= -107 && x <= 107:
		return 1
	case x >= -1131 && x <= 1131:
		return 2
	case x >= -32768 && x <= 32767:
		return 3
	default:
		return 5
	}
}

// DecodeInt decodes the DICT integer operand at the start of buf.
// It returns the value and the number of bytes used.
func DecodeInt(buf []byte) (int32, int, error) {
	if len(buf) == 0 {
		return 0, 0, errCorruptOperand
	}
	b0 := buf[0]
	switch {
	case b0 == 28:
		if len(buf) < 3 {
			return 0, 0, errCorruptOperand
		}
		return int32(int16(uint16(buf[1])<<8 | uint16(buf[2]))), 3, nil
	case b0 == 29:
		if len(buf) < 5 {
			return 0, 0, errCorruptOperand
		}
		v := uint32(buf[1])<<24 | uint32(buf[2])<<16 | uint32(buf[3])<<8 | uint32(buf[4])
		return int32(v), 5, nil
	case b0 >= 32 && b0 <= 246:
		return int32(b0) - 139, 1, nil
	case b0 >= 247 && b0 <= 250:
		if len(buf) < 2 {
			return 0, 0, errCorruptOperand
		}
		return (int32(b0)-247)*256 + int32(buf[1]) + 108, 2, nil
	case b0 >= 251 && b0 <= 254:
		if len(buf) < 2 {
			return 0, 0, errCorruptOperand
		}
		return -(int32(b0)-251)*256 - int32(buf[1]) - 108, 2, nil
	}
	return 0, 0, errCorruptOperand
}

// PatchInt overwrites the integer operand of the given width at position pos
// of buf with value.  The width of the operand does not change.
func PatchInt(buf []byte, pos, width int, value int32) error {
	if pos < 0 || pos+width > len(buf) {
		return errCorruptOperand
	}
	enc, err := CreateNewRef(value, nil, width)
	if err != nil {
		return err
	}
	copy(buf[pos:], enc)
	return nil
}

var errCorruptOperand = &parser.InvalidFontError{SubSystem: "cff/dict", Reason: "corrupt integer operand"}
