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

package type1

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
)

// segments holds the three parts of a Type 1 font file.
type segments struct {
	clear   []byte // cleartext part, up to and including "eexec"
	private []byte // eexec-encrypted binary data
	trailer []byte // zeros and cleartomark
}

const (
	pfbMarker = 0x80
	pfbASCII  = 1
	pfbBinary = 2
	pfbEOF    = 3
)

// readSegments splits a font file in PFB or PFA format.
func readSegments(data []byte) (*segments, error) {
	if len(data) > 0 && data[0] == pfbMarker {
		return readPFB(data)
	}
	return readPFA(data)
}

func readPFB(data []byte) (*segments, error) {
	seg := &segments{}
	seenBinary := false
	for len(data) > 0 {
		if data[0] != pfbMarker || len(data) < 2 {
			return nil, invalid("bad PFB segment marker")
		}
		tp := data[1]
		if tp == pfbEOF {
			break
		}
		if len(data) < 6 {
			return nil, invalid("truncated PFB segment header")
		}
		n := binary.LittleEndian.Uint32(data[2:6])
		data = data[6:]
		if uint64(n) > uint64(len(data)) {
			return nil, invalid("truncated PFB segment")
		}
		body := data[:n]
		data = data[n:]

		switch {
		case tp == pfbASCII && !seenBinary:
			seg.clear = append(seg.clear, body...)
		case tp == pfbASCII:
			seg.trailer = append(seg.trailer, body...)
		case tp == pfbBinary:
			seenBinary = true
			seg.private = append(seg.private, body...)
		default:
			return nil, invalid("unknown PFB segment type")
		}
	}
	if !seenBinary {
		return nil, invalid("missing encrypted PFB segment")
	}
	return seg, nil
}

func readPFA(data []byte) (*segments, error) {
	idx := bytes.Index(data, []byte("eexec"))
	if idx < 0 {
		return nil, invalid("missing eexec section")
	}
	start := idx + len("eexec")
	for start < len(data) && isSpace(data[start]) {
		start++
	}

	// The trailer consists of 512 zeros, usually with line breaks,
	// followed by cleartomark.
	end := len(data)
	if k := bytes.LastIndex(data, []byte("cleartomark")); k >= start {
		end = trailerStart(data, start, k)
	}

	seg := &segments{
		clear:   data[:start],
		private: data[start:end],
		trailer: data[end:],
	}
	if isHex(seg.private) {
		bin, err := decodeHex(seg.private)
		if err != nil {
			return nil, err
		}
		seg.private = bin
	}
	return seg, nil
}

// trailerStart moves back from the cleartomark at k over the lines which
// consist only of zeros.
func trailerStart(data []byte, start, k int) int {
	end := k
	for end > start {
		j := end
		for j > start && isSpace(data[j-1]) {
			j--
		}
		ls := j
		for ls > start && data[ls-1] == '0' {
			ls--
		}
		if ls == j || ls > start && !isSpace(data[ls-1]) {
			return j
		}
		end = ls
	}
	return end
}

// isHex reports whether the eexec section uses the hexadecimal form.
// Following the Type 1 specification, only the first four bytes are
// examined.
func isHex(data []byte) bool {
	if len(data) < 4 {
		return false
	}
	for _, c := range data[:4] {
		if !isHexDigit(c) {
			return false
		}
	}
	return true
}

func isHexDigit(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

func decodeHex(data []byte) ([]byte, error) {
	digits := make([]byte, 0, len(data))
	for _, c := range data {
		if isHexDigit(c) {
			digits = append(digits, c)
		} else if !isSpace(c) {
			return nil, invalid("invalid character in hex eexec section")
		}
	}
	if len(digits)%2 != 0 {
		digits = append(digits, '0')
	}
	res := make([]byte, len(digits)/2)
	_, err := hex.Decode(res, digits)
	if err != nil {
		return nil, invalid(err.Error())
	}
	return res, nil
}

// defaultTrailer is used when the first font has no trailer.
var defaultTrailer = func() []byte {
	var buf bytes.Buffer
	for range 8 {
		buf.Write(bytes.Repeat([]byte{'0'}, 64))
		buf.WriteByte('\n')
	}
	buf.WriteString("cleartomark\n")
	return buf.Bytes()
}()

// writePFB encodes the segments in PFB format.
func (seg *segments) writePFB() []byte {
	trailer := seg.trailer
	if len(bytes.TrimSpace(trailer)) == 0 {
		trailer = defaultTrailer
	}

	n := len(seg.clear) + len(seg.private) + len(trailer) + 3*6 + 2
	buf := make([]byte, 0, n)
	appendSeg := func(tp byte, body []byte) {
		buf = append(buf, pfbMarker, tp)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(body)))
		buf = append(buf, body...)
	}
	appendSeg(pfbASCII, seg.clear)
	appendSeg(pfbBinary, seg.private)
	appendSeg(pfbASCII, trailer)
	buf = append(buf, pfbMarker, pfbEOF)
	return buf
}
