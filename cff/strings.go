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

import (
	"fmt"
	"sync"
)

// cffStrings holds the contents of a Strings INDEX.
type cffStrings struct {
	data []string
	rev  map[string]int32
}

func newStrings(data [][]byte) *cffStrings {
	ss := &cffStrings{
		data: make([]string, len(data)),
	}
	for i, s := range data {
		ss.data[i] = string(s)
	}
	return ss
}

func (ss *cffStrings) get(sid int32) (string, error) {
	if sid < nStdStrings {
		if sid < 0 {
			return "", invalidSince(fmt.Sprintf("invalid SID %d", sid))
		}
		return stdStrings[sid], nil
	}
	sid -= nStdStrings
	if int(sid) >= len(ss.data) {
		return "", invalidSince(fmt.Sprintf("invalid SID %d", sid+nStdStrings))
	}
	return ss.data[sid], nil
}

// lookup returns the SID for s, adding s to the table if needed.
func (ss *cffStrings) lookup(s string) int32 {
	if sid, ok := stdStringIndex()[s]; ok {
		return sid
	}
	if ss.rev == nil {
		ss.rev = make(map[string]int32, len(ss.data))
		for i, si := range ss.data {
			if _, seen := ss.rev[si]; !seen {
				ss.rev[si] = int32(i) + nStdStrings
			}
		}
	}
	if sid, ok := ss.rev[s]; ok {
		return sid
	}
	sid := int32(len(ss.data)) + nStdStrings
	ss.data = append(ss.data, s)
	ss.rev[s] = sid
	return sid
}

func (ss *cffStrings) encode() [][]byte {
	res := make([][]byte, len(ss.data))
	for i, s := range ss.data {
		res[i] = []byte(s)
	}
	return res
}

var stdStringIndex = sync.OnceValue(func() map[string]int32 {
	res := make(map[string]int32, nStdStrings)
	for i, s := range stdStrings {
		res[s] = int32(i)
	}
	return res
})
