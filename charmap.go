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

// charMap assigns output indices to character keys.  Output indices are
// character codes for simple fonts and CIDs for composite fonts.
//
// Once a key has been assigned an index, the assignment never changes.
type charMap struct {
	index map[string]int
	key   map[int]string
}

func newCharMap() *charMap {
	return &charMap{
		index: make(map[string]int),
		key:   make(map[int]string),
	}
}

func (cm *charMap) size() int {
	return len(cm.index)
}

func (cm *charMap) lookup(key string) (int, bool) {
	idx, ok := cm.index[key]
	return idx, ok
}

func (cm *charMap) used(idx int) bool {
	_, ok := cm.key[idx]
	return ok
}

func (cm *charMap) set(key string, idx int) {
	cm.index[key] = idx
	cm.key[idx] = key
}

// stagedMap records the assignments made while a new source is examined,
// so that they can be discarded if the source cannot be merged.
type stagedMap struct {
	base  *charMap
	added *charMap
}

func (sm *stagedMap) lookup(key string) (int, bool) {
	if idx, ok := sm.base.lookup(key); ok {
		return idx, true
	}
	return sm.added.lookup(key)
}

func (sm *stagedMap) used(idx int) bool {
	return sm.base.used(idx) || sm.added.used(idx)
}

func (sm *stagedMap) size() int {
	return sm.base.size() + sm.added.size()
}

func (sm *stagedMap) commit() {
	for key, idx := range sm.added.index {
		sm.base.set(key, idx)
	}
}
