// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package codec

// MaxVersionHistory is the number of distinct versions addressable by index
const MaxVersionHistory = 7

// VersionHistory holds the most recent distinct header versions, most recent
// first. It is a value type and copying it copies the history
type VersionHistory struct {
	versions [MaxVersionHistory]int32
	length   int
}

// NewVersionHistory returns a history holding the given versions, most recent
// first. Duplicates and entries past MaxVersionHistory are dropped
func NewVersionHistory(versions ...int32) VersionHistory {
	var v VersionHistory
	for _, version := range versions {
		if v.length == MaxVersionHistory {
			break
		}
		if _, ok := v.Index(version); ok {
			continue
		}
		v.versions[v.length] = version
		v.length++
	}
	return v
}

func (v VersionHistory) Len() int {
	return v.length
}

// At returns the version at the given index
func (v VersionHistory) At(idx int) (int32, bool) {
	if idx < 0 || idx >= v.length {
		return 0, false
	}
	return v.versions[idx], true
}

// Index returns the position of version in the history
func (v VersionHistory) Index(version int32) (int, bool) {
	for i := 0; i < v.length; i++ {
		if v.versions[i] == version {
			return i, true
		}
	}
	return -1, false
}

// Push adds version to the front of the history if it is not already
// present, evicting the oldest entry when full. Existing entries keep their
// position. It reports whether the version was added
func (v *VersionHistory) Push(version int32) bool {
	if _, ok := v.Index(version); ok {
		return false
	}
	if v.length < MaxVersionHistory {
		v.length++
	}
	copy(v.versions[1:v.length], v.versions[:v.length-1])
	v.versions[0] = version
	return true
}

// Versions returns a copy of the history, most recent first
func (v VersionHistory) Versions() []int32 {
	ret := make([]int32, v.length)
	copy(ret, v.versions[:v.length])
	return ret
}
