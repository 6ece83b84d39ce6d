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

package header

import (
	"errors"
	"fmt"
)

var ErrBrokenLinkage = errors.New("header does not link to its predecessor")

// VerifyLinkage checks that each header's PrevHash is the hash of the header
// before it, starting from anchor. It checks nothing else
func VerifyLinkage(anchor RawHeader, headers []RawHeader) error {
	prevHash := anchor.Hash()
	for idx, h := range headers {
		if h.PrevHash != prevHash {
			return fmt.Errorf(
				"%w: index %d: expected prev hash %s, found %s",
				ErrBrokenLinkage,
				idx,
				prevHash,
				h.PrevHash,
			)
		}
		prevHash = h.Hash()
	}
	return nil
}
