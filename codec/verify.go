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

import (
	"fmt"

	"github.com/blinklabs-io/hdrcodec/header"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// VerifyHash returns ErrHashMismatch when actual differs from expected
func VerifyHash(expected chainhash.Hash, actual chainhash.Hash) error {
	if expected != actual {
		return fmt.Errorf(
			"%w: expected %s, got %s",
			ErrHashMismatch,
			expected,
			actual,
		)
	}
	return nil
}

// VerifyTip checks that the last of headers hashes to expected, for callers
// that learned the tip hash out of band
func VerifyTip(headers []header.RawHeader, expected chainhash.Hash) error {
	if len(headers) == 0 {
		return fmt.Errorf("%w: no headers", ErrHashMismatch)
	}
	return VerifyHash(expected, headers[len(headers)-1].Hash())
}
