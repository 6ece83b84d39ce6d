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
	"math"

	"github.com/blinklabs-io/hdrcodec/header"
)

// Decide chooses the encoding of h against the current context. It does not
// modify the context
func (c Context) Decide(h header.RawHeader, last bool) Record {
	r := Record{
		MerkleRoot: h.MerkleRoot,
		Nonce:      h.Nonce,
	}
	var bf Bitfield
	// Version
	if idx, ok := c.history.Index(h.Version); ok {
		bf |= Bitfield(idx) // #nosec G115
	} else {
		bf |= Bitfield(VersionCodeLiteral)
		r.Version = h.Version
	}
	// Prev hash is only sent when there is nothing to derive it from
	if c.anchored {
		bf |= BitfieldPrevHashOmitted
	} else {
		r.PrevHash = h.PrevHash
	}
	// Time
	delta := int64(h.Time) - int64(c.previousTime)
	if c.anchored && delta >= minTimeOffset && delta <= maxTimeOffset {
		bf |= BitfieldTimeOffset
		r.TimeOffset = int16(delta)
	} else {
		r.Time = h.Time
	}
	// nBits
	if c.anchored && h.NBits == c.previousNBits {
		bf |= BitfieldNBitsSame
	} else {
		r.NBits = h.NBits
	}
	if last {
		bf |= BitfieldSequenceEnd
	}
	r.Bitfield = bf
	return r
}

// Resolve reconstructs the header described by r against the current
// context. It does not modify the context
func (c Context) Resolve(r Record) (header.RawHeader, error) {
	bf := r.Bitfield
	h := header.RawHeader{
		MerkleRoot: r.MerkleRoot,
		Nonce:      r.Nonce,
	}
	// Version
	if bf.HasVersionLiteral() {
		h.Version = r.Version
	} else {
		version, ok := c.history.At(int(bf.VersionCode()))
		if !ok {
			if !c.anchored {
				return header.RawHeader{}, fmt.Errorf("%w: version", ErrMissingContext)
			}
			return header.RawHeader{}, fmt.Errorf(
				"%w: index %d with %d entries",
				ErrInvalidVersionIndex,
				bf.VersionCode(),
				c.history.Len(),
			)
		}
		h.Version = version
	}
	// Prev hash
	if bf.PrevHashOmitted() {
		if !c.anchored {
			return header.RawHeader{}, fmt.Errorf("%w: prev hash", ErrMissingContext)
		}
		h.PrevHash = c.previousHash
	} else {
		h.PrevHash = r.PrevHash
	}
	// Time
	if bf.HasTimeOffset() {
		if !c.anchored {
			return header.RawHeader{}, fmt.Errorf("%w: time", ErrMissingContext)
		}
		t := int64(c.previousTime) + int64(r.TimeOffset)
		if t < 0 || t > math.MaxUint32 {
			return header.RawHeader{}, fmt.Errorf(
				"%w: %d%+d",
				ErrInvalidTimeOffset,
				c.previousTime,
				r.TimeOffset,
			)
		}
		h.Time = uint32(t)
	} else {
		h.Time = r.Time
	}
	// nBits
	if bf.NBitsSame() {
		if !c.anchored {
			return header.RawHeader{}, fmt.Errorf("%w: nBits", ErrMissingContext)
		}
		h.NBits = c.previousNBits
	} else {
		h.NBits = r.NBits
	}
	return h, nil
}
