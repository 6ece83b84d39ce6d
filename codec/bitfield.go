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

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Bitfield is the leading byte of a compressed record
type Bitfield uint8

const (
	BitfieldVersionMask     Bitfield = 0x07
	BitfieldPrevHashOmitted Bitfield = 1 << 3
	BitfieldTimeOffset      Bitfield = 1 << 4
	BitfieldNBitsSame       Bitfield = 1 << 5
	BitfieldSequenceEnd     Bitfield = 1 << 6
	BitfieldReserved        Bitfield = 1 << 7
)

// VersionCodeLiteral marks a record that carries its version as a literal
const VersionCodeLiteral uint8 = 7

// Field sizes within a record
const (
	BitfieldSize    = 1
	VersionSize     = 4
	PrevHashSize    = chainhash.HashSize
	MerkleRootSize  = chainhash.HashSize
	TimeOffsetSize  = 2
	TimeLiteralSize = 4
	NBitsSize       = 4
	NonceSize       = 4
	MinRecordSize   = BitfieldSize + MerkleRootSize + TimeOffsetSize + NonceSize
	MaxRecordSize   = BitfieldSize + VersionSize + PrevHashSize + MerkleRootSize + TimeLiteralSize + NBitsSize + NonceSize
	maxPayloadSize  = MaxRecordSize - BitfieldSize
	minTimeOffset   = -1 << 15
	maxTimeOffset   = 1<<15 - 1
)

func (b Bitfield) VersionCode() uint8 {
	return uint8(b & BitfieldVersionMask)
}

func (b Bitfield) HasVersionLiteral() bool {
	return b.VersionCode() == VersionCodeLiteral
}

func (b Bitfield) PrevHashOmitted() bool {
	return b&BitfieldPrevHashOmitted != 0
}

func (b Bitfield) HasTimeOffset() bool {
	return b&BitfieldTimeOffset != 0
}

func (b Bitfield) NBitsSame() bool {
	return b&BitfieldNBitsSame != 0
}

func (b Bitfield) SequenceEnd() bool {
	return b&BitfieldSequenceEnd != 0
}

func (b Bitfield) Reserved() bool {
	return b&BitfieldReserved != 0
}

// Layout returns the sizes of the optional fields that follow the bitfield
func (b Bitfield) Layout() Layout {
	l := Layout{
		TimeSize: TimeLiteralSize,
	}
	if b.HasVersionLiteral() {
		l.VersionSize = VersionSize
	}
	if !b.PrevHashOmitted() {
		l.PrevHashSize = PrevHashSize
	}
	if b.HasTimeOffset() {
		l.TimeSize = TimeOffsetSize
	}
	if !b.NBitsSame() {
		l.NBitsSize = NBitsSize
	}
	return l
}

func (b Bitfield) String() string {
	return fmt.Sprintf("%08b", uint8(b))
}

// Layout describes which fields a record carries
type Layout struct {
	VersionSize  int
	PrevHashSize int
	TimeSize     int
	NBitsSize    int
}

// Size returns the number of bytes following the bitfield
func (l Layout) Size() int {
	return l.VersionSize + l.PrevHashSize + MerkleRootSize + l.TimeSize + l.NBitsSize + NonceSize
}
