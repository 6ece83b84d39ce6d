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
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Record is a single compressed header. Only the fields selected by the
// bitfield are meaningful
type Record struct {
	Bitfield   Bitfield
	Version    int32
	PrevHash   chainhash.Hash
	MerkleRoot chainhash.Hash
	Time       uint32
	TimeOffset int16
	NBits      uint32
	Nonce      uint32
}

// Size returns the encoded length of the record including the bitfield
func (r Record) Size() int {
	return BitfieldSize + r.Bitfield.Layout().Size()
}

// Append appends the encoded record to dst
func (r Record) Append(dst []byte) []byte {
	bf := r.Bitfield
	dst = append(dst, byte(bf))
	if bf.HasVersionLiteral() {
		dst = binary.LittleEndian.AppendUint32(dst, uint32(r.Version)) // #nosec G115
	}
	if !bf.PrevHashOmitted() {
		dst = append(dst, r.PrevHash[:]...)
	}
	dst = append(dst, r.MerkleRoot[:]...)
	if bf.HasTimeOffset() {
		dst = binary.LittleEndian.AppendUint16(dst, uint16(r.TimeOffset)) // #nosec G115
	} else {
		dst = binary.LittleEndian.AppendUint32(dst, r.Time)
	}
	if !bf.NBitsSame() {
		dst = binary.LittleEndian.AppendUint32(dst, r.NBits)
	}
	dst = binary.LittleEndian.AppendUint32(dst, r.Nonce)
	return dst
}

func (r Record) MarshalBinary() ([]byte, error) {
	return r.Append(make([]byte, 0, r.Size())), nil
}

// ParseRecord decodes the record at the start of data and returns it along
// with the number of bytes it occupies. Nothing is consumed on error
func ParseRecord(data []byte) (Record, int, error) {
	if len(data) < BitfieldSize {
		return Record{}, 0, fmt.Errorf("%w: missing bitfield", ErrTruncatedInput)
	}
	bf := Bitfield(data[0])
	size := BitfieldSize + bf.Layout().Size()
	if len(data) < size {
		return Record{}, 0, fmt.Errorf(
			"%w: record needs %d bytes, %d available",
			ErrTruncatedInput,
			size,
			len(data),
		)
	}
	return parsePayload(bf, data[BitfieldSize:size]), size, nil
}

// parsePayload decodes the fields following the bitfield. The caller must
// supply exactly bf.Layout().Size() bytes
func parsePayload(bf Bitfield, payload []byte) Record {
	r := Record{
		Bitfield: bf,
	}
	pos := 0
	if bf.HasVersionLiteral() {
		r.Version = int32(binary.LittleEndian.Uint32(payload[pos:])) // #nosec G115
		pos += VersionSize
	}
	if !bf.PrevHashOmitted() {
		copy(r.PrevHash[:], payload[pos:pos+PrevHashSize])
		pos += PrevHashSize
	}
	copy(r.MerkleRoot[:], payload[pos:pos+MerkleRootSize])
	pos += MerkleRootSize
	if bf.HasTimeOffset() {
		r.TimeOffset = int16(binary.LittleEndian.Uint16(payload[pos:])) // #nosec G115
		pos += TimeOffsetSize
	} else {
		r.Time = binary.LittleEndian.Uint32(payload[pos:])
		pos += TimeLiteralSize
	}
	if !bf.NBitsSame() {
		r.NBits = binary.LittleEndian.Uint32(payload[pos:])
		pos += NBitsSize
	}
	r.Nonce = binary.LittleEndian.Uint32(payload[pos:])
	return r
}
