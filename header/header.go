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

// Package header provides the fixed 80-byte block header model shared by the
// compressed header codec and its collaborators
package header

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// Size is the length of a serialized header
const Size = 80

// Field offsets within the serialized header
const (
	offsetVersion    = 0
	offsetPrevHash   = 4
	offsetMerkleRoot = 36
	offsetTime       = 68
	offsetNBits      = 72
	offsetNonce      = 76
)

var ErrInvalidLength = errors.New("invalid header length")

// RawHeader is an uncompressed block header
type RawHeader struct {
	Version    int32
	PrevHash   chainhash.Hash
	MerkleRoot chainhash.Hash
	Time       uint32
	NBits      uint32
	Nonce      uint32
}

// FromBytes parses a header from exactly Size bytes
func FromBytes(data []byte) (RawHeader, error) {
	var h RawHeader
	if err := h.UnmarshalBinary(data); err != nil {
		return RawHeader{}, err
	}
	return h, nil
}

// FromWire converts a btcd wire header
func FromWire(bh *wire.BlockHeader) RawHeader {
	return RawHeader{
		Version:    bh.Version,
		PrevHash:   bh.PrevBlock,
		MerkleRoot: bh.MerkleRoot,
		Time:       uint32(bh.Timestamp.Unix()), // #nosec G115
		NBits:      bh.Bits,
		Nonce:      bh.Nonce,
	}
}

// ToWire converts the header to its btcd wire representation
func (h RawHeader) ToWire() *wire.BlockHeader {
	return &wire.BlockHeader{
		Version:    h.Version,
		PrevBlock:  h.PrevHash,
		MerkleRoot: h.MerkleRoot,
		Timestamp:  h.Timestamp(),
		Bits:       h.NBits,
		Nonce:      h.Nonce,
	}
}

// AppendBytes appends the canonical serialization of the header to dst
func (h RawHeader) AppendBytes(dst []byte) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, uint32(h.Version)) // #nosec G115
	dst = append(dst, h.PrevHash[:]...)
	dst = append(dst, h.MerkleRoot[:]...)
	dst = binary.LittleEndian.AppendUint32(dst, h.Time)
	dst = binary.LittleEndian.AppendUint32(dst, h.NBits)
	dst = binary.LittleEndian.AppendUint32(dst, h.Nonce)
	return dst
}

// Bytes returns the canonical 80-byte serialization of the header
func (h RawHeader) Bytes() []byte {
	return h.AppendBytes(make([]byte, 0, Size))
}

func (h RawHeader) MarshalBinary() ([]byte, error) {
	return h.Bytes(), nil
}

func (h *RawHeader) UnmarshalBinary(data []byte) error {
	if len(data) != Size {
		return fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidLength, Size, len(data))
	}
	h.Version = int32(binary.LittleEndian.Uint32(data[offsetVersion:])) // #nosec G115
	copy(h.PrevHash[:], data[offsetPrevHash:offsetMerkleRoot])
	copy(h.MerkleRoot[:], data[offsetMerkleRoot:offsetTime])
	h.Time = binary.LittleEndian.Uint32(data[offsetTime:])
	h.NBits = binary.LittleEndian.Uint32(data[offsetNBits:])
	h.Nonce = binary.LittleEndian.Uint32(data[offsetNonce:])
	return nil
}

// Hash returns the double SHA-256 of the serialized header. The result is
// never cached, since RawHeader is a plain value
func (h RawHeader) Hash() chainhash.Hash {
	var buf [Size]byte
	return chainhash.DoubleHashH(h.AppendBytes(buf[:0]))
}

// Timestamp returns the header time as a time.Time
func (h RawHeader) Timestamp() time.Time {
	return time.Unix(int64(h.Time), 0)
}

func (h RawHeader) String() string {
	return fmt.Sprintf(
		"header{hash: %s, version: %#x, time: %d, bits: %#x, nonce: %d}",
		h.Hash(),
		uint32(h.Version), // #nosec G115
		h.Time,
		h.NBits,
		h.Nonce,
	)
}

// Read reads a single serialized header from r
func Read(r io.Reader) (RawHeader, error) {
	var buf [Size]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return RawHeader{}, err
	}
	return FromBytes(buf[:])
}

// ReadAll reads back-to-back serialized headers until r is exhausted. A
// trailing partial header is an error
func ReadAll(r io.Reader) ([]RawHeader, error) {
	var ret []RawHeader
	for {
		h, err := Read(r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return ret, nil
			}
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, fmt.Errorf(
					"%w: trailing partial header after %d headers",
					ErrInvalidLength,
					len(ret),
				)
			}
			return nil, err
		}
		ret = append(ret, h)
	}
}

// WriteAll writes the serialized form of each header to w
func WriteAll(w io.Writer, headers []RawHeader) error {
	buf := make([]byte, 0, Size*len(headers))
	for _, h := range headers {
		buf = h.AppendBytes(buf)
	}
	_, err := w.Write(buf)
	return err
}
