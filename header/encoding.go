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
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/blinklabs-io/hdrcodec/cbor"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

type headerCbor struct {
	cbor.StructAsArray
	Version    int32
	PrevHash   []byte
	MerkleRoot []byte
	Time       uint32
	NBits      uint32
	Nonce      uint32
}

func (h RawHeader) MarshalCBOR() ([]byte, error) {
	tmp := headerCbor{
		Version:    h.Version,
		PrevHash:   h.PrevHash[:],
		MerkleRoot: h.MerkleRoot[:],
		Time:       h.Time,
		NBits:      h.NBits,
		Nonce:      h.Nonce,
	}
	return cbor.Encode(&tmp)
}

func (h *RawHeader) UnmarshalCBOR(cborData []byte) error {
	var tmp headerCbor
	if _, err := cbor.Decode(cborData, &tmp); err != nil {
		return err
	}
	if len(tmp.PrevHash) != chainhash.HashSize ||
		len(tmp.MerkleRoot) != chainhash.HashSize {
		return fmt.Errorf(
			"%w: hash fields must be %d bytes",
			ErrInvalidLength,
			chainhash.HashSize,
		)
	}
	h.Version = tmp.Version
	copy(h.PrevHash[:], tmp.PrevHash)
	copy(h.MerkleRoot[:], tmp.MerkleRoot)
	h.Time = tmp.Time
	h.NBits = tmp.NBits
	h.Nonce = tmp.Nonce
	return nil
}

// DecodeCborList parses a CBOR array of headers, as written by
// cbor.EncodeList
func DecodeCborList(data []byte) ([]RawHeader, error) {
	count, err := cbor.ListLength(data)
	if err != nil {
		return nil, fmt.Errorf("decode header list: %w", err)
	}
	ret := make([]RawHeader, 0, min(count, len(data)/cborMinHeaderSize))
	n, err := cbor.Decode(data, &ret)
	if err != nil {
		return nil, fmt.Errorf("decode header list: %w", err)
	}
	if n != len(data) {
		return nil, fmt.Errorf(
			"decode header list: %d trailing bytes after %d headers",
			len(data)-n,
			len(ret),
		)
	}
	return ret, nil
}

// cborMinHeaderSize is the smallest CBOR encoding of a header: the array
// header, two 34-byte hashes and four single-byte integers
const cborMinHeaderSize = 1 + 2*(2+chainhash.HashSize) + 4

// headerJson uses the field names and formatting of bitcoind's getblockheader
type headerJson struct {
	Hash       string `json:"hash,omitempty"`
	Version    int32  `json:"version"`
	PrevHash   string `json:"previousblockhash"`
	MerkleRoot string `json:"merkleroot"`
	Time       uint32 `json:"time"`
	NBits      string `json:"bits"`
	Nonce      uint32 `json:"nonce"`
}

func (h RawHeader) MarshalJSON() ([]byte, error) {
	return json.Marshal(headerJson{
		Hash:       h.Hash().String(),
		Version:    h.Version,
		PrevHash:   h.PrevHash.String(),
		MerkleRoot: h.MerkleRoot.String(),
		Time:       h.Time,
		NBits:      fmt.Sprintf("%08x", h.NBits),
		Nonce:      h.Nonce,
	})
}

func (h *RawHeader) UnmarshalJSON(data []byte) error {
	var tmp headerJson
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	prevHash, err := chainhash.NewHashFromStr(tmp.PrevHash)
	if err != nil {
		return fmt.Errorf("invalid previousblockhash: %w", err)
	}
	merkleRoot, err := chainhash.NewHashFromStr(tmp.MerkleRoot)
	if err != nil {
		return fmt.Errorf("invalid merkleroot: %w", err)
	}
	nBits, err := strconv.ParseUint(tmp.NBits, 16, 32)
	if err != nil {
		return fmt.Errorf("invalid bits: %w", err)
	}
	h.Version = tmp.Version
	h.PrevHash = *prevHash
	h.MerkleRoot = *merkleRoot
	h.Time = tmp.Time
	h.NBits = uint32(nBits)
	h.Nonce = tmp.Nonce
	return nil
}
