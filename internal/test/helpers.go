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

package test

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/blinklabs-io/hdrcodec/header"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Mainnet genesis header in its serialized form
const GenesisHeaderHex = "01000000" +
	"0000000000000000000000000000000000000000000000000000000000000000" +
	"3ba3edfd7a7b12b27ac72c3e67768f617fc81bc3888a51323a9fb8aa4b1e5e4a" +
	"29ab5f49" + "ffff001d" + "1dac2b7c"

// Block target spacing used by the synthetic chain builder
const BlockSpacing = 600

// DecodeHexString is a helper function for tests that decodes hex strings. It doesn't return
// an error value, which makes it usable inline.
func DecodeHexString(hexData string) []byte {
	// Strip off any leading/trailing whitespace in hex string
	hexData = strings.TrimSpace(hexData)
	decoded, err := hex.DecodeString(hexData)
	if err != nil {
		panic(fmt.Sprintf("error decoding hex: %s", err))
	}
	return decoded
}

// GenesisHeader returns the mainnet genesis header
func GenesisHeader() header.RawHeader {
	return header.FromWire(&chaincfg.MainNetParams.GenesisBlock.Header)
}

// BuildChain returns count headers that extend anchor. Each header keeps the
// version and nBits of its predecessor and advances the time by BlockSpacing.
// The optional mutate function may change any field other than PrevHash
// before the header is linked to by its successor
func BuildChain(
	anchor header.RawHeader,
	count int,
	mutate func(idx int, h *header.RawHeader),
) []header.RawHeader {
	ret := make([]header.RawHeader, 0, count)
	prev := anchor
	for i := 0; i < count; i++ {
		var seed [8]byte
		binary.LittleEndian.PutUint64(seed[:], uint64(i)) // #nosec G115
		h := header.RawHeader{
			Version:    prev.Version,
			PrevHash:   prev.Hash(),
			MerkleRoot: chainhash.HashH(seed[:]),
			Time:       prev.Time + BlockSpacing,
			NBits:      prev.NBits,
			Nonce:      uint32(i) * 2654435761, // #nosec G115
		}
		if mutate != nil {
			mutate(i, &h)
		}
		ret = append(ret, h)
		prev = h
	}
	return ret
}
