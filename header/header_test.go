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

package header_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/blinklabs-io/hdrcodec/cbor"
	"github.com/blinklabs-io/hdrcodec/header"
	"github.com/blinklabs-io/hdrcodec/internal/test"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const genesisHashHex = "000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f"

func TestGenesisVector(t *testing.T) {
	raw := test.DecodeHexString(test.GenesisHeaderHex)
	h, err := header.FromBytes(raw)
	require.NoError(t, err)
	assert.Equal(t, test.GenesisHeader(), h)
	assert.Equal(t, raw, h.Bytes())
	assert.Equal(t, genesisHashHex, h.Hash().String())
	assert.Equal(t, *chaincfg.MainNetParams.GenesisHash, h.Hash())
	assert.Equal(t, int32(1), h.Version)
	assert.Equal(t, uint32(1231006505), h.Time)
	assert.Equal(t, uint32(0x1d00ffff), h.NBits)
	assert.Equal(t, uint32(2083236893), h.Nonce)
}

func TestWireConversion(t *testing.T) {
	h := test.GenesisHeader()
	bh := h.ToWire()
	var buf bytes.Buffer
	require.NoError(t, bh.Serialize(&buf))
	assert.Equal(t, h.Bytes(), buf.Bytes())
	assert.Equal(t, bh.BlockHash(), h.Hash())
	assert.Equal(t, h, header.FromWire(bh))
}

func TestFromBytesInvalidLength(t *testing.T) {
	_, err := header.FromBytes(make([]byte, header.Size-1))
	assert.ErrorIs(t, err, header.ErrInvalidLength)
	_, err = header.FromBytes(make([]byte, header.Size+1))
	assert.ErrorIs(t, err, header.ErrInvalidLength)
}

func TestReadWriteAll(t *testing.T) {
	headers := test.BuildChain(test.GenesisHeader(), 5, nil)
	var buf bytes.Buffer
	require.NoError(t, header.WriteAll(&buf, headers))
	assert.Equal(t, len(headers)*header.Size, buf.Len())
	data := buf.Bytes()

	ret, err := header.ReadAll(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, headers, ret)

	_, err = header.ReadAll(bytes.NewReader(data[:len(data)-10]))
	assert.ErrorIs(t, err, header.ErrInvalidLength)

	ret, err = header.ReadAll(bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Empty(t, ret)
}

func TestVerifyLinkage(t *testing.T) {
	anchor := test.GenesisHeader()
	headers := test.BuildChain(anchor, 10, nil)
	require.NoError(t, header.VerifyLinkage(anchor, headers))

	headers[6].Nonce++
	err := header.VerifyLinkage(anchor, headers)
	assert.ErrorIs(t, err, header.ErrBrokenLinkage)
	assert.Contains(t, err.Error(), "index 7")
}

func TestCborRoundTrip(t *testing.T) {
	h := test.BuildChain(test.GenesisHeader(), 1, nil)[0]
	data, err := cbor.Encode(&h)
	require.NoError(t, err)
	// 6 element array
	assert.Equal(t, byte(0x86), data[0])
	var decoded header.RawHeader
	_, err = cbor.Decode(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, h, decoded)
}

func TestJsonRoundTrip(t *testing.T) {
	h := test.GenesisHeader()
	data, err := json.Marshal(h)
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Equal(t, genesisHashHex, fields["hash"])
	assert.Equal(t, "1d00ffff", fields["bits"])
	var decoded header.RawHeader
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, h, decoded)
}

func TestDecodeCborList(t *testing.T) {
	genesis := test.GenesisHeader()
	chain := append([]header.RawHeader{genesis}, test.BuildChain(genesis, 30, nil)...)
	data, err := cbor.EncodeList(chain)
	require.NoError(t, err)
	decoded, err := header.DecodeCborList(data)
	require.NoError(t, err)
	assert.Equal(t, chain, decoded)

	empty, err := cbor.EncodeList([]header.RawHeader{})
	require.NoError(t, err)
	decoded, err = header.DecodeCborList(empty)
	require.NoError(t, err)
	assert.Empty(t, decoded)

	_, err = header.DecodeCborList(append(bytes.Clone(data), 0x00))
	require.ErrorContains(t, err, "trailing")
	_, err = header.DecodeCborList(nil)
	require.Error(t, err)
	// A single header is an array of fields, not of headers
	single, err := cbor.Encode(genesis)
	require.NoError(t, err)
	_, err = header.DecodeCborList(single)
	require.Error(t, err)
}
