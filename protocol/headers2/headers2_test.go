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

package headers2

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/blinklabs-io/hdrcodec/codec"
	"github.com/blinklabs-io/hdrcodec/header"
	"github.com/blinklabs-io/hdrcodec/internal/test"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaders2RoundTrip(t *testing.T) {
	anchor := test.GenesisHeader()
	headers := test.BuildChain(anchor, 50, nil)
	msg, err := NewSender(&anchor).Encode(headers)
	require.NoError(t, err)
	assert.Equal(t, 50, msg.Count())

	payload, err := msg.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, byte(50), payload[0])
	assert.Len(t, payload, 1+50*codec.MinRecordSize)

	decodedMsg := NewMsgHeaders2()
	require.NoError(t, decodedMsg.UnmarshalBinary(payload))
	assert.Equal(t, msg.Count(), decodedMsg.Count())
	assert.Equal(t, msg.RecordData(), decodedMsg.RecordData())

	decoded, err := NewReceiver(&anchor).Decode(decodedMsg)
	require.NoError(t, err)
	assert.Equal(t, headers, decoded)
}

func TestSessionAcrossMessages(t *testing.T) {
	anchor := test.GenesisHeader()
	headers := test.BuildChain(anchor, 30, nil)
	sender := NewSender(nil)
	receiver := NewReceiver(nil)
	for batch := 0; batch < 3; batch++ {
		chunk := headers[batch*10 : (batch+1)*10]
		msg, err := sender.Encode(chunk)
		require.NoError(t, err)
		records, err := msg.Records()
		require.NoError(t, err)
		require.Len(t, records, 10)
		if batch == 0 {
			// Nothing to derive the first record from
			assert.Equal(t, codec.MaxRecordSize, records[0].Size())
		} else {
			assert.Equal(t, codec.MinRecordSize, records[0].Size())
		}
		assert.True(t, records[9].Bitfield.SequenceEnd())
		decoded, err := receiver.Decode(msg)
		require.NoError(t, err)
		assert.Equal(t, chunk, decoded)
	}
	tip, ok := receiver.Tip()
	assert.True(t, ok)
	assert.Equal(t, headers[29].Hash(), tip)
	stats := sender.Stats()
	assert.Equal(t, 30, stats.Headers)
}

func TestReceiverRequiresFullFirstRecord(t *testing.T) {
	anchor := test.GenesisHeader()
	headers := test.BuildChain(anchor, 5, nil)
	msg, err := NewSender(&anchor).Encode(headers)
	require.NoError(t, err)
	decoded, err := NewReceiver(nil).Decode(msg)
	assert.ErrorIs(t, err, codec.ErrMissingContext)
	assert.Empty(t, decoded)
	_, ok := NewReceiver(nil).Tip()
	assert.False(t, ok)
}

func TestTooManyHeaders(t *testing.T) {
	anchor := test.GenesisHeader()
	headers := make([]header.RawHeader, MaxHeaders2PerMsg+1)
	_, err := NewSender(&anchor).Encode(headers)
	assert.ErrorIs(t, err, ErrTooManyHeaders)

	var buf bytes.Buffer
	require.NoError(t, wire.WriteVarInt(&buf, wire.ProtocolVersion, MaxHeaders2PerMsg+1))
	assert.ErrorIs(t, NewMsgHeaders2().UnmarshalBinary(buf.Bytes()), ErrTooManyHeaders)
}

func TestMalformedPayload(t *testing.T) {
	anchor := test.GenesisHeader()
	msg, err := NewSender(&anchor).Encode(test.BuildChain(anchor, 3, nil))
	require.NoError(t, err)
	payload, err := msg.MarshalBinary()
	require.NoError(t, err)

	err = NewMsgHeaders2().UnmarshalBinary(payload[:len(payload)-1])
	assert.ErrorIs(t, err, codec.ErrTruncatedInput)

	err = NewMsgHeaders2().UnmarshalBinary(append(payload, 0x00))
	assert.ErrorIs(t, err, ErrTrailingData)
}

func TestEarlySequenceEnd(t *testing.T) {
	anchor := test.GenesisHeader()
	headers := test.BuildChain(anchor, 2, nil)
	msg := NewMsgHeaders2()
	enc := codec.NewContext(anchor)
	for _, h := range headers {
		require.NoError(t, msg.AddRecord(enc.Decide(h, true)))
		enc.Advance(h)
	}
	decoded, err := NewReceiver(&anchor).Decode(msg)
	assert.ErrorIs(t, err, ErrEarlySequenceEnd)
	assert.Equal(t, headers[:1], decoded)
}

func TestWriteMessage(t *testing.T) {
	anchor := test.GenesisHeader()
	msg, err := NewSender(&anchor).Encode(test.BuildChain(anchor, 4, nil))
	require.NoError(t, err)
	payload, err := msg.MarshalBinary()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteMessage(&buf, msg, wire.MainNet))
	data := buf.Bytes()
	require.Len(t, data, wire.MessageHeaderSize+len(payload))
	assert.Equal(t, uint32(wire.MainNet), binary.LittleEndian.Uint32(data[0:4]))
	assert.Equal(t, CmdHeaders2, string(bytes.TrimRight(data[4:16], "\x00")))
	assert.Equal(t, uint32(len(payload)), binary.LittleEndian.Uint32(data[16:20]))
	assert.Equal(t, payload, data[wire.MessageHeaderSize:])
}

func TestReadMessage(t *testing.T) {
	anchor := test.GenesisHeader()
	headers := test.BuildChain(anchor, 30, nil)
	sender := NewSender(&anchor)
	var buf bytes.Buffer
	for i := 0; i < 3; i++ {
		msg, err := sender.Encode(headers[i*10 : (i+1)*10])
		require.NoError(t, err)
		require.NoError(t, WriteMessage(&buf, msg, wire.TestNet3))
	}
	receiver := NewReceiver(&anchor)
	var decoded []header.RawHeader
	for {
		msg, err := ReadMessage(&buf, wire.TestNet3)
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		ret, err := receiver.Decode(msg)
		require.NoError(t, err)
		decoded = append(decoded, ret...)
	}
	assert.Equal(t, headers, decoded)
}

func TestReadMessageErrors(t *testing.T) {
	anchor := test.GenesisHeader()
	msg, err := NewSender(&anchor).Encode(test.BuildChain(anchor, 2, nil))
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, WriteMessage(&buf, msg, wire.MainNet))
	framed := buf.Bytes()

	_, err = ReadMessage(bytes.NewReader(framed), wire.TestNet3)
	require.ErrorIs(t, err, ErrUnexpectedMessage)

	corrupt := bytes.Clone(framed)
	corrupt[len(corrupt)-1] ^= 0xff
	_, err = ReadMessage(bytes.NewReader(corrupt), wire.MainNet)
	require.ErrorIs(t, err, ErrChecksumMismatch)

	_, err = ReadMessage(bytes.NewReader(framed[:len(framed)-1]), wire.MainNet)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)

	var other bytes.Buffer
	require.NoError(t, WriteMessage(&other, NewMsgGetHeaders2(), wire.MainNet))
	_, err = ReadMessage(&other, wire.MainNet)
	require.ErrorIs(t, err, ErrUnexpectedMessage)
}

func TestGetHeaders2(t *testing.T) {
	msg := NewMsgGetHeaders2()
	msg.ProtocolVersion = wire.ProtocolVersion
	locator := test.GenesisHeader().Hash()
	require.NoError(t, msg.AddBlockLocatorHash(&locator))
	msg.HashStop = chainhash.Hash{}
	assert.Equal(t, CmdGetHeaders2, msg.Command())

	var buf bytes.Buffer
	require.NoError(t, msg.BtcEncode(&buf, wire.ProtocolVersion, wire.BaseEncoding))
	decoded := NewMsgGetHeaders2()
	require.NoError(t, decoded.BtcDecode(&buf, wire.ProtocolVersion, wire.BaseEncoding))
	assert.Equal(t, msg.ProtocolVersion, decoded.ProtocolVersion)
	require.Len(t, decoded.BlockLocatorHashes, 1)
	assert.Equal(t, locator, *decoded.BlockLocatorHashes[0])

	var framed bytes.Buffer
	require.NoError(t, WriteMessage(&framed, msg, wire.TestNet3))
	assert.Equal(t, CmdGetHeaders2, string(bytes.TrimRight(framed.Bytes()[4:16], "\x00")))
}
