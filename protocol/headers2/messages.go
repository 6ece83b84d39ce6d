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
	"fmt"
	"io"

	"github.com/blinklabs-io/hdrcodec/codec"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// MsgHeaders2 carries a batch of compressed header records. The records are
// kept in their encoded form, since resolving them requires the receiving
// session's context
type MsgHeaders2 struct {
	count   int
	records []byte
}

// NewMsgHeaders2 returns an empty headers2 message
func NewMsgHeaders2() *MsgHeaders2 {
	return &MsgHeaders2{}
}

// AddRecord appends an encoded record to the message
func (m *MsgHeaders2) AddRecord(r codec.Record) error {
	if m.count+1 > MaxHeaders2PerMsg {
		return fmt.Errorf(
			"%w: max %d",
			ErrTooManyHeaders,
			MaxHeaders2PerMsg,
		)
	}
	m.records = r.Append(m.records)
	m.count++
	return nil
}

// Count returns the number of records in the message
func (m *MsgHeaders2) Count() int {
	return m.count
}

// RecordData returns the encoded records back to back
func (m *MsgHeaders2) RecordData() []byte {
	return m.records
}

// Records parses the encoded records. Parsing does not need a context
func (m *MsgHeaders2) Records() ([]codec.Record, error) {
	ret := make([]codec.Record, 0, m.count)
	data := m.records
	for len(data) > 0 {
		r, n, err := codec.ParseRecord(data)
		if err != nil {
			return nil, err
		}
		ret = append(ret, r)
		data = data[n:]
	}
	return ret, nil
}

// BtcDecode decodes r into the receiver. Each record is split off using only
// its bitfield
func (m *MsgHeaders2) BtcDecode(r io.Reader, pver uint32, _ wire.MessageEncoding) error {
	count, err := wire.ReadVarInt(r, pver)
	if err != nil {
		return err
	}
	if count > MaxHeaders2PerMsg {
		return fmt.Errorf(
			"%w: %d, max %d",
			ErrTooManyHeaders,
			count,
			MaxHeaders2PerMsg,
		)
	}
	records := make([]byte, 0, int(count)*codec.MinRecordSize) // #nosec G115
	var buf [codec.MaxRecordSize]byte
	for i := 0; i < int(count); i++ { // #nosec G115
		if _, err := io.ReadFull(r, buf[:codec.BitfieldSize]); err != nil {
			return fmt.Errorf("record %d: %w", i, truncated(err))
		}
		size := codec.BitfieldSize + codec.Bitfield(buf[0]).Layout().Size()
		if _, err := io.ReadFull(r, buf[codec.BitfieldSize:size]); err != nil {
			return fmt.Errorf("record %d: %w", i, truncated(err))
		}
		records = append(records, buf[:size]...)
	}
	m.count = int(count) // #nosec G115
	m.records = records
	return nil
}

// BtcEncode encodes the receiver to w
func (m *MsgHeaders2) BtcEncode(w io.Writer, pver uint32, _ wire.MessageEncoding) error {
	if m.count > MaxHeaders2PerMsg {
		return fmt.Errorf(
			"%w: %d, max %d",
			ErrTooManyHeaders,
			m.count,
			MaxHeaders2PerMsg,
		)
	}
	if err := wire.WriteVarInt(w, pver, uint64(m.count)); err != nil {
		return err
	}
	_, err := w.Write(m.records)
	return err
}

func (m *MsgHeaders2) Command() string {
	return CmdHeaders2
}

func (m *MsgHeaders2) MaxPayloadLength(pver uint32) uint32 {
	return maxHeaders2Payload
}

// MarshalBinary returns the message payload
func (m *MsgHeaders2) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := m.BtcEncode(&buf, wire.ProtocolVersion, wire.BaseEncoding); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes a complete message payload. Any bytes after the
// declared number of records are an error
func (m *MsgHeaders2) UnmarshalBinary(payload []byte) error {
	rdr := bytes.NewReader(payload)
	if err := m.BtcDecode(rdr, wire.ProtocolVersion, wire.BaseEncoding); err != nil {
		return err
	}
	if rdr.Len() > 0 {
		return fmt.Errorf("%w: %d bytes", ErrTrailingData, rdr.Len())
	}
	return nil
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %w", codec.ErrTruncatedInput, err)
	}
	return err
}

// MsgGetHeaders2 requests compressed headers. Its payload is identical to
// getheaders: protocol version, block locator and stop hash
type MsgGetHeaders2 struct {
	wire.MsgGetHeaders
}

// NewMsgGetHeaders2 returns an empty getheaders2 message
func NewMsgGetHeaders2() *MsgGetHeaders2 {
	return &MsgGetHeaders2{
		MsgGetHeaders: *wire.NewMsgGetHeaders(),
	}
}

func (m *MsgGetHeaders2) Command() string {
	return CmdGetHeaders2
}

// WriteMessage frames msg for the given network and writes it to w
func WriteMessage(w io.Writer, msg wire.Message, btcnet wire.BitcoinNet) error {
	return wire.WriteMessage(w, msg, wire.ProtocolVersion, btcnet)
}

// ReadMessage reads one framed headers2 message sent on network btcnet. It
// returns io.EOF if r is exhausted before the message header
func ReadMessage(r io.Reader, btcnet wire.BitcoinNet) (*MsgHeaders2, error) {
	var hdr [wire.MessageHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	magic := wire.BitcoinNet(binary.LittleEndian.Uint32(hdr[0:4]))
	if magic != btcnet {
		return nil, fmt.Errorf("%w: network %s, expected %s", ErrUnexpectedMessage, magic, btcnet)
	}
	command := string(bytes.TrimRight(hdr[4:16], "\x00"))
	if command != CmdHeaders2 {
		return nil, fmt.Errorf("%w: command %q", ErrUnexpectedMessage, command)
	}
	length := binary.LittleEndian.Uint32(hdr[16:20])
	if length > maxHeaders2Payload {
		return nil, fmt.Errorf(
			"%w: payload length %d exceeds %d",
			ErrUnexpectedMessage,
			length,
			maxHeaders2Payload,
		)
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	if !bytes.Equal(chainhash.DoubleHashB(payload)[:4], hdr[20:24]) {
		return nil, ErrChecksumMismatch
	}
	msg := NewMsgHeaders2()
	if err := msg.UnmarshalBinary(payload); err != nil {
		return nil, err
	}
	return msg, nil
}
