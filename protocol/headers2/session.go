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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/blinklabs-io/hdrcodec/codec"
	"github.com/blinklabs-io/hdrcodec/header"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Sender produces headers2 messages for one peer connection. The codec
// context carries over from one message to the next
type Sender struct {
	mutex   sync.Mutex
	encoder *codec.Encoder
	buf     bytes.Buffer
	logger  *slog.Logger
}

// NewSender returns a Sender. The anchor is the last header the peer is
// known to have. Without one, the first record sent is fully literal
func NewSender(anchor *header.RawHeader, options ...codec.CodecOptionFunc) *Sender {
	s := &Sender{
		logger: codec.NewConfig(options...).Logger,
	}
	s.encoder = codec.NewEncoder(&s.buf, anchor, options...)
	return s
}

// Encode builds a headers2 message for headers, which must directly follow
// the previously sent header. The last record is marked as the end of the
// sequence
func (s *Sender) Encode(headers []header.RawHeader) (*MsgHeaders2, error) {
	if len(headers) > MaxHeaders2PerMsg {
		return nil, fmt.Errorf(
			"%w: %d, max %d",
			ErrTooManyHeaders,
			len(headers),
			MaxHeaders2PerMsg,
		)
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.buf.Reset()
	for idx, h := range headers {
		if _, err := s.encoder.Encode(h, idx == len(headers)-1); err != nil {
			return nil, err
		}
	}
	msg := &MsgHeaders2{
		count:   len(headers),
		records: bytes.Clone(s.buf.Bytes()),
	}
	s.logger.Debug(
		"built headers2 message",
		"component", "network",
		"protocol", ProtocolName,
		"headers", len(headers),
		"size", len(msg.records),
	)
	return msg, nil
}

// Stats returns the totals for everything sent so far
func (s *Sender) Stats() codec.Stats {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.encoder.Stats()
}

// Receiver consumes headers2 messages from one peer connection
type Receiver struct {
	mutex   sync.Mutex
	decoder *codec.Decoder
	logger  *slog.Logger
}

// NewReceiver returns a Receiver. The anchor must be the header preceding
// the first record the peer will send. Without one, the first record must
// be fully literal
func NewReceiver(anchor *header.RawHeader, options ...codec.CodecOptionFunc) *Receiver {
	return &Receiver{
		decoder: codec.NewDecoder(bytes.NewReader(nil), anchor, options...),
		logger:  codec.NewConfig(options...).Logger,
	}
}

// Decode reconstructs the headers carried by msg. On error, the headers
// decoded before the failing record are returned and the receiver context
// stays at the last of them
func (r *Receiver) Decode(msg *MsgHeaders2) ([]header.RawHeader, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	rdr := bytes.NewReader(msg.records)
	r.decoder.Reset(rdr)
	ret := make([]header.RawHeader, 0, msg.count)
	for len(ret) < msg.count {
		if r.decoder.Done() {
			return ret, fmt.Errorf(
				"%w: after %d of %d records",
				ErrEarlySequenceEnd,
				len(ret),
				msg.count,
			)
		}
		h, err := r.decoder.Decode()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = fmt.Errorf(
					"%w: expected %d records, found %d",
					codec.ErrTruncatedInput,
					msg.count,
					len(ret),
				)
			}
			return ret, err
		}
		ret = append(ret, h)
	}
	if rdr.Len() > 0 {
		return ret, fmt.Errorf("%w: %d bytes", ErrTrailingData, rdr.Len())
	}
	r.logger.Debug(
		"decoded headers2 message",
		"component", "network",
		"protocol", ProtocolName,
		"headers", len(ret),
	)
	return ret, nil
}

// Tip returns the hash of the last header received, or of the anchor when
// nothing has been received yet
func (r *Receiver) Tip() (chainhash.Hash, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	ctx := r.decoder.Context()
	return ctx.PreviousHash(), ctx.Anchored()
}
