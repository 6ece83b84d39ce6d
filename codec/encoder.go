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
	"bytes"
	"fmt"
	"io"

	"github.com/blinklabs-io/hdrcodec/header"
)

const headerSize = header.Size

// Encoder writes compressed records for a contiguous sequence of headers
type Encoder struct {
	w      io.Writer
	ctx    Context
	config Config
	buf    []byte
	stats  Stats
}

// NewEncoder returns an Encoder writing to w. A nil anchor starts an
// unanchored session whose first record is written in full
func NewEncoder(
	w io.Writer,
	anchor *header.RawHeader,
	options ...CodecOptionFunc,
) *Encoder {
	e := &Encoder{
		w:      w,
		config: NewConfig(options...),
		buf:    make([]byte, 0, MaxRecordSize),
	}
	if anchor != nil {
		e.ctx = NewContext(*anchor)
	} else {
		e.ctx = NewUnanchoredContext()
	}
	return e
}

// Encode writes the record for h. When last is set, the record is marked as
// the end of the sequence. The context only advances once the whole record
// has been written
func (e *Encoder) Encode(h header.RawHeader, last bool) (int, error) {
	r := e.ctx.Decide(h, last)
	e.buf = r.Append(e.buf[:0])
	n, err := e.w.Write(e.buf)
	if err != nil {
		err = &RecordError{Index: e.stats.Headers, Err: err}
		if e.config.Recorder != nil {
			e.config.Recorder.RecordError(DirectionEncode, err)
		}
		return n, err
	}
	hash := e.ctx.Advance(h)
	e.stats.add(n)
	if e.config.Recorder != nil {
		e.config.Recorder.RecordHeader(DirectionEncode, r.Bitfield, n)
	}
	e.config.Logger.Debug(
		"encoded header",
		"component", "codec",
		"index", e.stats.Headers-1,
		"hash", hash,
		"bitfield", r.Bitfield,
		"size", n,
	)
	return n, nil
}

// Reset switches the encoder to a new output while keeping its context
func (e *Encoder) Reset(w io.Writer) {
	e.w = w
}

// Context returns a snapshot of the encoder context
func (e *Encoder) Context() Context {
	return e.ctx
}

func (e *Encoder) Stats() Stats {
	return e.stats
}

// Compress encodes headers, which must directly follow anchor, and marks the
// final record as the end of the sequence
func Compress(
	headers []header.RawHeader,
	anchor header.RawHeader,
	options ...CodecOptionFunc,
) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(len(headers) * MinRecordSize)
	enc := NewEncoder(&buf, &anchor, options...)
	for idx, h := range headers {
		if _, err := enc.Encode(h, idx == len(headers)-1); err != nil {
			return nil, fmt.Errorf("compress: %w", err)
		}
	}
	return buf.Bytes(), nil
}
