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
	"errors"
	"fmt"
	"io"

	"github.com/blinklabs-io/hdrcodec/header"
)

// Decoder reads compressed records and reconstructs the original headers
type Decoder struct {
	r      io.Reader
	ctx    Context
	config Config
	buf    [MaxRecordSize]byte
	stats  Stats
	done   bool
}

// NewDecoder returns a Decoder reading from r. The anchor must be the header
// immediately preceding the first record. A nil anchor starts an unanchored
// session, which only accepts a fully literal first record
func NewDecoder(
	r io.Reader,
	anchor *header.RawHeader,
	options ...CodecOptionFunc,
) *Decoder {
	d := &Decoder{
		r:      r,
		config: NewConfig(options...),
	}
	if anchor != nil {
		d.ctx = NewContext(*anchor)
	} else {
		d.ctx = NewUnanchoredContext()
	}
	return d
}

// Decode reads the next record and returns the reconstructed header. It
// returns io.EOF when the input ends on a record boundary or after a record
// marked as the end of the sequence. On any other error the context is left
// as it was after the last good record
func (d *Decoder) Decode() (header.RawHeader, error) {
	if d.done {
		return header.RawHeader{}, io.EOF
	}
	h, size, err := d.decode()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return header.RawHeader{}, io.EOF
		}
		err = &RecordError{Index: d.stats.Headers, Err: err}
		if d.config.Recorder != nil {
			d.config.Recorder.RecordError(DirectionDecode, err)
		}
		return header.RawHeader{}, err
	}
	d.commit(h, size)
	return h, nil
}

func (d *Decoder) decode() (header.RawHeader, int, error) {
	if _, err := io.ReadFull(d.r, d.buf[:BitfieldSize]); err != nil {
		// A clean io.EOF here means there are no more records
		return header.RawHeader{}, 0, err
	}
	bf := Bitfield(d.buf[0])
	if d.config.Strict && bf.Reserved() {
		return header.RawHeader{}, 0, fmt.Errorf("%w: bitfield %s", ErrInvalidReservedBit, bf)
	}
	size := BitfieldSize + bf.Layout().Size()
	if _, err := io.ReadFull(d.r, d.buf[BitfieldSize:size]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return header.RawHeader{}, 0, fmt.Errorf(
				"%w: record with bitfield %s needs %d bytes",
				ErrTruncatedInput,
				bf,
				size,
			)
		}
		return header.RawHeader{}, 0, err
	}
	r := parsePayload(bf, d.buf[BitfieldSize:size])
	h, err := d.ctx.Resolve(r)
	if err != nil {
		return header.RawHeader{}, 0, err
	}
	// A literal prev hash inside an anchored session is a resync point
	if d.config.Strict && d.ctx.Anchored() && !bf.PrevHashOmitted() {
		if err := VerifyHash(d.ctx.PreviousHash(), r.PrevHash); err != nil {
			return header.RawHeader{}, 0, err
		}
	}
	return h, size, nil
}

func (d *Decoder) commit(h header.RawHeader, size int) {
	bf := Bitfield(d.buf[0])
	hash := d.ctx.Advance(h)
	d.stats.add(size)
	if bf.SequenceEnd() {
		d.done = true
	}
	if d.config.Recorder != nil {
		d.config.Recorder.RecordHeader(DirectionDecode, bf, size)
	}
	d.config.Logger.Debug(
		"decoded header",
		"component", "codec",
		"index", d.stats.Headers-1,
		"hash", hash,
		"bitfield", bf,
		"size", size,
	)
}

// Reset switches the decoder to a new input while keeping its context. It
// also clears the end of sequence marker so that the next batch can be read
func (d *Decoder) Reset(r io.Reader) {
	d.r = r
	d.done = false
}

// Done reports whether a record marked as the end of the sequence has been read
func (d *Decoder) Done() bool {
	return d.done
}

// Context returns a snapshot of the decoder context
func (d *Decoder) Context() Context {
	return d.ctx
}

func (d *Decoder) Stats() Stats {
	return d.stats
}

// Decompress decodes records from data until a record marked as the end of
// the sequence or the end of data. Headers decoded before an error are
// returned along with it
func Decompress(
	data []byte,
	anchor header.RawHeader,
	options ...CodecOptionFunc,
) ([]header.RawHeader, error) {
	dec := NewDecoder(bytes.NewReader(data), &anchor, options...)
	var ret []header.RawHeader
	for {
		h, err := dec.Decode()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return ret, nil
			}
			return ret, fmt.Errorf("decompress: %w", err)
		}
		ret = append(ret, h)
	}
}

// DecompressN decodes up to count records from data, stopping early after a
// record marked as the end of the sequence. It returns the decoded headers
// and the number of bytes consumed. Running out of data before count records
// is ErrTruncatedInput, and a negative count is ErrInvalidCount
func DecompressN(
	data []byte,
	anchor header.RawHeader,
	count int,
	options ...CodecOptionFunc,
) ([]header.RawHeader, int, error) {
	if count < 0 {
		return nil, 0, fmt.Errorf("decompress: %w: %d", ErrInvalidCount, count)
	}
	rdr := bytes.NewReader(data)
	dec := NewDecoder(rdr, &anchor, options...)
	// The count may come off the wire, so never reserve more than data can hold
	ret := make([]header.RawHeader, 0, min(count, len(data)/MinRecordSize+1))
	for len(ret) < count && !dec.Done() {
		h, err := dec.Decode()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = &RecordError{
					Index: len(ret),
					Err: fmt.Errorf(
						"%w: expected %d records, found %d",
						ErrTruncatedInput,
						count,
						len(ret),
					),
				}
			}
			return ret, len(data) - rdr.Len(), fmt.Errorf("decompress: %w", err)
		}
		ret = append(ret, h)
	}
	return ret, len(data) - rdr.Len(), nil
}
