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

// Package file serves headers from a file of back-to-back 80-byte headers
// or a CBOR array of headers, such as the output of the decompress command
package file

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/blinklabs-io/hdrcodec/header"
	"github.com/blinklabs-io/hdrcodec/source"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Header file formats
const (
	FormatRaw  = "raw"
	FormatCbor = "cbor"
)

// Source is an in-memory source.Source loaded from a header file
type Source struct {
	startHeight int64
	format      string
	headers     []header.RawHeader
	index       map[chainhash.Hash]int
}

// SourceOptionFunc represents a function used to modify the source
type SourceOptionFunc func(*Source)

// WithStartHeight specifies the height of the first header in the file
func WithStartHeight(height int64) SourceOptionFunc {
	return func(s *Source) {
		s.startHeight = height
	}
}

// WithFormat specifies the format of the file read by Open. The default is
// FormatRaw
func WithFormat(format string) SourceOptionFunc {
	return func(s *Source) {
		s.format = format
	}
}

// Open loads all headers from the file at path
func Open(path string, options ...SourceOptionFunc) (*Source, error) {
	tmp := &Source{format: FormatRaw}
	for _, option := range options {
		option(tmp)
	}
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, err
	}
	var headers []header.RawHeader
	switch tmp.format {
	case FormatRaw:
		headers, err = header.ReadAll(bytes.NewReader(data))
	case FormatCbor:
		headers, err = header.DecodeCborList(data)
	default:
		return nil, fmt.Errorf("unknown header file format: %s", tmp.format)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return New(headers, options...), nil
}

// New returns a source serving the given headers
func New(headers []header.RawHeader, options ...SourceOptionFunc) *Source {
	s := &Source{
		format:  FormatRaw,
		headers: headers,
		index:   make(map[chainhash.Hash]int, len(headers)),
	}
	for _, option := range options {
		option(s)
	}
	for idx, h := range headers {
		s.index[h.Hash()] = idx
	}
	return s
}

// Len returns the number of headers held
func (s *Source) Len() int {
	return len(s.headers)
}

func (s *Source) Headers(
	ctx context.Context,
	from chainhash.Hash,
	count int,
) ([]header.RawHeader, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	idx, ok := s.index[from]
	if !ok {
		return nil, fmt.Errorf("%w: %s", source.ErrNotFound, from)
	}
	end := min(idx+count, len(s.headers))
	ret := make([]header.RawHeader, end-idx)
	copy(ret, s.headers[idx:end])
	return ret, nil
}

func (s *Source) HashAtHeight(ctx context.Context, height int64) (chainhash.Hash, error) {
	if err := ctx.Err(); err != nil {
		return chainhash.Hash{}, err
	}
	idx := height - s.startHeight
	if idx < 0 || idx >= int64(len(s.headers)) {
		return chainhash.Hash{}, fmt.Errorf("%w: height %d", source.ErrNotFound, height)
	}
	return s.headers[idx].Hash(), nil
}
