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

// Package source defines where uncompressed headers come from. The
// subpackages provide implementations backed by bitcoind's REST interface,
// a JSON-RPC node and flat files
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/blinklabs-io/hdrcodec/header"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

var (
	ErrNotFound    = errors.New("header not found")
	ErrShortResult = errors.New("source returned fewer headers than requested")
)

// Source supplies contiguous runs of headers
type Source interface {
	// Headers returns up to count headers, starting with the header whose
	// hash is from
	Headers(ctx context.Context, from chainhash.Hash, count int) ([]header.RawHeader, error)
	// HashAtHeight returns the hash of the header at the given height
	HashAtHeight(ctx context.Context, height int64) (chainhash.Hash, error)
}

// Segment is a run of headers together with the anchor that precedes it
type Segment struct {
	Height  int64
	Anchor  header.RawHeader
	Headers []header.RawHeader
}

// FetchSegment fetches the header at height as the anchor plus the count
// headers that follow it, and checks that they link together
func FetchSegment(ctx context.Context, src Source, height int64, count int) (Segment, error) {
	hash, err := src.HashAtHeight(ctx, height)
	if err != nil {
		return Segment{}, fmt.Errorf("lookup height %d: %w", height, err)
	}
	headers, err := src.Headers(ctx, hash, count+1)
	if err != nil {
		return Segment{}, fmt.Errorf("fetch headers from %s: %w", hash, err)
	}
	if len(headers) == 0 {
		return Segment{}, fmt.Errorf("%w: %s", ErrNotFound, hash)
	}
	seg := Segment{
		Height:  height,
		Anchor:  headers[0],
		Headers: headers[1:],
	}
	if err := header.VerifyLinkage(seg.Anchor, seg.Headers); err != nil {
		return Segment{}, err
	}
	return seg, nil
}

// FetchSegmentExact is FetchSegment, but fails with ErrShortResult when the
// source has fewer than count headers after the anchor
func FetchSegmentExact(ctx context.Context, src Source, height int64, count int) (Segment, error) {
	seg, err := FetchSegment(ctx, src, height, count)
	if err != nil {
		return Segment{}, err
	}
	if len(seg.Headers) < count {
		return Segment{}, fmt.Errorf(
			"%w: %d of %d headers after height %d",
			ErrShortResult,
			len(seg.Headers),
			count,
			height,
		)
	}
	return seg, nil
}
