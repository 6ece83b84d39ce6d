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
	"github.com/blinklabs-io/hdrcodec/header"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Context is the rolling state of a single compression or decompression
// session. It is a value type: copying a Context snapshots the session
type Context struct {
	previousHash  chainhash.Hash
	previousTime  uint32
	previousNBits uint32
	history       VersionHistory
	anchored      bool
}

// NewContext returns a Context seeded from the anchor, the last header both
// sides of the session already have
func NewContext(anchor header.RawHeader) Context {
	return Context{
		previousHash:  anchor.Hash(),
		previousTime:  anchor.Time,
		previousNBits: anchor.NBits,
		history:       NewVersionHistory(anchor.Version),
		anchored:      true,
	}
}

// NewUnanchoredContext returns a Context for a session with no trusted
// anchor. The first record of such a session carries every field literally
func NewUnanchoredContext() Context {
	return Context{}
}

// Advance moves the context past h and returns the hash of h
func (c *Context) Advance(h header.RawHeader) chainhash.Hash {
	hash := h.Hash()
	c.history.Push(h.Version)
	c.previousHash = hash
	c.previousTime = h.Time
	c.previousNBits = h.NBits
	c.anchored = true
	return hash
}

func (c Context) PreviousHash() chainhash.Hash {
	return c.previousHash
}

func (c Context) PreviousTime() uint32 {
	return c.previousTime
}

func (c Context) PreviousNBits() uint32 {
	return c.previousNBits
}

func (c Context) History() VersionHistory {
	return c.history
}

// Anchored reports whether the context has a previous header
func (c Context) Anchored() bool {
	return c.anchored
}
