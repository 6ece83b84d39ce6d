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

// Package headers2 implements the payloads of the headers2 and getheaders2
// messages, which carry compressed block headers between peers, and the
// per-connection state needed to produce and consume them
package headers2

import (
	"github.com/blinklabs-io/hdrcodec/codec"
	"github.com/btcsuite/btcd/wire"
)

// Protocol identifiers
const (
	ProtocolName   = "headers2"
	CmdHeaders2    = "headers2"
	CmdGetHeaders2 = "getheaders2"
)

// MaxHeaders2PerMsg is the maximum number of records in a single headers2
// message. It matches the limit for uncompressed headers
const MaxHeaders2PerMsg = wire.MaxBlockHeadersPerMsg

// maxHeaders2Payload is the largest possible headers2 payload
const maxHeaders2Payload = wire.MaxVarIntPayload + MaxHeaders2PerMsg*codec.MaxRecordSize
