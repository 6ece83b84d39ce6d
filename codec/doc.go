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

// Package codec implements the stateful compressed block header codec.
//
// A session compresses (Encoder) or decompresses (Decoder) a contiguous run of
// 80-byte headers against a rolling Context seeded from an anchor header that
// both sides already have. Each header becomes one variable-length record: a
// single bitfield byte followed by only the fields that could not be derived
// from the previous header or the version history.
//
// Record layout, integers little-endian:
//
//	bitfield    1 byte
//	version     4 bytes, only with version code 7
//	prev hash   32 bytes, only when bit 3 is clear
//	merkle root 32 bytes
//	time        2 byte signed offset (bit 4 set) or 4 byte literal
//	nBits       4 bytes, only when bit 5 is clear
//	nonce       4 bytes
//
// Bitfield, bit 0 is the least significant:
//
//	0-2  version code: 0-6 index into history, 7 literal version follows
//	3    prev hash omitted
//	4    time is an offset from the previous header
//	5    nBits same as the previous header
//	6    sequence end
//	7    reserved
//
// The layout of a record is fully determined by its bitfield, so a reader
// knows the record length as soon as it has the first byte.
//
// Sessions are strictly sequential. Independent sessions share no state and
// may run concurrently.
package codec
