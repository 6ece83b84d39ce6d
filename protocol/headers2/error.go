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

import "errors"

var (
	ErrTooManyHeaders = errors.New("too many headers in message")
	ErrTrailingData   = errors.New("trailing data after last record")
	// ErrEarlySequenceEnd is returned when a record other than the last one
	// in a message is marked as the end of the sequence
	ErrEarlySequenceEnd = errors.New("sequence end before last record")
	// ErrUnexpectedMessage is returned by ReadMessage for a message that is
	// not a headers2 message for the expected network
	ErrUnexpectedMessage = errors.New("unexpected message")
	ErrChecksumMismatch  = errors.New("message checksum mismatch")
)
