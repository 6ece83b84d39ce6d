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
	"errors"
	"fmt"
)

var (
	// ErrTruncatedInput is returned when the input ends in the middle of a record
	ErrTruncatedInput = errors.New("truncated input")
	// ErrInvalidVersionIndex is returned when a record references a version
	// history slot that does not exist yet
	ErrInvalidVersionIndex = errors.New("invalid version history index")
	// ErrInvalidReservedBit is returned in strict mode when the reserved
	// bitfield bit is set
	ErrInvalidReservedBit = errors.New("reserved bitfield bit set")
	// ErrHashMismatch is returned when a header hash differs from the expected value
	ErrHashMismatch = errors.New("header hash mismatch")
	// ErrMissingContext is returned when a record omits a field but the session
	// has no previous header to take it from
	ErrMissingContext = errors.New("record depends on missing context")
	// ErrInvalidTimeOffset is returned when a time offset moves the timestamp
	// outside the range of a uint32
	ErrInvalidTimeOffset = errors.New("time offset out of range")
	// ErrInvalidCount is returned for a negative record count
	ErrInvalidCount = errors.New("invalid record count")
)

// RecordError identifies the record, counted from the start of the session,
// at which a session halted
type RecordError struct {
	Index int
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %d: %s", e.Index, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}
