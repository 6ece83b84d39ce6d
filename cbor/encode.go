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

package cbor

import (
	"bytes"
	"sync"

	_cbor "github.com/fxamacker/cbor/v2"
)

var (
	cachedEncMode     _cbor.EncMode
	cachedEncModeErr  error
	cachedEncModeOnce sync.Once
)

func getEncMode() (_cbor.EncMode, error) {
	cachedEncModeOnce.Do(func() {
		opts := _cbor.EncOptions{
			// Make sure that maps have ordered keys
			Sort: _cbor.SortCoreDeterministic,
		}
		cachedEncMode, cachedEncModeErr = opts.EncMode()
	})
	return cachedEncMode, cachedEncModeErr
}

func Encode(data any) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	em, err := getEncMode()
	if err != nil {
		return nil, err
	}
	enc := em.NewEncoder(buf)
	err = enc.Encode(data)
	return buf.Bytes(), err
}

// EncodeList encodes the items as a definite-length CBOR array. Each item is
// encoded with its own MarshalCBOR() function where available
func EncodeList[T any](items []T) ([]byte, error) {
	ret := appendArrayHeader(
		make([]byte, 0, ArrayHeaderSize(len(items))),
		CborTypeArray,
		len(items),
	)
	for _, item := range items {
		data, err := Encode(&item)
		if err != nil {
			return nil, err
		}
		ret = append(ret, data...)
	}
	return ret, nil
}

// ArrayHeaderSize returns the number of bytes needed for the header of a
// definite-length array with the given number of items
func ArrayHeaderSize(length int) int {
	switch {
	case length <= int(CborMaxUintSimple):
		return 1
	case length <= 0xff:
		return 2
	case length <= 0xffff:
		return 3
	default:
		return 5
	}
}

func appendArrayHeader(dst []byte, majorType uint8, length int) []byte {
	switch ArrayHeaderSize(length) {
	case 1:
		return append(dst, majorType|uint8(length)) // #nosec G115
	case 2:
		return append(dst, majorType|0x18, uint8(length)) // #nosec G115
	case 3:
		return append(dst, majorType|0x19, uint8(length>>8), uint8(length)) // #nosec G115
	default:
		return append(
			dst,
			majorType|0x1a,
			uint8(length>>24), // #nosec G115
			uint8(length>>16), // #nosec G115
			uint8(length>>8),  // #nosec G115
			uint8(length),     // #nosec G115
		)
	}
}
