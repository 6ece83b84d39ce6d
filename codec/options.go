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
	"log/slog"
)

// Direction identifies the side of the codec reporting to a Recorder
type Direction string

const (
	DirectionEncode Direction = "encode"
	DirectionDecode Direction = "decode"
)

// Recorder receives per-record observations from a session. Implementations
// must be safe for concurrent use when shared between sessions
type Recorder interface {
	RecordHeader(dir Direction, bitfield Bitfield, size int)
	RecordError(dir Direction, err error)
}

// Config holds the settings shared by encoders and decoders
type Config struct {
	// Strict rejects records with the reserved bit set, and records whose
	// literal prev hash disagrees with the previous header
	Strict   bool
	Logger   *slog.Logger
	Recorder Recorder
}

// CodecOptionFunc represents a function used to modify the codec config
type CodecOptionFunc func(*Config)

// NewConfig returns a new codec config object with the provided options
func NewConfig(options ...CodecOptionFunc) Config {
	c := Config{
		Logger: slog.Default(),
	}
	// Apply provided options functions
	for _, option := range options {
		option(&c)
	}
	return c
}

// WithStrict enables strict decoding
func WithStrict(strict bool) CodecOptionFunc {
	return func(c *Config) {
		c.Strict = strict
	}
}

// WithLogger specifies the logger. A nil logger is ignored
func WithLogger(logger *slog.Logger) CodecOptionFunc {
	return func(c *Config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithRecorder specifies a Recorder for per-record observations
func WithRecorder(recorder Recorder) CodecOptionFunc {
	return func(c *Config) {
		c.Recorder = recorder
	}
}

// Stats summarizes a session
type Stats struct {
	Headers         int
	RawBytes        int
	CompressedBytes int
}

// Ratio returns the compressed size as a fraction of the raw size
func (s Stats) Ratio() float64 {
	if s.RawBytes == 0 {
		return 0
	}
	return float64(s.CompressedBytes) / float64(s.RawBytes)
}

func (s *Stats) add(compressedSize int) {
	s.Headers++
	s.RawBytes += headerSize
	s.CompressedBytes += compressedSize
}
