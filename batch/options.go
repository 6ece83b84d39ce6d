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

package batch

import (
	"log/slog"
	"runtime"

	"github.com/blinklabs-io/hdrcodec/codec"
)

// PoolConfig holds the settings for a Pool
type PoolConfig struct {
	// Workers is the number of segments processed in parallel
	Workers int
	// Logger receives pool-level log messages
	Logger *slog.Logger
	// CodecOptions are applied to the encoder or decoder of every job
	CodecOptions []codec.CodecOptionFunc
	// Metrics accumulates totals across runs. If nil, the pool allocates its own
	Metrics *Metrics
}

// DefaultPoolConfig returns the default pool config, with one worker per CPU
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		Workers: max(runtime.NumCPU(), 1),
		Logger:  slog.Default(),
	}
}

// PoolOption represents a function used to modify the pool config
type PoolOption func(*PoolConfig)

func WithConfig(config PoolConfig) PoolOption {
	return func(c *PoolConfig) {
		*c = config
	}
}

func WithWorkers(n int) PoolOption {
	return func(c *PoolConfig) {
		if n > 0 {
			c.Workers = n
		}
	}
}

func WithLogger(logger *slog.Logger) PoolOption {
	return func(c *PoolConfig) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

func WithCodecOptions(options ...codec.CodecOptionFunc) PoolOption {
	return func(c *PoolConfig) {
		c.CodecOptions = append(c.CodecOptions, options...)
	}
}

func WithMetrics(metrics *Metrics) PoolOption {
	return func(c *PoolConfig) {
		c.Metrics = metrics
	}
}
