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

// Package batch compresses or decompresses many independent header segments
// in parallel. Each segment is coded with its own context, so results are
// identical to coding the segments one at a time
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/blinklabs-io/hdrcodec/codec"
	"github.com/blinklabs-io/hdrcodec/header"
)

var ErrNotProcessed = errors.New("job not processed")

// Operation selects what a pool run does with its jobs
type Operation int

const (
	OperationCompress Operation = iota
	OperationDecompress
)

func (o Operation) String() string {
	switch o {
	case OperationCompress:
		return "compress"
	case OperationDecompress:
		return "decompress"
	default:
		return fmt.Sprintf("Operation(%d)", int(o))
	}
}

// Job is one independent segment. Headers is the input for compression and
// Data the input for decompression
type Job struct {
	Anchor  header.RawHeader
	Headers []header.RawHeader
	Data    []byte
}

// Result is the outcome of a Job. Index is the position of the job in the
// submitted slice
type Result struct {
	Index    int
	Headers  []header.RawHeader
	Data     []byte
	Stats    codec.Stats
	Duration time.Duration
	Err      error
}

// Pool runs jobs on a fixed number of workers
type Pool struct {
	config  PoolConfig
	metrics *Metrics
}

// NewPool returns a pool configured with the provided options
func NewPool(options ...PoolOption) *Pool {
	config := DefaultPoolConfig()
	for _, option := range options {
		option(&config)
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.Metrics == nil {
		config.Metrics = NewMetrics()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Pool{
		config:  config,
		metrics: config.Metrics,
	}
}

// Metrics returns the pool totals
func (p *Pool) Metrics() *Metrics {
	return p.metrics
}

// Compress compresses each job's headers against its anchor
func (p *Pool) Compress(ctx context.Context, jobs []Job) ([]Result, error) {
	return p.Run(ctx, OperationCompress, jobs)
}

// Decompress decompresses each job's data against its anchor
func (p *Pool) Decompress(ctx context.Context, jobs []Job) ([]Result, error) {
	return p.Run(ctx, OperationDecompress, jobs)
}

// Run processes jobs and returns one result per job, in submission order.
// Per-job failures are reported in Result.Err. If ctx is canceled, jobs not
// yet started are marked with ErrNotProcessed and the context error is
// returned. A job that has started always runs to completion
func (p *Pool) Run(ctx context.Context, op Operation, jobs []Job) ([]Result, error) {
	results := make([]Result, len(jobs))
	started := make([]bool, len(jobs))
	input := make(chan int)
	p.metrics.RecordSubmit(len(jobs))
	var wg sync.WaitGroup
	for i := 0; i < min(p.config.Workers, len(jobs)); i++ {
		wg.Add(1)
		go p.worker(ctx, op, jobs, results, started, input, &wg)
	}
feed:
	for idx := range jobs {
		select {
		case input <- idx:
		case <-ctx.Done():
			break feed
		}
	}
	close(input)
	wg.Wait()
	for idx := range results {
		if !started[idx] {
			results[idx] = Result{
				Index: idx,
				Err:   fmt.Errorf("%w: %w", ErrNotProcessed, context.Cause(ctx)),
			}
		}
	}
	p.config.Logger.Debug(
		"batch finished",
		"component", "batch",
		"operation", op.String(),
		"jobs", len(jobs),
		"workers", p.config.Workers,
	)
	return results, ctx.Err()
}

func (p *Pool) worker(
	ctx context.Context,
	op Operation,
	jobs []Job,
	results []Result,
	started []bool,
	input <-chan int,
	wg *sync.WaitGroup,
) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case idx, ok := <-input:
			if !ok {
				return
			}
			// Each index is delivered to exactly one worker, so these
			// writes never race
			started[idx] = true
			p.metrics.recordStart()
			results[idx] = p.process(op, idx, jobs[idx])
			p.metrics.RecordResult(results[idx])
			if results[idx].Err != nil {
				p.config.Logger.Warn(
					"batch job failed",
					"component", "batch",
					"operation", op.String(),
					"job", idx,
					"error", results[idx].Err,
				)
			}
		}
	}
}

func (p *Pool) process(op Operation, idx int, job Job) Result {
	start := time.Now()
	res := Result{Index: idx}
	switch op {
	case OperationCompress:
		res.Data, res.Err = codec.Compress(job.Headers, job.Anchor, p.config.CodecOptions...)
		if res.Err == nil {
			res.Stats = codec.Stats{
				Headers:         len(job.Headers),
				RawBytes:        len(job.Headers) * header.Size,
				CompressedBytes: len(res.Data),
			}
		}
	case OperationDecompress:
		res.Headers, res.Err = codec.Decompress(job.Data, job.Anchor, p.config.CodecOptions...)
		res.Stats = codec.Stats{
			Headers:         len(res.Headers),
			RawBytes:        len(res.Headers) * header.Size,
			CompressedBytes: len(job.Data),
		}
	default:
		res.Err = fmt.Errorf("unknown operation: %s", op)
	}
	res.Duration = time.Since(start)
	return res
}

// FirstError returns the error of the first failed result, if any
func FirstError(results []Result) error {
	for _, res := range results {
		if res.Err != nil {
			return fmt.Errorf("job %d: %w", res.Index, res.Err)
		}
	}
	return nil
}
