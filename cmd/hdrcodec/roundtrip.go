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

package main

import (
	"errors"
	"fmt"
	"runtime"
	"text/tabwriter"
	"time"

	"github.com/blinklabs-io/hdrcodec/batch"
	"github.com/blinklabs-io/hdrcodec/header"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var errRoundtripMismatch = errors.New("decompressed headers differ from the originals")

func newRoundtripCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roundtrip",
		Short: "Compress and decompress headers from a source and report the savings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runRoundtrip(cmd)
		},
	}
	addSourceFlags(cmd)
	cmd.Flags().Int("workers", runtime.NumCPU(), "number of segments coded in parallel")
	cmd.Flags().Int("segment-size", headersPerSegment, "headers per independently coded segment")
	return cmd
}

const headersPerSegment = 2000

// splitSegments cuts headers into jobs of at most size headers, each anchored
// at the header before it
func splitSegments(anchor header.RawHeader, headers []header.RawHeader, size int) []batch.Job {
	if size <= 0 {
		size = headersPerSegment
	}
	jobs := make([]batch.Job, 0, (len(headers)+size-1)/size)
	for start := 0; start < len(headers); start += size {
		end := min(start+size, len(headers))
		jobs = append(jobs, batch.Job{
			Anchor:  anchor,
			Headers: headers[start:end],
		})
		anchor = headers[end-1]
	}
	return jobs
}

func (a *app) runRoundtrip(cmd *cobra.Command) error {
	ctx := cmd.Context()
	seg, err := a.fetchSegment(ctx)
	if err != nil {
		return err
	}
	pool := batch.NewPool(
		batch.WithWorkers(a.v.GetInt("workers")),
		batch.WithLogger(a.logger),
		batch.WithCodecOptions(a.codecOptions()...),
	)
	jobs := splitSegments(seg.Anchor, seg.Headers, a.v.GetInt("segment-size"))

	start := time.Now()
	compressed, err := pool.Compress(ctx, jobs)
	if err != nil {
		return err
	}
	if err := batch.FirstError(compressed); err != nil {
		return err
	}
	compressTime := time.Since(start)

	for idx := range jobs {
		jobs[idx].Data = compressed[idx].Data
	}
	start = time.Now()
	decompressed, err := pool.Decompress(ctx, jobs)
	if err != nil {
		return err
	}
	if err := batch.FirstError(decompressed); err != nil {
		return err
	}
	decompressTime := time.Since(start)

	var rawSize, compressedSize uint64
	for idx, job := range jobs {
		res := decompressed[idx]
		if len(res.Headers) != len(job.Headers) {
			return fmt.Errorf(
				"%w: segment %d: got %d headers, expected %d",
				errRoundtripMismatch,
				idx,
				len(res.Headers),
				len(job.Headers),
			)
		}
		for i := range job.Headers {
			if res.Headers[i] != job.Headers[i] {
				return fmt.Errorf(
					"%w: segment %d, header %d (%s)",
					errRoundtripMismatch,
					idx,
					i,
					job.Headers[i].Hash(),
				)
			}
		}
		rawSize += uint64(res.Stats.RawBytes)               // #nosec G115
		compressedSize += uint64(res.Stats.CompressedBytes) // #nosec G115
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Headers\t%s\n", humanize.Comma(int64(len(seg.Headers))))
	fmt.Fprintf(tw, "Segments\t%d\n", len(jobs))
	fmt.Fprintf(tw, "Raw size\t%s\n", humanize.Bytes(rawSize))
	fmt.Fprintf(tw, "Compressed size\t%s\n", humanize.Bytes(compressedSize))
	if rawSize > 0 {
		fmt.Fprintf(
			tw,
			"Saved\t%s\t(%.2f%%)\n",
			humanize.Bytes(rawSize-compressedSize),
			100*(1-float64(compressedSize)/float64(rawSize)),
		)
	}
	fmt.Fprintf(tw, "Compress time\t%s\n", compressTime.Round(time.Microsecond))
	fmt.Fprintf(tw, "Decompress time\t%s\n", decompressTime.Round(time.Microsecond))
	return tw.Flush()
}
