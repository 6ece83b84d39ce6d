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

package batch_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/blinklabs-io/hdrcodec/batch"
	"github.com/blinklabs-io/hdrcodec/header"
)

// BenchmarkPoolCompress benchmarks parallel compression with different worker counts
func BenchmarkPoolCompress(b *testing.B) {
	jobs := segmentJobs(b, 32, 500)
	var rawSize int
	for _, job := range jobs {
		rawSize += len(job.Headers) * header.Size
	}
	for _, workers := range []int{1, 2, 4, 8} {
		b.Run(fmt.Sprintf("Workers_%d", workers), func(b *testing.B) {
			pool := batch.NewPool(batch.WithWorkers(workers))
			ctx := context.Background()
			b.ReportAllocs()
			b.SetBytes(int64(rawSize))
			b.ResetTimer()
			for b.Loop() {
				results, err := pool.Compress(ctx, jobs)
				if err != nil {
					b.Fatal(err)
				}
				if err := batch.FirstError(results); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
