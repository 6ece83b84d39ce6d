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
	"sync"
	"sync/atomic"
	"time"
)

// Metrics tracks pool throughput. All methods are safe for concurrent use
type Metrics struct {
	jobsSubmitted   atomic.Uint64
	jobsCompleted   atomic.Uint64
	jobErrors       atomic.Uint64
	headers         atomic.Uint64
	rawBytes        atomic.Uint64
	compressedBytes atomic.Uint64

	mu           sync.RWMutex
	busyTime     time.Duration
	lastJobTime  time.Time
	startTime    time.Time
	peakInFlight int
	inFlight     int
}

// Stats is a point-in-time snapshot of Metrics
type Stats struct {
	JobsSubmitted   uint64
	JobsCompleted   uint64
	JobErrors       uint64
	Headers         uint64
	RawBytes        uint64
	CompressedBytes uint64
	BusyTime        time.Duration
	PeakInFlight    int
	LastJobTime     time.Time
	StartTime       time.Time
}

// Ratio returns the compressed size as a fraction of the raw size
func (s Stats) Ratio() float64 {
	if s.RawBytes == 0 {
		return 0
	}
	return float64(s.CompressedBytes) / float64(s.RawBytes)
}

func NewMetrics() *Metrics {
	return &Metrics{
		startTime: time.Now(),
	}
}

func (m *Metrics) RecordSubmit(count int) {
	m.jobsSubmitted.Add(uint64(count)) // #nosec G115
}

func (m *Metrics) recordStart() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight++
	if m.inFlight > m.peakInFlight {
		m.peakInFlight = m.inFlight
	}
}

// RecordResult adds a finished job to the totals
func (m *Metrics) RecordResult(res Result) {
	if res.Err != nil {
		m.jobErrors.Add(1)
	} else {
		m.jobsCompleted.Add(1)
	}
	m.headers.Add(uint64(res.Stats.Headers))                 // #nosec G115
	m.rawBytes.Add(uint64(res.Stats.RawBytes))               // #nosec G115
	m.compressedBytes.Add(uint64(res.Stats.CompressedBytes)) // #nosec G115
	m.mu.Lock()
	m.inFlight--
	m.busyTime += res.Duration
	m.lastJobTime = time.Now()
	m.mu.Unlock()
}

func (m *Metrics) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Stats{
		JobsSubmitted:   m.jobsSubmitted.Load(),
		JobsCompleted:   m.jobsCompleted.Load(),
		JobErrors:       m.jobErrors.Load(),
		Headers:         m.headers.Load(),
		RawBytes:        m.rawBytes.Load(),
		CompressedBytes: m.compressedBytes.Load(),
		BusyTime:        m.busyTime,
		PeakInFlight:    m.peakInFlight,
		LastJobTime:     m.lastJobTime,
		StartTime:       m.startTime,
	}
}

func (m *Metrics) Reset() {
	m.jobsSubmitted.Store(0)
	m.jobsCompleted.Store(0)
	m.jobErrors.Store(0)
	m.headers.Store(0)
	m.rawBytes.Store(0)
	m.compressedBytes.Store(0)

	m.mu.Lock()
	m.busyTime = 0
	m.peakInFlight = 0
	m.inFlight = 0
	m.lastJobTime = time.Time{}
	m.startTime = time.Now()
	m.mu.Unlock()
}
