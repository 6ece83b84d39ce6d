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

// Package metrics exports codec observations as Prometheus metrics
package metrics

import (
	"errors"

	"github.com/blinklabs-io/hdrcodec/codec"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "hdrcodec"
	subsystem = "codec"
)

// Field names used for the field_omitted_total label
const (
	FieldVersion  = "version"
	FieldPrevHash = "prev_hash"
	FieldTime     = "time"
	FieldNBits    = "nbits"
)

// Recorder is a codec.Recorder backed by Prometheus collectors. It may be
// shared by any number of sessions
type Recorder struct {
	records     *prometheus.CounterVec
	recordBytes *prometheus.HistogramVec
	omitted     *prometheus.CounterVec
	sequenceEnd *prometheus.CounterVec
	errors      *prometheus.CounterVec
}

var _ codec.Recorder = (*Recorder)(nil)

// New registers the codec metrics with reg and returns a Recorder. A nil reg
// leaves the collectors unregistered
func New(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		records: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "records_total",
			Help:      "Number of records encoded or decoded",
		}, []string{"direction"}),
		recordBytes: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "record_bytes",
			Help:      "Size of each record in bytes",
			Buckets:   prometheus.LinearBuckets(codec.MinRecordSize, 6, 8),
		}, []string{"direction"}),
		omitted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "field_omitted_total",
			Help:      "Number of records in which a header field was omitted or shortened",
		}, []string{"direction", "field"}),
		sequenceEnd: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sequence_end_total",
			Help:      "Number of records marked as the end of a sequence",
		}, []string{"direction"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "errors_total",
			Help:      "Number of records that failed to encode or decode",
		}, []string{"direction", "kind"}),
	}
}

func (r *Recorder) RecordHeader(dir codec.Direction, bf codec.Bitfield, size int) {
	d := string(dir)
	r.records.WithLabelValues(d).Inc()
	r.recordBytes.WithLabelValues(d).Observe(float64(size))
	if !bf.HasVersionLiteral() {
		r.omitted.WithLabelValues(d, FieldVersion).Inc()
	}
	if bf.PrevHashOmitted() {
		r.omitted.WithLabelValues(d, FieldPrevHash).Inc()
	}
	if bf.HasTimeOffset() {
		r.omitted.WithLabelValues(d, FieldTime).Inc()
	}
	if bf.NBitsSame() {
		r.omitted.WithLabelValues(d, FieldNBits).Inc()
	}
	if bf.SequenceEnd() {
		r.sequenceEnd.WithLabelValues(d).Inc()
	}
}

func (r *Recorder) RecordError(dir codec.Direction, err error) {
	r.errors.WithLabelValues(string(dir), ErrorKind(err)).Inc()
}

var errorKinds = []struct {
	err  error
	kind string
}{
	{codec.ErrTruncatedInput, "truncated_input"},
	{codec.ErrInvalidVersionIndex, "invalid_version_index"},
	{codec.ErrInvalidReservedBit, "invalid_reserved_bit"},
	{codec.ErrHashMismatch, "hash_mismatch"},
	{codec.ErrMissingContext, "missing_context"},
	{codec.ErrInvalidTimeOffset, "invalid_time_offset"},
}

// ErrorKind maps a codec error to a low-cardinality label value
func ErrorKind(err error) string {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "io"
}
