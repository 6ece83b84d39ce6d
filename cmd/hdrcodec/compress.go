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
	"bytes"

	"github.com/blinklabs-io/hdrcodec/codec"
	"github.com/blinklabs-io/hdrcodec/header"
	"github.com/blinklabs-io/hdrcodec/protocol/headers2"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newCompressCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compress",
		Short: "Compress a run of headers fetched from a source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runCompress(cmd)
		},
	}
	addSourceFlags(cmd)
	cmd.Flags().String("out", "-", "output file")
	cmd.Flags().String("anchor-out", "", "also write the 80-byte anchor header to this file")
	cmd.Flags().Bool("framed", false, "write headers2 network messages instead of a bare record stream")
	return cmd
}

func (a *app) runCompress(cmd *cobra.Command) error {
	seg, err := a.fetchSegment(cmd.Context())
	if err != nil {
		return err
	}
	var data []byte
	if a.v.GetBool("framed") {
		data, err = a.compressFramed(seg.Anchor, seg.Headers)
	} else {
		data, err = codec.Compress(seg.Headers, seg.Anchor, a.codecOptions()...)
	}
	if err != nil {
		return err
	}
	if anchorOut := a.v.GetString("anchor-out"); anchorOut != "" {
		if err := writeOutput(cmd, anchorOut, seg.Anchor.Bytes()); err != nil {
			return err
		}
	}
	if err := writeOutput(cmd, a.v.GetString("out"), data); err != nil {
		return err
	}
	rawSize := uint64(len(seg.Headers) * header.Size) // #nosec G115
	a.logger.Info(
		"compressed headers",
		"component", "cli",
		"headers", len(seg.Headers),
		"raw", humanize.Bytes(rawSize),
		"compressed", humanize.Bytes(uint64(len(data))),
	)
	return nil
}

// compressFramed encodes headers as a series of headers2 messages of at most
// MaxHeaders2PerMsg records each
func (a *app) compressFramed(anchor header.RawHeader, headers []header.RawHeader) ([]byte, error) {
	params, err := a.networkParams()
	if err != nil {
		return nil, err
	}
	sender := headers2.NewSender(&anchor, a.codecOptions()...)
	var buf bytes.Buffer
	for start := 0; start < len(headers); start += headers2.MaxHeaders2PerMsg {
		end := min(start+headers2.MaxHeaders2PerMsg, len(headers))
		msg, err := sender.Encode(headers[start:end])
		if err != nil {
			return nil, err
		}
		if err := headers2.WriteMessage(&buf, msg, params.Net); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
