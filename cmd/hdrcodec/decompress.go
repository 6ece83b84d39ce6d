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
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/blinklabs-io/hdrcodec/cbor"
	"github.com/blinklabs-io/hdrcodec/codec"
	"github.com/blinklabs-io/hdrcodec/header"
	"github.com/blinklabs-io/hdrcodec/protocol/headers2"
	"github.com/spf13/cobra"
)

// Output formats for decompressed headers
const (
	formatRaw  = "raw"
	formatJson = "json"
	formatCbor = "cbor"
)

func newDecompressCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decompress",
		Short: "Decompress a record stream back into full headers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runDecompress(cmd)
		},
	}
	cmd.Flags().String("in", "-", "input file")
	cmd.Flags().String("out", "-", "output file")
	cmd.Flags().String("anchor", "", "anchor header as 160 hex characters")
	cmd.Flags().String("anchor-file", "", "file holding the 80-byte anchor header")
	cmd.Flags().String("format", formatRaw, "output format (raw, json, cbor)")
	cmd.Flags().Bool("framed", false, "read headers2 network messages instead of a bare record stream")
	return cmd
}

func (a *app) runDecompress(cmd *cobra.Command) error {
	anchor, err := a.loadAnchor()
	if err != nil {
		return err
	}
	in, err := openInput(cmd, a.v.GetString("in"))
	if err != nil {
		return err
	}
	defer in.Close()
	var headers []header.RawHeader
	if a.v.GetBool("framed") {
		headers, err = a.decompressFramed(in, anchor)
	} else {
		var data []byte
		data, err = io.ReadAll(in)
		if err != nil {
			return err
		}
		headers, err = codec.Decompress(data, anchor, a.codecOptions()...)
	}
	if err != nil {
		return fmt.Errorf("after %d headers: %w", len(headers), err)
	}
	out, err := formatHeaders(headers, a.v.GetString("format"))
	if err != nil {
		return err
	}
	if err := writeOutput(cmd, a.v.GetString("out"), out); err != nil {
		return err
	}
	a.logger.Info(
		"decompressed headers",
		"component", "cli",
		"headers", len(headers),
		"anchor", anchor.Hash().String(),
	)
	return nil
}

func (a *app) decompressFramed(r io.Reader, anchor header.RawHeader) ([]header.RawHeader, error) {
	params, err := a.networkParams()
	if err != nil {
		return nil, err
	}
	receiver := headers2.NewReceiver(&anchor, a.codecOptions()...)
	var ret []header.RawHeader
	for {
		msg, err := headers2.ReadMessage(r, params.Net)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return ret, nil
			}
			return ret, err
		}
		headers, err := receiver.Decode(msg)
		ret = append(ret, headers...)
		if err != nil {
			return ret, err
		}
	}
}

func formatHeaders(headers []header.RawHeader, format string) ([]byte, error) {
	switch format {
	case formatRaw:
		var buf bytes.Buffer
		if err := header.WriteAll(&buf, headers); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case formatJson:
		if headers == nil {
			headers = []header.RawHeader{}
		}
		out, err := json.MarshalIndent(headers, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(out, '\n'), nil
	case formatCbor:
		return cbor.EncodeList(headers)
	default:
		return nil, fmt.Errorf("unknown output format: %s", format)
	}
}
