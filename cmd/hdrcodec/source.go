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
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/blinklabs-io/hdrcodec/header"
	"github.com/blinklabs-io/hdrcodec/source"
	"github.com/blinklabs-io/hdrcodec/source/file"
	"github.com/blinklabs-io/hdrcodec/source/rest"
	"github.com/blinklabs-io/hdrcodec/source/rpc"
	"github.com/spf13/cobra"
)

// addSourceFlags adds the flags that select where uncompressed headers are
// read from
func addSourceFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("headers-file", "", "read headers from a file of back-to-back 80-byte headers")
	flags.Int64("start-height", 0, "height of the first header in --headers-file")
	flags.String("headers-format", file.FormatRaw, "format of --headers-file (raw, cbor)")
	flags.String("rest", "", "read headers from a bitcoind REST endpoint, e.g. http://127.0.0.1:8332")
	flags.String("rpc", "", "read headers from a node's JSON-RPC interface at host:port")
	flags.String("rpc-user", "", "JSON-RPC username")
	flags.String("rpc-pass", "", "JSON-RPC password")
	flags.Bool("rpc-tls", false, "use TLS for JSON-RPC")
	flags.Int64("anchor-height", 0, "height of the anchor header")
	flags.Int("count", 2000, "number of headers after the anchor")
	flags.Bool("exact", false, "fail if the source has fewer than --count headers after the anchor")
}

// openSource returns the configured header source and a function that
// releases it
func (a *app) openSource() (source.Source, func(), error) {
	var selected []string
	for _, key := range []string{"headers-file", "rest", "rpc"} {
		if a.v.GetString(key) != "" {
			selected = append(selected, "--"+key)
		}
	}
	if len(selected) != 1 {
		return nil, nil, fmt.Errorf(
			"exactly one of --headers-file, --rest or --rpc is required, got %d",
			len(selected),
		)
	}
	switch {
	case a.v.GetString("headers-file") != "":
		src, err := file.Open(
			a.v.GetString("headers-file"),
			file.WithStartHeight(a.v.GetInt64("start-height")),
			file.WithFormat(a.v.GetString("headers-format")),
		)
		if err != nil {
			return nil, nil, err
		}
		return src, func() {}, nil
	case a.v.GetString("rest") != "":
		return rest.NewClient(a.v.GetString("rest"), rest.WithLogger(a.logger)), func() {}, nil
	default:
		client, err := rpc.Dial(
			rpc.Config{
				Host:     a.v.GetString("rpc"),
				User:     a.v.GetString("rpc-user"),
				Password: a.v.GetString("rpc-pass"),
				Tls:      a.v.GetBool("rpc-tls"),
			},
			rpc.WithLogger(a.logger),
		)
		if err != nil {
			return nil, nil, err
		}
		return client, client.Close, nil
	}
}

// fetchSegment fetches the anchor and the headers that follow it from the
// configured source
func (a *app) fetchSegment(ctx context.Context) (source.Segment, error) {
	count := a.v.GetInt("count")
	if count <= 0 {
		return source.Segment{}, fmt.Errorf("invalid count: %d", count)
	}
	src, closeFn, err := a.openSource()
	if err != nil {
		return source.Segment{}, err
	}
	defer closeFn()
	fetch := source.FetchSegment
	if a.v.GetBool("exact") {
		fetch = source.FetchSegmentExact
	}
	seg, err := fetch(ctx, src, a.v.GetInt64("anchor-height"), count)
	if err != nil {
		return source.Segment{}, err
	}
	a.logger.Info(
		"fetched headers",
		"component", "cli",
		"anchor", seg.Anchor.Hash().String(),
		"height", seg.Height,
		"count", len(seg.Headers),
	)
	return seg, nil
}

// loadAnchor returns the anchor given by --anchor or --anchor-file, falling
// back to the genesis header of the selected network
func (a *app) loadAnchor() (header.RawHeader, error) {
	anchorHex := a.v.GetString("anchor")
	anchorFile := a.v.GetString("anchor-file")
	switch {
	case anchorHex != "" && anchorFile != "":
		return header.RawHeader{}, errors.New("--anchor and --anchor-file are mutually exclusive")
	case anchorHex != "":
		data, err := hex.DecodeString(strings.TrimSpace(anchorHex))
		if err != nil {
			return header.RawHeader{}, fmt.Errorf("invalid anchor: %w", err)
		}
		return header.FromBytes(data)
	case anchorFile != "":
		data, err := os.ReadFile(anchorFile) // #nosec G304
		if err != nil {
			return header.RawHeader{}, err
		}
		return header.FromBytes(data)
	default:
		params, err := a.networkParams()
		if err != nil {
			return header.RawHeader{}, err
		}
		return header.FromWire(&params.GenesisBlock.Header), nil
	}
}

// openInput opens path for reading, or returns stdin for "" and "-"
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	return os.Open(path) // #nosec G304
}

// writeOutput writes data to path, or to stdout for "" and "-"
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := io.Copy(cmd.OutOrStdout(), bytes.NewReader(data))
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
