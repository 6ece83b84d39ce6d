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
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/blinklabs-io/hdrcodec/cbor"
	"github.com/blinklabs-io/hdrcodec/header"
	"github.com/blinklabs-io/hdrcodec/internal/test"
	"github.com/blinklabs-io/hdrcodec/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testChainLength = 30

// writeHeadersFile writes the genesis header followed by a synthetic chain
// and returns the path and the chain
func writeHeadersFile(t *testing.T) (string, []header.RawHeader) {
	t.Helper()
	genesis := test.GenesisHeader()
	chain := append([]header.RawHeader{genesis}, test.BuildChain(genesis, testChainLength, nil)...)
	var buf bytes.Buffer
	require.NoError(t, header.WriteAll(&buf, chain))
	path := filepath.Join(t.TempDir(), "headers.bin")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path, chain
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCompressDecompress(t *testing.T) {
	headersFile, chain := writeHeadersFile(t)
	dir := t.TempDir()
	compressedFile := filepath.Join(dir, "headers.hc")
	anchorFile := filepath.Join(dir, "anchor.bin")
	outFile := filepath.Join(dir, "out.bin")

	_, err := runCommand(t,
		"compress",
		"--headers-file", headersFile,
		"--anchor-height", "5",
		"--count", "20",
		"--out", compressedFile,
		"--anchor-out", anchorFile,
	)
	require.NoError(t, err)
	compressed, err := os.ReadFile(compressedFile)
	require.NoError(t, err)
	assert.Less(t, len(compressed), 20*header.Size)

	_, err = runCommand(t,
		"decompress",
		"--in", compressedFile,
		"--anchor-file", anchorFile,
		"--out", outFile,
	)
	require.NoError(t, err)
	out, err := os.ReadFile(outFile)
	require.NoError(t, err)
	var expected bytes.Buffer
	require.NoError(t, header.WriteAll(&expected, chain[6:26]))
	assert.Equal(t, expected.Bytes(), out)
}

func TestCompressFramed(t *testing.T) {
	headersFile, chain := writeHeadersFile(t)
	dir := t.TempDir()
	compressedFile := filepath.Join(dir, "headers.msg")

	_, err := runCommand(t,
		"--network", "testnet3",
		"compress",
		"--framed",
		"--headers-file", headersFile,
		"--count", "10",
		"--out", compressedFile,
	)
	require.NoError(t, err)

	out, err := runCommand(t,
		"--network", "testnet3",
		"decompress",
		"--framed",
		"--in", compressedFile,
		"--anchor", hex.EncodeToString(chain[0].Bytes()),
		"--format", "json",
	)
	require.NoError(t, err)
	var decoded []header.RawHeader
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, chain[1:11], decoded)

	// The framing carries the network magic
	_, err = runCommand(t,
		"decompress",
		"--framed",
		"--in", compressedFile,
	)
	require.Error(t, err)
}

func TestDecompressGenesisAnchor(t *testing.T) {
	headersFile, chain := writeHeadersFile(t)
	compressedFile := filepath.Join(t.TempDir(), "headers.hc")
	_, err := runCommand(t,
		"compress",
		"--headers-file", headersFile,
		"--count", "8",
		"--out", compressedFile,
	)
	require.NoError(t, err)

	// Without an explicit anchor the mainnet genesis header is used
	out, err := runCommand(t, "decompress", "--in", compressedFile)
	require.NoError(t, err)
	var expected bytes.Buffer
	require.NoError(t, header.WriteAll(&expected, chain[1:9]))
	assert.Equal(t, expected.Bytes(), []byte(out))
}

func TestDecompressFormatFromEnv(t *testing.T) {
	headersFile, _ := writeHeadersFile(t)
	compressedFile := filepath.Join(t.TempDir(), "headers.hc")
	_, err := runCommand(t,
		"compress",
		"--headers-file", headersFile,
		"--count", "30",
		"--out", compressedFile,
	)
	require.NoError(t, err)

	t.Setenv("HDRCODEC_FORMAT", "cbor")
	out, err := runCommand(t, "decompress", "--in", compressedFile)
	require.NoError(t, err)
	// Definite-length array of 30 items
	require.Greater(t, len(out), 2)
	assert.Equal(t, []byte{0x98, 30}, []byte(out)[:2])
}

func TestConfigFile(t *testing.T) {
	headersFile, _ := writeHeadersFile(t)
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "hdrcodec.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("format: json\ncount: 4\n"), 0o600))
	compressedFile := filepath.Join(dir, "headers.hc")
	_, err := runCommand(t,
		"--config", cfgFile,
		"compress",
		"--headers-file", headersFile,
		"--out", compressedFile,
	)
	require.NoError(t, err)
	out, err := runCommand(t, "--config", cfgFile, "decompress", "--in", compressedFile)
	require.NoError(t, err)
	var decoded []header.RawHeader
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Len(t, decoded, 4)
}

func TestRoundtrip(t *testing.T) {
	headersFile, _ := writeHeadersFile(t)
	out, err := runCommand(t,
		"roundtrip",
		"--headers-file", headersFile,
		"--count", "30",
		"--segment-size", "7",
		"--workers", "3",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Headers")
	assert.Regexp(t, `Segments\s+5\n`, out)
	assert.Contains(t, out, "2.4 kB")
}

func TestMetricsServer(t *testing.T) {
	headersFile, _ := writeHeadersFile(t)
	_, err := runCommand(t,
		"--metrics-addr", "127.0.0.1:0",
		"roundtrip",
		"--headers-file", headersFile,
		"--count", "10",
	)
	require.NoError(t, err)
}

func TestSourceSelection(t *testing.T) {
	headersFile, _ := writeHeadersFile(t)
	_, err := runCommand(t, "compress")
	require.ErrorContains(t, err, "exactly one of")
	_, err = runCommand(t, "compress", "--headers-file", headersFile, "--rest", "http://127.0.0.1:1")
	require.ErrorContains(t, err, "exactly one of")
	_, err = runCommand(t, "compress", "--headers-file", headersFile, "--count", "0")
	require.ErrorContains(t, err, "invalid count")
}

func TestCompressExact(t *testing.T) {
	headersFile, _ := writeHeadersFile(t)
	out := filepath.Join(t.TempDir(), "headers.hc")
	// Only testChainLength headers follow the genesis anchor
	_, err := runCommand(t,
		"compress",
		"--headers-file", headersFile,
		"--count", "31",
		"--out", out,
	)
	require.NoError(t, err)
	_, err = runCommand(t,
		"compress",
		"--headers-file", headersFile,
		"--count", "31",
		"--exact",
		"--out", out,
	)
	require.ErrorIs(t, err, source.ErrShortResult)
	_, err = runCommand(t,
		"compress",
		"--headers-file", headersFile,
		"--count", "30",
		"--exact",
		"--out", out,
	)
	require.NoError(t, err)
}

func TestCompressCborHeadersFile(t *testing.T) {
	_, chain := writeHeadersFile(t)
	data, err := cbor.EncodeList(chain)
	require.NoError(t, err)
	dir := t.TempDir()
	headersFile := filepath.Join(dir, "headers.cbor")
	require.NoError(t, os.WriteFile(headersFile, data, 0o600))
	compressedFile := filepath.Join(dir, "headers.hc")
	outFile := filepath.Join(dir, "out.bin")

	_, err = runCommand(t,
		"compress",
		"--headers-file", headersFile,
		"--headers-format", "cbor",
		"--count", "10",
		"--out", compressedFile,
	)
	require.NoError(t, err)
	_, err = runCommand(t,
		"decompress",
		"--in", compressedFile,
		"--anchor", hex.EncodeToString(chain[0].Bytes()),
		"--out", outFile,
	)
	require.NoError(t, err)
	raw, err := os.ReadFile(outFile)
	require.NoError(t, err)
	decoded, err := header.ReadAll(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, chain[1:11], decoded)

	_, err = runCommand(t,
		"compress",
		"--headers-file", headersFile,
		"--count", "10",
		"--out", compressedFile,
	)
	require.Error(t, err)
}

func TestDecompressErrors(t *testing.T) {
	dir := t.TempDir()
	badFile := filepath.Join(dir, "bad.hc")
	// Bitfield asking for a literal record, then nothing
	require.NoError(t, os.WriteFile(badFile, []byte{0x07}, 0o600))
	_, err := runCommand(t, "decompress", "--in", badFile)
	require.ErrorContains(t, err, "after 0 headers")
	_, err = runCommand(t, "decompress", "--in", badFile, "--anchor", "00")
	require.ErrorIs(t, err, header.ErrInvalidLength)
	_, err = runCommand(t, "decompress", "--in", badFile, "--anchor", "00", "--anchor-file", badFile)
	require.ErrorContains(t, err, "mutually exclusive")
}

func TestSplitSegments(t *testing.T) {
	anchor := test.GenesisHeader()
	chain := test.BuildChain(anchor, 10, nil)
	jobs := splitSegments(anchor, chain, 4)
	require.Len(t, jobs, 3)
	assert.Equal(t, anchor, jobs[0].Anchor)
	assert.Equal(t, chain[3], jobs[1].Anchor)
	assert.Equal(t, chain[7], jobs[2].Anchor)
	assert.Len(t, jobs[2].Headers, 2)
}

func TestParseLogLevel(t *testing.T) {
	level, err := parseLogLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
	level, err = parseLogLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)
	_, err = parseLogLevel("loud")
	require.Error(t, err)
}

func TestNetworkByName(t *testing.T) {
	for _, name := range []string{"mainnet", "testnet3", "regtest", "signet", "simnet"} {
		params, err := networkByName(name)
		require.NoError(t, err, name)
		assert.NotNil(t, params.GenesisBlock)
	}
	_, err := networkByName("litecoin")
	require.Error(t, err)
}
