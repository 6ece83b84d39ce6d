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

// Package rest fetches headers from bitcoind's REST interface, which must be
// enabled with -rest=1
package rest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/blinklabs-io/hdrcodec/header"
	"github.com/blinklabs-io/hdrcodec/source"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

const (
	DefaultUrl     = "http://127.0.0.1:8332"
	DefaultTimeout = 30 * time.Second

	// MaxHeadersPerRequest is the most headers bitcoind returns per request
	MaxHeadersPerRequest = 2000
)

var ErrUnexpectedStatus = errors.New("unexpected HTTP status")

// Client is a source.Source backed by bitcoind REST
type Client struct {
	baseUrl    string
	httpClient *http.Client
	logger     *slog.Logger
}

// ClientOptionFunc represents a function used to modify the client
type ClientOptionFunc func(*Client)

// NewClient returns a client for the REST interface at baseUrl
func NewClient(baseUrl string, options ...ClientOptionFunc) *Client {
	c := &Client{
		baseUrl: strings.TrimRight(baseUrl, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: slog.Default(),
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// WithHttpClient specifies the HTTP client to use
func WithHttpClient(httpClient *http.Client) ClientOptionFunc {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithLogger specifies the logger
func WithLogger(logger *slog.Logger) ClientOptionFunc {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Headers fetches up to count headers starting at from, in requests of at
// most MaxHeadersPerRequest
func (c *Client) Headers(
	ctx context.Context,
	from chainhash.Hash,
	count int,
) ([]header.RawHeader, error) {
	ret := make([]header.RawHeader, 0, count)
	next := from
	// Requests after the first start at the last header already returned
	overlap := 0
	for len(ret) < count {
		want := min(count-len(ret)+overlap, MaxHeadersPerRequest)
		body, err := c.get(ctx, fmt.Sprintf("/rest/headers/%d/%s.bin", want, next))
		if err != nil {
			return nil, err
		}
		headers, err := header.ReadAll(bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		if overlap > 0 && len(headers) > 0 {
			headers = headers[1:]
		}
		c.logger.Debug(
			"fetched headers",
			"component", "source",
			"source", "rest",
			"from", next.String(),
			"count", len(headers),
		)
		if len(headers) == 0 {
			break
		}
		ret = append(ret, headers...)
		if len(headers) < want-overlap {
			// Reached the chain tip
			break
		}
		next = ret[len(ret)-1].Hash()
		overlap = 1
	}
	return ret, nil
}

// HashAtHeight looks up the hash of the block at height
func (c *Client) HashAtHeight(ctx context.Context, height int64) (chainhash.Hash, error) {
	body, err := c.get(ctx, fmt.Sprintf("/rest/blockhashbyheight/%d.hex", height))
	if err != nil {
		return chainhash.Hash{}, err
	}
	hash, err := chainhash.NewHashFromStr(strings.TrimSpace(string(body)))
	if err != nil {
		return chainhash.Hash{}, fmt.Errorf("invalid block hash: %w", err)
	}
	return *hash, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseUrl+path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", source.ErrNotFound, path)
	default:
		return nil, fmt.Errorf(
			"%w: %s: %s: %s",
			ErrUnexpectedStatus,
			path,
			resp.Status,
			strings.TrimSpace(string(body)),
		)
	}
}
