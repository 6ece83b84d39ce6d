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

// Package rpc fetches headers from a bitcoind or btcd node over JSON-RPC
package rpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/blinklabs-io/hdrcodec/header"
	"github.com/blinklabs-io/hdrcodec/source"
	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/rpcclient"
	"github.com/btcsuite/btcd/wire"
)

// ChainClient is the subset of rpcclient.Client used by Client
type ChainClient interface {
	GetBlockCount() (int64, error)
	GetBlockHash(blockHeight int64) (*chainhash.Hash, error)
	GetBlockHeader(blockHash *chainhash.Hash) (*wire.BlockHeader, error)
	GetBlockHeaderVerbose(blockHash *chainhash.Hash) (*btcjson.GetBlockHeaderVerboseResult, error)
	Shutdown()
}

// Config holds the node connection settings
type Config struct {
	Host     string
	User     string
	Password string
	Tls      bool
}

// Client is a source.Source backed by a node's JSON-RPC interface
type Client struct {
	client ChainClient
	logger *slog.Logger
}

// ClientOptionFunc represents a function used to modify the client
type ClientOptionFunc func(*Client)

// WithLogger specifies the logger
func WithLogger(logger *slog.Logger) ClientOptionFunc {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Dial creates a client for the node described by cfg. HTTP POST mode is
// used, which is the only mode bitcoind supports
func Dial(cfg Config, options ...ClientOptionFunc) (*Client, error) {
	if cfg.Host == "" {
		return nil, errors.New("no RPC host specified")
	}
	client, err := rpcclient.New(
		&rpcclient.ConnConfig{
			Host:         cfg.Host,
			User:         cfg.User,
			Pass:         cfg.Password,
			HTTPPostMode: true,
			DisableTLS:   !cfg.Tls,
		},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("create RPC client: %w", err)
	}
	return New(client, options...), nil
}

// New wraps an existing chain client
func New(client ChainClient, options ...ClientOptionFunc) *Client {
	c := &Client{
		client: client,
		logger: slog.Default(),
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// Close shuts down the underlying RPC client
func (c *Client) Close() {
	c.client.Shutdown()
}

func (c *Client) Headers(
	ctx context.Context,
	from chainhash.Hash,
	count int,
) ([]header.RawHeader, error) {
	verbose, err := c.client.GetBlockHeaderVerbose(&from)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", source.ErrNotFound, from, err)
	}
	tip, err := c.client.GetBlockCount()
	if err != nil {
		return nil, err
	}
	ret := make([]header.RawHeader, 0, count)
	hash := &from
	for height := int64(verbose.Height); height <= tip && len(ret) < count; height++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if height > int64(verbose.Height) {
			hash, err = c.client.GetBlockHash(height)
			if err != nil {
				return nil, fmt.Errorf("get block hash at %d: %w", height, err)
			}
		}
		bh, err := c.client.GetBlockHeader(hash)
		if err != nil {
			return nil, fmt.Errorf("get block header %s: %w", hash, err)
		}
		ret = append(ret, header.FromWire(bh))
	}
	c.logger.Debug(
		"fetched headers",
		"component", "source",
		"source", "rpc",
		"from", from.String(),
		"height", verbose.Height,
		"count", len(ret),
	)
	return ret, nil
}

func (c *Client) HashAtHeight(ctx context.Context, height int64) (chainhash.Hash, error) {
	if err := ctx.Err(); err != nil {
		return chainhash.Hash{}, err
	}
	hash, err := c.client.GetBlockHash(height)
	if err != nil {
		return chainhash.Hash{}, fmt.Errorf("%w: height %d: %w", source.ErrNotFound, height, err)
	}
	return *hash, nil
}
