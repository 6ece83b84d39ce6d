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

package rest_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/blinklabs-io/hdrcodec/header"
	"github.com/blinklabs-io/hdrcodec/internal/test"
	"github.com/blinklabs-io/hdrcodec/source"
	"github.com/blinklabs-io/hdrcodec/source/rest"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNode struct {
	chain    []header.RawHeader
	index    map[chainhash.Hash]int
	requests atomic.Int32
}

func newFakeNode(count int) *fakeNode {
	genesis := test.GenesisHeader()
	n := &fakeNode{
		chain: append([]header.RawHeader{genesis}, test.BuildChain(genesis, count, nil)...),
		index: make(map[chainhash.Hash]int),
	}
	for idx, h := range n.chain {
		n.index[h.Hash()] = idx
	}
	return n
}

func (n *fakeNode) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /rest/headers/{count}/{file}", func(w http.ResponseWriter, r *http.Request) {
		n.requests.Add(1)
		count, err := strconv.Atoi(r.PathValue("count"))
		if err != nil || count > rest.MaxHeadersPerRequest {
			http.Error(w, "bad count", http.StatusBadRequest)
			return
		}
		hash, err := chainhash.NewHashFromStr(strings.TrimSuffix(r.PathValue("file"), ".bin"))
		if err != nil {
			http.Error(w, "bad hash", http.StatusBadRequest)
			return
		}
		idx, ok := n.index[*hash]
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		var buf bytes.Buffer
		_ = header.WriteAll(&buf, n.chain[idx:min(idx+count, len(n.chain))])
		_, _ = w.Write(buf.Bytes())
	})
	mux.HandleFunc("GET /rest/blockhashbyheight/{file}", func(w http.ResponseWriter, r *http.Request) {
		height, err := strconv.Atoi(strings.TrimSuffix(r.PathValue("file"), ".hex"))
		if err != nil {
			http.Error(w, "bad height", http.StatusBadRequest)
			return
		}
		if height < 0 || height >= len(n.chain) {
			http.Error(w, "Block height out of range", http.StatusNotFound)
			return
		}
		fmt.Fprintf(w, "%s\n", n.chain[height].Hash())
	})
	return mux
}

func TestHashAtHeight(t *testing.T) {
	node := newFakeNode(10)
	srv := httptest.NewServer(node.handler())
	defer srv.Close()
	client := rest.NewClient(srv.URL + "/")
	hash, err := client.HashAtHeight(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, node.chain[7].Hash(), hash)
	_, err = client.HashAtHeight(context.Background(), 11)
	require.ErrorIs(t, err, source.ErrNotFound)
}

func TestHeaders(t *testing.T) {
	node := newFakeNode(10)
	srv := httptest.NewServer(node.handler())
	defer srv.Close()
	client := rest.NewClient(srv.URL, rest.WithHttpClient(srv.Client()))
	ret, err := client.Headers(context.Background(), node.chain[2].Hash(), 5)
	require.NoError(t, err)
	assert.Equal(t, node.chain[2:7], ret)
	assert.Equal(t, int32(1), node.requests.Load())
}

func TestHeadersPaged(t *testing.T) {
	node := newFakeNode(rest.MaxHeadersPerRequest + 500)
	srv := httptest.NewServer(node.handler())
	defer srv.Close()
	client := rest.NewClient(srv.URL)
	count := rest.MaxHeadersPerRequest + 100
	ret, err := client.Headers(context.Background(), node.chain[1].Hash(), count)
	require.NoError(t, err)
	require.Len(t, ret, count)
	assert.Equal(t, node.chain[1:1+count], ret)
	require.NoError(t, header.VerifyLinkage(node.chain[0], ret))
	assert.Equal(t, int32(2), node.requests.Load())
}

func TestHeadersAtTip(t *testing.T) {
	node := newFakeNode(10)
	srv := httptest.NewServer(node.handler())
	defer srv.Close()
	client := rest.NewClient(srv.URL)
	ret, err := client.Headers(context.Background(), node.chain[8].Hash(), 50)
	require.NoError(t, err)
	assert.Equal(t, node.chain[8:], ret)
}

func TestHeadersUnknownHash(t *testing.T) {
	node := newFakeNode(10)
	srv := httptest.NewServer(node.handler())
	defer srv.Close()
	client := rest.NewClient(srv.URL)
	_, err := client.Headers(context.Background(), chainhash.Hash{1}, 5)
	require.ErrorIs(t, err, source.ErrNotFound)
}

func TestUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "REST is disabled", http.StatusForbidden)
	}))
	defer srv.Close()
	client := rest.NewClient(srv.URL)
	_, err := client.HashAtHeight(context.Background(), 0)
	require.ErrorIs(t, err, rest.ErrUnexpectedStatus)
	assert.Contains(t, err.Error(), "REST is disabled")
}

func TestFetchSegment(t *testing.T) {
	node := newFakeNode(30)
	srv := httptest.NewServer(node.handler())
	defer srv.Close()
	seg, err := source.FetchSegment(context.Background(), rest.NewClient(srv.URL), 10, 15)
	require.NoError(t, err)
	assert.Equal(t, node.chain[10], seg.Anchor)
	assert.Equal(t, node.chain[11:26], seg.Headers)
}
