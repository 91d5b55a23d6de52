// Copyright 2023 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package nodes_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bufbuild/searchclient/endpoint"
	"github.com/bufbuild/searchclient/nodes"
	"github.com/bufbuild/searchclient/response"
	"github.com/bufbuild/searchclient/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestParseNodesInfo(t *testing.T) {
	t.Parallel()

	info := gjson.Parse(`{
		"nodes": {
			"node-1": {"http": {"publish_address": "10.0.0.1:9200"}},
			"node-2": {"http": {}},
			"node-3": {"name": "no-http"},
			"node-4": {"http": {"publish_address": "search-4/10.0.0.4:9200"}},
			"node-5": {"http": {"publish_address": 9200}}
		}
	}`)
	assert.Equal(t,
		[]nodes.Address{"https://10.0.0.1:9200", "https://10.0.0.4:9200"},
		nodes.ParseNodesInfo("https", info),
	)
	assert.Empty(t, nodes.ParseNodesInfo("http", gjson.Parse(`{}`)))
}

func TestHTTPProber(t *testing.T) {
	t.Parallel()

	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/_nodes/http", r.URL.Path)
		assert.Equal(t, endpoint.NodesInfoFilterPath, r.URL.Query().Get("filter_path"))
		assert.Equal(t, "ApiKey secret", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"nodes":{"a":{"http":{"publish_address":"127.0.0.1:9201"}},"b":{"http":{"publish_address":"127.0.0.1:9202"}}}}`))
	}))
	t.Cleanup(svr.Close)

	header := http.Header{}
	header.Set("Authorization", "ApiKey secret")
	prober := nodes.NewHTTPProber(transport.FromClient(svr.Client()), header)
	addrs, err := prober.Probe(context.Background(), nodes.Address(svr.URL))
	require.NoError(t, err)
	assert.Equal(t, []nodes.Address{"http://127.0.0.1:9201", "http://127.0.0.1:9202"}, addrs)
}

func TestHTTPProberErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "api error",
			status: http.StatusForbidden,
			body:   `{"error":{"type":"security_exception","reason":"denied"}}`,
			check: func(t *testing.T, err error) {
				t.Helper()
				var other *response.OtherError
				require.ErrorAs(t, err, &other)
				assert.Equal(t, "security_exception", other.Raw["type"])
			},
		},
		{
			name:   "malformed",
			status: http.StatusOK,
			body:   `{"nodes":`,
			check: func(t *testing.T, err error) {
				t.Helper()
				var parseErr *response.ParseError
				require.ErrorAs(t, err, &parseErr)
			},
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(testCase.status)
				_, _ = w.Write([]byte(testCase.body))
			}))
			t.Cleanup(svr.Close)

			prober := nodes.NewHTTPProber(transport.FromClient(svr.Client()), nil)
			_, err := prober.Probe(context.Background(), nodes.Address(svr.URL))
			require.Error(t, err)
			testCase.check(t, err)
		})
	}
}

func TestHTTPProberTransportError(t *testing.T) {
	t.Parallel()

	sendErr := errors.New("connection refused")
	sender := transport.SenderFunc(func(context.Context, *http.Request) (*http.Response, error) {
		return nil, sendErr
	})
	prober := nodes.NewHTTPProber(sender, nil)
	_, err := prober.Probe(context.Background(), "http://10.0.0.1:9200")
	var transportErr *transport.Error
	require.ErrorAs(t, err, &transportErr)
	assert.ErrorIs(t, err, sendErr)
}

func TestSnifferWithHTTPProber(t *testing.T) {
	t.Parallel()

	var probes int
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/_nodes") {
			probes++
			// No publish addresses at all: the sniffer keeps the seed.
			_, _ = w.Write([]byte(`{}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(svr.Close)

	seed := nodes.Address(svr.URL)
	sniffer := nodes.NewSniffer(seed, nodes.NewHTTPProber(transport.FromClient(svr.Client()), nil))
	for range 3 {
		addr, err := sniffer.Next(context.Background())
		require.NoError(t, err)
		assert.Equal(t, seed, addr)
	}
	assert.Equal(t, 1, probes)
}
