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

package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bufbuild/searchclient"
	"github.com/bufbuild/searchclient/endpoint"
	"github.com/bufbuild/searchclient/response"
	"github.com/bufbuild/searchclient/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newFakeCluster(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"name":"n1","cluster_name":"test","version":{"number":"8.0.0"}}`))
	})
	mux.HandleFunc("GET /_nodes/http", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"nodes":{"a":{"http":{"publish_address":"10.0.0.1:9200"}}}}`))
	})
	mux.HandleFunc("GET /{index}/_doc/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"_index":"` + r.PathValue("index") + `","_id":"` + r.PathValue("id") + `","found":false}`))
	})
	mux.HandleFunc("PUT /{index}", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Opaque-Id") != "searchctl-test" {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":{"type":"security_exception","reason":"missing id"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"acknowledged":true}`))
	})
	svr := httptest.NewServer(mux)
	t.Cleanup(svr.Close)
	return svr
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	t.Parallel()

	svr := newFakeCluster(t)

	out, err := execute(t, "ping", "--url", svr.URL)
	require.NoError(t, err)
	assert.Contains(t, out, `"cluster_name": "test"`)

	out, err = execute(t, "nodes", "--url", svr.URL)
	require.NoError(t, err)
	assert.Contains(t, out, `"http://10.0.0.1:9200"`)

	out, err = execute(t, "get", "logs", "1", "--url", svr.URL)
	require.NoError(t, err)
	assert.Contains(t, out, `"found": false`)

	_, err = execute(t, "create-index", "logs", "--url", svr.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "security_exception")
}

func TestConfigFile(t *testing.T) {
	t.Parallel()

	svr := newFakeCluster(t)
	path := filepath.Join(t.TempDir(), "searchctl.yaml")
	contents := "url: " + svr.URL + "\ntimeout: 5s\nheaders:\n  X-Opaque-Id: searchctl-test\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	out, err := execute(t, "create-index", "logs", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"acknowledged": true`)
}

func TestHeadersApplyInKeyOrder(t *testing.T) {
	t.Parallel()

	var seen []string
	sender := transport.SenderFunc(func(_ context.Context, req *http.Request) (*http.Response, error) {
		seen = append(seen, req.Header.Get("X-A"))
		rec := httptest.NewRecorder()
		_, _ = rec.WriteString(`{"acknowledged":true}`)
		return rec.Result(), nil //nolint:bodyclose
	})
	cfg := &config{
		URL:     "http://localhost:9200",
		Headers: map[string]string{"X-A": "upper", "x-a": "lower", "X-b": "other"},
	}
	for range 10 {
		options := append(cfg.clientOptions(zap.NewNop()), searchclient.WithSender(sender))
		client := searchclient.NewClient(options...)
		_, err := searchclient.Send[response.CommandResponse](context.Background(), client, endpoint.Ping())
		require.NoError(t, err)
	}
	require.Len(t, seen, 10)
	for _, value := range seen {
		assert.Equal(t, "lower", value)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Parallel()

	cmd := newRootCommand()
	require.NoError(t, cmd.PersistentFlags().Parse([]string{"--sniff", "--timeout", "2s"}))
	cfg, err := loadConfig(cmd.PersistentFlags())
	require.NoError(t, err)
	assert.True(t, cfg.Sniff)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.SniffInterval)
	assert.Equal(t, "http://localhost:9200", cfg.URL)
	assert.Len(t, cfg.clientOptions(nil), 4)
}
