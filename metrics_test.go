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

package searchclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bufbuild/searchclient/endpoint"
	"github.com/bufbuild/searchclient/response"
	"github.com/bufbuild/searchclient/transport"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	t.Parallel()

	status := http.StatusOK
	sender := transport.SenderFunc(func(_ context.Context, req *http.Request) (*http.Response, error) {
		rec := httptest.NewRecorder()
		switch req.URL.Path {
		case "/_nodes/http":
			_, _ = rec.WriteString(`{"nodes":{"a":{"http":{"publish_address":"10.0.0.1:9200"}},"b":{"http":{"publish_address":"10.0.0.2:9200"}}}}`)
		case "/broken":
			return nil, errors.New("connection reset")
		default:
			rec.WriteHeader(status)
			_, _ = rec.WriteString(`{"error":{"type":"index_not_found_exception","index":"x"}}`)
		}
		return rec.Result(), nil //nolint:bodyclose
	})
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)
	client := NewClient(
		WithSender(sender),
		WithSniffing("http://seed:9200"),
		WithMetrics(metrics),
	)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.nodes), 0)

	ctx := context.Background()
	_, err := Send[map[string]any](ctx, client, endpoint.Ping())
	require.NoError(t, err)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.sniffs.WithLabelValues("success")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.nodes), 0)

	status = http.StatusNotFound
	_, err = Send[map[string]any](ctx, client, endpoint.Ping())
	require.Error(t, err)
	_, err = Send[map[string]any](ctx, client, endpoint.New(endpoint.Get, "/broken", nil))
	require.Error(t, err)

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.requests.WithLabelValues(outcomeOK)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.requests.WithLabelValues(outcomeAPIError)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.requests.WithLabelValues(outcomeTransportError)), 0)
	count, err := testutil.GatherAndCount(registry, "searchclient_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestOutcome(t *testing.T) {
	t.Parallel()

	assert.Equal(t, outcomeOK, outcome(nil))
	assert.Equal(t, outcomeAPIError, outcome(&response.OtherError{}))
	assert.Equal(t, outcomeParseError, outcome(&response.ParseError{Err: errors.New("eof")}))
	assert.Equal(t, outcomeTransportError, outcome(&TransportError{Err: errors.New("refused")}))
	assert.Equal(t, outcomeNoNode, outcome(ErrNoNodes))
	assert.Equal(t, outcomeOther, outcome(context.Canceled))
}

func TestRequestParamsClone(t *testing.T) {
	t.Parallel()

	params := RequestParams{
		BaseURL: "http://a:9200",
		Header:  http.Header{"Authorization": {"x"}},
		Query:   map[string][]string{"pretty": {"true"}},
	}
	clone := params.Clone()
	clone.BaseURL = "http://b:9200"
	clone.Header.Set("Authorization", "y")
	clone.Query.Add("pretty", "false")
	assert.Equal(t, "http://a:9200", params.BaseURL)
	assert.Equal(t, "x", params.Header.Get("Authorization"))
	assert.Equal(t, []string{"true"}, params.Query["pretty"])

	empty := RequestParams{}.Clone()
	assert.NotNil(t, empty.Header)
	assert.NotNil(t, empty.Query)
}
