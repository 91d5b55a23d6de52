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
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bufbuild/searchclient/nodes"
	"github.com/bufbuild/searchclient/transport"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const defaultNode = "http://localhost:9200"

// ClientOption is an option used to customize the behavior of a client.
type ClientOption interface {
	apply(*clientOptions)
}

// WithSender configures the sender used to execute HTTP exchanges. If no
// WithSender option is used, the client creates a [transport.HTTPSender]
// and closes it when the client is closed. A sender provided here is never
// closed by the client.
func WithSender(sender transport.Sender) ClientOption {
	return clientOptionFunc(func(opts *clientOptions) {
		opts.sender = sender
	})
}

// WithStaticNodes configures a fixed set of node base URLs, used in
// round-robin order. With no addresses, every request fails with
// ErrNoNodes. This replaces any earlier WithSniffing or WithNodeSource.
func WithStaticNodes(addrs ...string) ClientOption {
	return clientOptionFunc(func(opts *clientOptions) {
		opts.nodeMode = nodeModeStatic
		opts.staticNodes = addrs
	})
}

// WithSniffing configures the client to discover the cluster's nodes
// through the nodes-info API, starting from the given seed base URL. If
// the cluster reports no nodes, the seed is used. This replaces any earlier
// WithStaticNodes or WithNodeSource.
func WithSniffing(seed string) ClientOption {
	return clientOptionFunc(func(opts *clientOptions) {
		opts.nodeMode = nodeModeSniff
		opts.sniffSeed = seed
	})
}

// WithSniffInterval configures how long a sniffed node set stays fresh.
// Zero disables periodic refreshes. If no WithSniffInterval option is used,
// a default of 5 minutes is used. It has no effect without WithSniffing.
func WithSniffInterval(interval time.Duration) ClientOption {
	return clientOptionFunc(func(opts *clientOptions) {
		opts.sniffOptions = append(opts.sniffOptions, nodes.WithInterval(interval))
	})
}

// WithSniffRetryInterval configures the minimum time between a failed
// sniffing refresh and the next attempt. It has no effect without
// WithSniffing.
func WithSniffRetryInterval(interval time.Duration) ClientOption {
	return clientOptionFunc(func(opts *clientOptions) {
		opts.sniffOptions = append(opts.sniffOptions, nodes.WithRetryInterval(interval))
	})
}

// WithNodeSource configures a custom source of node addresses. This
// replaces any earlier WithStaticNodes or WithSniffing.
func WithNodeSource(source nodes.Source) ClientOption {
	return clientOptionFunc(func(opts *clientOptions) {
		opts.nodeMode = nodeModeCustom
		opts.source = source
	})
}

// WithHeader adds a header sent with every request, including sniffing
// requests. A later header with the same key replaces an earlier one.
func WithHeader(key, value string) ClientOption {
	return clientOptionFunc(func(opts *clientOptions) {
		opts.headers = append(opts.headers, [2]string{key, value})
	})
}

// WithQueryParam adds a query parameter sent with every request.
func WithQueryParam(key, value string) ClientOption {
	return clientOptionFunc(func(opts *clientOptions) {
		opts.query = append(opts.query, [2]string{key, value})
	})
}

// WithLogger configures the logger for the client and its sniffer. If no
// WithLogger option is used, nothing is logged.
func WithLogger(logger *zap.Logger) ClientOption {
	return clientOptionFunc(func(opts *clientOptions) {
		opts.logger = logger
	})
}

// WithMetrics configures the collectors the client reports to. See
// NewMetrics.
func WithMetrics(metrics *Metrics) ClientOption {
	return clientOptionFunc(func(opts *clientOptions) {
		opts.metrics = metrics
	})
}

// WithDecodeConcurrency limits how many responses are classified and
// deserialized at the same time. Requests beyond the limit wait for a slot
// after their response head arrives. Zero, the default, means no limit.
func WithDecodeConcurrency(limit int) ClientOption {
	return clientOptionFunc(func(opts *clientOptions) {
		opts.decodeConcurrency = limit
	})
}

// Client sends requests to a search cluster. It is safe for concurrent use.
type Client struct {
	sender      transport.Sender
	ownedSender io.Closer
	source      nodes.Source
	params      RequestParams
	logger      *zap.Logger
	metrics     *Metrics
	decodeSem   *semaphore.Weighted
}

// NewClient returns a new client configured with the given options.
func NewClient(options ...ClientOption) *Client {
	var opts clientOptions
	for _, opt := range options {
		opt.apply(&opts)
	}
	opts.applyDefaults()

	client := &Client{
		sender:  opts.sender,
		logger:  opts.logger,
		metrics: opts.metrics,
		params: RequestParams{
			Header: http.Header{},
			Query:  url.Values{},
		},
	}
	if opts.sender == nil {
		sender := transport.NewHTTPSender()
		client.sender = sender
		client.ownedSender = sender
	}
	for _, kv := range opts.headers {
		client.params.Header.Set(kv[0], kv[1])
	}
	for _, kv := range opts.query {
		client.params.Query.Add(kv[0], kv[1])
	}
	if opts.decodeConcurrency > 0 {
		client.decodeSem = semaphore.NewWeighted(int64(opts.decodeConcurrency))
	}

	switch opts.nodeMode {
	case nodeModeCustom:
		client.source = opts.source
	case nodeModeSniff:
		prober := nodes.NewHTTPProber(client.sender, client.params.Header)
		sniffOptions := append([]nodes.SnifferOption{
			nodes.WithLogger(opts.logger),
			nodes.WithRefreshHook(func(addrs []nodes.Address, err error) {
				client.metrics.observeSniff(len(addrs), err)
			}),
		}, opts.sniffOptions...)
		client.source = nodes.NewSniffer(nodes.Address(opts.sniffSeed), prober, sniffOptions...)
		client.metrics.setNodes(1)
	default:
		addrs := make([]nodes.Address, len(opts.staticNodes))
		for i, addr := range opts.staticNodes {
			addrs[i] = nodes.Address(addr)
		}
		client.source = nodes.NewStatic(addrs...)
		client.metrics.setNodes(len(addrs))
	}
	return client
}

// Close releases the client's idle connections if it created its own
// sender. The client must not be used afterwards.
func (c *Client) Close() error {
	if c.ownedSender == nil {
		return nil
	}
	return c.ownedSender.Close()
}

// Source returns the source the client picks node addresses from.
func (c *Client) Source() nodes.Source {
	return c.source
}

type nodeMode int

const (
	nodeModeDefault nodeMode = iota
	nodeModeStatic
	nodeModeSniff
	nodeModeCustom
)

type clientOptionFunc func(*clientOptions)

func (f clientOptionFunc) apply(opts *clientOptions) {
	f(opts)
}

type clientOptions struct {
	sender            transport.Sender
	nodeMode          nodeMode
	staticNodes       []string
	sniffSeed         string
	sniffOptions      []nodes.SnifferOption
	source            nodes.Source
	headers           [][2]string
	query             [][2]string
	logger            *zap.Logger
	metrics           *Metrics
	decodeConcurrency int
}

func (opts *clientOptions) applyDefaults() {
	if opts.nodeMode == nodeModeDefault {
		opts.staticNodes = []string{defaultNode}
	}
	if opts.logger == nil {
		opts.logger = zap.NewNop()
	}
}
