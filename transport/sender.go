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

package transport

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/http2"
)

//nolint:gochecknoglobals
var (
	defaultDialer = &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
)

// Sender executes one HTTP exchange. Send must return a non-nil response
// or a non-nil error, never both. The caller is responsible for closing
// the response body.
type Sender interface {
	Send(ctx context.Context, req *http.Request) (*http.Response, error)
}

// SenderFunc adapts an ordinary function to the Sender interface.
type SenderFunc func(ctx context.Context, req *http.Request) (*http.Response, error)

// Send calls f(ctx, req).
func (f SenderFunc) Send(ctx context.Context, req *http.Request) (*http.Response, error) {
	return f(ctx, req)
}

// Error reports a failure to complete an exchange: a connection, DNS, or
// TLS failure, or a stream that broke while the body was being read. It is
// never classified as an API error.
type Error struct {
	Err error
}

func (e *Error) Error() string {
	return "transport: " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// FromClient returns a Sender that uses the given client.
func FromClient(client *http.Client) Sender {
	return SenderFunc(func(ctx context.Context, req *http.Request) (*http.Response, error) {
		return client.Do(req.WithContext(ctx))
	})
}

// Option is an option used to customize the behavior of an HTTPSender.
type Option interface {
	apply(*senderOptions)
}

// WithDialer replaces the function used to open connections to nodes, for
// both HTTP/1.1 and h2c. Without it, nodes are dialed with a 30-second
// timeout and TCP keep-alives every 30 seconds.
func WithDialer(dialFunc func(ctx context.Context, network, addr string) (net.Conn, error)) Option {
	return senderOptionFunc(func(opts *senderOptions) {
		opts.dialFunc = dialFunc
	})
}

// WithTLSConfig sets the TLS settings for "https" nodes and bounds each
// handshake by handshakeTimeout, which defaults to 10 seconds when zero.
// It has no effect on "http" or "h2c" nodes.
func WithTLSConfig(config *tls.Config, handshakeTimeout time.Duration) Option {
	return senderOptionFunc(func(opts *senderOptions) {
		opts.tlsClientConfig = config
		opts.tlsHandshakeTimeout = handshakeTimeout
	})
}

// WithRequestTimeout limits all exchanges to the given timeout, including
// reading the response body. Zero means no limit beyond the request context.
func WithRequestTimeout(duration time.Duration) Option {
	return senderOptionFunc(func(opts *senderOptions) {
		opts.requestTimeout = duration
	})
}

// WithMaxResponseHeaderBytes caps how many bytes of response headers a
// node may send before the exchange fails. The cap also bounds the header
// list size announced over h2c. Zero means the 1 MiB default.
func WithMaxResponseHeaderBytes(limit int) Option {
	return senderOptionFunc(func(opts *senderOptions) {
		opts.maxResponseHeaderBytes = int64(limit)
	})
}

// WithIdleConnectionTimeout closes pooled node connections that have not
// carried a request for the given duration. Zero keeps them until Close.
func WithIdleConnectionTimeout(duration time.Duration) Option {
	return senderOptionFunc(func(opts *senderOptions) {
		opts.idleConnTimeout = duration
	})
}

// HTTPSender is the default Sender. It routes "h2c" URLs to an HTTP/2
// plaintext transport and everything else to an [http.Transport].
type HTTPSender struct {
	client *http.Client
	h1     *http.Transport
	h2c    *http2.Transport
}

// NewHTTPSender returns a new sender that uses the given options.
func NewHTTPSender(options ...Option) *HTTPSender {
	var opts senderOptions
	for _, opt := range options {
		opt.apply(&opts)
	}
	opts.applyDefaults()

	h1 := &http.Transport{
		Proxy:                  http.ProxyFromEnvironment,
		DialContext:            opts.dialFunc,
		ForceAttemptHTTP2:      true,
		IdleConnTimeout:        opts.idleConnTimeout,
		TLSHandshakeTimeout:    opts.tlsHandshakeTimeout,
		TLSClientConfig:        opts.tlsClientConfig,
		MaxResponseHeaderBytes: opts.maxResponseHeaderBytes,
		ExpectContinueTimeout:  1 * time.Second,
	}
	dialFunc := opts.dialFunc
	h2c := &http2.Transport{
		AllowHTTP: true,
		DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
			return dialFunc(ctx, network, addr)
		},
		// h2c is plain-text only, so there is no TLS config to set.
		MaxHeaderListSize: uint32(opts.maxResponseHeaderBytes), //nolint:gosec
		IdleConnTimeout:   opts.idleConnTimeout,
	}
	sender := &HTTPSender{h1: h1, h2c: h2c}
	sender.client = &http.Client{
		Transport: schemeRoundTripper{h1: h1, h2c: h2c},
		// Redirects are surfaced as ordinary responses.
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
		Timeout: opts.requestTimeout,
	}
	return sender
}

// Send implements Sender.
func (s *HTTPSender) Send(ctx context.Context, req *http.Request) (*http.Response, error) {
	return s.client.Do(req.WithContext(ctx))
}

// Close closes any idle connections.
func (s *HTTPSender) Close() error {
	s.h1.CloseIdleConnections()
	s.h2c.CloseIdleConnections()
	return nil
}

type schemeRoundTripper struct {
	h1  http.RoundTripper
	h2c http.RoundTripper
}

func (s schemeRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Scheme != "h2c" {
		return s.h1.RoundTrip(req)
	}
	// The HTTP/2 transport expects the "http" scheme for plaintext.
	req = req.Clone(req.Context())
	req.URL.Scheme = "http"
	return s.h2c.RoundTrip(req)
}

type senderOptionFunc func(*senderOptions)

func (f senderOptionFunc) apply(opts *senderOptions) {
	f(opts)
}

type senderOptions struct {
	dialFunc               func(ctx context.Context, network, addr string) (net.Conn, error)
	maxResponseHeaderBytes int64
	idleConnTimeout        time.Duration
	tlsClientConfig        *tls.Config
	tlsHandshakeTimeout    time.Duration
	requestTimeout         time.Duration
}

func (opts *senderOptions) applyDefaults() {
	if opts.dialFunc == nil {
		opts.dialFunc = defaultDialer.DialContext
	}
	if opts.maxResponseHeaderBytes == 0 {
		opts.maxResponseHeaderBytes = 1 << 20
	}
	if opts.tlsHandshakeTimeout == 0 {
		opts.tlsHandshakeTimeout = 10 * time.Second
	}
}
