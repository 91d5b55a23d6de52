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
	"net/http"
	"net/url"

	"github.com/bufbuild/searchclient/endpoint"
	"github.com/bufbuild/searchclient/response"
	"go.uber.org/zap"
)

// RequestParams are the per-request settings that are not part of an
// endpoint. The client holds a template that is cloned for every request;
// only BaseURL is then filled in by node selection.
type RequestParams struct {
	// BaseURL is the base URL of the node the request is sent to.
	BaseURL string
	// Header is sent with the request. Setting a key replaces any earlier
	// value for it.
	Header http.Header
	// Query is added to the endpoint's own query string.
	Query url.Values
}

// Clone returns a deep copy of p.
func (p RequestParams) Clone() RequestParams {
	clone := RequestParams{BaseURL: p.BaseURL, Header: p.Header.Clone(), Query: url.Values{}}
	if clone.Header == nil {
		clone.Header = http.Header{}
	}
	for key, values := range p.Query {
		clone.Query[key] = append([]string(nil), values...)
	}
	return clone
}

// RequestOption customizes a single request.
type RequestOption interface {
	apply(*RequestParams)
}

// WithRequestHeader sets a header for one request, replacing any value the
// client would otherwise send for that key.
func WithRequestHeader(key, value string) RequestOption {
	return requestOptionFunc(func(params *RequestParams) {
		params.Header.Set(key, value)
	})
}

// WithRequestQueryParam adds a query parameter to one request.
func WithRequestQueryParam(key, value string) RequestOption {
	return requestOptionFunc(func(params *RequestParams) {
		params.Query.Add(key, value)
	})
}

// Result is the outcome of a request sent with SendAsync.
type Result[T any] struct {
	Value T
	Err   error
}

// Send sends the endpoint to the next node and returns the response
// deserialized into T. Whether a response counts as a success is decided
// by the evaluator for T (see [response.EvaluatorFor]); by default any 2xx
// status does.
//
// A response that is not a success is returned as a [response.APIError].
// See the package documentation for the other kinds of errors.
func Send[T any](ctx context.Context, client *Client, ep endpoint.Endpoint, options ...RequestOption) (T, error) {
	value, err := send[T](ctx, client, ep, options)
	client.metrics.observeRequest(outcome(err))
	return value, err
}

// SendAsync is like Send, but runs the exchange on its own goroutine. The
// returned channel receives exactly one result and is never closed.
func SendAsync[T any](ctx context.Context, client *Client, ep endpoint.Endpoint, options ...RequestOption) <-chan Result[T] {
	results := make(chan Result[T], 1)
	go func() {
		value, err := Send[T](ctx, client, ep, options...)
		results <- Result[T]{Value: value, Err: err}
	}()
	return results
}

func send[T any](ctx context.Context, client *Client, ep endpoint.Endpoint, options []RequestOption) (T, error) {
	var zero T
	params := client.params.Clone()
	for _, opt := range options {
		opt.apply(&params)
	}
	addr, err := client.source.Next(ctx)
	if err != nil {
		return zero, err
	}
	params.BaseURL = string(addr)

	req, err := ep.NewRequest(ctx, params.BaseURL, params.Header, params.Query)
	if err != nil {
		return zero, err
	}
	client.logger.Debug("sending request",
		zap.Stringer("method", ep.Method()),
		zap.String("node", params.BaseURL),
		zap.String("path", req.URL.Path),
	)
	resp, err := client.sender.Send(ctx, req)
	if err != nil {
		client.logger.Debug("request failed", zap.String("node", params.BaseURL), zap.Error(err))
		return zero, &TransportError{Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	if client.decodeSem != nil {
		if err := client.decodeSem.Acquire(ctx, 1); err != nil {
			return zero, err
		}
		defer client.decodeSem.Release(1)
	}
	head := response.NewHead(resp.StatusCode, resp.Header)
	maybe, err := response.Classify[T](head, response.NewUnbuffered(resp.Body))
	if err != nil {
		return zero, err
	}
	return response.Into[T](maybe)
}

type requestOptionFunc func(*RequestParams)

func (f requestOptionFunc) apply(params *RequestParams) {
	f(params)
}
