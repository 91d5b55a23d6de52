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

package nodes

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/bufbuild/searchclient/endpoint"
	"github.com/bufbuild/searchclient/response"
	"github.com/bufbuild/searchclient/transport"
	"github.com/tidwall/gjson"
)

// Prober performs one node discovery against the cluster.
type Prober interface {
	// Probe asks the node at via for the current set of node addresses. An
	// empty result is not an error.
	Probe(ctx context.Context, via Address) ([]Address, error)
}

// ProberFunc adapts an ordinary function to the Prober interface.
type ProberFunc func(ctx context.Context, via Address) ([]Address, error)

// Probe calls f(ctx, via).
func (f ProberFunc) Probe(ctx context.Context, via Address) ([]Address, error) {
	return f(ctx, via)
}

// NewHTTPProber returns a prober that sends a single GET to the nodes-info
// endpoint, filtered down to each node's HTTP publish address. The given
// header, which may be nil, is sent with every probe.
func NewHTTPProber(sender transport.Sender, header http.Header) Prober {
	return &httpProber{sender: sender, header: header}
}

type httpProber struct {
	sender transport.Sender
	header http.Header
}

func (p *httpProber) Probe(ctx context.Context, via Address) ([]Address, error) {
	scheme := "http"
	if u, err := url.Parse(string(via)); err == nil && u.Scheme != "" {
		scheme = u.Scheme
	}
	req, err := endpoint.NodesInfo().NewRequest(ctx, string(via), p.header, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.sender.Send(ctx, req)
	if err != nil {
		return nil, &transport.Error{Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	head := response.NewHead(resp.StatusCode, resp.Header)
	body := response.NewUnbuffered(resp.Body)
	if !head.IsSuccess() {
		return nil, fmt.Errorf("nodes info from %s: %w", via, response.ParseErr(body))
	}
	info, _, err := body.Buffer()
	if err != nil {
		return nil, fmt.Errorf("nodes info from %s: %w", via, err)
	}
	return ParseNodesInfo(scheme, info), nil
}

// ParseNodesInfo extracts every nodes.*.http.publish_address from a
// nodes-info response. Nodes without an HTTP publish address are skipped.
// Each address is prefixed with the given scheme. A publish address of the
// form "hostname/ip:port" contributes only its "ip:port" part.
func ParseNodesInfo(scheme string, info gjson.Result) []Address {
	var addrs []Address
	info.Get("nodes").ForEach(func(_, node gjson.Result) bool {
		publish := node.Get("http.publish_address")
		if publish.Type != gjson.String || publish.Str == "" {
			return true
		}
		hostPort := publish.Str
		if i := strings.LastIndexByte(hostPort, '/'); i >= 0 {
			hostPort = hostPort[i+1:]
		}
		addrs = append(addrs, Address(scheme+"://"+hostPort))
		return true
	})
	return addrs
}
