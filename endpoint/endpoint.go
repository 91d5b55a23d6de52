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

package endpoint

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Method is an HTTP method supported by the search cluster REST API.
type Method int

const (
	// Get is the HTTP GET method.
	Get Method = iota
	// Post is the HTTP POST method.
	Post
	// Put is the HTTP PUT method.
	Put
	// Delete is the HTTP DELETE method.
	Delete
	// Head is the HTTP HEAD method.
	Head
	// Patch is the HTTP PATCH method.
	Patch
)

func (m Method) String() string {
	switch m {
	case Get:
		return http.MethodGet
	case Post:
		return http.MethodPost
	case Put:
		return http.MethodPut
	case Delete:
		return http.MethodDelete
	case Head:
		return http.MethodHead
	case Patch:
		return http.MethodPatch
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// Endpoint is a (method, URL, optional body) triple describing one REST
// operation. The URL is a path, optionally with a query string, that is
// appended to a node's base URL.
//
// The zero value is a GET of the cluster root.
type Endpoint struct {
	method Method
	url    string
	body   []byte
}

// New returns an endpoint for the given method and URL. The body may be nil.
// The given body is not copied and must not be modified afterwards.
func New(method Method, url string, body []byte) Endpoint {
	return Endpoint{method: method, url: url, body: body}
}

// Method returns the endpoint's HTTP method.
func (e Endpoint) Method() Method {
	return e.method
}

// URL returns the path and query of the endpoint.
func (e Endpoint) URL() string {
	return e.url
}

// Body returns the request body, and false if the endpoint has none.
func (e Endpoint) Body() ([]byte, bool) {
	return e.body, e.body != nil
}

// NewRequest builds an HTTP request that sends this endpoint to the node
// at baseURL. Query parameters are merged with any query string already
// present on the endpoint URL. The header is cloned, so callers may reuse
// it across requests.
func (e Endpoint) NewRequest(
	ctx context.Context,
	baseURL string,
	header http.Header,
	query url.Values,
) (*http.Request, error) {
	target := joinURL(baseURL, e.url)
	if len(query) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + query.Encode()
	}
	var body io.Reader
	if e.body != nil {
		body = bytes.NewReader(e.body)
	}
	req, err := http.NewRequestWithContext(ctx, e.method.String(), target, body)
	if err != nil {
		return nil, fmt.Errorf("build %s request for %s: %w", e.method, target, err)
	}
	if header != nil {
		req.Header = header.Clone()
	}
	return req, nil
}

func joinURL(baseURL, path string) string {
	baseURL = strings.TrimRight(baseURL, "/")
	if path == "" {
		return baseURL + "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return baseURL + path
}
