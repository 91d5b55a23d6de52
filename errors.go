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
	"errors"

	"github.com/bufbuild/searchclient/nodes"
	"github.com/bufbuild/searchclient/response"
	"github.com/bufbuild/searchclient/transport"
)

// TransportError reports a connection, DNS or TLS failure, or a response
// stream that broke while it was being read. It is never classified as an
// API error.
type TransportError = transport.Error

// ErrNoNodes is returned when there is no node to send a request to.
var ErrNoNodes = nodes.ErrEmpty

const (
	outcomeOK             = "ok"
	outcomeAPIError       = "api_error"
	outcomeParseError     = "parse_error"
	outcomeTransportError = "transport_error"
	outcomeNoNode         = "no_node"
	outcomeOther          = "other"
)

// outcome buckets the result of one request for logging and metrics.
func outcome(err error) string {
	var (
		apiErr       response.APIError
		parseErr     *response.ParseError
		transportErr *TransportError
	)
	switch {
	case err == nil:
		return outcomeOK
	case errors.As(err, &apiErr):
		return outcomeAPIError
	case errors.As(err, &parseErr):
		return outcomeParseError
	case errors.As(err, &transportErr):
		return outcomeTransportError
	case errors.Is(err, ErrNoNodes):
		return outcomeNoNode
	default:
		return outcomeOther
	}
}
