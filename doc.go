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

// Package searchclient is the request/response core of a client for a
// distributed search cluster. It picks the node each request goes to,
// sends the request over an injected [transport.Sender], and turns the
// response into either a typed value or a structured error.
//
// To create a client use the [NewClient] function, then issue requests
// with [Send] or [SendAsync]:
//
//	client := searchclient.NewClient(
//	    searchclient.WithSniffing("http://10.0.0.1:9200"),
//	)
//	defer client.Close()
//	created, err := searchclient.Send[response.CommandResponse](
//	    ctx, client, endpoint.CreateIndex("logs", nil),
//	)
//
// # Node Selection
//
// By default the client sends every request to http://localhost:9200.
// [WithStaticNodes] configures a fixed set of nodes, which are used in
// round-robin order. [WithSniffing] instead discovers the cluster's nodes
// through its nodes-info API, starting from a single seed address, and
// periodically refreshes them. Refreshes never block requests other than
// the one that happens to run the refresh. See package [nodes] for details.
//
// # Errors
//
// Send returns one of the following kinds of errors:
//
//   - A [response.APIError] when the cluster returned a well-formed error,
//     such as [*response.IndexNotFoundError]. Use [errors.As] to inspect it.
//   - A [*response.ParseError] when a body could not be deserialized.
//   - A [*TransportError] when the exchange itself failed.
//   - [nodes.ErrEmpty] when no node address is known.
//
// None of these are retried by the client. Retry policy is left to callers.
package searchclient
