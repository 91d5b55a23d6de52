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
	"net/url"
)

// NodesInfoFilterPath restricts a nodes-info response to the only field the
// sniffer reads.
const NodesInfoFilterPath = "nodes.*.http.publish_address"

// Ping returns an endpoint that requests basic cluster information from
// the root path.
func Ping() Endpoint {
	return New(Get, "/", nil)
}

// NodesInfo returns an endpoint that queries the HTTP section of the
// nodes-info API, filtered down to each node's publish address.
func NodesInfo() Endpoint {
	return New(Get, "/_nodes/http?filter_path="+url.QueryEscape(NodesInfoFilterPath), nil)
}

// GetDocument returns an endpoint that fetches a single document by ID.
func GetDocument(index, id string) Endpoint {
	return New(Get, "/"+url.PathEscape(index)+"/_doc/"+url.PathEscape(id), nil)
}

// IndexDocument returns an endpoint that stores the given JSON document
// under the given ID, replacing any previous version.
func IndexDocument(index, id string, document []byte) Endpoint {
	return New(Put, "/"+url.PathEscape(index)+"/_doc/"+url.PathEscape(id), document)
}

// CreateIndex returns an endpoint that creates an index. The body holds
// optional settings and mappings and may be nil.
func CreateIndex(index string, body []byte) Endpoint {
	return New(Put, "/"+url.PathEscape(index), body)
}

// DeleteIndex returns an endpoint that deletes an index.
func DeleteIndex(index string) Endpoint {
	return New(Delete, "/"+url.PathEscape(index), nil)
}
