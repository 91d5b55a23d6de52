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

package response

// CommandResponse is the result of operations that only acknowledge that
// they were accepted, like creating or deleting an index.
type CommandResponse struct {
	Acknowledged bool `json:"acknowledged"`
}

// PingResponse is the result of a request to the cluster root.
type PingResponse struct {
	Name        string `json:"name"`
	ClusterName string `json:"cluster_name"`
	ClusterUUID string `json:"cluster_uuid"`
	Version     struct {
		Number string `json:"number"`
	} `json:"version"`
	Tagline string `json:"tagline"`
}

// IndexResponse is the result of storing a single document.
type IndexResponse struct {
	Index   string `json:"_index"`
	ID      string `json:"_id"`
	Version uint64 `json:"_version"`
	Result  string `json:"result"`
}

// Created reports whether the document did not exist before.
func (r IndexResponse) Created() bool {
	return r.Result == "created"
}

// GetResponse is the result of looking up a single document. A missing
// document is a success with Found set to false and a nil Source.
type GetResponse[T any] struct {
	Index   string  `json:"_index"`
	ID      string  `json:"_id"`
	Version *uint64 `json:"_version,omitempty"`
	Routing string  `json:"_routing,omitempty"`
	Found   bool    `json:"found"`
	Source  *T      `json:"_source,omitempty"`
}

// IsOK classifies a document lookup using DocumentGetEvaluator.
func (GetResponse[T]) IsOK(head Head, body *Unbuffered) (MaybeOK, error) {
	return DocumentGetEvaluator.IsOK(head, body)
}
