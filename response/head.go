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

import "net/http"

// Head is the read-only status line and header set of a response.
type Head struct {
	statusCode int
	header     http.Header
}

// NewHead returns a head for the given status code and header. The header
// is not copied.
func NewHead(statusCode int, header http.Header) Head {
	return Head{statusCode: statusCode, header: header}
}

// StatusCode returns the HTTP status code.
func (h Head) StatusCode() int {
	return h.statusCode
}

// Header returns the first value of the named response header.
func (h Head) Header(key string) string {
	return h.header.Get(key)
}

// IsSuccess reports whether the status code is in the 2xx range.
func (h Head) IsSuccess() bool {
	return h.statusCode >= 200 && h.statusCode <= 299
}
