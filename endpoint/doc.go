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

// Package endpoint describes a single REST operation against a search
// cluster: the HTTP method, the URL path (relative to whichever node the
// request ends up being sent to), and an optional body.
//
// An [Endpoint] is an immutable value. It is built once per call and
// consumed once when the request is sent. Per-endpoint request builders
// live outside of this package; the few builders included here are the
// ones the client itself relies on, like the nodes-info endpoint used
// for sniffing.
package endpoint
