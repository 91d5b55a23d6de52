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

// Package transport executes a single HTTP exchange with a cluster node.
//
// The core interface is [Sender]. Anything that can turn an [http.Request]
// into an [http.Response] can serve as one, including an ordinary
// [http.Client] via [FromClient]. TLS, authentication at the connection
// level, and timeouts are all the responsibility of the sender.
//
// The default implementation, returned by [NewHTTPSender], supports the
// "http" and "https" URL schemes and also "h2c", which forces HTTP/2 over
// plaintext. Node addresses such as "h2c://10.0.0.1:9200" therefore work
// out of the box.
package transport
