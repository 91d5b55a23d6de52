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

// Package response turns a raw HTTP response from a search cluster into
// either a typed success value or a structured [APIError].
//
// This happens in two steps. First, an [Evaluator] classifies the response
// as ok or not ok, producing a [MaybeOK]. Most evaluators only look at the
// status code, but some need to peek at the body: a document lookup that
// returns 404 is a valid "not found" result unless the body carries a
// top-level "error" key. Second, [Into] deserializes the classified body
// into the caller's type, or into an APIError.
//
// # Body Buffering
//
// A response body starts out as an [Unbuffered] handle, which still reads
// from the transport stream. If nothing needs to peek at it, it is decoded
// straight from the stream in a single pass. If an evaluator needs to peek,
// it calls [Unbuffered.Buffer], which reads the payload once and returns a
// [Buffered] handle holding the raw bytes and their parsed JSON value. All
// later reads use the buffered bytes. An Unbuffered handle can be consumed
// only once: a second read fails with [ErrBodyConsumed].
//
// # Evaluator Selection
//
// The evaluator for a result type T is found with [EvaluatorFor]: if T (or
// *T) implements Evaluator, it is used; otherwise [DefaultEvaluator]
// applies, which treats any 2xx status as ok and never buffers.
package response
