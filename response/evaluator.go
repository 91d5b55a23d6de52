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

//nolint:gochecknoglobals
var (
	// DefaultEvaluator treats any 2xx status as ok and anything else as an
	// error. It never buffers the body.
	DefaultEvaluator Evaluator = EvaluatorFunc(defaultIsOK)

	// DocumentGetEvaluator is used for single-document lookups. A 2xx status
	// is ok. A 404 is ambiguous: without a top-level "error" key it is a
	// valid "not found" result, with one it is an index-level error. Only
	// the 404 case buffers the body.
	DocumentGetEvaluator Evaluator = EvaluatorFunc(documentGetIsOK)
)

// MaybeOK is a classified response that has not yet been deserialized into
// the caller's type. It is consumed exactly once, by [Into].
type MaybeOK struct {
	ok   bool
	head Head
	body Body
}

// OK returns a classification of the given response as a success.
func OK(head Head, body Body) MaybeOK {
	return MaybeOK{ok: true, head: head, body: body}
}

// NotOK returns a classification of the given response as an error.
func NotOK(head Head, body Body) MaybeOK {
	return MaybeOK{ok: false, head: head, body: body}
}

// IsOK reports whether the response was classified as a success.
func (m MaybeOK) IsOK() bool {
	return m.ok
}

// Head returns the response head.
func (m MaybeOK) Head() Head {
	return m.head
}

// Body returns the body handle, which is a *Buffered if the evaluator
// peeked at it and the original *Unbuffered otherwise.
func (m MaybeOK) Body() Body {
	return m.body
}

// Evaluator decides whether a response is a success or an error before it
// is deserialized. An implementation may consume the body in order to peek
// at it, in which case it must return the resulting Buffered handle in the
// MaybeOK.
//
// A response type may implement Evaluator to customize how responses for
// that type are classified. See EvaluatorFor.
type Evaluator interface {
	IsOK(head Head, body *Unbuffered) (MaybeOK, error)
}

// EvaluatorFunc adapts an ordinary function to the Evaluator interface.
type EvaluatorFunc func(head Head, body *Unbuffered) (MaybeOK, error)

// IsOK calls f(head, body).
func (f EvaluatorFunc) IsOK(head Head, body *Unbuffered) (MaybeOK, error) {
	return f(head, body)
}

// EvaluatorFor returns the evaluator for result type T. If T or *T
// implements Evaluator, the zero value is used as the evaluator. Otherwise
// DefaultEvaluator is returned.
func EvaluatorFor[T any]() Evaluator {
	var zero T
	if evaluator, ok := any(zero).(Evaluator); ok {
		return evaluator
	}
	if evaluator, ok := any(&zero).(Evaluator); ok {
		return evaluator
	}
	return DefaultEvaluator
}

// Classify classifies a response using the evaluator for T.
func Classify[T any](head Head, body *Unbuffered) (MaybeOK, error) {
	return EvaluatorFor[T]().IsOK(head, body)
}

func defaultIsOK(head Head, body *Unbuffered) (MaybeOK, error) {
	if head.IsSuccess() {
		return OK(head, body), nil
	}
	return NotOK(head, body), nil
}

func documentGetIsOK(head Head, body *Unbuffered) (MaybeOK, error) {
	switch {
	case head.IsSuccess():
		return OK(head, body), nil
	case head.StatusCode() == http.StatusNotFound:
		value, buffered, err := body.Buffer()
		if err != nil {
			return MaybeOK{}, err
		}
		if value.Get("error").Exists() {
			return NotOK(head, buffered), nil
		}
		return OK(head, buffered), nil
	default:
		return NotOK(head, body), nil
	}
}
