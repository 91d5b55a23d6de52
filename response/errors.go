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

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/tidwall/gjson"
)

// ParseError reports a response body that could not be deserialized, either
// while an evaluator peeked at it or during the final typed decode. It is
// always terminal.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "parse response: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// APIError is a well-formed error returned by the cluster. The concrete
// type is one of *IndexNotFoundError, *ParsingError,
// *ActionRequestValidationError or *OtherError.
type APIError interface {
	error
	apiError()
}

// IndexNotFoundError is returned when a request names an index that does
// not exist.
type IndexNotFoundError struct {
	Index string
}

func (e *IndexNotFoundError) Error() string {
	return fmt.Sprintf("index not found: %s", e.Index)
}

// ParsingError is returned when the cluster could not parse a request body,
// such as a malformed query.
type ParsingError struct {
	Line   uint64
	Col    uint64
	Reason string
}

func (e *ParsingError) Error() string {
	return fmt.Sprintf("parsing error at line %d, column %d: %s", e.Line, e.Col, e.Reason)
}

// ActionRequestValidationError is returned when a request is rejected
// before execution, such as a bulk request with no operations.
type ActionRequestValidationError struct {
	Reason string
}

func (e *ActionRequestValidationError) Error() string {
	return "request validation failed: " + e.Reason
}

// OtherError holds any error response that is not one of the recognized
// kinds. Raw contains the untouched "error" object, or the whole body when
// there is no "error" object.
type OtherError struct {
	Raw map[string]any
}

func (e *OtherError) Error() string {
	if kind, ok := e.Raw["type"].(string); ok {
		if reason, ok := e.Raw["reason"].(string); ok {
			return fmt.Sprintf("api error %s: %s", kind, reason)
		}
		return "api error " + kind
	}
	return "unrecognized api error"
}

func (*IndexNotFoundError) apiError()           {}
func (*ParsingError) apiError()                 {}
func (*ActionRequestValidationError) apiError() {}
func (*OtherError) apiError()                   {}

func parseAPIError(buffered *Buffered) (APIError, error) {
	root := buffered.Value()
	if !root.Exists() {
		// Bodiless error responses, such as a HEAD request that failed.
		return &OtherError{Raw: map[string]any{}}, nil
	}
	if !root.IsObject() {
		return nil, &ParseError{Err: fmt.Errorf("error response is %s, not an object", root.Type)}
	}
	errValue := root.Get("error")
	if !errValue.IsObject() {
		return otherError(root)
	}
	switch errValue.Get("type").String() {
	case "index_not_found_exception":
		if index := errValue.Get("index"); index.Type == gjson.String {
			return &IndexNotFoundError{Index: index.String()}, nil
		}
	case "parsing_exception":
		line, col, reason := errValue.Get("line"), errValue.Get("col"), errValue.Get("reason")
		if line.Type == gjson.Number && col.Type == gjson.Number && reason.Type == gjson.String {
			return &ParsingError{Line: line.Uint(), Col: col.Uint(), Reason: reason.String()}, nil
		}
	case "action_request_validation_exception":
		if reason := errValue.Get("reason"); reason.Type == gjson.String {
			return &ActionRequestValidationError{Reason: reason.String()}, nil
		}
	}
	return otherError(errValue)
}

func otherError(object gjson.Result) (APIError, error) {
	raw := map[string]any{}
	if err := sonic.ConfigStd.UnmarshalFromString(object.Raw, &raw); err != nil {
		return nil, &ParseError{Err: err}
	}
	return &OtherError{Raw: raw}, nil
}

