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

// Into finishes a classified response. If it is ok, the body is
// deserialized into T; a failure to do so is a terminal *ParseError.
// Otherwise the body is deserialized into an APIError, which is returned as
// the error.
func Into[T any](m MaybeOK) (T, error) {
	if m.ok {
		return ParseOK[T](m.body)
	}
	var zero T
	return zero, ParseErr(m.body)
}

// ParseOK deserializes the body into T. An Unbuffered body is decoded
// directly from the stream; a Buffered body is decoded from memory.
func ParseOK[T any](body Body) (T, error) {
	var value T
	if err := body.Decode(&value); err != nil {
		var zero T
		return zero, err
	}
	return value, nil
}

// ParseErr deserializes an error response body. It returns an APIError if
// the body has the expected shape, identifying the error by the nested
// "error.type" string. Unrecognized types, known types that lack their
// expected fields, and bodies without an "error" object all yield an
// *OtherError rather than failing. A body that is not a JSON object yields
// a *ParseError.
func ParseErr(body Body) error {
	buffered, err := buffer(body)
	if err != nil {
		return err
	}
	apiErr, err := parseAPIError(buffered)
	if err != nil {
		return err
	}
	return apiErr
}

func buffer(body Body) (*Buffered, error) {
	switch body := body.(type) {
	case *Buffered:
		return body, nil
	case *Unbuffered:
		_, buffered, err := body.Buffer()
		return buffered, err
	default:
		// Body is sealed, so this cannot happen.
		panic("unknown body type")
	}
}
