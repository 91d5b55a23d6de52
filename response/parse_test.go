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

package response_test

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/bufbuild/searchclient/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unbuffered(payload string) *response.Unbuffered {
	return response.NewUnbuffered(io.NopCloser(strings.NewReader(payload)))
}

func TestParseErr(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		body string
		want error
	}{
		{
			name: "index not found",
			body: `{"error":{"type":"index_not_found_exception","index":"x","reason":"no such index [x]"},"status":404}`,
			want: &response.IndexNotFoundError{Index: "x"},
		},
		{
			name: "parsing",
			body: `{"error":{"type":"parsing_exception","line":2,"col":9,"reason":"bad"}}`,
			want: &response.ParsingError{Line: 2, Col: 9, Reason: "bad"},
		},
		{
			name: "validation",
			body: `{"error":{"type":"action_request_validation_exception","reason":"index is missing"}}`,
			want: &response.ActionRequestValidationError{Reason: "index is missing"},
		},
		{
			name: "unknown type",
			body: `{"error":{"type":"some_future_exception","reason":"z"}}`,
			want: &response.OtherError{Raw: map[string]any{"type": "some_future_exception", "reason": "z"}},
		},
		{
			name: "known type missing fields",
			body: `{"error":{"type":"parsing_exception","reason":"bad"}}`,
			want: &response.OtherError{Raw: map[string]any{"type": "parsing_exception", "reason": "bad"}},
		},
		{
			name: "no error key",
			body: `{"status":500,"message":"boom"}`,
			want: &response.OtherError{Raw: map[string]any{"status": float64(500), "message": "boom"}},
		},
		{
			name: "string error",
			body: `{"error":"legacy failure","status":400}`,
			want: &response.OtherError{Raw: map[string]any{"error": "legacy failure", "status": float64(400)}},
		},
		{
			name: "empty body",
			body: ``,
			want: &response.OtherError{Raw: map[string]any{}},
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			direct := response.ParseErr(unbuffered(testCase.body))
			assert.Equal(t, testCase.want, direct)

			buffered, err := response.NewBuffered([]byte(testCase.body))
			require.NoError(t, err)
			assert.Equal(t, direct, response.ParseErr(buffered))
		})
	}
}

func TestParseErrMalformed(t *testing.T) {
	t.Parallel()

	for _, body := range []string{`{"error":`, `[1, 2]`, `"nope"`} {
		err := response.ParseErr(unbuffered(body))
		var parseErr *response.ParseError
		require.ErrorAs(t, err, &parseErr, body)
		_, isAPIErr := err.(response.APIError) //nolint:errorlint
		assert.False(t, isAPIErr, body)
	}
}

func TestInto(t *testing.T) {
	t.Parallel()

	head := response.NewHead(http.StatusOK, nil)
	got, err := response.Into[response.CommandResponse](response.OK(head, unbuffered(`{"acknowledged": true}`)))
	require.NoError(t, err)
	assert.Equal(t, response.CommandResponse{Acknowledged: true}, got)

	head = response.NewHead(http.StatusBadRequest, nil)
	_, err = response.Into[response.CommandResponse](response.NotOK(head,
		unbuffered(`{"error":{"type":"parsing_exception","line":2,"col":9,"reason":"bad"}}`)))
	var parsing *response.ParsingError
	require.ErrorAs(t, err, &parsing)
	assert.Equal(t, &response.ParsingError{Line: 2, Col: 9, Reason: "bad"}, parsing)

	// A success whose body doesn't fit the target type is terminal.
	head = response.NewHead(http.StatusOK, nil)
	_, err = response.Into[response.CommandResponse](response.OK(head, unbuffered(`{"acknowledged": 1}`)))
	var parseErr *response.ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestAPIErrorMessages(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "index not found: x", (&response.IndexNotFoundError{Index: "x"}).Error())
	assert.Equal(t, "parsing error at line 2, column 9: bad", (&response.ParsingError{Line: 2, Col: 9, Reason: "bad"}).Error())
	assert.Equal(t, "request validation failed: r", (&response.ActionRequestValidationError{Reason: "r"}).Error())
	assert.Equal(t, "api error t: r", (&response.OtherError{Raw: map[string]any{"type": "t", "reason": "r"}}).Error())
	assert.Equal(t, "api error t", (&response.OtherError{Raw: map[string]any{"type": "t"}}).Error())
	assert.Equal(t, "unrecognized api error", (&response.OtherError{Raw: map[string]any{}}).Error())
}

func TestIndexResponseCreated(t *testing.T) {
	t.Parallel()

	assert.True(t, response.IndexResponse{Result: "created"}.Created())
	assert.False(t, response.IndexResponse{Result: "updated"}.Created())
}
