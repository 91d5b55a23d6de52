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
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/bufbuild/searchclient/transport"
	"github.com/bytedance/sonic"
	"github.com/tidwall/gjson"
)

// ErrBodyConsumed is returned when an Unbuffered body is read more than once.
var ErrBodyConsumed = errors.New("response body already consumed")

// Body is a response body handle. It is either an *Unbuffered or a
// *Buffered; no other implementations exist.
type Body interface {
	// Decode deserializes the whole body into v.
	Decode(v any) error

	sealed()
}

// Unbuffered is a body whose bytes still live only in the transport stream.
type Unbuffered struct {
	reader   io.ReadCloser
	consumed bool
}

// NewUnbuffered wraps the given stream, typically an [http.Response] body.
// The returned handle closes the stream once it has been read.
func NewUnbuffered(reader io.ReadCloser) *Unbuffered {
	return &Unbuffered{reader: reader}
}

// Buffer reads the whole payload into memory and parses it as JSON. It
// returns the parsed value along with a Buffered handle that retains the
// raw bytes for a later full deserialization pass. An empty payload yields
// a value for which Exists reports false.
//
// A payload that is not valid JSON results in a *ParseError. A failure to
// read the stream results in a *transport.Error.
func (u *Unbuffered) Buffer() (gjson.Result, *Buffered, error) {
	if err := u.consume(); err != nil {
		return gjson.Result{}, nil, err
	}
	defer u.reader.Close() //nolint:errcheck
	raw, err := io.ReadAll(u.reader)
	if err != nil {
		return gjson.Result{}, nil, &transport.Error{Err: fmt.Errorf("read response body: %w", err)}
	}
	buffered, err := NewBuffered(raw)
	if err != nil {
		return gjson.Result{}, nil, err
	}
	return buffered.value, buffered, nil
}

// Decode deserializes the body into v in a single pass over the stream,
// without holding a copy of the payload. An empty payload leaves v
// untouched. Anything but whitespace after the first JSON value results in
// a *ParseError.
func (u *Unbuffered) Decode(v any) error {
	if err := u.consume(); err != nil {
		return err
	}
	defer u.reader.Close() //nolint:errcheck
	recorder := &readErrorRecorder{reader: u.reader}
	reader := bufio.NewReader(recorder)
	if more, err := skipSpace(reader); err != nil || !more {
		return readError(err)
	}
	decoder := sonic.ConfigStd.NewDecoder(reader)
	if err := decoder.Decode(v); err != nil {
		if recorder.err != nil {
			return readError(recorder.err)
		}
		return &ParseError{Err: err}
	}
	more, err := skipSpace(bufio.NewReader(io.MultiReader(decoder.Buffered(), reader)))
	if err != nil {
		return readError(err)
	}
	if more {
		return &ParseError{Err: errors.New("unexpected data after JSON value")}
	}
	return nil
}

// Close releases the underlying stream without reading it. It is a no-op
// once the body has been consumed.
func (u *Unbuffered) Close() error {
	if u.consumed {
		return nil
	}
	u.consumed = true
	return u.reader.Close()
}

func (u *Unbuffered) consume() error {
	if u.consumed {
		return ErrBodyConsumed
	}
	u.consumed = true
	return nil
}

func (*Unbuffered) sealed() {}

// Buffered is a body that has been read into memory, along with its
// parsed JSON value.
type Buffered struct {
	raw   []byte
	value gjson.Result
}

// NewBuffered returns a Buffered handle over raw. If raw is neither empty
// nor valid JSON, a *ParseError is returned.
func NewBuffered(raw []byte) (*Buffered, error) {
	if len(bytes.Trim(raw, " \t\r\n")) == 0 {
		return &Buffered{raw: raw}, nil
	}
	if !gjson.ValidBytes(raw) {
		return nil, &ParseError{Err: errors.New("response body is not valid JSON")}
	}
	return &Buffered{raw: raw, value: gjson.ParseBytes(raw)}, nil
}

// Value returns the parsed JSON value.
func (b *Buffered) Value() gjson.Result {
	return b.value
}

// Bytes returns the raw payload. The returned slice must not be modified.
func (b *Buffered) Bytes() []byte {
	return b.raw
}

// Decode deserializes the buffered payload into v. It may be called any
// number of times. An empty payload leaves v untouched.
func (b *Buffered) Decode(v any) error {
	if !b.value.Exists() {
		return nil
	}
	if err := sonic.ConfigStd.Unmarshal(b.raw, v); err != nil {
		return &ParseError{Err: err}
	}
	return nil
}

func (*Buffered) sealed() {}

// skipSpace discards leading JSON whitespace and reports whether any other
// byte follows.
func skipSpace(reader *bufio.Reader) (bool, error) {
	for {
		c, err := reader.ReadByte()
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return true, reader.UnreadByte()
	}
}

func readError(err error) error {
	if err == nil {
		return nil
	}
	return &transport.Error{Err: fmt.Errorf("read response body: %w", err)}
}

// readErrorRecorder remembers the first non-EOF read error, so that a
// broken stream can be told apart from a malformed payload.
type readErrorRecorder struct {
	reader io.Reader
	err    error
}

func (r *readErrorRecorder) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	if err != nil && !errors.Is(err, io.EOF) && r.err == nil {
		r.err = err
	}
	return n, err
}
