// The MIT License (MIT)
//
// Copyright (c) 2024-2026 nodeforge
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
// the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
// FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
// COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
// IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

package codec

import (
	"math"
	"testing"

	"github.com/nodeforge/opcua/types"
)

func roundTrip(t *testing.T, put func(e *Encoder) error, get func(d *Decoder) (interface{}, error), want interface{}) {
	t.Helper()
	enc := NewEncoder(make([]byte, 64), 0, nil, nil)
	if err := put(enc); err != nil {
		t.Fatalf("encode: %v", err)
	}
	dec := NewDecoder(enc.Buffer()[:enc.Cursor()], 0, nil)
	got, err := get(dec)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != want {
		t.Errorf("got %#v, want %#v", got, want)
	}
	if dec.Remaining() != 0 {
		t.Errorf("left %d unread bytes", dec.Remaining())
	}
}

func TestPrimitiveRoundTrip(t *testing.T) {
	roundTrip(t,
		func(e *Encoder) error { return e.PutBool(true) },
		func(d *Decoder) (interface{}, error) { return d.GetBool() },
		true)
	roundTrip(t,
		func(e *Encoder) error { return e.PutInt32(-12345) },
		func(d *Decoder) (interface{}, error) { return d.GetInt32() },
		int32(-12345))
	roundTrip(t,
		func(e *Encoder) error { return e.PutUInt64(math.MaxUint64) },
		func(d *Decoder) (interface{}, error) { return d.GetUInt64() },
		uint64(math.MaxUint64))
	roundTrip(t,
		func(e *Encoder) error { return e.PutDouble(math.NaN()) },
		func(d *Decoder) (interface{}, error) {
			v, err := d.GetDouble()
			return math.Float64bits(v), err
		},
		math.Float64bits(math.NaN()))
}

func TestStringNullEmptyDistinct(t *testing.T) {
	cases := []struct {
		name string
		in   types.String
	}{
		{"null", types.NullString()},
		{"empty", types.NewString("")},
		{"value", types.NewString("open62541")},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			enc := NewEncoder(make([]byte, 64), 0, nil, nil)
			if err := enc.PutString(c.in); err != nil {
				t.Fatalf("encode: %v", err)
			}
			dec := NewDecoder(enc.Buffer()[:enc.Cursor()], 0, nil)
			got, err := dec.GetString()
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.Null != c.in.Null || got.Value != c.in.Value {
				t.Errorf("got %+v, want %+v", got, c.in)
			}
		})
	}
}

func TestStringExceedsMaxLength(t *testing.T) {
	enc := NewEncoder(make([]byte, 64), 0, nil, nil)
	if err := enc.PutInt32(1000); err != nil {
		t.Fatal(err)
	}
	dec := NewDecoder(enc.Buffer()[:enc.Cursor()], 0, nil)
	dec.MaxStringLength = 10
	if _, err := dec.GetString(); err == nil {
		t.Fatal("expected error for oversized string length")
	}
}

func TestByteStringDoesNotAliasInput(t *testing.T) {
	enc := NewEncoder(make([]byte, 64), 0, nil, nil)
	orig := []byte{1, 2, 3}
	if err := enc.PutByteString(types.NewByteString(orig)); err != nil {
		t.Fatal(err)
	}
	buf := enc.Buffer()[:enc.Cursor()]
	dec := NewDecoder(buf, 0, nil)
	got, err := dec.GetByteString()
	if err != nil {
		t.Fatal(err)
	}
	buf[4] = 0xff
	if got.Data[0] != 1 {
		t.Errorf("decoded bytes alias the input buffer")
	}
}

func TestTruncatedBufferIsDecodingError(t *testing.T) {
	dec := NewDecoder([]byte{1, 2}, 0, nil)
	if _, err := dec.GetUInt32(); err == nil {
		t.Fatal("expected error reading past end of buffer")
	}
}
