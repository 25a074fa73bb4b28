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

// The nodeforge opcua codec package implements a self-describing binary
// encoder/decoder: it walks a types.TypeDescriptor to serialize or
// deserialize an arbitrary value, with no component of this package
// knowing what the value represents.
//
// The traversal avoids reflection: each types.FieldDescriptor carries
// erased Get/Set closures written once per concrete Go struct, and the
// codec dispatches encode/decode purely on types.Kind.
package codec

import (
	"github.com/nodeforge/opcua/errs"
	"github.com/nodeforge/opcua/types"
)

// ExchangeFunc is invoked by Encoder when its current buffer is full. It
// receives the filled buffer and must return a fresh buffer plus the
// cursor offset to resume writing at (0 for a plain chunk boundary; a
// non-zero offset lets a caller pre-seed the next buffer with a new
// chunk's common header before the encoder resumes writing the value).
//
// Encoder never writes past the end of the buffer it was given, never
// calls ExchangeFunc mid-byte (there is no such thing as a sub-byte
// field on this wire), and never calls it after writing the value's
// last byte.
type ExchangeFunc func(full []byte) (next []byte, cursor int, err error)

// Encoder writes values against a types.TypeDescriptor into a
// caller-supplied, caller-exchanged sequence of buffers.
type Encoder struct {
	buf      []byte
	cursor   int
	exchange ExchangeFunc
	registry *types.Registry
}

// NewEncoder starts an Encoder writing into buf at cursor, calling
// exchange whenever buf fills. registry resolves ExtensionObject bodies
// that must be re-encoded from a decoded-in-place value.
func NewEncoder(buf []byte, cursor int, exchange ExchangeFunc, registry *types.Registry) *Encoder {
	return &Encoder{buf: buf, cursor: cursor, exchange: exchange, registry: registry}
}

// Cursor returns the current write offset within the active buffer.
func (e *Encoder) Cursor() int { return e.cursor }

// Buffer returns the active output buffer.
func (e *Encoder) Buffer() []byte { return e.buf }

// writeBytes copies data into the active buffer, exchanging buffers as
// needed. It never splits data mid-byte (impossible on a byte slice) and
// never calls exchange after the final byte of data is written.
func (e *Encoder) writeBytes(data []byte) error {
	for len(data) > 0 {
		room := len(e.buf) - e.cursor
		if room <= 0 {
			if e.exchange == nil {
				return errs.New(errs.KindCodec, types.StatusBadEncodingLimitsExceeded, "output buffer exhausted and no exchange callback installed")
			}
			next, cursor, err := e.exchange(e.buf[:e.cursor])
			if err != nil {
				return errs.Wrap(errs.KindCodec, types.StatusBadEncodingLimitsExceeded, err, "buffer exchange failed")
			}
			e.buf, e.cursor = next, cursor
			room = len(e.buf) - e.cursor
			if room <= 0 {
				return errs.New(errs.KindCodec, types.StatusBadEncodingLimitsExceeded, "exchange callback returned a buffer with no room")
			}
		}
		n := room
		if n > len(data) {
			n = len(data)
		}
		copy(e.buf[e.cursor:], data[:n])
		e.cursor += n
		data = data[n:]
	}
	return nil
}

// Decoder reads values against a types.TypeDescriptor from a single,
// already-complete input buffer (chunk reassembly happens below this
// layer, in the chunker package). Cursor is resumable: Offset reports how
// far decoding has advanced, and a new Decoder can be constructed at that
// offset to continue reading a sibling value.
type Decoder struct {
	buf      []byte
	cursor   int
	registry *types.Registry

	// MaxArrayLength and MaxStringLength bound a decoded length prefix
	// before any allocation is attempted. Zero means "use the package
	// default" (see defaultMaxLength).
	MaxArrayLength  int32
	MaxStringLength int32

	// Strict, when true, makes an unknown ExtensionObject/Union encoding
	// id a decoding error rather than falling back to the raw-bytes form.
	Strict bool
}

const defaultMaxLength = 16 * 1024 * 1024

// NewDecoder starts a Decoder reading buf from cursor. registry resolves
// ExtensionObject bodies for in-place decoding.
func NewDecoder(buf []byte, cursor int, registry *types.Registry) *Decoder {
	return &Decoder{buf: buf, cursor: cursor, registry: registry}
}

// Offset returns the current read offset, for resuming decode of a
// sibling value at the byte immediately following this one.
func (d *Decoder) Offset() int { return d.cursor }

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int { return len(d.buf) - d.cursor }

func (d *Decoder) maxArrayLength() int32 {
	if d.MaxArrayLength > 0 {
		return d.MaxArrayLength
	}
	return defaultMaxLength
}

func (d *Decoder) maxStringLength() int32 {
	if d.MaxStringLength > 0 {
		return d.MaxStringLength
	}
	return defaultMaxLength
}

func (d *Decoder) readBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, errs.New(errs.KindCodec, types.StatusBadDecodingError, "negative read length %d", n)
	}
	if d.Remaining() < n {
		return nil, errs.New(errs.KindCodec, types.StatusBadDecodingError, "truncated buffer: need %d bytes, have %d", n, d.Remaining())
	}
	b := d.buf[d.cursor : d.cursor+n]
	d.cursor += n
	return b, nil
}

// CalcSizer is implemented by values that can report their own encoded
// size without a TypeDescriptor (the fixed built-ins). Encode/Decode never
// require it; CalcSize uses it as a fast path when available.
type CalcSizer interface {
	OpcuaEncodedSize() int
}
