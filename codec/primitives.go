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
	"encoding/binary"
	"math"

	"github.com/nodeforge/opcua/errs"
	"github.com/nodeforge/opcua/types"
)

// PutBool writes one byte: 0 for false, 1 for true. Any non-zero byte
// decodes to true.
func (e *Encoder) PutBool(v bool) error {
	b := byte(0)
	if v {
		b = 1
	}
	return e.writeBytes([]byte{b})
}

func (d *Decoder) GetBool() (bool, error) {
	b, err := d.readBytes(1)
	if err != nil {
		return false, err
	}
	return b[0] != 0, nil
}

func (e *Encoder) PutSByte(v int8) error { return e.writeBytes([]byte{byte(v)}) }
func (d *Decoder) GetSByte() (int8, error) {
	b, err := d.readBytes(1)
	if err != nil {
		return 0, err
	}
	return int8(b[0]), nil
}

func (e *Encoder) PutByte(v byte) error { return e.writeBytes([]byte{v}) }
func (d *Decoder) GetByte() (byte, error) {
	b, err := d.readBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (e *Encoder) PutInt16(v int16) error { return e.PutUInt16(uint16(v)) }
func (d *Decoder) GetInt16() (int16, error) {
	v, err := d.GetUInt16()
	return int16(v), err
}

func (e *Encoder) PutUInt16(v uint16) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return e.writeBytes(b[:])
}

func (d *Decoder) GetUInt16() (uint16, error) {
	b, err := d.readBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (e *Encoder) PutInt32(v int32) error { return e.PutUInt32(uint32(v)) }
func (d *Decoder) GetInt32() (int32, error) {
	v, err := d.GetUInt32()
	return int32(v), err
}

func (e *Encoder) PutUInt32(v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return e.writeBytes(b[:])
}

func (d *Decoder) GetUInt32() (uint32, error) {
	b, err := d.readBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (e *Encoder) PutInt64(v int64) error { return e.PutUInt64(uint64(v)) }
func (d *Decoder) GetInt64() (int64, error) {
	v, err := d.GetUInt64()
	return int64(v), err
}

func (e *Encoder) PutUInt64(v uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return e.writeBytes(b[:])
}

func (d *Decoder) GetUInt64() (uint64, error) {
	b, err := d.readBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// PutFloat writes an IEEE-754 binary32. NaN/±Inf round-trip bit-exactly
// because Float32bits/frombits never normalize the payload.
func (e *Encoder) PutFloat(v float32) error {
	return e.PutUInt32(math.Float32bits(v))
}

func (d *Decoder) GetFloat() (float32, error) {
	v, err := d.GetUInt32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// PutDouble writes an IEEE-754 binary64. NaN/±Inf round-trip bit-exactly.
func (e *Encoder) PutDouble(v float64) error {
	return e.PutUInt64(math.Float64bits(v))
}

func (d *Decoder) GetDouble() (float64, error) {
	v, err := d.GetUInt64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// PutString writes the 4-byte signed length prefix then the raw bytes.
// Null encodes as length -1; a non-null, possibly-empty String encodes
// its actual byte length, so null/empty/non-empty are three
// distinguishable wire forms.
func (e *Encoder) PutString(v types.String) error {
	if v.Null {
		return e.PutInt32(-1)
	}
	data := []byte(v.Value)
	if err := e.PutInt32(int32(len(data))); err != nil {
		return err
	}
	return e.writeBytes(data)
}

func (d *Decoder) GetString() (types.String, error) {
	n, err := d.GetInt32()
	if err != nil {
		return types.String{}, err
	}
	if n < 0 {
		return types.NullString(), nil
	}
	if n > d.maxStringLength() {
		return types.String{}, errs.New(errs.KindCodec, types.StatusBadEncodingLimitsExceeded, "string length %d exceeds limit %d", n, d.maxStringLength())
	}
	b, err := d.readBytes(int(n))
	if err != nil {
		return types.String{}, err
	}
	return types.NewString(string(b)), nil
}

// PutByteString is PutString's twin for raw bytes.
func (e *Encoder) PutByteString(v types.ByteString) error {
	if v.Null {
		return e.PutInt32(-1)
	}
	if err := e.PutInt32(int32(len(v.Data))); err != nil {
		return err
	}
	return e.writeBytes(v.Data)
}

func (d *Decoder) GetByteString() (types.ByteString, error) {
	n, err := d.GetInt32()
	if err != nil {
		return types.ByteString{}, err
	}
	if n < 0 {
		return types.NullByteString(), nil
	}
	if n > d.maxStringLength() {
		return types.ByteString{}, errs.New(errs.KindCodec, types.StatusBadEncodingLimitsExceeded, "byte string length %d exceeds limit %d", n, d.maxStringLength())
	}
	b, err := d.readBytes(int(n))
	if err != nil {
		return types.ByteString{}, err
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return types.NewByteString(cp), nil
}

// PutDateTime writes the 8-byte signed 100ns-tick count.
func (e *Encoder) PutDateTime(v types.DateTime) error { return e.PutInt64(v.Ticks) }
func (d *Decoder) GetDateTime() (types.DateTime, error) {
	v, err := d.GetInt64()
	return types.DateTime{Ticks: v}, err
}

// PutGuid writes Data1 (4 LE), Data2 (2 LE), Data3 (2 LE), Data4 (8 raw).
func (e *Encoder) PutGuid(v types.Guid) error {
	if err := e.PutUInt32(v.Data1); err != nil {
		return err
	}
	if err := e.PutUInt16(v.Data2); err != nil {
		return err
	}
	if err := e.PutUInt16(v.Data3); err != nil {
		return err
	}
	return e.writeBytes(v.Data4[:])
}

func (d *Decoder) GetGuid() (types.Guid, error) {
	var g types.Guid
	var err error
	if g.Data1, err = d.GetUInt32(); err != nil {
		return g, err
	}
	if g.Data2, err = d.GetUInt16(); err != nil {
		return g, err
	}
	if g.Data3, err = d.GetUInt16(); err != nil {
		return g, err
	}
	b, err := d.readBytes(8)
	if err != nil {
		return g, err
	}
	copy(g.Data4[:], b)
	return g, nil
}

// PutStatusCode writes the 4-byte status/severity code.
func (e *Encoder) PutStatusCode(v types.StatusCode) error { return e.PutUInt32(uint32(v)) }
func (d *Decoder) GetStatusCode() (types.StatusCode, error) {
	v, err := d.GetUInt32()
	return types.StatusCode(v), err
}
