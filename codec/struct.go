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
	"github.com/nodeforge/opcua/errs"
	"github.com/nodeforge/opcua/types"
)

func (e *Encoder) putFieldValue(f types.FieldDescriptor, fv interface{}) error {
	if !f.Kind.IsFixedPrimitive() {
		return e.EncodeValue(f.Elem, fv)
	}
	return e.putScalarByKind(f.Kind, fv)
}

func (d *Decoder) getFieldValue(f types.FieldDescriptor) (interface{}, error) {
	if !f.Kind.IsFixedPrimitive() {
		return d.DecodeValue(f.Elem)
	}
	return d.getScalarByKind(f.Kind)
}

// putFieldArray writes a null (-1), empty (0), or populated array field:
// the same three-state shape as String.
func (e *Encoder) putFieldArray(f types.FieldDescriptor, fv interface{}) error {
	if fv == nil {
		return e.PutInt32(-1)
	}
	elems, ok := fv.([]interface{})
	if !ok {
		return errs.New(errs.KindCodec, types.StatusBadEncodingLimitsExceeded, "field %q: array value is %T, want []interface{}", f.Name, fv)
	}
	if elems == nil {
		return e.PutInt32(-1)
	}
	if err := e.PutInt32(int32(len(elems))); err != nil {
		return err
	}
	for _, el := range elems {
		if err := e.putFieldValue(f, el); err != nil {
			return err
		}
	}
	return nil
}

func (d *Decoder) getFieldArray(f types.FieldDescriptor) (interface{}, error) {
	n, err := d.GetInt32()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, nil
	}
	if n > d.maxArrayLength() {
		return nil, errs.New(errs.KindCodec, types.StatusBadEncodingLimitsExceeded, "field %q: array length %d exceeds limit %d", f.Name, n, d.maxArrayLength())
	}
	elems := make([]interface{}, n)
	for i := range elems {
		elems[i], err = d.getFieldValue(f)
		if err != nil {
			return nil, err
		}
	}
	return elems, nil
}

// EncodeValue walks desc.Fields against value and writes the structure,
// optional-structure, or union encoding desc.Kind calls for. Scalar and
// fixed built-in values never reach here; they go through putScalarByKind.
func (e *Encoder) EncodeValue(desc *types.TypeDescriptor, value interface{}) error {
	switch desc.Kind {
	case types.KindUnion:
		return e.encodeUnion(desc, value)
	case types.KindOptionalStructure:
		return e.encodeOptionalStructure(desc, value)
	default:
		return e.encodeStructure(desc, value)
	}
}

func (e *Encoder) encodeStructure(desc *types.TypeDescriptor, value interface{}) error {
	for _, f := range desc.Fields {
		fv := f.Get(value)
		var err error
		if f.IsArray {
			err = e.putFieldArray(f, fv)
		} else {
			err = e.putFieldValue(f, fv)
		}
		if err != nil {
			return errs.Wrap(errs.KindCodec, types.StatusBadEncodingLimitsExceeded, err, "encoding field %q of %s", f.Name, desc.Name)
		}
	}
	return nil
}

// encodeOptionalStructure writes the mandatory fields in declaration order
// interleaved with a leading UInt32 presence mask covering only the
// optional fields, one bit per optional field in declaration order
//.
func (e *Encoder) encodeOptionalStructure(desc *types.TypeDescriptor, value interface{}) error {
	var mask uint32
	bit := uint(0)
	for _, f := range desc.Fields {
		if !f.IsOptional {
			continue
		}
		if f.Get(value) != nil {
			mask |= 1 << bit
		}
		bit++
	}
	if err := e.PutUInt32(mask); err != nil {
		return err
	}
	bit = 0
	for _, f := range desc.Fields {
		present := true
		if f.IsOptional {
			present = mask&(1<<bit) != 0
			bit++
		}
		if !present {
			continue
		}
		fv := f.Get(value)
		var err error
		if f.IsArray {
			err = e.putFieldArray(f, fv)
		} else {
			err = e.putFieldValue(f, fv)
		}
		if err != nil {
			return errs.Wrap(errs.KindCodec, types.StatusBadEncodingLimitsExceeded, err, "encoding optional field %q of %s", f.Name, desc.Name)
		}
	}
	return nil
}

// encodeUnion writes the 1-based UInt32 member selector (0 for empty) then
// the active member's value, if any.
func (e *Encoder) encodeUnion(desc *types.TypeDescriptor, value interface{}) error {
	selector := uint32(0)
	if desc.UnionSelector != nil {
		selector = desc.UnionSelector(value)
	}
	if err := e.PutUInt32(selector); err != nil {
		return err
	}
	if selector == 0 {
		return nil
	}
	if int(selector) > len(desc.Fields) {
		return errs.New(errs.KindCodec, types.StatusBadEncodingLimitsExceeded, "union %s: selector %d has no matching field", desc.Name, selector)
	}
	f := desc.Fields[selector-1]
	return e.putFieldValue(f, f.Get(value))
}

// DecodeValue constructs a fresh value via desc.New and populates it by
// walking desc.Fields, mirroring EncodeValue.
func (d *Decoder) DecodeValue(desc *types.TypeDescriptor) (interface{}, error) {
	switch desc.Kind {
	case types.KindUnion:
		return d.decodeUnion(desc)
	case types.KindOptionalStructure:
		return d.decodeOptionalStructure(desc)
	default:
		return d.decodeStructure(desc)
	}
}

func (d *Decoder) decodeStructure(desc *types.TypeDescriptor) (interface{}, error) {
	value := desc.New()
	for _, f := range desc.Fields {
		var fv interface{}
		var err error
		if f.IsArray {
			fv, err = d.getFieldArray(f)
		} else {
			fv, err = d.getFieldValue(f)
		}
		if err != nil {
			return nil, errs.Wrap(errs.KindCodec, types.StatusBadDecodingError, err, "decoding field %q of %s", f.Name, desc.Name)
		}
		f.Set(value, fv)
	}
	return value, nil
}

func (d *Decoder) decodeOptionalStructure(desc *types.TypeDescriptor) (interface{}, error) {
	mask, err := d.GetUInt32()
	if err != nil {
		return nil, err
	}
	value := desc.New()
	bit := uint(0)
	for _, f := range desc.Fields {
		present := true
		if f.IsOptional {
			present = mask&(1<<bit) != 0
			bit++
		}
		if !present {
			continue
		}
		var fv interface{}
		if f.IsArray {
			fv, err = d.getFieldArray(f)
		} else {
			fv, err = d.getFieldValue(f)
		}
		if err != nil {
			return nil, errs.Wrap(errs.KindCodec, types.StatusBadDecodingError, err, "decoding optional field %q of %s", f.Name, desc.Name)
		}
		f.Set(value, fv)
	}
	return value, nil
}

func (d *Decoder) decodeUnion(desc *types.TypeDescriptor) (interface{}, error) {
	selector, err := d.GetUInt32()
	if err != nil {
		return nil, err
	}
	value := desc.New()
	if selector == 0 {
		if desc.SetUnionSelector != nil {
			desc.SetUnionSelector(value, 0, nil)
		}
		return value, nil
	}
	if int(selector) > len(desc.Fields) {
		if d.Strict {
			return nil, errs.New(errs.KindCodec, types.StatusBadDecodingError, "union %s: selector %d has no matching field", desc.Name, selector)
		}
		return value, nil
	}
	f := desc.Fields[selector-1]
	member, err := d.getFieldValue(f)
	if err != nil {
		return nil, errs.Wrap(errs.KindCodec, types.StatusBadDecodingError, err, "decoding union %s member %q", desc.Name, f.Name)
	}
	if desc.SetUnionSelector != nil {
		desc.SetUnionSelector(value, uint32(selector), member)
	}
	return value, nil
}

// EncodeToBytes runs a fresh Encoder over value against desc, growing an
// in-memory buffer as needed, and returns the complete encoding. Used for
// ExtensionObject bodies and by CalcSize's fallback path, where the final
// size is not known up front.
func EncodeToBytes(desc *types.TypeDescriptor, value interface{}, registry *types.Registry) ([]byte, error) {
	var out []byte
	scratch := make([]byte, 512)
	enc := NewEncoder(scratch, 0, func(full []byte) ([]byte, int, error) {
		out = append(out, full...)
		return scratch, 0, nil
	}, registry)
	if err := enc.EncodeValue(desc, value); err != nil {
		return nil, err
	}
	out = append(out, enc.Buffer()[:enc.Cursor()]...)
	return out, nil
}

// CalcSize reports the encoded size of value without retaining the bytes.
// Values implementing CalcSizer report their own size directly; everything
// else is measured by encoding into a scratch buffer.
func CalcSize(desc *types.TypeDescriptor, value interface{}, registry *types.Registry) (int, error) {
	if cs, ok := value.(CalcSizer); ok {
		return cs.OpcuaEncodedSize(), nil
	}
	buf, err := EncodeToBytes(desc, value, registry)
	if err != nil {
		return 0, err
	}
	return len(buf), nil
}
