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

const (
	variantMaskArray      = 0x80
	variantMaskDimensions = 0x40
	variantMaskTypeID     = 0x3f
)

// PutVariant writes the 1-byte encoding mask (type id in the low 6 bits,
// array/dimensions-present flags in the top 2), then the scalar or array
// payload. An empty Variant writes a single zero
// byte and nothing else.
func (e *Encoder) PutVariant(v types.Variant) error {
	if err := v.Validate(); err != nil {
		return errs.Wrap(errs.KindCodec, types.StatusBadEncodingLimitsExceeded, err, "refusing to encode invalid variant")
	}
	if v.IsEmpty() {
		return e.PutByte(0)
	}
	mask := byte(v.Kind) & variantMaskTypeID
	if v.IsArray {
		mask |= variantMaskArray
		if len(v.ArrayDimensions) > 0 {
			mask |= variantMaskDimensions
		}
	}
	if err := e.PutByte(mask); err != nil {
		return err
	}
	if !v.IsArray {
		return e.putScalarByKind(v.Kind, v.Scalar)
	}
	if v.Elements == nil {
		if err := e.PutInt32(-1); err != nil {
			return err
		}
	} else {
		if err := e.PutInt32(int32(len(v.Elements))); err != nil {
			return err
		}
		for _, elem := range v.Elements {
			if err := e.putScalarByKind(v.Kind, elem); err != nil {
				return err
			}
		}
	}
	if len(v.ArrayDimensions) > 0 {
		if err := e.PutInt32(int32(len(v.ArrayDimensions))); err != nil {
			return err
		}
		for _, dim := range v.ArrayDimensions {
			if err := e.PutInt32(dim); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *Decoder) GetVariant() (types.Variant, error) {
	mask, err := d.GetByte()
	if err != nil {
		return types.Variant{}, err
	}
	if mask == 0 {
		return types.EmptyVariant(), nil
	}
	kind := types.Kind(mask & variantMaskTypeID)
	isArray := mask&variantMaskArray != 0
	hasDimensions := mask&variantMaskDimensions != 0

	if !isArray {
		scalar, err := d.getScalarByKind(kind)
		if err != nil {
			return types.Variant{}, err
		}
		v := types.NewScalarVariant(kind, scalar)
		if err := v.Validate(); err != nil {
			return types.Variant{}, errs.Wrap(errs.KindCodec, types.StatusBadDecodingError, err, "decoded invalid scalar variant")
		}
		return v, nil
	}

	n, err := d.GetInt32()
	if err != nil {
		return types.Variant{}, err
	}
	var elements []interface{}
	if n >= 0 {
		if n > d.maxArrayLength() {
			return types.Variant{}, errs.New(errs.KindCodec, types.StatusBadEncodingLimitsExceeded, "variant array length %d exceeds limit %d", n, d.maxArrayLength())
		}
		elements = make([]interface{}, n)
		for i := range elements {
			elements[i], err = d.getScalarByKind(kind)
			if err != nil {
				return types.Variant{}, err
			}
		}
	}
	v := types.NewArrayVariant(kind, elements)
	if hasDimensions {
		dn, err := d.GetInt32()
		if err != nil {
			return types.Variant{}, err
		}
		if dn > d.maxArrayLength() {
			return types.Variant{}, errs.New(errs.KindCodec, types.StatusBadEncodingLimitsExceeded, "variant dimensions length %d exceeds limit %d", dn, d.maxArrayLength())
		}
		dims := make([]int32, dn)
		for i := range dims {
			dims[i], err = d.GetInt32()
			if err != nil {
				return types.Variant{}, err
			}
		}
		v.ArrayDimensions = dims
	}
	if err := v.Validate(); err != nil {
		return types.Variant{}, errs.Wrap(errs.KindCodec, types.StatusBadDecodingError, err, "decoded invalid array variant")
	}
	return v, nil
}
