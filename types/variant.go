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

package types

import "fmt"

// Variant is a tagged union: empty, a scalar of a known kind, or an
// array with an optional multi-dimensional shape.
//
// Invariants (validated by Validate, enforced by the codec on decode):
//   - Kind == 0 iff the variant is empty (no scalar, no array).
//   - if ArrayDimensions is non-nil, the product of its entries equals
//     len(Elements).
//   - IsArray implies Elements may be nil (a null array, wire length -1)
//     or non-nil (including zero-length, a defined-empty array).
type Variant struct {
	Kind            Kind
	IsArray         bool
	ArrayDimensions []int32
	Scalar          interface{}
	Elements        []interface{}
}

// EmptyVariant is the canonical empty variant.
func EmptyVariant() Variant { return Variant{} }

// NewScalarVariant wraps a single value of the given kind.
func NewScalarVariant(kind Kind, value interface{}) Variant {
	return Variant{Kind: kind, Scalar: value}
}

// NewArrayVariant wraps a (possibly nil, meaning null-array) slice of
// values of the given kind.
func NewArrayVariant(kind Kind, elements []interface{}) Variant {
	return Variant{Kind: kind, IsArray: true, Elements: elements}
}

// IsEmpty reports whether the variant holds nothing.
func (v Variant) IsEmpty() bool {
	return v.Kind == 0 && !v.IsArray && v.Scalar == nil
}

// Validate enforces the Variant invariants documented above.
func (v Variant) Validate() error {
	if v.IsEmpty() {
		if v.ArrayDimensions != nil {
			return fmt.Errorf("opcua/types: empty variant must not carry array dimensions")
		}
		return nil
	}
	if v.Kind == 0 {
		return fmt.Errorf("opcua/types: non-empty variant must have a non-zero kind")
	}
	if !v.IsArray {
		if v.ArrayDimensions != nil {
			return fmt.Errorf("opcua/types: scalar variant must not carry array dimensions")
		}
		return nil
	}
	if v.ArrayDimensions == nil {
		return nil
	}
	product := int64(1)
	for _, d := range v.ArrayDimensions {
		product *= int64(d)
	}
	if v.Elements == nil {
		// A null array with declared dimensions is nonsensical; dimensions
		// only describe a present array's shape.
		return fmt.Errorf("opcua/types: null array must not carry array dimensions")
	}
	if product != int64(len(v.Elements)) {
		return fmt.Errorf("opcua/types: array dimensions product %d != arrayLength %d", product, len(v.Elements))
	}
	return nil
}
