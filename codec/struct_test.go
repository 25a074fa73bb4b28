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
	"reflect"
	"testing"

	"github.com/nodeforge/opcua/types"
)

type widget struct {
	Name   types.String
	Counts []interface{}
}

func widgetDescriptor() *types.TypeDescriptor {
	return &types.TypeDescriptor{
		Name: "Widget",
		Kind: types.KindStructure,
		New:  func() interface{} { return &widget{} },
		Fields: []types.FieldDescriptor{
			{
				Name: "Name",
				Kind: types.KindString,
				Get:  func(v interface{}) interface{} { return v.(*widget).Name },
				Set:  func(v interface{}, fv interface{}) { v.(*widget).Name = fv.(types.String) },
			},
			{
				Name:    "Counts",
				Kind:    types.KindInt32,
				IsArray: true,
				Get:     func(v interface{}) interface{} { return v.(*widget).Counts },
				Set:     func(v interface{}, fv interface{}) { v.(*widget).Counts = asSlice(fv) },
			},
		},
	}
}

func asSlice(fv interface{}) []interface{} {
	if fv == nil {
		return nil
	}
	return fv.([]interface{})
}

func TestStructureRoundTrip(t *testing.T) {
	desc := widgetDescriptor()
	in := &widget{Name: types.NewString("valve-07"), Counts: []interface{}{int32(1), int32(2), int32(3)}}

	buf, err := EncodeToBytes(desc, in, nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	dec := NewDecoder(buf, 0, nil)
	got, err := dec.DecodeValue(desc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	out := got.(*widget)
	if out.Name != in.Name {
		t.Errorf("name: got %+v, want %+v", out.Name, in.Name)
	}
	if !reflect.DeepEqual(out.Counts, in.Counts) {
		t.Errorf("counts: got %v, want %v", out.Counts, in.Counts)
	}
}

func TestStructureNullArray(t *testing.T) {
	desc := widgetDescriptor()
	in := &widget{Name: types.NewString("empty"), Counts: nil}

	buf, err := EncodeToBytes(desc, in, nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	dec := NewDecoder(buf, 0, nil)
	got, err := dec.DecodeValue(desc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out := got.(*widget); out.Counts != nil {
		t.Errorf("expected null array to round-trip as nil, got %v", out.Counts)
	}
}

type withOptional struct {
	Required types.String
	Nickname *types.String
}

func optionalDescriptor() *types.TypeDescriptor {
	return &types.TypeDescriptor{
		Name: "WithOptional",
		Kind: types.KindOptionalStructure,
		New:  func() interface{} { return &withOptional{} },
		Fields: []types.FieldDescriptor{
			{
				Name: "Required",
				Kind: types.KindString,
				Get:  func(v interface{}) interface{} { return v.(*withOptional).Required },
				Set:  func(v interface{}, fv interface{}) { v.(*withOptional).Required = fv.(types.String) },
			},
			{
				Name:       "Nickname",
				Kind:       types.KindString,
				IsOptional: true,
				Get: func(v interface{}) interface{} {
					w := v.(*withOptional)
					if w.Nickname == nil {
						return nil
					}
					return *w.Nickname
				},
				Set: func(v interface{}, fv interface{}) {
					s := fv.(types.String)
					v.(*withOptional).Nickname = &s
				},
			},
		},
	}
}

func TestOptionalStructureFieldAbsent(t *testing.T) {
	desc := optionalDescriptor()
	in := &withOptional{Required: types.NewString("base")}

	buf, err := EncodeToBytes(desc, in, nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	dec := NewDecoder(buf, 0, nil)
	got, err := dec.DecodeValue(desc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out := got.(*withOptional); out.Nickname != nil {
		t.Errorf("expected absent optional field, got %v", *out.Nickname)
	}
}

func TestOptionalStructureFieldPresent(t *testing.T) {
	desc := optionalDescriptor()
	nick := types.NewString("nicky")
	in := &withOptional{Required: types.NewString("base"), Nickname: &nick}

	buf, err := EncodeToBytes(desc, in, nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	dec := NewDecoder(buf, 0, nil)
	got, err := dec.DecodeValue(desc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	out := got.(*withOptional)
	if out.Nickname == nil || *out.Nickname != nick {
		t.Errorf("expected optional field %v, got %v", nick, out.Nickname)
	}
}

type pickOne struct {
	Selector uint32
	AsInt    int32
	AsText   types.String
}

func unionDescriptor() *types.TypeDescriptor {
	return &types.TypeDescriptor{
		Name: "PickOne",
		Kind: types.KindUnion,
		New:  func() interface{} { return &pickOne{} },
		Fields: []types.FieldDescriptor{
			{
				Name: "AsInt",
				Kind: types.KindInt32,
				Get:  func(v interface{}) interface{} { return v.(*pickOne).AsInt },
				Set:  func(v interface{}, fv interface{}) { v.(*pickOne).AsInt = fv.(int32) },
			},
			{
				Name: "AsText",
				Kind: types.KindString,
				Get:  func(v interface{}) interface{} { return v.(*pickOne).AsText },
				Set:  func(v interface{}, fv interface{}) { v.(*pickOne).AsText = fv.(types.String) },
			},
		},
		UnionSelector: func(v interface{}) uint32 { return v.(*pickOne).Selector },
		SetUnionSelector: func(v interface{}, selector uint32, member interface{}) {
			p := v.(*pickOne)
			p.Selector = selector
			switch selector {
			case 1:
				p.AsInt = member.(int32)
			case 2:
				p.AsText = member.(types.String)
			}
		},
	}
}

func TestUnionRoundTripSecondMember(t *testing.T) {
	desc := unionDescriptor()
	in := &pickOne{Selector: 2, AsText: types.NewString("chosen")}

	buf, err := EncodeToBytes(desc, in, nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	dec := NewDecoder(buf, 0, nil)
	got, err := dec.DecodeValue(desc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	out := got.(*pickOne)
	if out.Selector != 2 || out.AsText != in.AsText {
		t.Errorf("got %+v, want %+v", out, in)
	}
}

func TestUnionEmptySelector(t *testing.T) {
	desc := unionDescriptor()
	in := &pickOne{Selector: 0}

	buf, err := EncodeToBytes(desc, in, nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(buf) != 4 {
		t.Fatalf("expected a bare 4-byte zero selector, got %d bytes", len(buf))
	}
	dec := NewDecoder(buf, 0, nil)
	got, err := dec.DecodeValue(desc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out := got.(*pickOne); out.Selector != 0 {
		t.Errorf("expected empty union, got selector %d", out.Selector)
	}
}

func TestExtensionObjectVerbatimPassthrough(t *testing.T) {
	reg := types.NewRegistry()
	body := []byte{0xde, 0xad, 0xbe, 0xef}
	in := types.ExtensionObject{
		TypeID:   types.NewNumericNodeId(0, 9999),
		Encoding: types.ExtensionObjectBinaryBody,
		Body:     body,
	}
	enc := NewEncoder(make([]byte, 64), 0, nil, reg)
	if err := enc.PutExtensionObject(in); err != nil {
		t.Fatalf("encode: %v", err)
	}
	dec := NewDecoder(enc.Buffer()[:enc.Cursor()], 0, reg)
	got, err := dec.GetExtensionObject()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Encoding != types.ExtensionObjectBinaryBody || !reflect.DeepEqual(got.Body, body) {
		t.Errorf("got %+v", got)
	}
}

func TestExtensionObjectDecodedRoundTrip(t *testing.T) {
	reg := types.NewRegistry()
	desc := widgetDescriptor()
	desc.BinaryEncodingID = 4242
	reg.Register(desc)

	in := types.ExtensionObject{
		Encoding:   types.ExtensionObjectDecoded,
		Descriptor: desc,
		Value:      &widget{Name: types.NewString("wrapped"), Counts: []interface{}{int32(7)}},
	}
	enc := NewEncoder(make([]byte, 64), 0, nil, reg)
	if err := enc.PutExtensionObject(in); err != nil {
		t.Fatalf("encode: %v", err)
	}
	dec := NewDecoder(enc.Buffer()[:enc.Cursor()], 0, reg)
	got, err := dec.GetExtensionObject()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Encoding != types.ExtensionObjectDecoded {
		t.Fatalf("expected decoded encoding, got %v", got.Encoding)
	}
	w := got.Value.(*widget)
	if w.Name.Value != "wrapped" {
		t.Errorf("got %+v", w)
	}
}

func TestVariantValidateRejectsMismatchedDimensions(t *testing.T) {
	v := types.NewArrayVariant(types.KindInt32, []interface{}{int32(1), int32(2)})
	v.ArrayDimensions = []int32{3}
	if err := v.Validate(); err == nil {
		t.Fatal("expected dimension-mismatch to be rejected")
	}
}

func TestCalcSizeMatchesEncodedLength(t *testing.T) {
	desc := widgetDescriptor()
	in := &widget{Name: types.NewString("sized"), Counts: []interface{}{int32(1)}}
	size, err := CalcSize(desc, in, nil)
	if err != nil {
		t.Fatalf("calcsize: %v", err)
	}
	buf, err := EncodeToBytes(desc, in, nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if size != len(buf) {
		t.Errorf("CalcSize = %d, encoded length = %d", size, len(buf))
	}
}
