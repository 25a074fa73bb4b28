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
	extensionObjectEncodingNoBody = 0
	extensionObjectEncodingBinary = 1
)

// PutExtensionObject writes the encoding-id NodeId, a 1-byte body-encoding
// marker, and the body itself. A decoded value (Descriptor+Value set) is
// re-encoded fresh through its TypeDescriptor; everything else is copied
// through verbatim from Body, which lets a relay forward an
// ExtensionObject it never understood.
func (e *Encoder) PutExtensionObject(v types.ExtensionObject) error {
	switch v.Encoding {
	case types.ExtensionObjectNoBody:
		if err := e.PutNodeId(v.TypeID); err != nil {
			return err
		}
		return e.PutByte(extensionObjectEncodingNoBody)
	case types.ExtensionObjectDecoded:
		if v.Descriptor == nil {
			return errs.New(errs.KindCodec, types.StatusBadEncodingLimitsExceeded, "extension object marked decoded but has no descriptor")
		}
		typeID := types.NewNumericNodeId(0, v.Descriptor.BinaryEncodingID)
		body, err := EncodeToBytes(v.Descriptor, v.Value, e.registry)
		if err != nil {
			return errs.Wrap(errs.KindCodec, types.StatusBadEncodingLimitsExceeded, err, "encoding extension object body for %s", v.Descriptor.Name)
		}
		if err := e.PutNodeId(typeID); err != nil {
			return err
		}
		if err := e.PutByte(extensionObjectEncodingBinary); err != nil {
			return err
		}
		return e.PutByteString(types.NewByteString(body))
	default:
		if err := e.PutNodeId(v.TypeID); err != nil {
			return err
		}
		if err := e.PutByte(extensionObjectEncodingBinary); err != nil {
			return err
		}
		return e.PutByteString(types.NewByteString(v.Body))
	}
}

// GetExtensionObject reads the wrapper and, when the registry knows the
// encoding id, decodes the body in place; an unrecognized encoding id
// always falls back to the raw-bytes form rather than failing, unless
// Strict is set.
func (d *Decoder) GetExtensionObject() (types.ExtensionObject, error) {
	typeID, err := d.GetNodeId()
	if err != nil {
		return types.ExtensionObject{}, err
	}
	encoding, err := d.GetByte()
	if err != nil {
		return types.ExtensionObject{}, err
	}
	if encoding == extensionObjectEncodingNoBody {
		return types.NoBodyExtensionObject(typeID), nil
	}
	if encoding != extensionObjectEncodingBinary {
		if d.Strict {
			return types.ExtensionObject{}, errs.New(errs.KindCodec, types.StatusBadDecodingError, "unsupported extension object body encoding %d", encoding)
		}
		encoding = extensionObjectEncodingBinary
	}
	body, err := d.GetByteString()
	if err != nil {
		return types.ExtensionObject{}, err
	}
	fallback := types.ExtensionObject{TypeID: typeID, Encoding: types.ExtensionObjectBinaryBody, Body: body.Data}

	if typeID.IdType != types.NodeIdNumeric || d.registry == nil {
		return fallback, nil
	}
	desc, ok := d.registry.ByEncodingID(typeID.Numeric)
	if !ok {
		if d.Strict {
			return types.ExtensionObject{}, errs.New(errs.KindCodec, types.StatusBadDecodingError, "unknown extension object encoding id %d", typeID.Numeric)
		}
		return fallback, nil
	}
	bodyDec := NewDecoder(body.Data, 0, d.registry)
	bodyDec.MaxArrayLength, bodyDec.MaxStringLength, bodyDec.Strict = d.MaxArrayLength, d.MaxStringLength, d.Strict
	value, err := bodyDec.DecodeValue(desc)
	if err != nil {
		if d.Strict {
			return types.ExtensionObject{}, errs.Wrap(errs.KindCodec, types.StatusBadDecodingError, err, "decoding extension object body for %s", desc.Name)
		}
		return fallback, nil
	}
	return types.ExtensionObject{TypeID: typeID, Encoding: types.ExtensionObjectDecoded, Body: body.Data, Descriptor: desc, Value: value}, nil
}
