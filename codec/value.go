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

// putScalarByKind is the single dispatch point every compound encoder
// (Variant, ExtensionObject, the structure walker) funnels through: it
// switches on types.Kind alone, never on a Go type assertion cascade wider
// than this function. Compound kinds (Structure/OptionalStructure/Union)
// are not handled here; callers that know the element's TypeDescriptor use
// EncodeValue/DecodeValue instead.
func (e *Encoder) putScalarByKind(kind types.Kind, value interface{}) error {
	switch kind {
	case types.KindBoolean:
		return e.PutBool(value.(bool))
	case types.KindSByte:
		return e.PutSByte(value.(int8))
	case types.KindByte:
		return e.PutByte(value.(byte))
	case types.KindInt16:
		return e.PutInt16(value.(int16))
	case types.KindUInt16:
		return e.PutUInt16(value.(uint16))
	case types.KindInt32:
		return e.PutInt32(value.(int32))
	case types.KindUInt32:
		return e.PutUInt32(value.(uint32))
	case types.KindInt64:
		return e.PutInt64(value.(int64))
	case types.KindUInt64:
		return e.PutUInt64(value.(uint64))
	case types.KindFloat:
		return e.PutFloat(value.(float32))
	case types.KindDouble:
		return e.PutDouble(value.(float64))
	case types.KindString, types.KindXmlElement:
		return e.PutString(value.(types.String))
	case types.KindDateTime:
		return e.PutDateTime(value.(types.DateTime))
	case types.KindGuid:
		return e.PutGuid(value.(types.Guid))
	case types.KindByteString:
		return e.PutByteString(value.(types.ByteString))
	case types.KindNodeId:
		return e.PutNodeId(value.(types.NodeId))
	case types.KindExpandedNodeId:
		return e.PutExpandedNodeId(value.(types.ExpandedNodeId))
	case types.KindStatusCode:
		return e.PutStatusCode(value.(types.StatusCode))
	case types.KindQualifiedName:
		return e.PutQualifiedName(value.(types.QualifiedName))
	case types.KindLocalizedText:
		return e.PutLocalizedText(value.(types.LocalizedText))
	case types.KindExtensionObject:
		return e.PutExtensionObject(value.(types.ExtensionObject))
	case types.KindDataValue:
		return e.PutDataValue(value.(types.DataValue))
	case types.KindVariant:
		return e.PutVariant(value.(types.Variant))
	case types.KindDiagnosticInfo:
		return e.PutDiagnosticInfo(value.(types.DiagnosticInfo))
	case types.KindEnumeration:
		return e.PutInt32(value.(int32))
	default:
		return errs.New(errs.KindCodec, types.StatusBadEncodingLimitsExceeded, "putScalarByKind: unsupported scalar kind %s", kind)
	}
}

func (d *Decoder) getScalarByKind(kind types.Kind) (interface{}, error) {
	switch kind {
	case types.KindBoolean:
		return d.GetBool()
	case types.KindSByte:
		return d.GetSByte()
	case types.KindByte:
		return d.GetByte()
	case types.KindInt16:
		return d.GetInt16()
	case types.KindUInt16:
		return d.GetUInt16()
	case types.KindInt32:
		return d.GetInt32()
	case types.KindUInt32:
		return d.GetUInt32()
	case types.KindInt64:
		return d.GetInt64()
	case types.KindUInt64:
		return d.GetUInt64()
	case types.KindFloat:
		return d.GetFloat()
	case types.KindDouble:
		return d.GetDouble()
	case types.KindString, types.KindXmlElement:
		return d.GetString()
	case types.KindDateTime:
		return d.GetDateTime()
	case types.KindGuid:
		return d.GetGuid()
	case types.KindByteString:
		return d.GetByteString()
	case types.KindNodeId:
		return d.GetNodeId()
	case types.KindExpandedNodeId:
		return d.GetExpandedNodeId()
	case types.KindStatusCode:
		return d.GetStatusCode()
	case types.KindQualifiedName:
		return d.GetQualifiedName()
	case types.KindLocalizedText:
		return d.GetLocalizedText()
	case types.KindExtensionObject:
		return d.GetExtensionObject()
	case types.KindDataValue:
		return d.GetDataValue()
	case types.KindVariant:
		return d.GetVariant()
	case types.KindDiagnosticInfo:
		return d.GetDiagnosticInfo()
	case types.KindEnumeration:
		return d.GetInt32()
	default:
		return nil, errs.New(errs.KindCodec, types.StatusBadDecodingError, "getScalarByKind: unsupported scalar kind %s", kind)
	}
}
