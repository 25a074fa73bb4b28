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

// The nodeforge opcua types package provides the built-in value types and
// the type descriptor registry that the codec walks generically.
package types

// Kind tags the shape of a value the codec knows how to traverse: either a
// fixed built-in primitive it encodes directly, or a compound shape
// (structure/optional-structure/union/extension-wrapper/enumeration) whose
// fields are walked one at a time.
//
// Please read @doc Part6, @section 5.1 Built-in types for the OPC UA
// built-in type id assignment this mirrors.
type Kind uint8

const (
	KindBoolean Kind = iota + 1
	KindSByte
	KindByte
	KindInt16
	KindUInt16
	KindInt32
	KindUInt32
	KindInt64
	KindUInt64
	KindFloat
	KindDouble
	KindString
	KindDateTime
	KindGuid
	KindByteString
	KindXmlElement
	KindNodeId
	KindExpandedNodeId
	KindStatusCode
	KindQualifiedName
	KindLocalizedText
	KindExtensionObject
	KindDataValue
	KindVariant
	KindDiagnosticInfo
	KindEnumeration
	KindStructure
	KindOptionalStructure
	KindUnion
)

func (k Kind) String() string {
	switch k {
	case KindBoolean:
		return "Boolean"
	case KindSByte:
		return "SByte"
	case KindByte:
		return "Byte"
	case KindInt16:
		return "Int16"
	case KindUInt16:
		return "UInt16"
	case KindInt32:
		return "Int32"
	case KindUInt32:
		return "UInt32"
	case KindInt64:
		return "Int64"
	case KindUInt64:
		return "UInt64"
	case KindFloat:
		return "Float"
	case KindDouble:
		return "Double"
	case KindString:
		return "String"
	case KindDateTime:
		return "DateTime"
	case KindGuid:
		return "Guid"
	case KindByteString:
		return "ByteString"
	case KindXmlElement:
		return "XmlElement"
	case KindNodeId:
		return "NodeId"
	case KindExpandedNodeId:
		return "ExpandedNodeId"
	case KindStatusCode:
		return "StatusCode"
	case KindQualifiedName:
		return "QualifiedName"
	case KindLocalizedText:
		return "LocalizedText"
	case KindExtensionObject:
		return "ExtensionObject"
	case KindDataValue:
		return "DataValue"
	case KindVariant:
		return "Variant"
	case KindDiagnosticInfo:
		return "DiagnosticInfo"
	case KindEnumeration:
		return "Enumeration"
	case KindStructure:
		return "Structure"
	case KindOptionalStructure:
		return "OptionalStructure"
	case KindUnion:
		return "Union"
	default:
		return "Unknown"
	}
}

// IsFixedPrimitive reports whether values of this kind are encoded with the
// codec's hard-coded per-kind dispatch, rather than by walking a field list.
func (k Kind) IsFixedPrimitive() bool {
	switch k {
	case KindStructure, KindOptionalStructure, KindUnion:
		return false
	default:
		return true
	}
}
