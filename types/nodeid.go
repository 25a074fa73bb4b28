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

// NodeIdType tags which identifier field of a NodeId is populated.
type NodeIdType uint8

const (
	NodeIdNumeric NodeIdType = iota
	NodeIdString
	NodeIdGuid
	NodeIdOpaque
)

// NodeId identifies a node (or, repurposed, a data type) within a
// namespace. Only one of Numeric/Text/Guid/Bytes is meaningful, selected
// by IdType. The codec picks the smallest of the six compact wire forms
// that can represent a given NodeId; NodeId itself is
// wire-form agnostic.
type NodeId struct {
	Namespace uint16
	IdType    NodeIdType
	Numeric   uint32
	Text      String
	Guid      Guid
	Bytes     ByteString
}

// NewNumericNodeId builds a numeric NodeId in the given namespace.
func NewNumericNodeId(ns uint16, id uint32) NodeId {
	return NodeId{Namespace: ns, IdType: NodeIdNumeric, Numeric: id}
}

// NewStringNodeId builds a string NodeId in the given namespace.
func NewStringNodeId(ns uint16, id string) NodeId {
	return NodeId{Namespace: ns, IdType: NodeIdString, Text: NewString(id)}
}

// Equal reports whether two NodeIds identify the same node. Namespace and
// IdType must match, and then the corresponding identifier field.
func (n NodeId) Equal(o NodeId) bool {
	if n.Namespace != o.Namespace || n.IdType != o.IdType {
		return false
	}
	switch n.IdType {
	case NodeIdNumeric:
		return n.Numeric == o.Numeric
	case NodeIdString:
		return n.Text.Null == o.Text.Null && n.Text.Value == o.Text.Value
	case NodeIdGuid:
		return n.Guid == o.Guid
	case NodeIdOpaque:
		if n.Bytes.Null != o.Bytes.Null || len(n.Bytes.Data) != len(o.Bytes.Data) {
			return false
		}
		for i := range n.Bytes.Data {
			if n.Bytes.Data[i] != o.Bytes.Data[i] {
				return false
			}
		}
		return true
	}
	return false
}

// IsNull reports whether this is the canonical null NodeId (ns=0, id=0).
func (n NodeId) IsNull() bool {
	return n.Namespace == 0 && n.IdType == NodeIdNumeric && n.Numeric == 0
}

// ExpandedNodeId is a NodeId plus the two optional out-of-band fields
// that let it reference a node in another server or namespace by URI.
type ExpandedNodeId struct {
	NodeId         NodeId
	HasNamespaceURI bool
	NamespaceURI   String
	HasServerIndex bool
	ServerIndex    uint32
}
