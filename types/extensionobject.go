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

// ExtensionObjectEncoding tags which of the three wire forms an
// ExtensionObject is carrying,
type ExtensionObjectEncoding uint8

const (
	// ExtensionObjectNoBody is the no-body marker: only the encoding-id
	// NodeId is meaningful.
	ExtensionObjectNoBody ExtensionObjectEncoding = iota
	// ExtensionObjectBinaryBody carries an opaque, already-encoded byte
	// blob: copied verbatim by the codec.
	ExtensionObjectBinaryBody
	// ExtensionObjectDecoded carries a decoded in-memory value plus the
	// TypeDescriptor that produced it. Only the codec converts between
	// this and ExtensionObjectBinaryBody.
	ExtensionObjectDecoded
)

// ExtensionObject is the wire wrapper that carries any structured value
// by numeric encoding id.
type ExtensionObject struct {
	// TypeID is the encoding-id NodeId written on the wire. For
	// ExtensionObjectDecoded it is derived from Descriptor.BinaryEncodingID
	// by the codec at encode time and need not be set by the caller.
	TypeID NodeId

	Encoding ExtensionObjectEncoding

	// Body holds the raw bytes for ExtensionObjectBinaryBody.
	Body []byte

	// Descriptor and Value hold the decoded form for ExtensionObjectDecoded.
	Descriptor *TypeDescriptor
	Value      interface{}
}

// NoBodyExtensionObject returns the no-body marker wrapping id.
func NoBodyExtensionObject(id NodeId) ExtensionObject {
	return ExtensionObject{TypeID: id, Encoding: ExtensionObjectNoBody}
}
