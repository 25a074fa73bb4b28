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

// FieldDescriptor describes one field of a structure/optional-structure/
// union type. Padding is carried for data-model parity with but
// is never consulted by the codec: wire layout never includes in-memory
// padding.
//
// Get/Set are the erased accessors for this field: writing them once per
// concrete Go struct, instead of walking the struct with reflection, is
// the "erased encode/decode function pointers per field kind" approach
// called out for a statically typed target (see design notes, generic
// container traversal). For array fields Get returns []interface{} (one
// entry per element, already unwrapped to the element's native Go type)
// and Set accepts the same shape back.
type FieldDescriptor struct {
	Name       string
	Kind       Kind
	Elem       *TypeDescriptor // only set when Kind is a compound kind
	Padding    int
	IsArray    bool
	IsOptional bool
	Get        func(value interface{}) interface{}
	Set        func(value interface{}, fieldValue interface{})
}

// TypeDescriptor is the immutable metadata the codec walks generically.
// Everything here is read-only after Registry construction; a Registry
// may be read from multiple goroutines without synchronization.
type TypeDescriptor struct {
	Name             string
	TypeID           NodeId
	BinaryEncodingID uint32
	Size             int
	Kind             Kind
	PointerFree      bool
	Overlayable      bool
	Fields           []FieldDescriptor
	New              func() interface{}

	// UnionSelector, only meaningful when Kind == KindUnion, returns the
	// 1-based index into Fields of the active member (0 means empty).
	UnionSelector func(value interface{}) uint32
	// SetUnionSelector installs the decoded selector and active member
	// value back into a freshly constructed union value.
	SetUnionSelector func(value interface{}, selector uint32, member interface{})

	// CustomTypes, when non-nil, is consulted instead of the owning
	// Registry's namespace-zero table for fields of this type whose
	// FieldDescriptor.Elem is nil and Kind needs an external lookup
	// (used by ExtensionObject decoding of application-defined types).
	CustomTypes *Registry
}

// Registry is a table of type descriptors keyed by numeric binary
// encoding id, the form used on the wire by ExtensionObject bodies. A
// Registry is built once at startup and handed to the codec and the
// SecureChannel by reference; constructing more than one Registry (e.g.
// one per test) is supported and intentional.
type Registry struct {
	byEncodingID map[uint32]*TypeDescriptor
	byName       map[string]*TypeDescriptor
}

// NewRegistry returns an empty registry. Use Register to populate it.
func NewRegistry() *Registry {
	return &Registry{
		byEncodingID: map[uint32]*TypeDescriptor{},
		byName:       map[string]*TypeDescriptor{},
	}
}

// Register adds a descriptor, indexed by its BinaryEncodingID and Name.
// Registering the same encoding id twice is a programmer error and panics
// at startup rather than being silently overwritten.
func (r *Registry) Register(desc *TypeDescriptor) {
	if _, ok := r.byEncodingID[desc.BinaryEncodingID]; ok {
		panic(fmt.Sprintf("opcua/types: duplicate binary encoding id %d for %q", desc.BinaryEncodingID, desc.Name))
	}
	r.byEncodingID[desc.BinaryEncodingID] = desc
	r.byName[desc.Name] = desc
}

// ByEncodingID looks up a descriptor by its wire-level binary encoding id,
// used when decoding an ExtensionObject body in place.
func (r *Registry) ByEncodingID(id uint32) (*TypeDescriptor, bool) {
	d, ok := r.byEncodingID[id]
	return d, ok
}

// ByName looks up a descriptor by its stable name.
func (r *Registry) ByName(name string) (*TypeDescriptor, bool) {
	d, ok := r.byName[name]
	return d, ok
}
