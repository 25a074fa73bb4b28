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

// nodeIdForm picks the smallest of the six compact wire forms for id,
// returning the low 6 bits of the encoding-selector byte.
const (
	nodeIdFormTwoByte   = 0x00
	nodeIdFormFourByte  = 0x01
	nodeIdFormNumeric   = 0x02
	nodeIdFormString    = 0x03
	nodeIdFormGuid      = 0x04
	nodeIdFormByteString = 0x05
)

func nodeIdForm(id types.NodeId) byte {
	switch id.IdType {
	case types.NodeIdNumeric:
		if id.Namespace == 0 && id.Numeric <= 0xff {
			return nodeIdFormTwoByte
		}
		if id.Namespace <= 0xff && id.Numeric <= 0xffff {
			return nodeIdFormFourByte
		}
		return nodeIdFormNumeric
	case types.NodeIdString:
		return nodeIdFormString
	case types.NodeIdGuid:
		return nodeIdFormGuid
	default:
		return nodeIdFormByteString
	}
}

func (e *Encoder) putNodeIdBody(form byte, id types.NodeId) error {
	switch form {
	case nodeIdFormTwoByte:
		return e.PutByte(byte(id.Numeric))
	case nodeIdFormFourByte:
		if err := e.PutByte(byte(id.Namespace)); err != nil {
			return err
		}
		return e.PutUInt16(uint16(id.Numeric))
	case nodeIdFormNumeric:
		if err := e.PutUInt16(id.Namespace); err != nil {
			return err
		}
		return e.PutUInt32(id.Numeric)
	case nodeIdFormString:
		if err := e.PutUInt16(id.Namespace); err != nil {
			return err
		}
		return e.PutString(id.Text)
	case nodeIdFormGuid:
		if err := e.PutUInt16(id.Namespace); err != nil {
			return err
		}
		return e.PutGuid(id.Guid)
	default:
		if err := e.PutUInt16(id.Namespace); err != nil {
			return err
		}
		return e.PutByteString(id.Bytes)
	}
}

// PutNodeId writes the 1-byte encoding selector then the smallest valid
// body for id.
func (e *Encoder) PutNodeId(id types.NodeId) error {
	form := nodeIdForm(id)
	if err := e.PutByte(form); err != nil {
		return err
	}
	return e.putNodeIdBody(form, id)
}

func (d *Decoder) getNodeIdBody(form byte) (types.NodeId, error) {
	switch form {
	case nodeIdFormTwoByte:
		b, err := d.GetByte()
		if err != nil {
			return types.NodeId{}, err
		}
		return types.NewNumericNodeId(0, uint32(b)), nil
	case nodeIdFormFourByte:
		ns, err := d.GetByte()
		if err != nil {
			return types.NodeId{}, err
		}
		id, err := d.GetUInt16()
		if err != nil {
			return types.NodeId{}, err
		}
		return types.NewNumericNodeId(uint16(ns), uint32(id)), nil
	case nodeIdFormNumeric:
		ns, err := d.GetUInt16()
		if err != nil {
			return types.NodeId{}, err
		}
		id, err := d.GetUInt32()
		if err != nil {
			return types.NodeId{}, err
		}
		return types.NewNumericNodeId(ns, id), nil
	case nodeIdFormString:
		ns, err := d.GetUInt16()
		if err != nil {
			return types.NodeId{}, err
		}
		s, err := d.GetString()
		if err != nil {
			return types.NodeId{}, err
		}
		return types.NodeId{Namespace: ns, IdType: types.NodeIdString, Text: s}, nil
	case nodeIdFormGuid:
		ns, err := d.GetUInt16()
		if err != nil {
			return types.NodeId{}, err
		}
		g, err := d.GetGuid()
		if err != nil {
			return types.NodeId{}, err
		}
		return types.NodeId{Namespace: ns, IdType: types.NodeIdGuid, Guid: g}, nil
	case nodeIdFormByteString:
		ns, err := d.GetUInt16()
		if err != nil {
			return types.NodeId{}, err
		}
		bs, err := d.GetByteString()
		if err != nil {
			return types.NodeId{}, err
		}
		return types.NodeId{Namespace: ns, IdType: types.NodeIdOpaque, Bytes: bs}, nil
	default:
		return types.NodeId{}, errs.New(errs.KindCodec, types.StatusBadDecodingError, "unknown NodeId encoding form 0x%02x", form)
	}
}

// GetNodeId reads the 1-byte encoding selector then the body it selects.
func (d *Decoder) GetNodeId() (types.NodeId, error) {
	selector, err := d.GetByte()
	if err != nil {
		return types.NodeId{}, err
	}
	return d.getNodeIdBody(selector & 0x3f)
}

const (
	expandedNodeIdFlagNamespaceURI = 0x80
	expandedNodeIdFlagServerIndex  = 0x40
)

// PutExpandedNodeId writes the shared selector byte (NodeId form in the
// low 6 bits, presence flags in the top 2), the NodeId body, and then the
// namespace URI / server index if present.
func (e *Encoder) PutExpandedNodeId(v types.ExpandedNodeId) error {
	form := nodeIdForm(v.NodeId)
	selector := form
	if v.HasNamespaceURI {
		selector |= expandedNodeIdFlagNamespaceURI
	}
	if v.HasServerIndex {
		selector |= expandedNodeIdFlagServerIndex
	}
	if err := e.PutByte(selector); err != nil {
		return err
	}
	if err := e.putNodeIdBody(form, v.NodeId); err != nil {
		return err
	}
	if v.HasNamespaceURI {
		if err := e.PutString(v.NamespaceURI); err != nil {
			return err
		}
	}
	if v.HasServerIndex {
		if err := e.PutUInt32(v.ServerIndex); err != nil {
			return err
		}
	}
	return nil
}

func (d *Decoder) GetExpandedNodeId() (types.ExpandedNodeId, error) {
	selector, err := d.GetByte()
	if err != nil {
		return types.ExpandedNodeId{}, err
	}
	nodeID, err := d.getNodeIdBody(selector & 0x3f)
	if err != nil {
		return types.ExpandedNodeId{}, err
	}
	v := types.ExpandedNodeId{NodeId: nodeID}
	if selector&expandedNodeIdFlagNamespaceURI != 0 {
		v.HasNamespaceURI = true
		if v.NamespaceURI, err = d.GetString(); err != nil {
			return v, err
		}
	}
	if selector&expandedNodeIdFlagServerIndex != 0 {
		v.HasServerIndex = true
		if v.ServerIndex, err = d.GetUInt32(); err != nil {
			return v, err
		}
	}
	return v, nil
}
