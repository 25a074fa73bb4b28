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

import "github.com/nodeforge/opcua/types"

const (
	dataValueMaskValue             = 0x01
	dataValueMaskStatus            = 0x02
	dataValueMaskSourceTimestamp   = 0x04
	dataValueMaskServerTimestamp   = 0x08
	dataValueMaskSourcePicoseconds = 0x10
	dataValueMaskServerPicoseconds = 0x20
)

// PutDataValue writes the 1-byte presence mask then whichever of the six
// optional fields are present, in fixed field order.
func (e *Encoder) PutDataValue(v types.DataValue) error {
	var mask byte
	if v.HasValue {
		mask |= dataValueMaskValue
	}
	if v.HasStatus {
		mask |= dataValueMaskStatus
	}
	if v.HasSourceTimestamp {
		mask |= dataValueMaskSourceTimestamp
	}
	if v.HasServerTimestamp {
		mask |= dataValueMaskServerTimestamp
	}
	if v.HasSourcePicoseconds {
		mask |= dataValueMaskSourcePicoseconds
	}
	if v.HasServerPicoseconds {
		mask |= dataValueMaskServerPicoseconds
	}
	if err := e.PutByte(mask); err != nil {
		return err
	}
	if v.HasValue {
		if err := e.PutVariant(v.Value); err != nil {
			return err
		}
	}
	if v.HasStatus {
		if err := e.PutStatusCode(v.Status); err != nil {
			return err
		}
	}
	if v.HasSourceTimestamp {
		if err := e.PutDateTime(v.SourceTimestamp); err != nil {
			return err
		}
	}
	if v.HasSourcePicoseconds {
		if err := e.PutUInt16(v.SourcePicoseconds); err != nil {
			return err
		}
	}
	if v.HasServerTimestamp {
		if err := e.PutDateTime(v.ServerTimestamp); err != nil {
			return err
		}
	}
	if v.HasServerPicoseconds {
		return e.PutUInt16(v.ServerPicoseconds)
	}
	return nil
}

func (d *Decoder) GetDataValue() (types.DataValue, error) {
	mask, err := d.GetByte()
	if err != nil {
		return types.DataValue{}, err
	}
	var v types.DataValue
	if mask&dataValueMaskValue != 0 {
		v.HasValue = true
		if v.Value, err = d.GetVariant(); err != nil {
			return v, err
		}
	}
	if mask&dataValueMaskStatus != 0 {
		v.HasStatus = true
		if v.Status, err = d.GetStatusCode(); err != nil {
			return v, err
		}
	}
	if mask&dataValueMaskSourceTimestamp != 0 {
		v.HasSourceTimestamp = true
		if v.SourceTimestamp, err = d.GetDateTime(); err != nil {
			return v, err
		}
	}
	if mask&dataValueMaskSourcePicoseconds != 0 {
		v.HasSourcePicoseconds = true
		if v.SourcePicoseconds, err = d.GetUInt16(); err != nil {
			return v, err
		}
	}
	if mask&dataValueMaskServerTimestamp != 0 {
		v.HasServerTimestamp = true
		if v.ServerTimestamp, err = d.GetDateTime(); err != nil {
			return v, err
		}
	}
	if mask&dataValueMaskServerPicoseconds != 0 {
		v.HasServerPicoseconds = true
		if v.ServerPicoseconds, err = d.GetUInt16(); err != nil {
			return v, err
		}
	}
	return v, nil
}

const (
	diagnosticInfoMaskSymbolicId       = 0x01
	diagnosticInfoMaskNamespaceURI     = 0x02
	diagnosticInfoMaskLocalizedText    = 0x04
	diagnosticInfoMaskLocale           = 0x08
	diagnosticInfoMaskAdditionalInfo   = 0x10
	diagnosticInfoMaskInnerStatusCode  = 0x20
	diagnosticInfoMaskInnerDiagnostics = 0x40
)

// PutDiagnosticInfo writes the 1-byte presence mask then whichever fields
// are present, recursing into InnerDiagnosticInfo when it is set.
func (e *Encoder) PutDiagnosticInfo(v types.DiagnosticInfo) error {
	var mask byte
	if v.HasSymbolicId {
		mask |= diagnosticInfoMaskSymbolicId
	}
	if v.HasNamespaceURI {
		mask |= diagnosticInfoMaskNamespaceURI
	}
	if v.HasLocalizedText {
		mask |= diagnosticInfoMaskLocalizedText
	}
	if v.HasLocale {
		mask |= diagnosticInfoMaskLocale
	}
	if v.HasAdditionalInfo {
		mask |= diagnosticInfoMaskAdditionalInfo
	}
	if v.HasInnerStatusCode {
		mask |= diagnosticInfoMaskInnerStatusCode
	}
	if v.HasInnerDiagnosticInfo {
		mask |= diagnosticInfoMaskInnerDiagnostics
	}
	if err := e.PutByte(mask); err != nil {
		return err
	}
	if v.HasSymbolicId {
		if err := e.PutInt32(v.SymbolicId); err != nil {
			return err
		}
	}
	if v.HasNamespaceURI {
		if err := e.PutInt32(v.NamespaceURI); err != nil {
			return err
		}
	}
	if v.HasLocalizedText {
		if err := e.PutInt32(v.LocalizedText); err != nil {
			return err
		}
	}
	if v.HasLocale {
		if err := e.PutInt32(v.Locale); err != nil {
			return err
		}
	}
	if v.HasAdditionalInfo {
		if err := e.PutString(v.AdditionalInfo); err != nil {
			return err
		}
	}
	if v.HasInnerStatusCode {
		if err := e.PutStatusCode(v.InnerStatusCode); err != nil {
			return err
		}
	}
	if v.HasInnerDiagnosticInfo {
		return e.PutDiagnosticInfo(*v.InnerDiagnosticInfo)
	}
	return nil
}

func (d *Decoder) GetDiagnosticInfo() (types.DiagnosticInfo, error) {
	mask, err := d.GetByte()
	if err != nil {
		return types.DiagnosticInfo{}, err
	}
	var v types.DiagnosticInfo
	if mask&diagnosticInfoMaskSymbolicId != 0 {
		v.HasSymbolicId = true
		if v.SymbolicId, err = d.GetInt32(); err != nil {
			return v, err
		}
	}
	if mask&diagnosticInfoMaskNamespaceURI != 0 {
		v.HasNamespaceURI = true
		if v.NamespaceURI, err = d.GetInt32(); err != nil {
			return v, err
		}
	}
	if mask&diagnosticInfoMaskLocalizedText != 0 {
		v.HasLocalizedText = true
		if v.LocalizedText, err = d.GetInt32(); err != nil {
			return v, err
		}
	}
	if mask&diagnosticInfoMaskLocale != 0 {
		v.HasLocale = true
		if v.Locale, err = d.GetInt32(); err != nil {
			return v, err
		}
	}
	if mask&diagnosticInfoMaskAdditionalInfo != 0 {
		v.HasAdditionalInfo = true
		if v.AdditionalInfo, err = d.GetString(); err != nil {
			return v, err
		}
	}
	if mask&diagnosticInfoMaskInnerStatusCode != 0 {
		v.HasInnerStatusCode = true
		if v.InnerStatusCode, err = d.GetStatusCode(); err != nil {
			return v, err
		}
	}
	if mask&diagnosticInfoMaskInnerDiagnostics != 0 {
		v.HasInnerDiagnosticInfo = true
		inner, err := d.GetDiagnosticInfo()
		if err != nil {
			return v, err
		}
		v.InnerDiagnosticInfo = &inner
	}
	return v, nil
}
