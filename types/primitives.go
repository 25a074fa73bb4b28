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

import "time"

// String carries the OPC UA String wire-level tri-state: a true Go nil is
// not representable here, so Null makes the distinction explicit between
// the null value (wire length -1) and the empty value (wire length 0,
// Value == "").
type String struct {
	Null  bool
	Value string
}

// NullString returns the null String (wire length -1).
func NullString() String { return String{Null: true} }

// NewString returns a non-null String, possibly empty.
func NewString(s string) String { return String{Value: s} }

// ByteString carries the same null/empty/non-empty tri-state as String,
// for the ByteString built-in type.
type ByteString struct {
	Null bool
	Data []byte
}

// NullByteString returns the null ByteString (wire length -1).
func NullByteString() ByteString { return ByteString{Null: true} }

// NewByteString returns a non-null ByteString, possibly empty.
func NewByteString(b []byte) ByteString { return ByteString{Data: b} }

// Guid is the 16-byte OPC UA Guid, encoded on the wire as
// Data1(4 LE) Data2(2 LE) Data3(2 LE) Data4(8 BE-ish raw bytes).
type Guid struct {
	Data1 uint32
	Data2 uint16
	Data3 uint16
	Data4 [8]byte
}

// StatusCode is the 4-byte OPC UA status/severity code. The top two bits
// classify Good/Uncertain/Bad; this module only needs round-trip fidelity
// and the handful of constants used by the error taxonomy in errs.
type StatusCode uint32

const (
	StatusGood                     StatusCode = 0x00000000
	StatusBadDecodingError         StatusCode = 0x80060000
	StatusBadEncodingLimitsExceeded StatusCode = 0x80080000
	StatusBadSecurityChecksFailed  StatusCode = 0x80130000
	StatusBadSecureChannelIdInvalid StatusCode = 0x80400000
	StatusBadSecureChannelTokenUnknown StatusCode = 0x80460000
	StatusBadSequenceNumberInvalid StatusCode = 0x80470000
	StatusBadRequestTimeout        StatusCode = 0x800A0000
	StatusBadTcpMessageTooLarge    StatusCode = 0x80720000
	StatusBadConnectionClosed      StatusCode = 0x80AE0000
	StatusBadTcpInternalError      StatusCode = 0x807A0000
	StatusBadTcpMessageTypeInvalid StatusCode = 0x80730000
	StatusBadInvalidState          StatusCode = 0x80AF0000
	StatusBadCertificateInvalid    StatusCode = 0x80160000
	StatusBadRequestTypeInvalid    StatusCode = 0x80B00000
)

// QualifiedName is a namespace-indexed name, e.g. a browse name.
type QualifiedName struct {
	NamespaceIndex uint16
	Name           String
}

// LocalizedText is a locale-tagged human readable string. Locale and Text
// are each optionally present, flagged by the two low bits of an encoding
// mask byte on the wire (handled in codec, not here).
type LocalizedText struct {
	HasLocale bool
	Locale    String
	HasText   bool
	Text      String
}

// uaEpoch is 1601-01-01T00:00:00Z, the fixed epoch for OPC UA DateTime
// ticks (100ns units), per Part 6 DateTime encoding.
var uaEpoch = time.Date(1601, 1, 1, 0, 0, 0, 0, time.UTC)

// DateTime is OPC UA's signed 100ns-tick timestamp. Ticks can be
// negative or exceed what time.Time can hold; Ticks is the wire-faithful
// representation and ToTime/FromTime are convenience conversions for the
// common range.
type DateTime struct {
	Ticks int64
}

// FromTime converts a time.Time to a DateTime relative to the OPC UA
// epoch. Values before the epoch produce negative Ticks, matching the
// wire format's signed encoding.
func FromTime(t time.Time) DateTime {
	d := t.Sub(uaEpoch)
	return DateTime{Ticks: d.Nanoseconds() / 100}
}

// ToTime converts a DateTime back to a time.Time.
func (d DateTime) ToTime() time.Time {
	return uaEpoch.Add(time.Duration(d.Ticks) * 100)
}
