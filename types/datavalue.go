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

// DataValue bundles a Variant with status and timestamp metadata, the
// shape returned by the Read service. Every field, Value included, is
// optional on the wire, flagged by an encoding mask byte.
type DataValue struct {
	HasValue             bool
	Value                Variant
	HasStatus            bool
	Status               StatusCode
	HasSourceTimestamp   bool
	SourceTimestamp      DateTime
	HasSourcePicoseconds bool
	SourcePicoseconds    uint16
	HasServerTimestamp   bool
	ServerTimestamp      DateTime
	HasServerPicoseconds bool
	ServerPicoseconds    uint16
}

// DiagnosticInfo carries optional extended diagnostics for a service
// response, recursively nestable via InnerDiagnosticInfo. Every field is
// optional, flagged by an encoding mask byte.
type DiagnosticInfo struct {
	HasSymbolicId          bool
	SymbolicId             int32
	HasNamespaceURI        bool
	NamespaceURI           int32
	HasLocale              bool
	Locale                 int32
	HasLocalizedText       bool
	LocalizedText          int32
	HasAdditionalInfo      bool
	AdditionalInfo         String
	HasInnerStatusCode     bool
	InnerStatusCode        StatusCode
	HasInnerDiagnosticInfo bool
	InnerDiagnosticInfo    *DiagnosticInfo
}
