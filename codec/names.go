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

// PutQualifiedName writes the namespace index then the name string.
func (e *Encoder) PutQualifiedName(v types.QualifiedName) error {
	if err := e.PutUInt16(v.NamespaceIndex); err != nil {
		return err
	}
	return e.PutString(v.Name)
}

func (d *Decoder) GetQualifiedName() (types.QualifiedName, error) {
	var v types.QualifiedName
	var err error
	if v.NamespaceIndex, err = d.GetUInt16(); err != nil {
		return v, err
	}
	v.Name, err = d.GetString()
	return v, err
}

const (
	localizedTextFlagLocale = 0x01
	localizedTextFlagText   = 0x02
)

// PutLocalizedText writes a 1-byte presence mask followed by whichever of
// Locale/Text are present.
func (e *Encoder) PutLocalizedText(v types.LocalizedText) error {
	var mask byte
	if v.HasLocale {
		mask |= localizedTextFlagLocale
	}
	if v.HasText {
		mask |= localizedTextFlagText
	}
	if err := e.PutByte(mask); err != nil {
		return err
	}
	if v.HasLocale {
		if err := e.PutString(v.Locale); err != nil {
			return err
		}
	}
	if v.HasText {
		if err := e.PutString(v.Text); err != nil {
			return err
		}
	}
	return nil
}

func (d *Decoder) GetLocalizedText() (types.LocalizedText, error) {
	mask, err := d.GetByte()
	if err != nil {
		return types.LocalizedText{}, err
	}
	var v types.LocalizedText
	if mask&localizedTextFlagLocale != 0 {
		v.HasLocale = true
		if v.Locale, err = d.GetString(); err != nil {
			return v, err
		}
	}
	if mask&localizedTextFlagText != 0 {
		v.HasText = true
		if v.Text, err = d.GetString(); err != nil {
			return v, err
		}
	}
	return v, nil
}
