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

package securitypolicy

import (
	"github.com/nodeforge/opcua/errs"
	"github.com/nodeforge/opcua/types"
)

// NoneURI is the well-known security policy URI for no signing, no
// encryption.
const NoneURI = "http://opcfoundation.org/UA/SecurityPolicy#None"

// None is the reference policy: every cryptographic operation is a no-op,
// sized so the SecureChannel can run every code path (padding
// calculation, key installation, nonce exchange) without doing any real
// cryptography.
type None struct{}

func (None) URI() string { return NoneURI }

func (None) SignatureSize() int      { return 0 }
func (None) ThumbprintLength() int   { return 0 }
func (None) SigningKeyLength() int   { return 0 }
func (None) EncryptingKeyLength() int { return 0 }
func (None) EncryptingBlockSize() int { return 1 }

func (None) AsymmetricEncrypt(plaintext []byte, _ *ChannelKeys) ([]byte, error) {
	return append([]byte(nil), plaintext...), nil
}

func (None) AsymmetricDecrypt(ciphertext []byte, _ *ChannelKeys) ([]byte, error) {
	return append([]byte(nil), ciphertext...), nil
}

func (None) AsymmetricSign(_ []byte, _ *ChannelKeys) ([]byte, error) { return nil, nil }

func (None) AsymmetricVerify(_, _ []byte, _ *ChannelKeys) error { return nil }

func (None) MakeThumbprint(certificate []byte) ([]byte, error) {
	if certificate == nil {
		return nil, errs.New(errs.KindSecurity, types.StatusBadSecurityChecksFailed, "none policy: thumbprint requested for nil certificate")
	}
	return nil, nil
}

func (None) CalculatePadding(_ int) ([]byte, bool) { return nil, false }

func (None) SymmetricEncrypt(plaintext []byte, _ *ChannelKeys) ([]byte, error) {
	return append([]byte(nil), plaintext...), nil
}

func (None) SymmetricDecrypt(ciphertext []byte, _ *ChannelKeys) ([]byte, error) {
	return append([]byte(nil), ciphertext...), nil
}

func (None) SymmetricSign(_ []byte, _ *ChannelKeys) ([]byte, error) { return nil, nil }

func (None) SymmetricVerify(_, _ []byte, _ *ChannelKeys) error { return nil }

func (None) GenerateKey(_, _ []byte, length int) ([]byte, error) {
	return make([]byte, length), nil
}

// GenerateNonce always returns a constant single byte, independent of the
// requested length: the None policy has no real entropy source and every
// channel exercising it uses the same fixed nonce value.
func (None) GenerateNonce(_ int) ([]byte, error) { return []byte{0x00}, nil }

func (None) ParseClientCertificate(_ []byte, _ *ChannelKeys) error { return nil }

func (None) SetServerPrivateKey(_ []byte) {}
func (None) SetTrustList(_ []byte)        {}
func (None) SetRevocationList(_ []byte)   {}

var _ Policy = None{}
