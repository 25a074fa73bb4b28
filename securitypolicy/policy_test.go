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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNonePolicyRoundTripsPlaintext(t *testing.T) {
	p := None{}
	keys := &ChannelKeys{}

	ct, err := p.SymmetricEncrypt([]byte("hello"), keys)
	require.NoError(t, err)
	pt, err := p.SymmetricDecrypt(ct, keys)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), pt)
}

func TestNonePolicySizes(t *testing.T) {
	p := None{}
	require.Equal(t, 0, p.SignatureSize())
	require.Equal(t, 0, p.ThumbprintLength())
	require.Equal(t, 0, p.SigningKeyLength())
	require.Equal(t, 0, p.EncryptingKeyLength())
}

func TestNonePolicyGenerateKeySizedToRequest(t *testing.T) {
	p := None{}
	key, err := p.GenerateKey(nil, nil, 48)
	require.NoError(t, err)
	require.Len(t, key, 48)
	for _, b := range key {
		require.Zero(t, b)
	}
}

func TestNonePolicyGenerateNonceConstant(t *testing.T) {
	p := None{}
	n1, err := p.GenerateNonce(16)
	require.NoError(t, err)
	n2, err := p.GenerateNonce(32)
	require.NoError(t, err)
	require.Equal(t, []byte{0x00}, n1)
	require.Equal(t, n1, n2)
}

func TestNonePolicyVerifyAlwaysSucceeds(t *testing.T) {
	p := None{}
	require.NoError(t, p.SymmetricVerify([]byte("msg"), []byte("garbage-signature"), &ChannelKeys{}))
	require.NoError(t, p.AsymmetricVerify([]byte("msg"), nil, &ChannelKeys{}))
}

func TestAesCtrHmacSha256KeyDerivationLength(t *testing.T) {
	p := NewAesCtrHmacSha256()
	total := p.SigningKeyLength() + p.EncryptingKeyLength() + p.EncryptingBlockSize()

	key, err := p.GenerateKey([]byte("remote-nonce"), []byte("local-nonce"), total)
	require.NoError(t, err)
	require.Len(t, key, total)
}

func TestAesCtrHmacSha256SymmetricRoundTrip(t *testing.T) {
	p := NewAesCtrHmacSha256()
	total := p.SigningKeyLength() + p.EncryptingKeyLength() + p.EncryptingBlockSize()
	material, err := p.GenerateKey([]byte("secret"), []byte("seed"), total)
	require.NoError(t, err)

	signing := material[:p.SigningKeyLength()]
	encrypting := material[p.SigningKeyLength() : p.SigningKeyLength()+p.EncryptingKeyLength()]
	iv := material[p.SigningKeyLength()+p.EncryptingKeyLength():]

	keys := &ChannelKeys{
		LocalSigningKey:     signing,
		LocalEncryptingKey:  encrypting,
		LocalIV:             iv,
		RemoteSigningKey:    signing,
		RemoteEncryptingKey: encrypting,
		RemoteIV:            iv,
	}

	plaintext := []byte("a ReadRequest body, or close enough for a round-trip test")
	ct, err := p.SymmetricEncrypt(plaintext, keys)
	require.NoError(t, err)
	require.NotEqual(t, plaintext, ct)

	pt, err := p.SymmetricDecrypt(ct, keys)
	require.NoError(t, err)
	require.Equal(t, plaintext, pt)

	sig, err := p.SymmetricSign(ct, keys)
	require.NoError(t, err)
	require.Len(t, sig, p.SignatureSize())
	require.NoError(t, p.SymmetricVerify(ct, sig, keys))
}

func TestAesCtrHmacSha256SymmetricVerifyRejectsTamperedMessage(t *testing.T) {
	p := NewAesCtrHmacSha256()
	keys := &ChannelKeys{LocalSigningKey: []byte("signing-key"), RemoteSigningKey: []byte("signing-key")}

	sig, err := p.SymmetricSign([]byte("original"), keys)
	require.NoError(t, err)

	err = p.SymmetricVerify([]byte("tampered"), sig, keys)
	require.Error(t, err)
}

func TestAesCtrHmacSha256AsymmetricRoundTrip(t *testing.T) {
	p := NewAesCtrHmacSha256()
	p.SetServerPrivateKey([]byte("a stand-in private key"))

	plaintext := []byte("OpenSecureChannelRequest body")
	ct, err := p.AsymmetricEncrypt(plaintext, nil)
	require.NoError(t, err)

	pt, err := p.AsymmetricDecrypt(ct, nil)
	require.NoError(t, err)
	require.Equal(t, plaintext, pt)
}

func TestAesCtrHmacSha256MakeThumbprintDeterministic(t *testing.T) {
	p := NewAesCtrHmacSha256()
	cert := []byte("a certificate's worth of bytes")

	t1, err := p.MakeThumbprint(cert)
	require.NoError(t, err)
	t2, err := p.MakeThumbprint(cert)
	require.NoError(t, err)
	require.Equal(t, t1, t2)
	require.Len(t, t1, p.ThumbprintLength())
}
