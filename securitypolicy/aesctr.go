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
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/nodeforge/opcua/errs"
	"github.com/nodeforge/opcua/types"
)

// AesCtrHmacSha256URI identifies this module's second concrete policy. It
// is not an OPC Foundation-assigned URI: this policy derives keys with
// HKDF-SHA256 and signs/encrypts with HMAC-SHA256/AES-128-CTR rather than
// implementing a standard profile's RSA-OAEP asymmetric handshake.
const AesCtrHmacSha256URI = "http://nodeforge.example/UA/SecurityPolicy#AesCtrHmacSha256"

const (
	aesCtrSigningKeyLength    = sha256.Size
	aesCtrEncryptingKeyLength = 16 // AES-128
)

// AesCtrHmacSha256 signs with HMAC-SHA256, encrypts with AES-128-CTR, and
// derives key material with HKDF-SHA256. Its asymmetric module reuses the
// same primitives keyed from the server private key bytes rather than
// parsing an X.509 certificate and doing RSA-OAEP: there is no per-channel
// key material yet when the asymmetric module is used during OPN, so it
// falls back to a key derived once from the policy-level private key.
type AesCtrHmacSha256 struct {
	serverPrivateKey []byte
	trustList        []byte
	revocationList   []byte
}

// NewAesCtrHmacSha256 returns an unconfigured policy; call
// SetServerPrivateKey before using its asymmetric module.
func NewAesCtrHmacSha256() *AesCtrHmacSha256 {
	return &AesCtrHmacSha256{}
}

func (p *AesCtrHmacSha256) URI() string { return AesCtrHmacSha256URI }

func (p *AesCtrHmacSha256) SignatureSize() int       { return sha256.Size }
func (p *AesCtrHmacSha256) ThumbprintLength() int    { return sha256.Size }
func (p *AesCtrHmacSha256) SigningKeyLength() int    { return aesCtrSigningKeyLength }
func (p *AesCtrHmacSha256) EncryptingKeyLength() int { return aesCtrEncryptingKeyLength }
func (p *AesCtrHmacSha256) EncryptingBlockSize() int { return aes.BlockSize }

func (p *AesCtrHmacSha256) SetServerPrivateKey(key []byte) { p.serverPrivateKey = key }
func (p *AesCtrHmacSha256) SetTrustList(list []byte)       { p.trustList = list }
func (p *AesCtrHmacSha256) SetRevocationList(list []byte)  { p.revocationList = list }

func (p *AesCtrHmacSha256) MakeThumbprint(certificate []byte) ([]byte, error) {
	sum := sha256.Sum256(certificate)
	return sum[:], nil
}

// CalculatePadding reports no padding: CTR is a stream cipher, so the
// plaintext never needs to land on a block boundary before signing.
func (p *AesCtrHmacSha256) CalculatePadding(_ int) ([]byte, bool) { return nil, false }

func (p *AesCtrHmacSha256) GenerateKey(secret, seed []byte, length int) ([]byte, error) {
	r := hkdf.New(sha256.New, secret, seed, nil)
	out := make([]byte, length)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, errs.Wrap(errs.KindSecurity, types.StatusBadSecurityChecksFailed, err, "hkdf key derivation")
	}
	return out, nil
}

func (p *AesCtrHmacSha256) GenerateNonce(length int) ([]byte, error) {
	nonce := make([]byte, length)
	if _, err := rand.Read(nonce); err != nil {
		return nil, errs.Wrap(errs.KindSecurity, types.StatusBadSecurityChecksFailed, err, "nonce generation")
	}
	return nonce, nil
}

func (p *AesCtrHmacSha256) SymmetricSign(message []byte, keys *ChannelKeys) ([]byte, error) {
	mac := hmac.New(sha256.New, keys.LocalSigningKey)
	mac.Write(message)
	return mac.Sum(nil), nil
}

func (p *AesCtrHmacSha256) SymmetricVerify(message, signature []byte, keys *ChannelKeys) error {
	mac := hmac.New(sha256.New, keys.RemoteSigningKey)
	mac.Write(message)
	if !hmac.Equal(mac.Sum(nil), signature) {
		return errs.New(errs.KindSecurity, types.StatusBadSecurityChecksFailed, "hmac-sha256 verification failed")
	}
	return nil
}

func (p *AesCtrHmacSha256) SymmetricEncrypt(plaintext []byte, keys *ChannelKeys) ([]byte, error) {
	block, err := aes.NewCipher(keys.LocalEncryptingKey)
	if err != nil {
		return nil, errs.Wrap(errs.KindSecurity, types.StatusBadSecurityChecksFailed, err, "aes cipher")
	}
	out := make([]byte, len(plaintext))
	cipher.NewCTR(block, keys.LocalIV).XORKeyStream(out, plaintext)
	return out, nil
}

func (p *AesCtrHmacSha256) SymmetricDecrypt(ciphertext []byte, keys *ChannelKeys) ([]byte, error) {
	block, err := aes.NewCipher(keys.RemoteEncryptingKey)
	if err != nil {
		return nil, errs.Wrap(errs.KindSecurity, types.StatusBadSecurityChecksFailed, err, "aes cipher")
	}
	out := make([]byte, len(ciphertext))
	cipher.NewCTR(block, keys.RemoteIV).XORKeyStream(out, ciphertext)
	return out, nil
}

// asymmetricKey folds the policy-level private key down to an AES-128 key
// once, since there is no per-channel key material yet at OPN time.
func (p *AesCtrHmacSha256) asymmetricKey() []byte {
	sum := sha256.Sum256(p.serverPrivateKey)
	return sum[:aesCtrEncryptingKeyLength]
}

func (p *AesCtrHmacSha256) AsymmetricSign(message []byte, _ *ChannelKeys) ([]byte, error) {
	mac := hmac.New(sha256.New, p.serverPrivateKey)
	mac.Write(message)
	return mac.Sum(nil), nil
}

func (p *AesCtrHmacSha256) AsymmetricVerify(message, signature []byte, _ *ChannelKeys) error {
	mac := hmac.New(sha256.New, p.serverPrivateKey)
	mac.Write(message)
	if !hmac.Equal(mac.Sum(nil), signature) {
		return errs.New(errs.KindSecurity, types.StatusBadSecurityChecksFailed, "hmac-sha256 verification failed")
	}
	return nil
}

// AsymmetricEncrypt prepends a fresh random IV to the CTR ciphertext,
// since OPN has no pre-established per-channel IV to reuse.
func (p *AesCtrHmacSha256) AsymmetricEncrypt(plaintext []byte, _ *ChannelKeys) ([]byte, error) {
	block, err := aes.NewCipher(p.asymmetricKey())
	if err != nil {
		return nil, errs.Wrap(errs.KindSecurity, types.StatusBadSecurityChecksFailed, err, "aes cipher")
	}
	out := make([]byte, aes.BlockSize+len(plaintext))
	iv := out[:aes.BlockSize]
	if _, err := rand.Read(iv); err != nil {
		return nil, errs.Wrap(errs.KindSecurity, types.StatusBadSecurityChecksFailed, err, "iv generation")
	}
	cipher.NewCTR(block, iv).XORKeyStream(out[aes.BlockSize:], plaintext)
	return out, nil
}

func (p *AesCtrHmacSha256) AsymmetricDecrypt(ciphertext []byte, _ *ChannelKeys) ([]byte, error) {
	if len(ciphertext) < aes.BlockSize {
		return nil, errs.New(errs.KindSecurity, types.StatusBadSecurityChecksFailed, "ciphertext shorter than iv")
	}
	block, err := aes.NewCipher(p.asymmetricKey())
	if err != nil {
		return nil, errs.Wrap(errs.KindSecurity, types.StatusBadSecurityChecksFailed, err, "aes cipher")
	}
	out := make([]byte, len(ciphertext)-aes.BlockSize)
	cipher.NewCTR(block, ciphertext[:aes.BlockSize]).XORKeyStream(out, ciphertext[aes.BlockSize:])
	return out, nil
}

func (p *AesCtrHmacSha256) ParseClientCertificate(certificate []byte, keys *ChannelKeys) error {
	keys.ClientCertificate = append([]byte(nil), certificate...)
	return nil
}

var _ Policy = (*AesCtrHmacSha256)(nil)
