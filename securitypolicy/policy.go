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

// The nodeforge opcua securitypolicy package exposes crypto primitives to
// the SecureChannel without the channel knowing which algorithm is in
// use: one Policy implementation per security policy URI, selected once
// at channel-context construction.
package securitypolicy

// ChannelKeys holds the six key-material slots a channel owns: {local,
// remote} x {signing, encrypting, iv}, plus whatever the peer's
// certificate parsed out to. The SecureChannel owns one ChannelKeys per
// channel and installs fresh values on every (issue, renew); a Policy
// never retains a reference to it past the call it was passed to.
type ChannelKeys struct {
	LocalSigningKey     []byte
	LocalEncryptingKey  []byte
	LocalIV             []byte
	RemoteSigningKey    []byte
	RemoteEncryptingKey []byte
	RemoteIV            []byte

	// ClientCertificate is populated by ParseClientCertificate. Its
	// contents are opaque to the SecureChannel beyond thumbprint
	// comparison against the asymmetric header's receiver thumbprint.
	ClientCertificate []byte
}

// Policy is the pluggable crypto surface the SecureChannel drives for
// signing, encryption, key derivation, and certificate thumbprinting. The
// asymmetric methods are only used while a channel is being opened or
// renewed (around the OPN exchange); the symmetric methods are used for
// every MSG/CLO chunk thereafter.
type Policy interface {
	// URI is the security policy URI this Policy implements, as carried
	// on the wire in the OPN asymmetric security header.
	URI() string

	SignatureSize() int
	ThumbprintLength() int
	SigningKeyLength() int
	EncryptingKeyLength() int
	EncryptingBlockSize() int

	AsymmetricEncrypt(plaintext []byte, keys *ChannelKeys) ([]byte, error)
	AsymmetricDecrypt(ciphertext []byte, keys *ChannelKeys) ([]byte, error)
	AsymmetricSign(message []byte, keys *ChannelKeys) ([]byte, error)
	AsymmetricVerify(message, signature []byte, keys *ChannelKeys) error
	MakeThumbprint(certificate []byte) ([]byte, error)
	// CalculatePadding reports the padding bytes to append before
	// signing and the extra-padding-byte flag, for block ciphers whose
	// plaintext must land on a block boundary.
	CalculatePadding(bytesToWrite int) (padding []byte, extraPaddingByte bool)

	SymmetricEncrypt(plaintext []byte, keys *ChannelKeys) ([]byte, error)
	SymmetricDecrypt(ciphertext []byte, keys *ChannelKeys) ([]byte, error)
	SymmetricSign(message []byte, keys *ChannelKeys) ([]byte, error)
	SymmetricVerify(message, signature []byte, keys *ChannelKeys) error
	GenerateKey(secret, seed []byte, length int) ([]byte, error)
	GenerateNonce(length int) ([]byte, error)

	// ParseClientCertificate validates and records the peer certificate
	// presented during OPN, if any, into keys.ClientCertificate.
	ParseClientCertificate(certificate []byte, keys *ChannelKeys) error

	// SetServerPrivateKey, SetTrustList, and SetRevocationList configure
	// policy-level (not per-channel) state: the private key this side
	// signs/decrypts with and the PKI material used to validate a peer
	// certificate. They are never called per-channel; SetTrustList and
	// SetRevocationList may be called again whenever the PKI material
	// changes (uaconfig.WatchPolicyFiles does so on file changes).
	SetServerPrivateKey(key []byte)
	SetTrustList(list []byte)
	SetRevocationList(list []byte)
}
