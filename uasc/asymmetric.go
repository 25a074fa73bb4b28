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

package uasc

import (
	"encoding/binary"
	"time"

	"github.com/nodeforge/opcua/chunker"
	"github.com/nodeforge/opcua/errs"
	"github.com/nodeforge/opcua/types"
)

// sendAsymmetric builds and sends one OPN chunk: channel id, asymmetric
// security header, sequence header, then the service body signed and
// encrypted under the asymmetric module. OPN is always a single chunk on
// this implementation: neither HEL/ACK-class negotiation nor any service
// body this module defines approaches a chunk-size boundary.
func (c *SecureChannel) sendAsymmetric(channelID uint32, serviceBody []byte) error {
	padding, _ := c.policy.CalculatePadding(len(serviceBody))
	signable := append(append([]byte(nil), serviceBody...), padding...)

	signature, err := c.policy.AsymmetricSign(signable, nil)
	if err != nil {
		return errs.Wrap(errs.KindSecurity, types.StatusBadSecurityChecksFailed, err, "asymmetric sign")
	}
	plaintext := append(signable, signature...)

	ciphertext, err := c.policy.AsymmetricEncrypt(plaintext, nil)
	if err != nil {
		return errs.Wrap(errs.KindSecurity, types.StatusBadSecurityChecksFailed, err, "asymmetric encrypt")
	}

	secHdr := encodeAsymmetricSecurityHeader(asymmetricSecurityHeader{SecurityPolicyURI: c.policy.URI()})
	seqHdr := encodeSequenceHeader(sequenceHeader{SequenceNumber: c.nextAsymmetricSeq(), RequestId: c.nextRequestID()})

	channelIDBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(channelIDBytes, channelID)

	payload := make([]byte, 0, 4+len(secHdr)+len(seqHdr)+len(ciphertext))
	payload = append(payload, channelIDBytes...)
	payload = append(payload, secHdr...)
	payload = append(payload, seqHdr...)
	payload = append(payload, ciphertext...)

	return c.conn.Send(buildChunk(chunker.OPN, chunker.Final, payload))
}

// recvAsymmetric waits for one OPN chunk, verifies its channel id against
// whatever this channel has already established (0 means "not yet
// assigned", which always matches), validates and advances the
// asymmetric sequence number, and returns the decrypted, verified service
// body.
func (c *SecureChannel) recvAsymmetric(timeout time.Duration) ([]byte, error) {
	raw, err := c.recvOne(timeout, chunker.OPN)
	if err != nil {
		return nil, err
	}
	body := raw.body
	if len(body) < 4 {
		return nil, errs.New(errs.KindCodec, types.StatusBadDecodingError, "OPN chunk shorter than its channel id field")
	}
	channelID := binary.LittleEndian.Uint32(body[0:4])
	rest := body[4:]

	if _, n, err := decodeAsymmetricSecurityHeader(rest); err != nil {
		return nil, errs.Wrap(errs.KindCodec, types.StatusBadDecodingError, err, "malformed asymmetric security header")
	} else {
		rest = rest[n:]
	}

	seqHdr, n, err := decodeSequenceHeader(rest)
	if err != nil {
		return nil, errs.Wrap(errs.KindCodec, types.StatusBadDecodingError, err, "malformed sequence header")
	}
	ciphertext := rest[n:]

	if c.channelID != 0 && channelID != 0 && channelID != c.channelID {
		return nil, errs.New(errs.KindSecurity, types.StatusBadSecureChannelIdInvalid, "OPN channel id %d does not match established channel %d", channelID, c.channelID)
	}

	if c.seqAsymRemoteSet {
		if err := checkSequence(c.seqAsymRemote, seqHdr.SequenceNumber); err != nil {
			return nil, err
		}
	}
	c.seqAsymRemote = seqHdr.SequenceNumber
	c.seqAsymRemoteSet = true

	plaintext, err := c.policy.AsymmetricDecrypt(ciphertext, nil)
	if err != nil {
		return nil, errs.Wrap(errs.KindSecurity, types.StatusBadSecurityChecksFailed, err, "asymmetric decrypt")
	}

	sigSize := c.policy.SignatureSize()
	if sigSize > len(plaintext) {
		return nil, errs.New(errs.KindSecurity, types.StatusBadSecurityChecksFailed, "decrypted OPN body shorter than its signature")
	}
	message, signature := plaintext[:len(plaintext)-sigSize], plaintext[len(plaintext)-sigSize:]
	if err := c.policy.AsymmetricVerify(message, signature, nil); err != nil {
		return nil, errs.Wrap(errs.KindSecurity, types.StatusBadSecurityChecksFailed, err, "asymmetric signature verification")
	}

	return message, nil
}
