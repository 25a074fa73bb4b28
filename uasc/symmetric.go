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
	"time"

	"github.com/nodeforge/opcua/chunker"
	"github.com/nodeforge/opcua/errs"
	"github.com/nodeforge/opcua/types"
)

// symmetricChunkOverhead is the common header, symmetric security header,
// and sequence header every symmetric chunk carries ahead of its
// encrypted payload.
const symmetricChunkOverhead = commonHeaderSize + 8 + 8

// tokenForReceive resolves which installed token a chunk's token id
// belongs to. A match against the current token immediately discards any
// retained previous token, per spec: the overlap window ends at the first
// message received under the new token, not at the old token's expiry.
func (c *SecureChannel) tokenForReceive(tokenID uint32) (*token, error) {
	if c.current != nil && tokenID == c.current.id {
		c.previous = nil
		return c.current, nil
	}
	if c.previous != nil && tokenID == c.previous.id {
		return c.previous, nil
	}
	return nil, errs.New(errs.KindSecurity, types.StatusBadSecureChannelTokenUnknown, "unknown token id %d", tokenID)
}

// sendOneSymmetricChunk signs, pads, and encrypts chunkBody under tok and
// sends it as one chunk of the given message type and chunk type.
func (c *SecureChannel) sendOneSymmetricChunk(mt chunker.MessageType, chunkType chunker.ChunkType, tok *token, requestID uint32, chunkBody []byte) error {
	padding, _ := c.policy.CalculatePadding(len(chunkBody))
	signable := append(append([]byte(nil), chunkBody...), padding...)

	signature, err := c.policy.SymmetricSign(signable, tok.keys)
	if err != nil {
		return errs.Wrap(errs.KindSecurity, types.StatusBadSecurityChecksFailed, err, "symmetric sign")
	}
	plaintext := append(signable, signature...)

	ciphertext, err := c.policy.SymmetricEncrypt(plaintext, tok.keys)
	if err != nil {
		return errs.Wrap(errs.KindSecurity, types.StatusBadSecurityChecksFailed, err, "symmetric encrypt")
	}

	secHdr := encodeSymmetricSecurityHeader(symmetricSecurityHeader{ChannelId: c.channelID, TokenId: tok.id})
	seqHdr := encodeSequenceHeader(sequenceHeader{SequenceNumber: c.nextSymmetricSeq(), RequestId: requestID})

	payload := make([]byte, 0, len(secHdr)+len(seqHdr)+len(ciphertext))
	payload = append(payload, secHdr...)
	payload = append(payload, seqHdr...)
	payload = append(payload, ciphertext...)

	return c.conn.Send(buildChunk(mt, chunkType, payload))
}

// sendSymmetric splits body across as many chunks as effectiveSendSize
// requires, signing and encrypting each independently.
func (c *SecureChannel) sendSymmetric(mt chunker.MessageType, requestID uint32, body []byte) error {
	if c.current == nil {
		return errs.New(errs.KindState, types.StatusBadInvalidState, "no installed token to send under")
	}
	tok := c.current

	maxChunk := int(c.effectiveSendSize) - symmetricChunkOverhead - c.policy.SignatureSize()
	if maxChunk <= 0 {
		maxChunk = len(body)
		if maxChunk == 0 {
			maxChunk = 1
		}
	}

	offset := 0
	for {
		end := offset + maxChunk
		last := end >= len(body)
		if last {
			end = len(body)
		}
		chunkType := chunker.Continuation
		if last {
			chunkType = chunker.Final
		}
		if err := c.sendOneSymmetricChunk(mt, chunkType, tok, requestID, body[offset:end]); err != nil {
			return err
		}
		offset = end
		if last {
			return nil
		}
	}
}

// Send transmits body as an application-level MSG request and returns
// the request id it was sent under.
func (c *SecureChannel) Send(body []byte) (requestID uint32, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateChannelOpened && c.state != StateRenewing {
		return 0, c.fail(errs.New(errs.KindState, types.StatusBadInvalidState, "cannot send on a channel in state %s", c.state))
	}
	requestID = c.nextRequestID()
	if err := c.sendSymmetric(chunker.MSG, requestID, body); err != nil {
		return 0, c.fail(err)
	}
	return requestID, nil
}

// Reply transmits body as an application-level MSG response correlated
// to requestID, the id carried on the request it answers.
func (c *SecureChannel) Reply(requestID uint32, body []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateChannelOpened && c.state != StateRenewing {
		return c.fail(errs.New(errs.KindState, types.StatusBadInvalidState, "cannot reply on a channel in state %s", c.state))
	}
	if err := c.sendSymmetric(chunker.MSG, requestID, body); err != nil {
		return c.fail(err)
	}
	return nil
}

// decryptSymmetricChunk verifies and decrypts one already-framed
// symmetric chunk's body, returning the reassembler key and plaintext
// service-body fragment.
func (c *SecureChannel) decryptSymmetricChunk(ch rawChunk) (key chunker.Key, payload []byte, err error) {
	if len(ch.body) < 8 {
		return key, nil, errs.New(errs.KindCodec, types.StatusBadDecodingError, "symmetric chunk shorter than its security header")
	}
	secHdr, n, err := decodeSymmetricSecurityHeader(ch.body)
	if err != nil {
		return key, nil, errs.Wrap(errs.KindCodec, types.StatusBadDecodingError, err, "malformed symmetric security header")
	}
	rest := ch.body[n:]

	if c.channelID != 0 && secHdr.ChannelId != c.channelID {
		return key, nil, errs.New(errs.KindSecurity, types.StatusBadSecureChannelIdInvalid, "chunk channel id %d does not match established channel %d", secHdr.ChannelId, c.channelID)
	}

	tok, err := c.tokenForReceive(secHdr.TokenId)
	if err != nil {
		return key, nil, err
	}

	seqHdr, n2, err := decodeSequenceHeader(rest)
	if err != nil {
		return key, nil, errs.Wrap(errs.KindCodec, types.StatusBadDecodingError, err, "malformed sequence header")
	}
	ciphertext := rest[n2:]

	if c.seqSymRemoteSet {
		if err := checkSequence(c.seqSymRemote, seqHdr.SequenceNumber); err != nil {
			return key, nil, err
		}
	}
	c.seqSymRemote = seqHdr.SequenceNumber
	c.seqSymRemoteSet = true

	plaintext, err := c.policy.SymmetricDecrypt(ciphertext, tok.keys)
	if err != nil {
		return key, nil, errs.Wrap(errs.KindSecurity, types.StatusBadSecurityChecksFailed, err, "symmetric decrypt")
	}
	sigSize := c.policy.SignatureSize()
	if sigSize > len(plaintext) {
		return key, nil, errs.New(errs.KindSecurity, types.StatusBadSecurityChecksFailed, "decrypted chunk shorter than its signature")
	}
	message, signature := plaintext[:len(plaintext)-sigSize], plaintext[len(plaintext)-sigSize:]
	if err := c.policy.SymmetricVerify(message, signature, tok.keys); err != nil {
		return key, nil, errs.Wrap(errs.KindSecurity, types.StatusBadSecurityChecksFailed, err, "symmetric signature verification")
	}

	return chunker.Key{ChannelID: secHdr.ChannelId, RequestID: seqHdr.RequestId}, message, nil
}

// Recv blocks for the next complete application-level MSG, reassembling
// chunks through the channel's Assembler. It reports errs.ErrClosed if
// the peer sends CLO, and a *errs.Error wrapping the peer's reason if the
// peer sends ERR.
func (c *SecureChannel) Recv(timeout time.Duration) (body []byte, requestID uint32, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	for {
		remain := timeout
		if !deadline.IsZero() {
			remain = time.Until(deadline)
			if remain <= 0 {
				return nil, 0, errs.ErrTimeout
			}
		}
		raw, err := c.conn.ReceiveChunksBlocking(remain)
		if err != nil {
			return nil, 0, err
		}
		chunks, err := parseChunks(raw)
		if err != nil {
			return nil, 0, c.fail(err)
		}

		for _, ch := range chunks {
			switch ch.tag {
			case chunker.ERR:
				em, decErr := decodeErrorMessage(ch.body)
				if decErr != nil {
					return nil, 0, c.fail(errs.Wrap(errs.KindFraming, types.StatusBadTcpMessageTypeInvalid, decErr, "malformed ERR body"))
				}
				c.setState(StateClosed)
				c.closed = true
				return nil, 0, errs.New(errs.KindState, em.Error, "peer sent ERR: %s", em.Reason)

			case chunker.CLO:
				key, _, decErr := c.decryptSymmetricChunk(ch)
				_ = key
				if decErr != nil {
					return nil, 0, c.fail(decErr)
				}
				c.setState(StateClosed)
				c.closed = true
				return nil, 0, errs.ErrClosed

			case chunker.MSG:
				key, payload, decErr := c.decryptSymmetricChunk(ch)
				if decErr != nil {
					return nil, 0, c.fail(decErr)
				}
				out, done, feedErr := c.assembler.Feed(chunker.MSG, key, ch.chunkType, payload)
				if feedErr != nil {
					return nil, 0, c.fail(feedErr)
				}
				if done {
					return out, key.RequestID, nil
				}

			default:
				return nil, 0, c.fail(errs.New(errs.KindState, types.StatusBadInvalidState, "unexpected message type %s on a symmetric read", ch.tag))
			}
		}
	}
}
