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

	"github.com/nodeforge/opcua/errs"
	"github.com/nodeforge/opcua/securitypolicy"
	"github.com/nodeforge/opcua/types"
)

// tokenIDSeq hands out locally-unique token ids for a server issuing or
// renewing tokens; a real server would track these per channel, but a
// process-wide counter is sufficient since token ids only need to be
// unique within a channel and monotonically increasing ids trivially are.
var tokenIDSeq uint32

func nextTokenID() uint32 {
	tokenIDSeq++
	return tokenIDSeq
}

var channelIDSeq uint32

func nextChannelID() uint32 {
	channelIDSeq++
	return channelIDSeq
}

// deriveTokenKeys derives this token's six key slots from the two
// nonces exchanged during OPN: GenerateKey(remote_nonce, local_nonce, n)
// produces this side's signing/encrypting/iv material, and the same call
// with the nonces swapped produces the material the peer derived for
// itself — which is exactly the key this side needs to verify/decrypt
// what the peer sends.
func (c *SecureChannel) deriveTokenKeys(localNonce, remoteNonce []byte) (*securitypolicy.ChannelKeys, error) {
	signingLen := c.policy.SigningKeyLength()
	encLen := c.policy.EncryptingKeyLength()
	ivLen := c.policy.EncryptingBlockSize()
	total := signingLen + encLen + ivLen
	if total == 0 {
		return &securitypolicy.ChannelKeys{}, nil
	}

	localMaterial, err := c.policy.GenerateKey(remoteNonce, localNonce, total)
	if err != nil {
		return nil, err
	}
	remoteMaterial, err := c.policy.GenerateKey(localNonce, remoteNonce, total)
	if err != nil {
		return nil, err
	}

	return &securitypolicy.ChannelKeys{
		LocalSigningKey:     localMaterial[:signingLen],
		LocalEncryptingKey:  localMaterial[signingLen : signingLen+encLen],
		LocalIV:             localMaterial[signingLen+encLen:],
		RemoteSigningKey:    remoteMaterial[:signingLen],
		RemoteEncryptingKey: remoteMaterial[signingLen : signingLen+encLen],
		RemoteIV:            remoteMaterial[signingLen+encLen:],
	}, nil
}

// Open issues a brand-new channel: it generates a local nonce, sends an
// OPN issue request over the asymmetric security header, and installs the
// token and key material the server returns.
func (c *SecureChannel) Open(timeout time.Duration, requestedLifetime uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireRole(RoleClient); err != nil {
		return c.fail(err)
	}
	if err := c.requireState(StateHelAcked); err != nil {
		return c.fail(err)
	}

	nonce, err := c.policy.GenerateNonce(c.policy.SigningKeyLength())
	if err != nil {
		return c.fail(err)
	}
	c.localNonce = nonce

	reqBody := encodeOpenSecureChannelRequest(openSecureChannelRequest{
		ClientProtocolVersion: 0,
		RequestType:           requestTypeIssue,
		SecurityMode:          securityModeSign,
		ClientNonce:           nonce,
		RequestedLifetime:     requestedLifetime,
	})
	if err := c.sendAsymmetric(0, reqBody); err != nil {
		return c.fail(err)
	}

	respBody, err := c.recvAsymmetric(timeout)
	if err != nil {
		return c.fail(err)
	}
	resp, err := decodeOpenSecureChannelResponse(respBody)
	if err != nil {
		return c.fail(errs.Wrap(errs.KindCodec, types.StatusBadDecodingError, err, "malformed OpenSecureChannelResponse"))
	}

	keys, err := c.deriveTokenKeys(nonce, resp.ServerNonce)
	if err != nil {
		return c.fail(err)
	}

	c.channelID = resp.SecurityToken.ChannelId
	c.current = &token{
		id:        resp.SecurityToken.TokenId,
		keys:      keys,
		createdAt: resp.SecurityToken.CreatedAt.ToTime(),
		lifetime:  time.Duration(resp.SecurityToken.RevisedLifetime) * time.Millisecond,
	}
	c.setState(StateChannelOpened)
	return nil
}

// AcceptOpen waits for an inbound OPN issue request and answers it with a
// freshly minted channel id and token.
func (c *SecureChannel) AcceptOpen(timeout time.Duration, requestedLifetime uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireRole(RoleServer); err != nil {
		return c.fail(err)
	}
	if err := c.requireState(StateHelAcked); err != nil {
		return c.fail(err)
	}

	reqBody, err := c.recvAsymmetric(timeout)
	if err != nil {
		return c.fail(err)
	}
	req, err := decodeOpenSecureChannelRequest(reqBody)
	if err != nil {
		return c.fail(errs.Wrap(errs.KindCodec, types.StatusBadDecodingError, err, "malformed OpenSecureChannelRequest"))
	}
	if req.RequestType != requestTypeIssue {
		return c.fail(errs.New(errs.KindState, types.StatusBadRequestTypeInvalid, "expected an issue request, got request type %d", req.RequestType))
	}

	nonce, err := c.policy.GenerateNonce(c.policy.SigningKeyLength())
	if err != nil {
		return c.fail(err)
	}
	c.localNonce = nonce

	keys, err := c.deriveTokenKeys(nonce, req.ClientNonce)
	if err != nil {
		return c.fail(err)
	}

	lifetime := req.RequestedLifetime
	if lifetime == 0 {
		lifetime = requestedLifetime
	}
	c.channelID = nextChannelID()
	c.current = &token{
		id:        nextTokenID(),
		keys:      keys,
		createdAt: time.Now(),
		lifetime:  time.Duration(lifetime) * time.Millisecond,
	}

	respBody := encodeOpenSecureChannelResponse(openSecureChannelResponse{
		ServerProtocolVersion: 0,
		SecurityToken: channelSecurityToken{
			ChannelId:       c.channelID,
			TokenId:         c.current.id,
			CreatedAt:       types.FromTime(c.current.createdAt),
			RevisedLifetime: lifetime,
		},
		ServerNonce: nonce,
	})
	if err := c.sendAsymmetric(c.channelID, respBody); err != nil {
		return c.fail(err)
	}

	c.setState(StateChannelOpened)
	return nil
}

// RenewDue reports whether the current token has crossed the renewal
// threshold (tokenLifetimeOverlapFraction of its lifetime) and should be
// renewed now.
func (c *SecureChannel) RenewDue() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil || c.current.lifetime <= 0 {
		return false
	}
	elapsed := time.Since(c.current.createdAt)
	return float64(elapsed) >= tokenLifetimeOverlapFraction*float64(c.current.lifetime)
}

// Renew requests a new token on an already-open channel, keeping the
// current token live as c.previous until the first message arrives under
// the new one: both tokens are valid to receive with during that overlap
// window, but every send after Renew returns uses the new token only.
func (c *SecureChannel) Renew(timeout time.Duration, requestedLifetime uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireRole(RoleClient); err != nil {
		return c.fail(err)
	}
	if err := c.requireState(StateChannelOpened); err != nil {
		return c.fail(err)
	}
	c.setState(StateRenewing)

	nonce, err := c.policy.GenerateNonce(c.policy.SigningKeyLength())
	if err != nil {
		return c.fail(err)
	}
	c.localNonce = nonce

	reqBody := encodeOpenSecureChannelRequest(openSecureChannelRequest{
		ClientProtocolVersion: 0,
		RequestType:           requestTypeRenew,
		SecurityMode:          securityModeSign,
		ClientNonce:           nonce,
		RequestedLifetime:     requestedLifetime,
	})
	if err := c.sendAsymmetric(c.channelID, reqBody); err != nil {
		return c.fail(err)
	}

	respBody, err := c.recvAsymmetric(timeout)
	if err != nil {
		return c.fail(err)
	}
	resp, err := decodeOpenSecureChannelResponse(respBody)
	if err != nil {
		return c.fail(errs.Wrap(errs.KindCodec, types.StatusBadDecodingError, err, "malformed renew OpenSecureChannelResponse"))
	}

	keys, err := c.deriveTokenKeys(nonce, resp.ServerNonce)
	if err != nil {
		return c.fail(err)
	}

	c.previous = c.current
	c.current = &token{
		id:        resp.SecurityToken.TokenId,
		keys:      keys,
		createdAt: resp.SecurityToken.CreatedAt.ToTime(),
		lifetime:  time.Duration(resp.SecurityToken.RevisedLifetime) * time.Millisecond,
	}
	c.setState(StateChannelOpened)
	return nil
}

// AcceptRenew waits for an inbound OPN renew request on an already-open
// channel and mints a new token, keeping the old one alive in c.previous
// for the same overlap window Renew observes on the client side.
func (c *SecureChannel) AcceptRenew(timeout time.Duration, requestedLifetime uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireRole(RoleServer); err != nil {
		return c.fail(err)
	}
	if err := c.requireState(StateChannelOpened); err != nil {
		return c.fail(err)
	}
	c.setState(StateRenewing)

	reqBody, err := c.recvAsymmetric(timeout)
	if err != nil {
		return c.fail(err)
	}
	req, err := decodeOpenSecureChannelRequest(reqBody)
	if err != nil {
		return c.fail(errs.Wrap(errs.KindCodec, types.StatusBadDecodingError, err, "malformed renew OpenSecureChannelRequest"))
	}
	if req.RequestType != requestTypeRenew {
		return c.fail(errs.New(errs.KindState, types.StatusBadRequestTypeInvalid, "expected a renew request, got request type %d", req.RequestType))
	}

	nonce, err := c.policy.GenerateNonce(c.policy.SigningKeyLength())
	if err != nil {
		return c.fail(err)
	}
	c.localNonce = nonce

	keys, err := c.deriveTokenKeys(nonce, req.ClientNonce)
	if err != nil {
		return c.fail(err)
	}

	lifetime := req.RequestedLifetime
	if lifetime == 0 {
		lifetime = requestedLifetime
	}
	newToken := &token{
		id:        nextTokenID(),
		keys:      keys,
		createdAt: time.Now(),
		lifetime:  time.Duration(lifetime) * time.Millisecond,
	}

	respBody := encodeOpenSecureChannelResponse(openSecureChannelResponse{
		ServerProtocolVersion: 0,
		SecurityToken: channelSecurityToken{
			ChannelId:       c.channelID,
			TokenId:         newToken.id,
			CreatedAt:       types.FromTime(newToken.createdAt),
			RevisedLifetime: lifetime,
		},
		ServerNonce: nonce,
	})
	if err := c.sendAsymmetric(c.channelID, respBody); err != nil {
		return c.fail(err)
	}

	c.previous = c.current
	c.current = newToken
	c.setState(StateChannelOpened)
	return nil
}
