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

// ClientHandshake sends HEL and waits for ACK, folding the peer's
// proposal in with this side's own to arrive at the effective connection
// parameters: whichever side proposed the smaller (nonzero) value wins,
// per minOf32.
func (c *SecureChannel) ClientHandshake(timeout time.Duration, endpointURL string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireRole(RoleClient); err != nil {
		return c.fail(err)
	}
	if err := c.requireState(StateFresh); err != nil {
		return c.fail(err)
	}

	hello := Hello{
		ProtocolVersion:   0,
		ReceiveBufferSize: c.localReceiveBufferSize,
		SendBufferSize:    c.localSendBufferSize,
		MaxMessageSize:    c.localMaxMessageSize,
		MaxChunkCount:     c.localMaxChunkCount,
		EndpointUrl:       endpointURL,
	}
	if err := c.conn.Send(buildChunk(chunker.HEL, chunker.Final, encodeHello(hello))); err != nil {
		return c.fail(err)
	}
	c.setState(StateHelSent)

	ackChunk, err := c.recvOne(timeout, chunker.ACK)
	if err != nil {
		return c.fail(err)
	}
	ack, err := decodeAcknowledge(ackChunk.body)
	if err != nil {
		return c.fail(errs.Wrap(errs.KindCodec, types.StatusBadDecodingError, err, "malformed ACK body"))
	}

	c.effectiveSendSize = minOf32(hello.SendBufferSize, ack.ReceiveBufferSize)
	c.effectiveRecvSize = minOf32(hello.ReceiveBufferSize, ack.SendBufferSize)
	c.effectiveMaxMessage = minOf32(hello.MaxMessageSize, ack.MaxMessageSize)
	c.effectiveMaxChunkCount = minOf32(hello.MaxChunkCount, ack.MaxChunkCount)
	c.setState(StateHelAcked)
	return nil
}

// ServerHandshake waits for an inbound HEL and answers with ACK, folding
// this side's own limits in with the client's proposal the same way
// ClientHandshake does.
func (c *SecureChannel) ServerHandshake(timeout time.Duration) (endpointURL string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireRole(RoleServer); err != nil {
		return "", c.fail(err)
	}
	if err := c.requireState(StateFresh); err != nil {
		return "", c.fail(err)
	}

	helChunk, err := c.recvOne(timeout, chunker.HEL)
	if err != nil {
		return "", c.fail(err)
	}
	hello, err := decodeHello(helChunk.body)
	if err != nil {
		return "", c.fail(errs.Wrap(errs.KindCodec, types.StatusBadDecodingError, err, "malformed HEL body"))
	}

	ack := Acknowledge{
		ProtocolVersion:   0,
		ReceiveBufferSize: c.localReceiveBufferSize,
		SendBufferSize:    c.localSendBufferSize,
		MaxMessageSize:    c.localMaxMessageSize,
		MaxChunkCount:     c.localMaxChunkCount,
	}
	if err := c.conn.Send(buildChunk(chunker.ACK, chunker.Final, encodeAcknowledge(ack))); err != nil {
		return "", c.fail(err)
	}

	c.effectiveSendSize = minOf32(ack.SendBufferSize, hello.ReceiveBufferSize)
	c.effectiveRecvSize = minOf32(ack.ReceiveBufferSize, hello.SendBufferSize)
	c.effectiveMaxMessage = minOf32(ack.MaxMessageSize, hello.MaxMessageSize)
	c.effectiveMaxChunkCount = minOf32(ack.MaxChunkCount, hello.MaxChunkCount)
	c.setState(StateHelAcked)
	return hello.EndpointUrl, nil
}
