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

// The nodeforge opcua uasc package owns the SecureChannel lifecycle: the
// HEL/ACK handshake, OPN issue/renew with token overlap, and the
// symmetric MSG/CLO/ERR flow that rides on top of a chunker.Assembler and
// a securitypolicy.Policy. Everything below this package is bytes; this
// package is the first layer that knows about channels, tokens, and
// sequence numbers.
package uasc

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nodeforge/opcua/chunker"
	"github.com/nodeforge/opcua/errs"
	"github.com/nodeforge/opcua/logging"
	"github.com/nodeforge/opcua/securitypolicy"
	"github.com/nodeforge/opcua/types"
	"github.com/nodeforge/opcua/uatcp"
)

// State is a SecureChannel's lifecycle stage.
type State int

const (
	StateFresh State = iota
	StateHelSent
	StateHelAcked
	StateChannelOpened
	StateRenewing
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateFresh:
		return "fresh"
	case StateHelSent:
		return "hel-sent"
	case StateHelAcked:
		return "hel-acked"
	case StateChannelOpened:
		return "channel-opened"
	case StateRenewing:
		return "renewing"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Role says which side of the HEL/ACK and OPN exchange this channel
// plays: a Client sends HEL and issues/renews OPN requests; a Server
// receives HEL and answers OPN requests.
type Role int

const (
	RoleClient Role = iota
	RoleServer
)

// tokenLifetimeOverlapFraction is the point in a token's lifetime at
// which a client schedules its renewal: at 75% elapsed, the renewed
// token is normally installed well before the old one expires, leaving
// the remaining 25% as the overlap window during which either token is
// accepted on receive.
const tokenLifetimeOverlapFraction = 0.75

// token bundles one security token's id, the key material derived for
// it, and when it was minted.
type token struct {
	id        uint32
	keys      *securitypolicy.ChannelKeys
	createdAt time.Time
	lifetime  time.Duration
}

// SecureChannel drives one Connection through HEL/ACK, OPN, and the
// symmetric message flow. It is not safe for concurrent Send/Recv calls
// from multiple goroutines without external synchronization beyond what
// its own mutex provides for state transitions.
type SecureChannel struct {
	mu sync.Mutex

	conn      *uatcp.Connection
	assembler *chunker.Assembler
	policy    securitypolicy.Policy
	role      Role

	id    string
	state State

	channelID uint32
	current   *token
	previous  *token // retained during the renewal overlap window

	localReceiveBufferSize uint32
	localSendBufferSize    uint32
	localMaxMessageSize    uint32
	localMaxChunkCount     uint32
	effectiveSendSize      uint32
	effectiveRecvSize      uint32
	effectiveMaxMessage    uint32
	effectiveMaxChunkCount uint32

	localNonce []byte

	seqAsymLocal     uint32
	seqAsymRemote    uint32
	seqAsymRemoteSet bool
	seqSymLocal      uint32
	seqSymRemote     uint32
	seqSymRemoteSet  bool

	requestIDLocal uint32

	closed bool
}

// NewSecureChannel wires a fresh channel over conn, using policy for all
// cryptographic operations. maxMessageSize and maxChunkCount bound
// reassembled symmetric messages (0 means unlimited, per Assembler).
func NewSecureChannel(conn *uatcp.Connection, policy securitypolicy.Policy, role Role, localReceiveBufferSize, localSendBufferSize, maxMessageSize, maxChunkCount uint32) *SecureChannel {
	return &SecureChannel{
		conn:                   conn,
		assembler:              chunker.NewAssembler(maxMessageSize, maxChunkCount),
		policy:                 policy,
		role:                   role,
		id:                     uuid.NewString(),
		state:                  StateFresh,
		localReceiveBufferSize: localReceiveBufferSize,
		localSendBufferSize:    localSendBufferSize,
		localMaxMessageSize:    maxMessageSize,
		localMaxChunkCount:     maxChunkCount,
	}
}

// Cid satisfies logging.Context, tagging this channel's log lines with
// its underlying connection id.
func (c *SecureChannel) Cid() int { return c.conn.Cid() }

// AuditID returns the channel's process-lifetime-unique correlation id,
// for logging and metrics across a renewal (which keeps this id even
// though the channel id and token id both change).
func (c *SecureChannel) AuditID() string { return c.id }

// State reports the channel's current lifecycle stage.
func (c *SecureChannel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ChannelID reports the id assigned by the first OPN issue. It is zero
// until the channel has opened.
func (c *SecureChannel) ChannelID() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channelID
}

// Role reports which side of the protocol this channel plays.
func (c *SecureChannel) Role() Role { return c.role }

func (c *SecureChannel) setState(s State) {
	logging.Trace.Println(c, "uasc: ", c.state, " -> ", s)
	c.state = s
}

func (c *SecureChannel) requireState(want State) error {
	if c.state != want {
		return errs.New(errs.KindState, types.StatusBadInvalidState, "expected state %s, channel is %s", want, c.state)
	}
	return nil
}

func (c *SecureChannel) requireRole(want Role) error {
	if c.role != want {
		return errs.New(errs.KindState, types.StatusBadInvalidState, "operation requires role %d, channel has role %d", want, c.role)
	}
	return nil
}

// fail transitions the channel to closed, attempting to notify the peer
// with an ERR chunk first: every KindSecurity/KindFraming/KindState
// failure always tries ERR before tearing the transport down, so the
// peer has a chance to log a reason rather than see a bare disconnect.
func (c *SecureChannel) fail(cause error) error {
	status := types.StatusBadTcpInternalError
	if e, ok := cause.(*errs.Error); ok {
		status = e.Status
	}
	_ = c.sendError(status, cause.Error())
	c.setState(StateClosed)
	c.closed = true
	return cause
}

func (c *SecureChannel) sendError(status types.StatusCode, reason string) error {
	body := encodeErrorMessage(ErrorMessage{Error: status, Reason: reason})
	return c.conn.Send(buildChunk(chunker.ERR, chunker.Final, body))
}

// commonHeaderSize is the 3-byte message-type tag, 1-byte chunk type, and
// 4-byte little-endian chunk size that precede every chunk's payload.
const commonHeaderSize = 8
