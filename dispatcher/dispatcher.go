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

// The nodeforge opcua dispatcher package separates the wire-level
// SecureChannel from whatever code actually interprets service bodies: a
// Handler receives decoded request type ids and reacts to channel
// lifecycle events, without knowing anything about chunks, tokens, or
// sequence numbers.
package dispatcher

import (
	"encoding/binary"
	"time"

	"github.com/nodeforge/opcua/errs"
	"github.com/nodeforge/opcua/logging"
	"github.com/nodeforge/opcua/types"
	"github.com/nodeforge/opcua/uasc"
)

// Handler is the collaborator a Pump drives. Deliver is called once per
// reassembled inbound MSG; the lifecycle callbacks fire around the
// channel's own state transitions.
type Handler interface {
	Deliver(requestTypeID uint32, requestBody []byte, channel *uasc.SecureChannel, requestID uint32)
	ChannelOpened(channel *uasc.SecureChannel)
	ChannelClosed(channel *uasc.SecureChannel, cause error)
	TokenRenewed(channel *uasc.SecureChannel)
}

// typeIDHeaderSize is the width of the leading type id every dispatched
// body carries ahead of its encoded payload.
const typeIDHeaderSize = 4

// Send encodes responseTypeID as a 4-byte little-endian header ahead of
// responseBody and replies on channel under requestID. It is the
// counterpart a Handler.Deliver implementation calls once it has built a
// response.
func Send(channel *uasc.SecureChannel, responseTypeID uint32, responseBody []byte, requestID uint32) error {
	framed := make([]byte, typeIDHeaderSize+len(responseBody))
	binary.LittleEndian.PutUint32(framed[:typeIDHeaderSize], responseTypeID)
	copy(framed[typeIDHeaderSize:], responseBody)
	return channel.Reply(requestID, framed)
}

// Pump owns one SecureChannel's full lifetime after handshake and OPN
// have already completed: it renews tokens as they come due, reassembles
// and decodes inbound MSG bodies, and calls Handler for each one.
type Pump struct {
	Channel         *uasc.SecureChannel
	Handler         Handler
	RecvTimeout     time.Duration
	RequestLifetime uint32
}

// Run blocks, servicing channel until it closes or recv fails for a
// reason other than a non-critical timeout. It always calls
// Handler.ChannelOpened once before the first receive and
// Handler.ChannelClosed exactly once before returning.
func (p *Pump) Run() error {
	p.Handler.ChannelOpened(p.Channel)

	for {
		if p.Channel.RenewDue() {
			if err := p.renew(); err != nil {
				p.Handler.ChannelClosed(p.Channel, err)
				return err
			}
			p.Handler.TokenRenewed(p.Channel)
		}

		body, requestID, err := p.Channel.Recv(p.RecvTimeout)
		if errs.IsTimeout(err) {
			continue
		}
		if err != nil {
			p.Handler.ChannelClosed(p.Channel, err)
			return err
		}

		typeID, payload, err := decodeTypeID(body)
		if err != nil {
			logging.Warn.Println(p.Channel, "dispatcher: dropping malformed request: ", err)
			continue
		}
		p.Handler.Deliver(typeID, payload, p.Channel, requestID)
	}
}

func (p *Pump) renew() error {
	switch p.Channel.Role() {
	case uasc.RoleClient:
		return p.Channel.Renew(p.RecvTimeout, p.RequestLifetime)
	default:
		return p.Channel.AcceptRenew(p.RecvTimeout, p.RequestLifetime)
	}
}

func decodeTypeID(body []byte) (typeID uint32, payload []byte, err error) {
	if len(body) < typeIDHeaderSize {
		return 0, nil, errs.New(errs.KindCodec, types.StatusBadDecodingError, "message body shorter than its type id header")
	}
	return binary.LittleEndian.Uint32(body[:typeIDHeaderSize]), body[typeIDHeaderSize:], nil
}
