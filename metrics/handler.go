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

package metrics

import (
	"errors"

	"github.com/nodeforge/opcua/chunker"
	"github.com/nodeforge/opcua/dispatcher"
	"github.com/nodeforge/opcua/errs"
	"github.com/nodeforge/opcua/uasc"
)

// InstrumentedHandler wraps a dispatcher.Handler, recording lifecycle and
// abort metrics around the same callbacks the wrapped Handler receives,
// then forwarding every call unchanged. A Pump never knows the difference
// between an InstrumentedHandler and a plain one.
type InstrumentedHandler struct {
	Next    dispatcher.Handler
	Metrics *Metrics
}

var _ dispatcher.Handler = InstrumentedHandler{}

func roleLabel(channel *uasc.SecureChannel) string {
	if channel.Role() == uasc.RoleClient {
		return "client"
	}
	return "server"
}

// Deliver forwards to Next without recording anything: request-level
// counts are a dispatcher.Handler implementation's own concern, not this
// wrapper's.
func (h InstrumentedHandler) Deliver(requestTypeID uint32, requestBody []byte, channel *uasc.SecureChannel, requestID uint32) {
	h.Next.Deliver(requestTypeID, requestBody, channel, requestID)
}

// ChannelOpened increments the opened counter and the active-channels
// gauge before forwarding to Next.
func (h InstrumentedHandler) ChannelOpened(channel *uasc.SecureChannel) {
	h.Metrics.ChannelOpened(roleLabel(channel))
	h.Next.ChannelOpened(channel)
}

// ChannelClosed classifies cause into a close reason, decrements the
// active-channels gauge, and counts a chunk abort separately when cause
// unwraps to a *chunker.AbortError, before forwarding to Next.
func (h InstrumentedHandler) ChannelClosed(channel *uasc.SecureChannel, cause error) {
	role := roleLabel(channel)
	h.Metrics.ChannelClosed(role, closeReason(cause))
	if isChunkAbort(cause) {
		h.Metrics.ChunkAbort()
	}
	h.Next.ChannelClosed(channel, cause)
}

// TokenRenewed increments the renewal counter before forwarding to Next.
func (h InstrumentedHandler) TokenRenewed(channel *uasc.SecureChannel) {
	h.Metrics.ChannelRenewed(roleLabel(channel))
	h.Next.TokenRenewed(channel)
}

func closeReason(cause error) string {
	switch {
	case cause == nil:
		return "unknown"
	case errors.Is(cause, errs.ErrClosed):
		return "peer-closed"
	case errs.IsTimeout(cause):
		return "timeout"
	case isChunkAbort(cause):
		return "abort"
	default:
		return "error"
	}
}

func isChunkAbort(cause error) bool {
	var abortErr *chunker.AbortError
	return errors.As(cause, &abortErr)
}
