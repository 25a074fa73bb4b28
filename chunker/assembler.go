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

// The nodeforge opcua chunker package turns a stream of raw chunks into
// complete service messages, tracked per (channel id, request id).
package chunker

import (
	"fmt"

	"github.com/nodeforge/opcua/errs"
	"github.com/nodeforge/opcua/types"
)

// ChunkType is the one-byte chunk-type tag from the common header.
type ChunkType byte

const (
	Final        ChunkType = 'F'
	Continuation ChunkType = 'C'
	Abort        ChunkType = 'A'
)

// MessageType is the three-letter message-type tag from the common header.
type MessageType string

const (
	HEL MessageType = "HEL"
	ACK MessageType = "ACK"
	ERR MessageType = "ERR"
	OPN MessageType = "OPN"
	MSG MessageType = "MSG"
	CLO MessageType = "CLO"
)

// singleChunkOnly reports whether a message type can never legally span
// more than one chunk: HEL/ACK/ERR are handshake-phase messages that are
// always a lone F chunk.
func singleChunkOnly(mt MessageType) bool {
	return mt == HEL || mt == ACK || mt == ERR
}

// Key identifies one in-flight message's chunk stream.
type Key struct {
	ChannelID uint32
	RequestID uint32
}

// AbortError is returned by Feed when the peer sends an A (abort) chunk,
// carrying the raw reason payload from that chunk for the caller to
// decode (an OPC UA abort body is a status code plus a string, but
// decoding it is the SecureChannel's concern, not the assembler's).
type AbortError struct {
	Key    Key
	Reason []byte
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("opcua: chunk stream %+v aborted by peer: %d reason bytes", e.Key, len(e.Reason))
}

type pending struct {
	chunks     [][]byte
	totalBytes int
}

// Assembler reassembles chunk payloads (the bytes following the common
// header) into complete message bodies, one entry per (channel id,
// request id) with an open continuation. It is not safe for concurrent
// use: per the single-thread-per-connection scheduling model, exactly one
// goroutine feeds it chunks for a given Connection.
type Assembler struct {
	pending map[Key]*pending

	// MaxMessageSize and MaxChunkCount are the peer-advertised limits
	// this side enforces while reassembling an inbound message.
	MaxMessageSize uint32
	MaxChunkCount  uint32
}

// NewAssembler returns an Assembler enforcing the given peer-advertised
// limits. Zero means unlimited.
func NewAssembler(maxMessageSize, maxChunkCount uint32) *Assembler {
	return &Assembler{
		pending:        map[Key]*pending{},
		MaxMessageSize: maxMessageSize,
		MaxChunkCount:  maxChunkCount,
	}
}

// Feed processes one chunk's payload for key. It returns the complete
// message body and done=true once the terminating F chunk has arrived; it
// returns done=false while a continuation is still open.
//
// A singleChunkOnly message type (HEL/ACK/ERR) presented with a C or A
// chunk type is always a fatal protocol error, independent of any
// SecureChannel binding state — the caller enforces the "only before a
// channel is bound" half of spec.md §4.3's rule by never routing a bound
// channel's HEL/ACK/ERR here in the first place.
func (a *Assembler) Feed(mt MessageType, key Key, chunkType ChunkType, payload []byte) (body []byte, done bool, err error) {
	if singleChunkOnly(mt) {
		if chunkType != Final {
			return nil, false, errs.New(errs.KindFraming, types.StatusBadTcpInternalError,
				"%s chunk stream %+v: message type never chunks, got chunk type %q", mt, key, string(chunkType))
		}
		return payload, true, nil
	}

	switch chunkType {
	case Final:
		p, open := a.pending[key]
		if !open {
			return payload, true, nil
		}
		delete(a.pending, key)
		if err := a.checkBudget(key, p.totalBytes+len(payload), len(p.chunks)+1); err != nil {
			return nil, false, err
		}
		out := make([]byte, 0, p.totalBytes+len(payload))
		for _, c := range p.chunks {
			out = append(out, c...)
		}
		out = append(out, payload...)
		return out, true, nil

	case Continuation:
		p, open := a.pending[key]
		if !open {
			p = &pending{}
			a.pending[key] = p
		}
		if err := a.checkBudget(key, p.totalBytes+len(payload), len(p.chunks)+1); err != nil {
			delete(a.pending, key)
			return nil, false, err
		}
		p.chunks = append(p.chunks, payload)
		p.totalBytes += len(payload)
		return nil, false, nil

	case Abort:
		delete(a.pending, key)
		return nil, true, &AbortError{Key: key, Reason: payload}

	default:
		return nil, false, errs.New(errs.KindFraming, types.StatusBadTcpInternalError,
			"chunk stream %+v: unrecognized chunk type %q", key, string(chunkType))
	}
}

func (a *Assembler) checkBudget(key Key, totalBytes, chunkCount int) error {
	if a.MaxMessageSize > 0 && uint32(totalBytes) > a.MaxMessageSize {
		return errs.New(errs.KindFraming, types.StatusBadTcpMessageTooLarge,
			"chunk stream %+v: reassembled size %d exceeds peer max message size %d", key, totalBytes, a.MaxMessageSize)
	}
	if a.MaxChunkCount > 0 && uint32(chunkCount) > a.MaxChunkCount {
		return errs.New(errs.KindFraming, types.StatusBadTcpMessageTooLarge,
			"chunk stream %+v: chunk count %d exceeds peer max chunk count %d", key, chunkCount, a.MaxChunkCount)
	}
	return nil
}

// Discard drops any open continuation for key without surfacing an
// AbortError — used when a request is cancelled locally; spec.md §5 notes
// late-arriving chunks for a cancelled request id must be discarded and
// counted.
func (a *Assembler) Discard(key Key) (wasOpen bool) {
	_, wasOpen = a.pending[key]
	delete(a.pending, key)
	return wasOpen
}

// OpenCount reports how many chunk streams currently have an open
// continuation, for diagnostics and tests.
func (a *Assembler) OpenCount() int { return len(a.pending) }
