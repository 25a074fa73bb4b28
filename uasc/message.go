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

// rawChunk is one chunk pulled out of a Connection.ReceiveChunksBlocking
// buffer, with its common header already stripped from the body.
type rawChunk struct {
	tag       chunker.MessageType
	chunkType chunker.ChunkType
	body      []byte
}

// parseChunks splits a buffer of one or more concatenated, already valid
// chunks (as returned by uatcp.Connection.ReceiveChunksBlocking) back
// into individual chunks. It trusts the sizes it finds: uatcp has already
// validated every header in this buffer.
func parseChunks(buf []byte) ([]rawChunk, error) {
	var out []rawChunk
	offset := 0
	for offset < len(buf) {
		if len(buf)-offset < commonHeaderSize {
			return nil, errShortHeader
		}
		hdr := buf[offset : offset+commonHeaderSize]
		size := int(binary.LittleEndian.Uint32(hdr[4:8]))
		if offset+size > len(buf) {
			return nil, errShortHeader
		}
		out = append(out, rawChunk{
			tag:       chunker.MessageType(hdr[0:3]),
			chunkType: chunker.ChunkType(hdr[3]),
			body:      buf[offset+commonHeaderSize : offset+size],
		})
		offset += size
	}
	return out, nil
}

// buildChunk assembles one complete chunk: an 8-byte common header
// followed by body.
func buildChunk(tag chunker.MessageType, chunkType chunker.ChunkType, body []byte) []byte {
	total := commonHeaderSize + len(body)
	out := make([]byte, total)
	copy(out[0:3], []byte(tag))
	out[3] = byte(chunkType)
	binary.LittleEndian.PutUint32(out[4:8], uint32(total))
	copy(out[commonHeaderSize:], body)
	return out
}

// recvOne blocks until exactly one chunk of message type want arrives,
// routes ERR chunks into a failure instead of ever returning them as data,
// and rejects anything else as a state violation: the HEL/ACK/OPN
// exchanges are always strict request-response, never interleaved with
// unrelated traffic.
func (c *SecureChannel) recvOne(timeout time.Duration, want chunker.MessageType) (rawChunk, error) {
	raw, err := c.conn.ReceiveChunksBlocking(timeout)
	if err != nil {
		return rawChunk{}, err
	}
	chunks, err := parseChunks(raw)
	if err != nil {
		return rawChunk{}, errs.Wrap(errs.KindFraming, types.StatusBadTcpMessageTypeInvalid, err, "could not split received buffer into chunks")
	}
	if len(chunks) == 0 {
		return rawChunk{}, errs.New(errs.KindFraming, types.StatusBadTcpMessageTypeInvalid, "no chunks in non-empty receive")
	}
	first := chunks[0]
	if first.tag == chunker.ERR {
		em, decErr := decodeErrorMessage(first.body)
		if decErr != nil {
			return rawChunk{}, errs.Wrap(errs.KindFraming, types.StatusBadTcpMessageTypeInvalid, decErr, "malformed ERR body")
		}
		return rawChunk{}, errs.New(errs.KindState, em.Error, "peer sent ERR: %s", em.Reason)
	}
	if first.tag != want {
		return rawChunk{}, errs.New(errs.KindState, types.StatusBadInvalidState, "expected %s, got %s", want, first.tag)
	}
	return first, nil
}

// Close sends a CLO message announcing this side is done with the
// channel and transitions to closed. It does not wait for the peer to
// acknowledge: CLO is fire-and-forget, matching the OPC UA close
// semantics where the transport connection is simply torn down after.
func (c *SecureChannel) Close(reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return nil
	}
	c.setState(StateClosing)

	if c.current != nil {
		_ = c.sendOneSymmetricChunk(chunker.CLO, chunker.Final, c.current, c.nextRequestID(), []byte(reason))
	}

	c.setState(StateClosed)
	c.closed = true
	return nil
}

func (c *SecureChannel) nextRequestID() uint32 {
	c.requestIDLocal++
	return c.requestIDLocal
}

func (c *SecureChannel) nextSymmetricSeq() uint32 {
	c.seqSymLocal++
	return c.seqSymLocal
}

func (c *SecureChannel) nextAsymmetricSeq() uint32 {
	c.seqAsymLocal++
	return c.seqAsymLocal
}

// checkSequence enforces the monotonic-with-wraparound discipline: the
// next sequence number must be exactly one more than the last one seen,
// except at the UInt32 maximum, which wraps to 1 (0 is never used as a
// real sequence number). Asymmetric and symmetric sequences are tracked
// independently, since OPN and MSG/CLO traffic never interleave on the
// same counter.
func checkSequence(last, got uint32) error {
	want := last + 1
	if last == ^uint32(0) {
		want = 1
	}
	if got != want {
		return errs.New(errs.KindSecurity, types.StatusBadSequenceNumberInvalid, "expected sequence number %d, got %d", want, got)
	}
	return nil
}
