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

// The nodeforge opcua uatcp package owns a bidirectional byte stream and
// presents it as a sequence of complete chunks: it never interprets chunk
// bodies, only their 8-byte common header.
package uatcp

import (
	"encoding/binary"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nodeforge/opcua/errs"
	"github.com/nodeforge/opcua/types"
)

// commonHeaderSize is the 3-byte message-type tag, 1-byte chunk type, and
// 4-byte little-endian chunk size that precede every chunk.
const commonHeaderSize = 8

// minChunkSize is the smallest legal chunk: the 8-byte common header plus
// 8 more bytes (the size of a sequence header). A chunk this size is
// valid; policy-dependent bodies are simply empty.
const minChunkSize = 16

var validMessageTypeTags = map[string]bool{
	"HEL": true, "ACK": true, "ERR": true,
	"OPN": true, "MSG": true, "CLO": true,
}

func isChunkTypeByte(b byte) bool {
	return b == 'F' || b == 'C' || b == 'A'
}

var connectionSeq int64

// Connection owns one net.Conn and turns its byte stream into complete
// chunks. Exactly one goroutine drives a Connection; it is not safe for
// concurrent Recv/Send from multiple goroutines, matching the
// single-thread-per-connection scheduling model the SecureChannel above
// it relies on.
type Connection struct {
	rw net.Conn

	// RecvBufferSize bounds both the read buffer and the largest chunk
	// this side accepts; a chunk declaring a size above it is framing
	// garbage, never a partial read.
	RecvBufferSize int

	cid int

	incomplete []byte
	sendPool   sync.Pool

	// recvBufferHint tracks a running average of received read sizes, so
	// Recv can allocate close to what actually arrives instead of always
	// allocating a full RecvBufferSize buffer for every read.
	recvBufferHint int

	closed bool
}

// Cid satisfies logging.Context so log lines can be tagged per connection.
func (c *Connection) Cid() int { return c.cid }

// NewConnection wraps rw. recvBufferSize must be at least minChunkSize.
func NewConnection(rw net.Conn, recvBufferSize int) *Connection {
	return &Connection{
		rw:             rw,
		RecvBufferSize: recvBufferSize,
		cid:            int(atomic.AddInt64(&connectionSeq, 1)),
		recvBufferHint: recvBufferSize,
	}
}

// recvBufferHintMin bounds the hint from below so a run of tiny reads
// (e.g. a HEL handshake) doesn't shrink the reuse buffer below the
// minimum legal chunk size.
const recvBufferHintMin = minChunkSize

// updateRecvBufferHint folds n into the running average by a simple
// exponential moving average, weighting the most recent read at 25%.
func (c *Connection) updateRecvBufferHint(n int) {
	c.recvBufferHint = (c.recvBufferHint*3 + n) / 4
	if c.recvBufferHint < recvBufferHintMin {
		c.recvBufferHint = recvBufferHintMin
	}
	if c.recvBufferHint > c.RecvBufferSize {
		c.recvBufferHint = c.RecvBufferSize
	}
}

// Close releases the underlying stream. Further Recv/Send return
// errs.ErrClosed.
func (c *Connection) Close() error {
	c.closed = true
	return c.rw.Close()
}

// Recv reads whatever bytes are currently available, blocking up to
// timeout (zero means block indefinitely). It returns errs.ErrTimeout on
// deadline expiry and errs.ErrClosed when the peer has closed the stream.
func (c *Connection) Recv(timeout time.Duration) ([]byte, error) {
	if c.closed {
		return nil, errs.ErrClosed
	}
	if timeout > 0 {
		if err := c.rw.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return nil, errs.Wrap(errs.KindTransport, types.StatusBadTcpInternalError, err, "set read deadline")
		}
	} else {
		c.rw.SetReadDeadline(time.Time{})
	}

	buf := c.GetSendBuffer(c.recvBufferHint)
	n, err := c.rw.Read(buf)
	if err != nil {
		c.ReleaseSendBuffer(buf)
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return nil, errs.ErrTimeout
		}
		if err == io.EOF {
			return nil, errs.ErrClosed
		}
		return nil, errs.Wrap(errs.KindTransport, types.StatusBadConnectionClosed, err, "recv failed")
	}
	c.updateRecvBufferHint(n)
	return buf[:n], nil
}

// Send writes data in full.
func (c *Connection) Send(data []byte) error {
	if c.closed {
		return errs.ErrClosed
	}
	if _, err := c.rw.Write(data); err != nil {
		return errs.Wrap(errs.KindTransport, types.StatusBadConnectionClosed, err, "send failed")
	}
	return nil
}

// GetSendBuffer returns a buffer of at least minSize bytes, reused from an
// internal pool where possible.
func (c *Connection) GetSendBuffer(minSize int) []byte {
	if v := c.sendPool.Get(); v != nil {
		b := v.([]byte)
		if cap(b) >= minSize {
			return b[:minSize]
		}
	}
	return make([]byte, minSize)
}

// ReleaseSendBuffer returns buf to the pool for reuse.
func (c *Connection) ReleaseSendBuffer(buf []byte) {
	c.sendPool.Put(buf) //nolint:staticcheck // buf is not retained by the caller after release
}

// CompleteMessages splits raw into the leading run of complete chunks and
// stashes any trailing partial chunk in the connection's private
// incomplete-message buffer, to be prepended ahead of the next Recv. It
// never consults chunk bodies, only the common header.
//
// An all-garbage buffer (the very first header fails validation) is a
// framing error. A buffer with a valid prefix and a garbage suffix
// truncates the suffix silently and does not grow the incomplete buffer
// with it: the peer will either abort the exchange or resync on its own.
func (c *Connection) CompleteMessages(raw []byte) ([]byte, error) {
	data := raw
	if len(c.incomplete) > 0 {
		data = make([]byte, 0, len(c.incomplete)+len(raw))
		data = append(data, c.incomplete...)
		data = append(data, raw...)
		c.incomplete = nil
	}

	offset := 0
	for {
		remaining := len(data) - offset
		if remaining < commonHeaderSize {
			break
		}
		hdr := data[offset : offset+commonHeaderSize]
		tag := string(hdr[0:3])
		chunkType := hdr[3]
		size := int(binary.LittleEndian.Uint32(hdr[4:8]))

		if !validMessageTypeTags[tag] || !isChunkTypeByte(chunkType) || size < minChunkSize || size > c.RecvBufferSize {
			if offset == 0 {
				return nil, errs.New(errs.KindFraming, types.StatusBadTcpMessageTypeInvalid,
					"garbage at offset 0: tag %q chunk-type %q size %d", tag, string(chunkType), size)
			}
			return data[:offset], nil
		}
		if remaining < size {
			break
		}
		offset += size
	}

	if offset < len(data) {
		c.incomplete = append([]byte(nil), data[offset:]...)
	}
	return data[:offset], nil
}

// ReceiveChunksBlocking accumulates bytes across one or more Recv calls
// until at least one complete chunk is available, the deadline elapses,
// or an error occurs.
func (c *Connection) ReceiveChunksBlocking(timeout time.Duration) ([]byte, error) {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	for {
		remain := timeout
		if !deadline.IsZero() {
			remain = time.Until(deadline)
			if remain <= 0 {
				return nil, errs.ErrTimeout
			}
		}
		raw, err := c.Recv(remain)
		if err != nil {
			return nil, err
		}
		complete, err := c.CompleteMessages(raw)
		if err != nil {
			return nil, err
		}
		if len(complete) > 0 {
			return complete, nil
		}
	}
}
